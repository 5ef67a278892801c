package core

// Logger is what the app logs through. args may contain errors, maps of extra data and the
// user (or principal) the log entry relates to.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies who a log entry is about.
type Person interface {
	LogPerson() (id, username, email string)
}
