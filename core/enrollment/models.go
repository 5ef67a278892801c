package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDropped   Status = "dropped"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusDropped:
		return true
	}
	return false
}

type Enrollment struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student"`
	CourseID   string    `json:"course"`
	Status     Status    `json:"status"`
	EnrolledAt time.Time `json:"enrolled_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"`  // UTC
}

// NewEnrollment enrolls StudentID in CourseID. Students may leave StudentID empty to enroll themselves.
type NewEnrollment struct {
	CourseID  string `json:"course" validate:"required,notblank"`
	StudentID string `json:"student"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.CourseID = core.CleanString(ne.CourseID)
	ne.StudentID = core.CleanString(ne.StudentID)
	return validate.Struct(ne)
}

type UpdateEnrollment struct {
	Status Status `json:"status" validate:"required,oneof=active completed dropped"`
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate) error {
	ue.Status = Status(core.CleanString(string(ue.Status), true /* lower */))
	return validate.Struct(ue)
}

type QueryFilter struct {
	CourseID  string `query:"course"`
	StudentID string `query:"student"`
	Status    Status `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.CourseID = core.CleanString(qf.CourseID)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
	if !qf.Status.Valid() {
		qf.Status = ""
	}
}
