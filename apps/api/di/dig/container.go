package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/coursedetail"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf          *core.Config
	Logger        core.Logger
	Tokens        *auth.TokenService
	UserSvc       *user.Service
	CourseSvc     *course.Service
	DetailSvc     *coursedetail.Service
	EnrollmentSvc *enrollment.Service
	FeedbackSvc   *feedback.Service
	DiscussionSvc *discussion.Service
	Validate      *validator.Validate
	Translator    ut.Translator
}

func newRootLogger(conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(os.Stdout, conf)
}

func newLogger(root *logsvc.RollbarLogger) core.Logger {
	return root.Named("api")
}

func newDBLogger(root *logsvc.RollbarLogger) core.Logger {
	return root.Named("db")
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) *storage.Repositories {
	repos, err := storage.Open(context.Background(), conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return repos
}

func newTokenService(conf *core.Config) (*auth.TokenService, error) {
	return auth.NewTokenService([]byte(conf.Auth.Secret), conf.Auth.TokenTTL, conf.AppName)
}

func newUserService(repos *storage.Repositories) *user.Service {
	return user.NewService(repos.Users)
}

func newCourseService(repos *storage.Repositories, users *user.Service) *course.Service {
	return course.NewService(repos.Courses, users)
}

func newDetailService(repos *storage.Repositories, courses *course.Service) *coursedetail.Service {
	return coursedetail.NewService(repos.Details, courses)
}

func newEnrollmentService(repos *storage.Repositories, users *user.Service, courses *course.Service) *enrollment.Service {
	return enrollment.NewService(repos.Enrollments, users, courses)
}

func newFeedbackService(repos *storage.Repositories, courses *course.Service) *feedback.Service {
	return feedback.NewService(repos.Feedback, courses)
}

func newDiscussionService(repos *storage.Repositories, courses *course.Service) *discussion.Service {
	return discussion.NewService(repos.Discussion, courses)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)
	return validate
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Tokens:        p.Tokens,
		UserSvc:       p.UserSvc,
		CourseSvc:     p.CourseSvc,
		DetailSvc:     p.DetailSvc,
		EnrollmentSvc: p.EnrollmentSvc,
		FeedbackSvc:   p.FeedbackSvc,
		DiscussionSvc: p.DiscussionSvc,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newRootLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newTokenService))
	must(c.Provide(newUserService))
	must(c.Provide(newCourseService))
	must(c.Provide(newDetailService))
	must(c.Provide(newEnrollmentService))
	must(c.Provide(newFeedbackService))
	must(c.Provide(newDiscussionService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
