package main

import (
	"context"
	"fmt"
	"log"
	"os"

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

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	rootLogger := logsvc.NewRollbarLogger(os.Stdout, conf)
	defer rootLogger.Close()
	logger := rootLogger.Named("api")
	dbLogger := rootLogger.Named("db")

	// set up DB
	repos, err := storage.Open(context.Background(), conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = repos.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	tokens, err := auth.NewTokenService([]byte(conf.Auth.Secret), conf.Auth.TokenTTL, conf.AppName)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up tokens: %v", err), err)
	}

	// set up services
	userSvc := user.NewService(repos.Users)
	courseSvc := course.NewService(repos.Courses, userSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Tokens:        tokens,
			UserSvc:       userSvc,
			CourseSvc:     courseSvc,
			DetailSvc:     coursedetail.NewService(repos.Details, courseSvc),
			EnrollmentSvc: enrollment.NewService(repos.Enrollments, userSvc, courseSvc),
			FeedbackSvc:   feedback.NewService(repos.Feedback, courseSvc),
			DiscussionSvc: discussion.NewService(repos.Discussion, courseSvc),
			Validate:      validate,
			Translator:    translator,
		},
	)

	serve(conf, logger, server)
}
