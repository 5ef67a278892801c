package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/coursedetail"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
	"github.com/trezcool/darasa/storage/database"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

// Repositories groups the repositories of every entity, all backed by the same store.
type Repositories struct {
	Users       user.Repository
	Courses     course.Repository
	Details     coursedetail.Repository
	Enrollments enrollment.Repository
	Feedback    feedback.Repository
	Discussion  discussion.Repository

	close func() error
}

// Open sets up the configured store. SQL databases are created if missing & migrated.
func Open(ctx context.Context, conf *core.Config) (*Repositories, error) {
	if conf.Database.InMemory() {
		db := inmemdb.Open()
		return &Repositories{
			Users:       inmemdb.NewUserRepository(db),
			Courses:     inmemdb.NewCourseRepository(db),
			Details:     inmemdb.NewCourseDetailRepository(db),
			Enrollments: inmemdb.NewEnrollmentRepository(db),
			Feedback:    inmemdb.NewFeedbackRepository(db),
			Discussion:  inmemdb.NewDiscussionRepository(db),
			close:       func() error { return nil },
		}, nil
	}

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrating database")
	}

	return &Repositories{
		Users:       sqlxrepos.NewUserRepository(db),
		Courses:     sqlxrepos.NewCourseRepository(db),
		Details:     sqlxrepos.NewCourseDetailRepository(db),
		Enrollments: sqlxrepos.NewEnrollmentRepository(db),
		Feedback:    sqlxrepos.NewFeedbackRepository(db),
		Discussion:  sqlxrepos.NewDiscussionRepository(db),
		close:       db.Close,
	}, nil
}

func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}
