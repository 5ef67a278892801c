package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
)

const courseColumns = "id, name, code, description, credits, instructor_id, version, created_at, updated_at"

type courseRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Code         string      `db:"code"`
	Description  string      `db:"description"`
	Credits      int         `db:"credits"`
	InstructorID null.String `db:"instructor_id"`
	Version      int         `db:"version"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r courseRow) course() course.Course {
	return course.Course{
		ID:           r.ID,
		Name:         r.Name,
		Code:         r.Code,
		Description:  r.Description,
		Credits:      r.Credits,
		InstructorID: r.InstructorID.Ptr(),
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type courseRepository struct {
	exec sqlx.ExtContext
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec sqlx.ExtContext) *courseRepository {
	return &courseRepository{exec: exec}
}

func (repo *courseRepository) get(ctx context.Context, q string, args ...interface{}) (course.Course, error) {
	var row courseRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return course.Course{}, course.ErrNotFound
		}
		if isUniqueViolation(err) {
			return course.Course{}, course.ErrCodeExists
		}
		return course.Course{}, errors.Wrap(err, "querying course")
	}
	return row.course(), nil
}

func (repo *courseRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedIDs ...string) error {
	var where whereClause
	where.add("code = ?", code)
	if ids := validIDs(excludedIDs); len(ids) > 0 {
		where.add("id NOT IN (?)", ids)
	}
	q, args, err := build("SELECT EXISTS(SELECT 1 FROM courses"+where.String()+")", where.args...)
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var exists bool
	if err = sqlx.GetContext(ctx, repo.exec, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking code uniqueness")
	}
	if exists {
		return course.ErrCodeExists
	}
	return nil
}

func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `INSERT INTO courses (` + courseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
		RETURNING ` + courseColumns
	return repo.get(
		ctx, q,
		newID(), c.Name, c.Code, c.Description, c.Credits, null.StringFromPtr(c.InstructorID),
		c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	return repo.get(ctx, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id)
}

func (repo *courseRepository) QueryCourses(ctx context.Context, filter course.QueryFilter, ordering ...core.DBOrdering) ([]course.Course, error) {
	var where whereClause
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		where.add("(name ILIKE ? OR code ILIKE ? OR description ILIKE ?)", s, s, s)
	}
	if filter.InstructorID != "" {
		where.add("instructor_id = ?", filter.InstructorID)
	}

	q, args, err := build(
		"SELECT "+courseColumns+" FROM courses"+where.String()+orderBy(ordering, course.OrderingFields, "code ASC"),
		where.args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []courseRow
	if err = sqlx.SelectContext(ctx, repo.exec, &rows, q, args...); err != nil {
		if isInvalidText(err) { // malformed instructor id
			return []course.Course{}, nil
		}
		return nil, errors.Wrap(err, "selecting courses")
	}
	courses := make([]course.Course, 0, len(rows))
	for _, r := range rows {
		courses = append(courses, r.course())
	}
	return courses, nil
}

func courseSetClause(patch course.Patch) *setClause {
	set := new(setClause)
	if patch.Name != nil {
		set.add("name", *patch.Name)
	}
	if patch.Code != nil {
		set.add("code", *patch.Code)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Credits != nil {
		set.add("credits", *patch.Credits)
	}
	if patch.InstructorID != nil {
		// "" unassigns
		set.add("instructor_id", null.NewString(*patch.InstructorID, *patch.InstructorID != ""))
	}
	if !patch.UpdatedAt.IsZero() {
		set.add("updated_at", patch.UpdatedAt.UTC())
	}
	set.raw("version = version + 1")
	return set
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, id string, patch course.Patch) (course.Course, error) {
	set := courseSetClause(patch)
	q := "UPDATE courses SET " + set.String() + " WHERE id = " + set.arg(id) + " RETURNING " + courseColumns
	return repo.get(ctx, q, set.args...)
}

// UpdateCourseWithVersion is a single conditional UPDATE: it matches nothing if the id is unknown or the
// version moved on.
func (repo *courseRepository) UpdateCourseWithVersion(ctx context.Context, id string, version int, patch course.Patch) (course.Course, error) {
	set := courseSetClause(patch)
	q := "UPDATE courses SET " + set.String() +
		" WHERE id = " + set.arg(id) + " AND version = " + set.arg(version) +
		" RETURNING " + courseColumns
	return repo.get(ctx, q, set.args...)
}

// DeleteCourse relies on the schema's ON DELETE CASCADE for the course's dependents.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		if isInvalidText(err) {
			return course.ErrNotFound
		}
		return errors.Wrap(err, "deleting course")
	}
	return checkAffected(res, course.ErrNotFound)
}
