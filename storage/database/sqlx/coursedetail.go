package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/coursedetail"
)

const detailColumns = "id, course_id, title, description, content_url, week, created_by, created_at, updated_at"

type detailRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	ContentURL  string      `db:"content_url"`
	Week        int         `db:"week"`
	CreatedBy   null.String `db:"created_by"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r detailRow) detail() coursedetail.CourseDetail {
	return coursedetail.CourseDetail{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Title:       r.Title,
		Description: r.Description,
		ContentURL:  r.ContentURL,
		Week:        r.Week,
		CreatedBy:   r.CreatedBy.String,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type courseDetailRepository struct {
	exec sqlx.ExtContext
}

var _ coursedetail.Repository = (*courseDetailRepository)(nil) // interface compliance check

func NewCourseDetailRepository(exec sqlx.ExtContext) *courseDetailRepository {
	return &courseDetailRepository{exec: exec}
}

func (repo *courseDetailRepository) get(ctx context.Context, q string, args ...interface{}) (coursedetail.CourseDetail, error) {
	var row detailRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return coursedetail.CourseDetail{}, coursedetail.ErrNotFound
		}
		return coursedetail.CourseDetail{}, errors.Wrap(err, "querying course detail")
	}
	return row.detail(), nil
}

func (repo *courseDetailRepository) CreateDetail(ctx context.Context, d coursedetail.CourseDetail) (coursedetail.CourseDetail, error) {
	q := `INSERT INTO course_details (` + detailColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + detailColumns
	return repo.get(
		ctx, q,
		newID(), d.CourseID, d.Title, d.Description, d.ContentURL, d.Week,
		null.NewString(d.CreatedBy, d.CreatedBy != ""), d.CreatedAt.UTC(), d.UpdatedAt.UTC(),
	)
}

func (repo *courseDetailRepository) GetDetailByID(ctx context.Context, id string) (coursedetail.CourseDetail, error) {
	return repo.get(ctx, "SELECT "+detailColumns+" FROM course_details WHERE id = $1", id)
}

func (repo *courseDetailRepository) QueryDetails(ctx context.Context, courseID string) ([]coursedetail.CourseDetail, error) {
	var rows []detailRow
	q := "SELECT " + detailColumns + " FROM course_details WHERE course_id = $1 ORDER BY week ASC, created_at ASC, id ASC"
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "selecting course details")
	}
	details := make([]coursedetail.CourseDetail, 0, len(rows))
	for _, r := range rows {
		details = append(details, r.detail())
	}
	return details, nil
}

func (repo *courseDetailRepository) UpdateDetail(ctx context.Context, id string, patch coursedetail.Patch) (coursedetail.CourseDetail, error) {
	set := new(setClause)
	if patch.Title != nil {
		set.add("title", *patch.Title)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.ContentURL != nil {
		set.add("content_url", *patch.ContentURL)
	}
	if patch.Week != nil {
		set.add("week", *patch.Week)
	}
	if patch.UpdatedAt.IsZero() {
		patch.UpdatedAt = time.Now()
	}
	set.add("updated_at", patch.UpdatedAt.UTC())

	q := "UPDATE course_details SET " + set.String() + " WHERE id = " + set.arg(id) + " RETURNING " + detailColumns
	return repo.get(ctx, q, set.args...)
}

func (repo *courseDetailRepository) DeleteDetail(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM course_details WHERE id = $1", id)
	if err != nil {
		if isInvalidText(err) {
			return coursedetail.ErrNotFound
		}
		return errors.Wrap(err, "deleting course detail")
	}
	return checkAffected(res, coursedetail.ErrNotFound)
}
