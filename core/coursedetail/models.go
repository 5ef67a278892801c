package coursedetail

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// CourseDetail is a piece of course material (a lesson, a reading, a recording...).
type CourseDetail struct {
	ID          string    `json:"id"`
	CourseID    string    `json:"course"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentURL  string    `json:"content_url"`
	Week        int       `json:"week"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

type NewCourseDetail struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=5000"`
	ContentURL  string `json:"content_url" validate:"omitempty,url,max=2048"`
	Week        int    `json:"week" validate:"min=0,max=52"`
}

func (nd *NewCourseDetail) Validate(validate *validator.Validate) error {
	nd.Title = core.CleanString(nd.Title)
	nd.Description = core.CleanString(nd.Description)
	nd.ContentURL = core.CleanString(nd.ContentURL)
	return validate.Struct(nd)
}

type UpdateCourseDetail struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	ContentURL  *string `json:"content_url" validate:"omitempty,url,max=2048"`
	Week        *int    `json:"week" validate:"omitempty,min=0,max=52"`
}

func (ud *UpdateCourseDetail) Validate(validate *validator.Validate) error {
	core.CleanStringPtr(ud.Title)
	core.CleanStringPtr(ud.Description)
	core.CleanStringPtr(ud.ContentURL)
	return validate.Struct(ud)
}

type Patch struct {
	Title       *string
	Description *string
	ContentURL  *string
	Week        *int
	UpdatedAt   time.Time
}

func (p Patch) Apply(d *CourseDetail) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.ContentURL != nil {
		d.ContentURL = *p.ContentURL
	}
	if p.Week != nil {
		d.Week = *p.Week
	}
	if !p.UpdatedAt.IsZero() {
		d.UpdatedAt = p.UpdatedAt
	}
}
