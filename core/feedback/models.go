package feedback

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user"`
	CourseID  string    `json:"course"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Summary aggregates the ratings of a course.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

type NewFeedback struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (nf *NewFeedback) Validate(validate *validator.Validate) error {
	nf.Comment = core.CleanString(nf.Comment)
	return validate.Struct(nf)
}

type UpdateFeedback struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

func (uf *UpdateFeedback) Validate(validate *validator.Validate) error {
	core.CleanStringPtr(uf.Comment)
	return validate.Struct(uf)
}

type Patch struct {
	Rating    *int
	Comment   *string
	UpdatedAt time.Time
}

func (p Patch) Apply(fb *Feedback) {
	if p.Rating != nil {
		fb.Rating = *p.Rating
	}
	if p.Comment != nil {
		fb.Comment = *p.Comment
	}
	if !p.UpdatedAt.IsZero() {
		fb.UpdatedAt = p.UpdatedAt
	}
}
