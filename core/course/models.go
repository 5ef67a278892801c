package course

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Course struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	Description  string    `json:"description"`
	Credits      int       `json:"credits"`
	InstructorID *string   `json:"instructor"`
	Version      int       `json:"__v"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// IsInstructor reports whether userID teaches the course.
func (c Course) IsInstructor(userID string) bool {
	return c.InstructorID != nil && *c.InstructorID != "" && *c.InstructorID == userID
}

// Instructor returns the instructor's id, or "" if the course has none.
func (c Course) Instructor() string {
	if c.InstructorID == nil {
		return ""
	}
	return *c.InstructorID
}

type NewCourse struct {
	Name         string  `json:"name" validate:"required,notblank,max=200"`
	Code         string  `json:"code" validate:"required,notblank,max=20"`
	Description  string  `json:"description" validate:"max=5000"`
	Credits      int     `json:"credits" validate:"min=0,max=60"`
	InstructorID *string `json:"instructor"`
}

func (nc *NewCourse) Clean() {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = cleanCode(nc.Code)
	nc.Description = core.CleanString(nc.Description)
	core.CleanStringPtr(nc.InstructorID)
	if nc.InstructorID != nil && *nc.InstructorID == "" {
		nc.InstructorID = nil
	}
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Clean()
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
// An empty InstructorID unassigns the instructor. Version is the optional expected version.
type UpdateCourse struct {
	Name         *string `json:"name" validate:"omitempty,notblank,max=200"`
	Code         *string `json:"code" validate:"omitempty,notblank,max=20"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Credits      *int    `json:"credits" validate:"omitempty,min=0,max=60"`
	InstructorID *string `json:"instructor"`
	Version      *int    `json:"__v" validate:"omitempty,min=0"`
}

func (uc *UpdateCourse) Clean() {
	core.CleanStringPtr(uc.Name)
	if uc.Code != nil {
		code := cleanCode(*uc.Code)
		uc.Code = &code
	}
	core.CleanStringPtr(uc.Description)
	core.CleanStringPtr(uc.InstructorID)
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Clean()
	return validate.Struct(uc)
}

// Patch lists the stored fields an update may change. nil fields are left untouched and a non-nil
// empty InstructorID clears the instructor.
type Patch struct {
	Name         *string
	Code         *string
	Description  *string
	Credits      *int
	InstructorID *string
	UpdatedAt    time.Time
}

func (p Patch) Apply(c *Course) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Code != nil {
		c.Code = *p.Code
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Credits != nil {
		c.Credits = *p.Credits
	}
	if p.InstructorID != nil {
		if *p.InstructorID == "" {
			c.InstructorID = nil
		} else {
			id := *p.InstructorID
			c.InstructorID = &id
		}
	}
	if !p.UpdatedAt.IsZero() {
		c.UpdatedAt = p.UpdatedAt
	}
}

type QueryFilter struct {
	Search       string `query:"search"`
	InstructorID string `query:"instructor"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.InstructorID = core.CleanString(qf.InstructorID)
}

// OrderingFields are the fields courses can be ordered by.
var OrderingFields = []string{"name", "code", "credits", "created_at", "updated_at"}

func cleanCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}
