package discussion

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

type Post struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"course"`
	UserID    string     `json:"user"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	IsPinned  bool       `json:"is_pinned"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

type Reply struct {
	ID        string     `json:"id"`
	PostID    string     `json:"post"`
	UserID    string     `json:"user"`
	Content   string     `json:"content"`
	IsDeleted bool       `json:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at"`
	CreatedAt time.Time  `json:"created_at"` // UTC
	UpdatedAt time.Time  `json:"updated_at"` // UTC
}

// Thread is a post with its (non deleted) replies, oldest first.
type Thread struct {
	Post
	Replies []Reply `json:"replies"`
}

type NewPost struct {
	Title   string `json:"title" validate:"required,notblank,max=200"`
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return validate.Struct(np)
}

type UpdatePost struct {
	Title   *string `json:"title" validate:"omitempty,notblank,max=200"`
	Content *string `json:"content" validate:"omitempty,notblank,max=10000"`
}

func (up *UpdatePost) Validate(validate *validator.Validate) error {
	core.CleanStringPtr(up.Title)
	core.CleanStringPtr(up.Content)
	return validate.Struct(up)
}

type PinPost struct {
	IsPinned *bool `json:"is_pinned" validate:"required"`
}

type NewReply struct {
	Content string `json:"content" validate:"required,notblank,max=10000"`
}

func (nr *NewReply) Validate(validate *validator.Validate) error {
	nr.Content = core.CleanString(nr.Content)
	return validate.Struct(nr)
}

// PostPatch lists the stored post fields an update may change. nil fields are left untouched.
type PostPatch struct {
	Title     *string
	Content   *string
	IsPinned  *bool
	IsDeleted *bool
	DeletedAt *time.Time
	UpdatedAt time.Time
}

func (p PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.IsPinned != nil {
		post.IsPinned = *p.IsPinned
	}
	if p.IsDeleted != nil {
		post.IsDeleted = *p.IsDeleted
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		post.DeletedAt = &t
	}
	if !p.UpdatedAt.IsZero() {
		post.UpdatedAt = p.UpdatedAt
	}
}

type ReplyPatch struct {
	Content   *string
	IsDeleted *bool
	DeletedAt *time.Time
	UpdatedAt time.Time
}

func (p ReplyPatch) Apply(r *Reply) {
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.IsDeleted != nil {
		r.IsDeleted = *p.IsDeleted
	}
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		r.DeletedAt = &t
	}
	if !p.UpdatedAt.IsZero() {
		r.UpdatedAt = p.UpdatedAt
	}
}
