package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Role         auth.Role `json:"role"`
	PasswordHash []byte    `json:"-"`
	Version      int       `json:"__v"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool   { return u.Role == auth.RoleAdmin }
func (u User) IsFaculty() bool { return u.Role == auth.RoleFaculty }
func (u User) IsStudent() bool { return u.Role == auth.RoleStudent }

func (u User) FullName() string {
	return core.CleanString(u.FirstName + " " + u.LastName)
}

// Identity is what gets encoded in the user's auth token.
func (u User) Identity() auth.Identity {
	return auth.Identity{
		ID:        u.ID,
		Role:      u.Role,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func (u User) LogPerson() (id, username, email string) {
	return u.ID, u.FullName(), u.Email
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	FirstName string    `json:"first_name" validate:"required,notblank,max=100"`
	LastName  string    `json:"last_name" validate:"required,notblank,max=100"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Password  string    `json:"password" validate:"required"`
	Role      auth.Role `json:"role" validate:"omitempty,role"`
}

func (nu *NewUser) Clean() {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = auth.Role(core.CleanString(string(nu.Role), true /* lower */))
	if nu.Role == "" {
		nu.Role = auth.RoleStudent
	}
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Clean()
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Version, when set, is the version the client last read; it is only ever used as the
// update predicate and never stored.
type UpdateUser struct {
	FirstName *string    `json:"first_name" validate:"omitempty,notblank,max=100"`
	LastName  *string    `json:"last_name" validate:"omitempty,notblank,max=100"`
	Email     *string    `json:"email" validate:"omitempty,email,max=254"`
	Role      *auth.Role `json:"role" validate:"omitempty,role"`
	Password  *string    `json:"password"`
	Version   *int       `json:"__v" validate:"omitempty,min=0"`
}

func (uu *UpdateUser) Clean() {
	core.CleanStringPtr(uu.FirstName)
	core.CleanStringPtr(uu.LastName)
	core.CleanStringPtr(uu.Email, true /* lower */)
	if uu.Role != nil {
		r := auth.Role(core.CleanString(string(*uu.Role), true /* lower */))
		uu.Role = &r
	}
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Clean()
	return validate.Struct(uu)
}

// Patch lists the stored fields an update may change. nil fields are left untouched.
// The version is deliberately absent: repositories bump it themselves.
type Patch struct {
	FirstName    *string
	LastName     *string
	Email        *string
	Role         *auth.Role
	PasswordHash []byte
	UpdatedAt    time.Time
}

func (p Patch) Apply(usr *User) {
	if p.FirstName != nil {
		usr.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		usr.LastName = *p.LastName
	}
	if p.Email != nil {
		usr.Email = *p.Email
	}
	if p.Role != nil {
		usr.Role = *p.Role
	}
	if p.PasswordHash != nil {
		usr.PasswordHash = p.PasswordHash
	}
	if !p.UpdatedAt.IsZero() {
		usr.UpdatedAt = p.UpdatedAt
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

type QueryFilter struct {
	Search string      `query:"search"`
	Roles  []auth.Role `query:"role"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && len(qf.Roles) == 0
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	roles := qf.Roles[:0]
	for _, r := range qf.Roles {
		if r, err := auth.ParseRole(string(r)); err == nil {
			roles = append(roles, r)
		}
	}
	qf.Roles = roles
}

// OrderingFields are the fields users can be ordered by.
var OrderingFields = []string{"first_name", "last_name", "email", "role", "created_at", "updated_at"}
