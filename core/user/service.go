package user

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
)

var (
	// errors
	ErrNotFound           = errors.New("User not found")
	ErrEmailExists        = errors.New("A user with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrLastAdmin          = errors.New("Cannot delete the last admin user")
	ErrLastAdminRole      = errors.New("Cannot change the role of the last admin user")
	ErrRegistrationRole   = errors.New("Only student or faculty accounts can be registered")

	staleMsg = "User not found or has been modified by another process"
)

type (
	Repository interface {
		// CheckEmailUniqueness returns ErrEmailExists if a user, other than the excluded ones, has email.
		CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.FirstName, User.LastName or User.Email.
		QueryUsers(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error)
		CountUsersByRole(ctx context.Context, role auth.Role) (int, error)
		// UpdateUser applies patch unconditionally and bumps the user's version.
		UpdateUser(ctx context.Context, id string, patch Patch) (User, error)
		// UpdateUserWithVersion applies patch only if the stored version still equals version.
		// It returns ErrNotFound when nothing matched.
		UpdateUserWithVersion(ctx context.Context, id string, version int, patch Patch) (User, error)
		DeleteUser(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclIDs ...string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclIDs...); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create adds a user of any role. nu is expected to be validated already.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Email:     nu.Email,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Register is self-registration: admins can only be created by other admins.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if !nu.Role.In(auth.RoleStudent, auth.RoleFaculty) {
		return User{}, core.NewValidationError(
			ErrRegistrationRole,
			core.FieldError{Field: "role", Error: ErrRegistrationRole.Error()},
		)
	}
	return svc.Create(ctx, nu)
}

// Authenticate checks the user's credentials. Unknown emails and wrong passwords are reported the same way.
func (svc *Service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	filter.Clean()
	return svc.repo.QueryUsers(ctx, filter, core.AllowedOrderings(ordering, OrderingFields...)...)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// Update modifies the user. When uu.Version is set the write only happens if the stored version still
// matches it; a miss is reported as a validation error since the store can't tell a stale version from
// a missing user.
func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	uu.Clean()
	patch := Patch{
		FirstName: uu.FirstName,
		LastName:  uu.LastName,
		Email:     uu.Email,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Version == nil || uu.Role != nil {
		usr, err := svc.repo.GetUserByID(ctx, id)
		if err != nil {
			if uu.Version != nil && errors.Cause(err) == ErrNotFound {
				return User{}, core.NewValidationMsg(staleMsg)
			}
			return User{}, err
		}
		if err = svc.checkAdminDemotion(ctx, usr, uu.Role); err != nil {
			return User{}, err
		}
	}
	if uu.Email != nil {
		if err := svc.checkUniqueness(ctx, *uu.Email, id); err != nil {
			return User{}, err
		}
	}
	if uu.Password != nil {
		var tmp User
		if err := tmp.SetPassword(*uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
		patch.PasswordHash = tmp.PasswordHash
	}

	if uu.Version == nil {
		return svc.repo.UpdateUser(ctx, id, patch)
	}
	usr, err := svc.repo.UpdateUserWithVersion(ctx, id, *uu.Version, patch)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, core.NewValidationMsg(staleMsg)
		}
		return User{}, err
	}
	return usr, nil
}

// checkAdminDemotion keeps at least one admin around.
// TODO: count & update in one transaction once repositories expose one.
func (svc *Service) checkAdminDemotion(ctx context.Context, usr User, role *auth.Role) error {
	if role == nil || !usr.IsAdmin() || *role == auth.RoleAdmin {
		return nil
	}
	admins, err := svc.repo.CountUsersByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return core.NewValidationError(ErrLastAdminRole)
	}
	return nil
}

// SetPassword replaces the user's password without any other change.
func (svc *Service) SetPassword(ctx context.Context, id, pwd string) (User, error) {
	return svc.Update(ctx, id, UpdateUser{Password: &pwd})
}

// Delete removes the user. The last remaining admin can't be deleted.
// TODO: count & delete in one transaction once repositories expose one.
func (svc *Service) Delete(ctx context.Context, id string) error {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		admins, err := svc.repo.CountUsersByRole(ctx, auth.RoleAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return core.NewValidationError(ErrLastAdmin)
		}
	}
	return svc.repo.DeleteUser(ctx, id)
}
