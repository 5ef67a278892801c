package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
)

const userColumns = "id, first_name, last_name, email, role, password_hash, version, created_at, updated_at"

type userRow struct {
	ID           string    `db:"id"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	PasswordHash []byte    `db:"password_hash"`
	Version      int       `db:"version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Role:         auth.Role(r.Role),
		PasswordHash: r.PasswordHash,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type userRepository struct {
	exec sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec sqlx.ExtContext) *userRepository {
	return &userRepository{exec: exec}
}

func (repo *userRepository) get(ctx context.Context, q string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		if isNoRows(err) || isInvalidText(err) {
			return user.User{}, user.ErrNotFound
		}
		if isUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "querying user")
	}
	return row.user(), nil
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedIDs ...string) error {
	var where whereClause
	where.add("email = ?", email)
	if ids := validIDs(excludedIDs); len(ids) > 0 {
		where.add("id NOT IN (?)", ids)
	}
	q, args, err := build("SELECT EXISTS(SELECT 1 FROM users"+where.String()+")", where.args...)
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var exists bool
	if err = sqlx.GetContext(ctx, repo.exec, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8)
		RETURNING ` + userColumns
	return repo.get(
		ctx, q,
		newID(), usr.FirstName, usr.LastName, usr.Email, string(usr.Role), usr.PasswordHash,
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(),
	)
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	return repo.get(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.get(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	var where whereClause
	if filter.Search != "" {
		s := "%" + filter.Search + "%"
		where.add("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?)", s, s, s)
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, r := range filter.Roles {
			roles = append(roles, string(r))
		}
		where.add("role IN (?)", roles)
	}

	q, args, err := build(
		"SELECT "+userColumns+" FROM users"+where.String()+orderBy(ordering, user.OrderingFields, "created_at ASC, id ASC"),
		where.args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []userRow
	if err = sqlx.SelectContext(ctx, repo.exec, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo *userRepository) CountUsersByRole(ctx context.Context, role auth.Role) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, repo.exec, &n, "SELECT COUNT(*) FROM users WHERE role = $1", string(role)); err != nil {
		return 0, errors.Wrap(err, "counting users")
	}
	return n, nil
}

func userSetClause(patch user.Patch) *setClause {
	set := new(setClause)
	if patch.FirstName != nil {
		set.add("first_name", *patch.FirstName)
	}
	if patch.LastName != nil {
		set.add("last_name", *patch.LastName)
	}
	if patch.Email != nil {
		set.add("email", *patch.Email)
	}
	if patch.Role != nil {
		set.add("role", string(*patch.Role))
	}
	if patch.PasswordHash != nil {
		set.add("password_hash", patch.PasswordHash)
	}
	if !patch.UpdatedAt.IsZero() {
		set.add("updated_at", patch.UpdatedAt.UTC())
	}
	set.raw("version = version + 1")
	return set
}

func (repo *userRepository) UpdateUser(ctx context.Context, id string, patch user.Patch) (user.User, error) {
	set := userSetClause(patch)
	q := "UPDATE users SET " + set.String() + " WHERE id = " + set.arg(id) + " RETURNING " + userColumns
	return repo.get(ctx, q, set.args...)
}

// UpdateUserWithVersion is a single conditional UPDATE: it matches nothing if the id is unknown or the
// version moved on.
func (repo *userRepository) UpdateUserWithVersion(ctx context.Context, id string, version int, patch user.Patch) (user.User, error) {
	set := userSetClause(patch)
	q := "UPDATE users SET " + set.String() +
		" WHERE id = " + set.arg(id) + " AND version = " + set.arg(version) +
		" RETURNING " + userColumns
	return repo.get(ctx, q, set.args...)
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	res, err := repo.exec.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		if isInvalidText(err) {
			return user.ErrNotFound
		}
		return errors.Wrap(err, "deleting user")
	}
	return checkAffected(res, user.ErrNotFound)
}
