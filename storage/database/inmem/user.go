package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
)

var userOrderings = map[string]func(a, b user.User) int{
	"first_name": func(a, b user.User) int { return strings.Compare(a.FirstName, b.FirstName) },
	"last_name":  func(a, b user.User) int { return strings.Compare(a.LastName, b.LastName) },
	"email":      func(a, b user.User) int { return strings.Compare(a.Email, b.Email) },
	"role":       func(a, b user.User) int { return strings.Compare(string(a.Role), string(b.Role)) },
	"created_at": func(a, b user.User) int { return compareTime(a.CreatedAt, b.CreatedAt) },
	"updated_at": func(a, b user.User) int { return compareTime(a.UpdatedAt, b.UpdatedAt) },
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedIDs ...string) error {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	for _, usr := range repo.db.user.rows {
		if usr.Email == email && !contains(excludedIDs, usr.ID) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.user.mutex.Lock()
	defer repo.db.user.mutex.Unlock()

	usr.ID = newID()
	usr.Version = 0
	repo.db.user.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	if usr, ok := repo.db.user.rows[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	for _, usr := range repo.db.user.rows {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	users := repo.db.user.all(func(usr *user.User) bool {
		if filter.Search != "" &&
			!containsFold(usr.FirstName, filter.Search) &&
			!containsFold(usr.LastName, filter.Search) &&
			!containsFold(usr.Email, filter.Search) {
			return false
		}
		return len(filter.Roles) == 0 || usr.Role.In(filter.Roles...)
	})
	orderRows(users, ordering, userOrderings, func(a, b user.User) int {
		if c := compareTime(a.CreatedAt, b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return users, nil
}

func (repo *userRepository) CountUsersByRole(_ context.Context, role auth.Role) (int, error) {
	repo.db.user.mutex.RLock()
	defer repo.db.user.mutex.RUnlock()

	var n int
	for _, usr := range repo.db.user.rows {
		if usr.Role == role {
			n++
		}
	}
	return n, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, id string, patch user.Patch) (user.User, error) {
	repo.db.user.mutex.Lock()
	defer repo.db.user.mutex.Unlock()

	usr, ok := repo.db.user.rows[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	patch.Apply(usr)
	usr.Version++
	return *usr, nil
}

func (repo *userRepository) UpdateUserWithVersion(_ context.Context, id string, version int, patch user.Patch) (user.User, error) {
	repo.db.user.mutex.Lock()
	defer repo.db.user.mutex.Unlock()

	usr, ok := repo.db.user.rows[id]
	if !ok || usr.Version != version {
		return user.User{}, user.ErrNotFound
	}
	patch.Apply(usr)
	usr.Version++
	return *usr, nil
}

// DeleteUser also removes what the user owns and unassigns the courses they teach, like the SQL schema's
// foreign keys do.
func (repo *userRepository) DeleteUser(_ context.Context, id string) error {
	db := repo.db
	db.user.mutex.Lock()
	defer db.user.mutex.Unlock()

	if _, ok := db.user.rows[id]; !ok {
		return user.ErrNotFound
	}
	delete(db.user.rows, id)

	db.course.mutex.Lock()
	for _, c := range db.course.rows {
		if c.IsInstructor(id) {
			c.InstructorID = nil
		}
	}
	db.course.mutex.Unlock()

	db.detail.mutex.Lock()
	for _, d := range db.detail.rows {
		if d.CreatedBy == id {
			d.CreatedBy = ""
		}
	}
	db.detail.mutex.Unlock()

	db.enrollment.mutex.Lock()
	db.enrollment.deleteWhere(func(e *enrollment.Enrollment) bool { return e.StudentID == id })
	db.enrollment.mutex.Unlock()

	db.feedback.mutex.Lock()
	db.feedback.deleteWhere(func(fb *feedback.Feedback) bool { return fb.UserID == id })
	db.feedback.mutex.Unlock()

	db.post.mutex.Lock()
	db.reply.mutex.Lock()
	postIDs := db.post.deleteWhere(func(p *discussion.Post) bool { return p.UserID == id })
	db.reply.deleteWhere(func(r *discussion.Reply) bool { return r.UserID == id || contains(postIDs, r.PostID) })
	db.reply.mutex.Unlock()
	db.post.mutex.Unlock()

	return nil
}
