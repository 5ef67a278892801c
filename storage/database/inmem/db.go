package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/coursedetail"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
)

// DB is an in-memory store. When a write spans several tables, they are locked in field order.
type (
	DB struct {
		user       *table[user.User]
		course     *table[course.Course]
		detail     *table[coursedetail.CourseDetail]
		enrollment *table[enrollment.Enrollment]
		feedback   *table[feedback.Feedback]
		post       *table[discussion.Post]
		reply      *table[discussion.Reply]
	}

	table[T any] struct {
		rows  map[string]*T
		mutex sync.RWMutex
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func Open() *DB {
	return &DB{
		user:       newTable[user.User](),
		course:     newTable[course.Course](),
		detail:     newTable[coursedetail.CourseDetail](),
		enrollment: newTable[enrollment.Enrollment](),
		feedback:   newTable[feedback.Feedback](),
		post:       newTable[discussion.Post](),
		reply:      newTable[discussion.Reply](),
	}
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.user.reset()
	db.course.reset()
	db.detail.reset()
	db.enrollment.reset()
	db.feedback.reset()
	db.post.reset()
	db.reply.reset()
}

func (t *table[T]) reset() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.rows = make(map[string]*T)
}

// all returns copies of the rows matching keep. Callers must hold the lock.
func (t *table[T]) all(keep func(*T) bool) []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r) {
			rows = append(rows, *r)
		}
	}
	return rows
}

// deleteWhere removes the rows matching match and returns their ids. Callers must hold the write lock.
func (t *table[T]) deleteWhere(match func(*T) bool) []string {
	var ids []string
	for id, r := range t.rows {
		if match(r) {
			delete(t.rows, id)
			ids = append(ids, id)
		}
	}
	return ids
}

func newID() string {
	return uuid.NewString()
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func contains(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// orderRows sorts rows following ordering; fields missing from cmps are ignored. fallback breaks ties.
func orderRows[T any](rows []T, ordering []core.DBOrdering, cmps map[string]func(a, b T) int, fallback func(a, b T) int) {
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := cmps[ord.Field]
			if !ok {
				continue
			}
			c := cmp(rows[i], rows[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return fallback(rows[i], rows[j]) < 0
	})
}

func sortRows[T any](rows []T, cmp func(a, b T) int) {
	sort.SliceStable(rows, func(i, j int) bool { return cmp(rows[i], rows[j]) < 0 })
}
