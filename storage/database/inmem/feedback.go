package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/darasa/core/feedback"
)

type feedbackRepository struct {
	db *DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo *feedbackRepository) UpsertFeedback(_ context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.feedback.mutex.Lock()
	defer repo.db.feedback.mutex.Unlock()

	for _, existing := range repo.db.feedback.rows {
		if existing.UserID == fb.UserID && existing.CourseID == fb.CourseID {
			existing.Rating = fb.Rating
			existing.Comment = fb.Comment
			existing.UpdatedAt = fb.UpdatedAt
			return *existing, nil
		}
	}
	fb.ID = newID()
	stored := fb
	repo.db.feedback.rows[fb.ID] = &stored
	return fb, nil
}

func (repo *feedbackRepository) GetFeedbackByID(_ context.Context, id string) (feedback.Feedback, error) {
	repo.db.feedback.mutex.RLock()
	defer repo.db.feedback.mutex.RUnlock()

	if fb, ok := repo.db.feedback.rows[id]; ok {
		return *fb, nil
	}
	return feedback.Feedback{}, feedback.ErrNotFound
}

func (repo *feedbackRepository) QueryFeedback(_ context.Context, courseID string) ([]feedback.Feedback, error) {
	repo.db.feedback.mutex.RLock()
	defer repo.db.feedback.mutex.RUnlock()

	fbs := repo.db.feedback.all(func(fb *feedback.Feedback) bool { return fb.CourseID == courseID })
	sortRows(fbs, func(a, b feedback.Feedback) int {
		if c := compareTime(b.CreatedAt, a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return fbs, nil
}

func (repo *feedbackRepository) SummarizeFeedback(_ context.Context, courseID string) (feedback.Summary, error) {
	repo.db.feedback.mutex.RLock()
	defer repo.db.feedback.mutex.RUnlock()

	var sum feedback.Summary
	total := 0
	for _, fb := range repo.db.feedback.rows {
		if fb.CourseID == courseID {
			sum.Count++
			total += fb.Rating
		}
	}
	if sum.Count > 0 {
		sum.Average = float64(total) / float64(sum.Count)
	}
	return sum, nil
}

func (repo *feedbackRepository) UpdateFeedback(_ context.Context, id string, patch feedback.Patch) (feedback.Feedback, error) {
	repo.db.feedback.mutex.Lock()
	defer repo.db.feedback.mutex.Unlock()

	fb, ok := repo.db.feedback.rows[id]
	if !ok {
		return feedback.Feedback{}, feedback.ErrNotFound
	}
	patch.Apply(fb)
	return *fb, nil
}

func (repo *feedbackRepository) DeleteFeedback(_ context.Context, id string) error {
	repo.db.feedback.mutex.Lock()
	defer repo.db.feedback.mutex.Unlock()

	if _, ok := repo.db.feedback.rows[id]; !ok {
		return feedback.ErrNotFound
	}
	delete(repo.db.feedback.rows, id)
	return nil
}
