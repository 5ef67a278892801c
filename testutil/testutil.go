package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
)

// Password is the password of every user created by CreateUser.
const Password = "Sup3r$ecret.Pwd"

var (
	hashOnce     sync.Once
	passwordHash []byte
	hashErr      error
)

// hash uses the cheapest bcrypt cost to keep tests fast.
func hash(t testing.TB) []byte {
	hashOnce.Do(func() {
		passwordHash, hashErr = bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	})
	if hashErr != nil {
		t.Fatalf("hashing password: %v", hashErr)
	}
	return passwordHash
}

func tstamp(createdAt []time.Time) time.Time {
	if len(createdAt) > 0 {
		return createdAt[0].UTC()
	}
	return time.Now().UTC()
}

func CreateUser(
	t testing.TB,
	repo user.Repository,
	firstName, lastName, email string,
	role auth.Role,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	ts := tstamp(createdAt)
	usr, err := repo.CreateUser(context.Background(), user.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Role:         role,
		PasswordHash: hash(t),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCourse(t testing.TB, repo course.Repository, name, code string, instructorID *string) course.Course {
	t.Helper()
	now := time.Now().UTC()
	c, err := repo.CreateCourse(context.Background(), course.Course{
		Name:         name,
		Code:         code,
		Credits:      3,
		InstructorID: instructorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return c
}

func CreateEnrollment(t testing.TB, repo enrollment.Repository, studentID, courseID string) enrollment.Enrollment {
	t.Helper()
	now := time.Now().UTC()
	enr, err := repo.CreateEnrollment(context.Background(), enrollment.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		Status:     enrollment.StatusActive,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr
}

func CreateFeedback(t testing.TB, repo feedback.Repository, userID, courseID string, rating int) feedback.Feedback {
	t.Helper()
	now := time.Now().UTC()
	fb, err := repo.UpsertFeedback(context.Background(), feedback.Feedback{
		UserID:    userID,
		CourseID:  courseID,
		Rating:    rating,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateFeedback() failed: %v", err)
	}
	return fb
}

func CreatePost(t testing.TB, repo discussion.Repository, courseID, userID, title string, createdAt ...time.Time) discussion.Post {
	t.Helper()
	ts := tstamp(createdAt)
	post, err := repo.CreatePost(context.Background(), discussion.Post{
		CourseID:  courseID,
		UserID:    userID,
		Title:     title,
		Content:   title + " content",
		CreatedAt: ts,
		UpdatedAt: ts,
	})
	if err != nil {
		t.Fatalf("CreatePost() failed: %v", err)
	}
	return post
}

func CreateReply(t testing.TB, repo discussion.Repository, postID, userID, content string) discussion.Reply {
	t.Helper()
	now := time.Now().UTC()
	r, err := repo.CreateReply(context.Background(), discussion.Reply{
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateReply() failed: %v", err)
	}
	return r
}
