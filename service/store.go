package service

import (
	"context"

	"github.com/learnify/backend/identity"
	"github.com/learnify/backend/models"
)

// CourseStore is implemented by store.DB and memstore.Store.
type CourseStore interface {
	InsertCourse(ctx context.Context, course *models.Course) error
	CourseByID(ctx context.Context, id string) (*models.Course, error)
	CourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
}

type ContentStore interface {
	SectionsByCourse(ctx context.Context, courseID string) ([]models.Section, error)
	SectionByID(ctx context.Context, id string) (*models.Section, error)
	LecturesBySection(ctx context.Context, sectionID string) ([]models.Lecture, error)
	LecturesBySections(ctx context.Context, sectionIDs []string) ([]models.Lecture, error)
	InsertSection(ctx context.Context, s *models.Section) error
	InsertLecture(ctx context.Context, l *models.Lecture) error
	RenameSection(ctx context.Context, courseID, sectionID, title string) error
	UpdateLecture(ctx context.Context, l *models.Lecture) error
	ReorderSections(ctx context.Context, courseID string, sections []models.Section) error
	ReorderLectures(ctx context.Context, sectionID string, lectures []models.Lecture) error
	DeleteSection(ctx context.Context, courseID, sectionID string, remaining []models.Section) error
	DeleteLecture(ctx context.Context, sectionID, lectureID string, remaining []models.Lecture) error
}

type UserStore interface {
	UserByExternalID(ctx context.Context, extID string) (*models.UserProfile, error)
	CreateUser(ctx context.Context, user *models.UserProfile) error
	UpdateUser(ctx context.Context, user *models.UserProfile) error
}

// ProfileWriter updates the identity provider's copy of a profile.
type ProfileWriter interface {
	UpdateUser(ctx context.Context, userID string, upd identity.ProfileUpdate) error
}

// RoleInvalidator drops cached role claims.
type RoleInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}
