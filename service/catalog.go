package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/learnify/backend/models"
	"github.com/learnify/backend/utils"
)

type CatalogService struct {
	store CourseStore
	now   func() time.Time
	newID func() string
}

func NewCatalogService(store CourseStore) *CatalogService {
	return &CatalogService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// CreateCourse validates in, derives the slug and inserts the course with default
// publication and rating fields. A slug collision returns models.ErrDuplicateSlug.
func (s *CatalogService) CreateCourse(ctx context.Context, in models.CourseInput) (*models.Course, error) {
	level, err := in.Validate()
	if err != nil {
		return nil, err
	}
	slug, err := s.SlugFor(ctx, in.Title, in.Slug)
	if err != nil {
		return nil, err
	}
	course := &models.Course{
		ID:            s.newID(),
		Title:         strings.TrimSpace(in.Title),
		Slug:          slug,
		Description:   strings.TrimSpace(in.Description),
		ThumbnailRef:  strings.TrimSpace(in.Thumbnail),
		Language:      strings.TrimSpace(in.Language),
		Level:         level,
		CategoryID:    strings.TrimSpace(in.CategoryID),
		InstructorID:  strings.TrimSpace(in.InstructorID),
		Price:         *in.Price,
		Tags:          models.CleanTags(in.Tags),
		IsPublished:   true,
		Rating:        0,
		TotalDuration: 0,
		CreatedAt:     s.now(),
	}
	if err := s.store.InsertCourse(ctx, course); err != nil {
		return nil, models.Upstream("failed to create course", err)
	}
	return course, nil
}

// SlugFor normalizes an explicit slug or derives one from title, and fails if
// it is empty or already taken. The multipart flow calls it before uploading.
func (s *CatalogService) SlugFor(ctx context.Context, title, slug string) (string, error) {
	if strings.TrimSpace(slug) == "" {
		slug = title
	}
	slug = utils.Slugify(slug)
	if slug == "" {
		return "", models.Validation("title must contain at least one letter or digit")
	}
	_, err := s.store.CourseBySlug(ctx, slug)
	switch {
	case err == nil:
		return "", models.ErrDuplicateSlug
	case errors.Is(err, models.ErrCourseNotFound):
		return slug, nil
	default:
		return "", models.Upstream("failed to check slug", err)
	}
}

// ListCourses returns courses by rating, highest first, optionally for one instructor.
func (s *CatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.store.ListCourses(ctx, filter)
	if err != nil {
		return nil, models.Upstream("failed to fetch courses", err)
	}
	return courses, nil
}

func (s *CatalogService) CoursesByInstructor(ctx context.Context, instructorID string) ([]models.Course, error) {
	instructorID = strings.TrimSpace(instructorID)
	if instructorID == "" {
		return nil, models.ErrMissingParameter
	}
	return s.ListCourses(ctx, models.CourseFilter{InstructorID: instructorID})
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	c, err := s.store.CourseByID(ctx, id)
	if err != nil {
		return nil, models.Upstream("failed to fetch course", err)
	}
	return c, nil
}

// UpdateCourse applies a partial edit after checking that actor owns the course.
func (s *CatalogService) UpdateCourse(ctx context.Context, actor Actor, id string, upd models.CourseUpdate) (*models.Course, error) {
	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := actor.CanEdit(c); err != nil {
		return nil, err
	}
	if err := upd.Apply(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	if err := s.store.UpdateCourse(ctx, c); err != nil {
		return nil, models.Upstream("failed to update course", err)
	}
	return c, nil
}

// Actor is the caller of an ownership-checked operation.
// Courses may name their instructor by local profile id or by external user id.
type Actor struct {
	ProfileID  string
	ExternalID string
	Role       models.Role
}

// CanEdit allows admins and the owning instructor.
func (a Actor) CanEdit(c *models.Course) error {
	if a.Role == models.RoleAdmin {
		return nil
	}
	if a.Role != models.RoleInstructor || c.InstructorID == "" {
		return models.Forbidden("you do not own this course")
	}
	if c.InstructorID == a.ProfileID || c.InstructorID == a.ExternalID {
		return nil
	}
	return models.Forbidden("you do not own this course")
}
