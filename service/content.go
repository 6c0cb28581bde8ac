package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/learnify/backend/models"
)

// ContentService keeps sections and lectures densely ordered. Every mutation
// that changes positions rewrites all sibling orders in one store call.
type ContentService struct {
	courses CourseStore
	store   ContentStore
	newID   func() string
}

func NewContentService(courses CourseStore, store ContentStore) *ContentService {
	return &ContentService{courses: courses, store: store, newID: uuid.NewString}
}

// Authorize loads the course and checks that actor may edit it.
func (s *ContentService) Authorize(ctx context.Context, actor Actor, courseID string) (*models.Course, error) {
	c, err := s.courses.CourseByID(ctx, courseID)
	if err != nil {
		return nil, models.Upstream("failed to fetch course", err)
	}
	if err := actor.CanEdit(c); err != nil {
		return nil, err
	}
	return c, nil
}

// AuthorizeSection resolves the course owning sectionID and checks actor against it.
func (s *ContentService) AuthorizeSection(ctx context.Context, actor Actor, sectionID string) (*models.Section, error) {
	sec, err := s.store.SectionByID(ctx, sectionID)
	if err != nil {
		return nil, models.Upstream("failed to fetch section", err)
	}
	if _, err := s.Authorize(ctx, actor, sec.CourseID); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *ContentService) Outline(ctx context.Context, courseID string) ([]models.SectionOutline, error) {
	sections, err := s.store.SectionsByCourse(ctx, courseID)
	if err != nil {
		return nil, models.Upstream("failed to fetch sections", err)
	}
	ids := make([]string, len(sections))
	for i, sec := range sections {
		ids[i] = sec.ID
	}
	lectures, err := s.store.LecturesBySections(ctx, ids)
	if err != nil {
		return nil, models.Upstream("failed to fetch lectures", err)
	}
	bySection := make(map[string][]models.Lecture, len(sections))
	for _, l := range lectures {
		bySection[l.SectionID] = append(bySection[l.SectionID], l)
	}
	out := make([]models.SectionOutline, len(sections))
	for i, sec := range sections {
		ls := bySection[sec.ID]
		if ls == nil {
			ls = []models.Lecture{}
		}
		out[i] = models.SectionOutline{Section: sec, Lectures: ls}
	}
	return out, nil
}

// AddSection appends a section at order = current section count.
func (s *ContentService) AddSection(ctx context.Context, courseID, title string) (*models.Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, models.Validation("section title is required")
	}
	if _, err := s.courses.CourseByID(ctx, courseID); err != nil {
		return nil, models.Upstream("failed to fetch course", err)
	}
	siblings, err := s.store.SectionsByCourse(ctx, courseID)
	if err != nil {
		return nil, models.Upstream("failed to fetch sections", err)
	}
	sec := &models.Section{ID: s.newID(), CourseID: courseID, Title: title, Order: len(siblings)}
	if err := s.store.InsertSection(ctx, sec); err != nil {
		return nil, models.Upstream("failed to create section", err)
	}
	return sec, nil
}

// AddLecture appends a lecture at order = current lecture count in the section.
func (s *ContentService) AddLecture(ctx context.Context, sectionID string, in models.LectureInput) (*models.Lecture, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, models.Validation("lecture title is required")
	}
	if _, err := s.store.SectionByID(ctx, sectionID); err != nil {
		return nil, models.Upstream("failed to fetch section", err)
	}
	l := &models.Lecture{ID: s.newID(), SectionID: sectionID, Type: models.LectureVideo}
	if err := in.Apply(l); err != nil {
		return nil, err
	}
	siblings, err := s.store.LecturesBySection(ctx, sectionID)
	if err != nil {
		return nil, models.Upstream("failed to fetch lectures", err)
	}
	l.Order = len(siblings)
	if err := s.store.InsertLecture(ctx, l); err != nil {
		return nil, models.Upstream("failed to create lecture", err)
	}
	return l, nil
}

func (s *ContentService) RenameSection(ctx context.Context, courseID, sectionID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Validation("section title is required")
	}
	if err := s.store.RenameSection(ctx, courseID, sectionID, title); err != nil {
		return models.Upstream("failed to rename section", err)
	}
	return nil
}

func (s *ContentService) UpdateLecture(ctx context.Context, sectionID, lectureID string, in models.LectureInput) (*models.Lecture, error) {
	lectures, err := s.store.LecturesBySection(ctx, sectionID)
	if err != nil {
		return nil, models.Upstream("failed to fetch lectures", err)
	}
	for _, l := range lectures {
		if l.ID != lectureID {
			continue
		}
		if err := in.Apply(&l); err != nil {
			return nil, err
		}
		if err := s.store.UpdateLecture(ctx, &l); err != nil {
			return nil, models.Upstream("failed to update lecture", err)
		}
		return &l, nil
	}
	return nil, models.ErrLectureNotFound
}

// MoveSection swaps a section with its neighbor. A move past either end
// returns the current order without writing.
func (s *ContentService) MoveSection(ctx context.Context, courseID, sectionID string, dir models.Direction) ([]models.Section, error) {
	sections, err := s.store.SectionsByCourse(ctx, courseID)
	if err != nil {
		return nil, models.Upstream("failed to fetch sections", err)
	}
	next, moved, err := moveSection(sections, sectionID, dir)
	if err != nil || !moved {
		return next, err
	}
	if err := s.store.ReorderSections(ctx, courseID, next); err != nil {
		return nil, models.Upstream("failed to reorder sections", err)
	}
	return next, nil
}

func (s *ContentService) MoveLecture(ctx context.Context, sectionID, lectureID string, dir models.Direction) ([]models.Lecture, error) {
	lectures, err := s.store.LecturesBySection(ctx, sectionID)
	if err != nil {
		return nil, models.Upstream("failed to fetch lectures", err)
	}
	next, moved, err := moveLecture(lectures, lectureID, dir)
	if err != nil || !moved {
		return next, err
	}
	if err := s.store.ReorderLectures(ctx, sectionID, next); err != nil {
		return nil, models.Upstream("failed to reorder lectures", err)
	}
	return next, nil
}

// DeleteSection removes the section with all of its lectures and closes the gap.
func (s *ContentService) DeleteSection(ctx context.Context, courseID, sectionID string) error {
	sections, err := s.store.SectionsByCourse(ctx, courseID)
	if err != nil {
		return models.Upstream("failed to fetch sections", err)
	}
	remaining, found := withoutSection(sections, sectionID)
	if !found {
		return models.ErrSectionNotFound
	}
	if err := s.store.DeleteSection(ctx, courseID, sectionID, remaining); err != nil {
		return models.Upstream("failed to delete section", err)
	}
	return nil
}

func (s *ContentService) DeleteLecture(ctx context.Context, sectionID, lectureID string) error {
	lectures, err := s.store.LecturesBySection(ctx, sectionID)
	if err != nil {
		return models.Upstream("failed to fetch lectures", err)
	}
	remaining, found := withoutLecture(lectures, lectureID)
	if !found {
		return models.ErrLectureNotFound
	}
	if err := s.store.DeleteLecture(ctx, sectionID, lectureID, remaining); err != nil {
		return models.Upstream("failed to delete lecture", err)
	}
	return nil
}
