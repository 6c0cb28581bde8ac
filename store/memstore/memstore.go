// Package memstore is an in-process implementation of the store methods the
// services depend on. It backs STORE_DRIVER=memory and the handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/learnify/backend/models"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]models.UserProfile // keyed by externalAuthId
	courses  map[string]models.Course
	sections map[string]models.Section
	lectures map[string]models.Lecture

	// Inserts counts successful course inserts; tests use it to assert no write happened.
	Inserts int
}

func New() *Store {
	return &Store{
		users:    make(map[string]models.UserProfile),
		courses:  make(map[string]models.Course),
		sections: make(map[string]models.Section),
		lectures: make(map[string]models.Lecture),
	}
}

func (s *Store) Health(ctx context.Context) (string, []string, error) {
	return "memory", []string{"courses", "lectures", "sections", "users"}, nil
}

// Users

func (s *Store) UserByExternalID(ctx context.Context, extID string) (*models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[extID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ExternalAuthID]; ok {
		return models.ErrDuplicateUser
	}
	s.users[user.ExternalAuthID] = *user
	return nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[user.ExternalAuthID]
	if !ok {
		return models.ErrUserNotFound
	}
	cur.FirstName, cur.LastName, cur.Email = user.FirstName, user.LastName, user.Email
	cur.Role, cur.Bio = user.Role, user.Bio
	cur.UpdatedAt = time.Now().UTC()
	s.users[user.ExternalAuthID] = cur
	return nil
}

// UserCount is used by tests to check that rejected webhooks wrote nothing.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Courses

func (s *Store) InsertCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.courses {
		if c.Slug == course.Slug {
			return models.ErrDuplicateSlug
		}
	}
	s.courses[course.ID] = cloneCourse(*course)
	s.Inserts++
	return nil
}

func (s *Store) CourseByID(ctx context.Context, id string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.courses[id]
	if !ok {
		return nil, models.ErrCourseNotFound
	}
	c = cloneCourse(c)
	return &c, nil
}

func (s *Store) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.courses {
		if c.Slug == slug {
			c = cloneCourse(c)
			return &c, nil
		}
	}
	return nil, models.ErrCourseNotFound
}

func (s *Store) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Course{}
	for _, c := range s.courses {
		if filter.InstructorID != "" && c.InstructorID != filter.InstructorID {
			continue
		}
		out = append(out, cloneCourse(c))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) UpdateCourse(ctx context.Context, course *models.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.courses[course.ID]
	if !ok {
		return models.ErrCourseNotFound
	}
	next := cloneCourse(*course)
	next.Slug, next.Rating, next.InstructorID, next.CreatedAt = cur.Slug, cur.Rating, cur.InstructorID, cur.CreatedAt
	next.TotalDuration = cur.TotalDuration
	next.UpdatedAt = time.Now().UTC()
	s.courses[course.ID] = next
	return nil
}

// SetRating lets tests and seed data adjust a rating without an API.
func (s *Store) SetRating(id string, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.courses[id]; ok {
		c.Rating = rating
		s.courses[id] = c
	}
}

func cloneCourse(c models.Course) models.Course {
	c.Tags = append([]string(nil), c.Tags...)
	return c
}

// Sections and lectures

func (s *Store) SectionsByCourse(ctx context.Context, courseID string) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Section{}
	for _, sec := range s.sections {
		if sec.CourseID == courseID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *Store) SectionByID(ctx context.Context, id string) (*models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.sections[id]
	if !ok {
		return nil, models.ErrSectionNotFound
	}
	return &sec, nil
}

func (s *Store) LecturesBySection(ctx context.Context, sectionID string) ([]models.Lecture, error) {
	return s.LecturesBySections(ctx, []string{sectionID})
}

func (s *Store) LecturesBySections(ctx context.Context, sectionIDs []string) ([]models.Lecture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want := make(map[string]bool, len(sectionIDs))
	for _, id := range sectionIDs {
		want[id] = true
	}
	out := []models.Lecture{}
	for _, l := range s.lectures {
		if want[l.SectionID] {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SectionID != out[j].SectionID {
			return out[i].SectionID < out[j].SectionID
		}
		return out[i].Order < out[j].Order
	})
	return out, nil
}

func (s *Store) InsertSection(ctx context.Context, sec *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sec.ID] = *sec
	return nil
}

func (s *Store) InsertLecture(ctx context.Context, l *models.Lecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lectures[l.ID] = *l
	return nil
}

func (s *Store) RenameSection(ctx context.Context, courseID, sectionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[sectionID]
	if !ok || sec.CourseID != courseID {
		return models.ErrSectionNotFound
	}
	sec.Title = title
	s.sections[sectionID] = sec
	return nil
}

func (s *Store) UpdateLecture(ctx context.Context, l *models.Lecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.lectures[l.ID]
	if !ok || cur.SectionID != l.SectionID {
		return models.ErrLectureNotFound
	}
	l.Order = cur.Order
	s.lectures[l.ID] = *l
	return nil
}

func (s *Store) ReorderSections(ctx context.Context, courseID string, sections []models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeSectionOrder(courseID, sections)
	return nil
}

func (s *Store) ReorderLectures(ctx context.Context, sectionID string, lectures []models.Lecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeLectureOrder(sectionID, lectures)
	return nil
}

func (s *Store) DeleteSection(ctx context.Context, courseID, sectionID string, remaining []models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[sectionID]
	if !ok || sec.CourseID != courseID {
		return models.ErrSectionNotFound
	}
	delete(s.sections, sectionID)
	for id, l := range s.lectures {
		if l.SectionID == sectionID {
			delete(s.lectures, id)
		}
	}
	s.writeSectionOrder(courseID, remaining)
	return nil
}

func (s *Store) DeleteLecture(ctx context.Context, sectionID, lectureID string, remaining []models.Lecture) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lectures[lectureID]
	if !ok || l.SectionID != sectionID {
		return models.ErrLectureNotFound
	}
	delete(s.lectures, lectureID)
	s.writeLectureOrder(sectionID, remaining)
	return nil
}

func (s *Store) writeSectionOrder(courseID string, sections []models.Section) {
	for _, sec := range sections {
		if cur, ok := s.sections[sec.ID]; ok && cur.CourseID == courseID {
			cur.Order = sec.Order
			s.sections[sec.ID] = cur
		}
	}
}

func (s *Store) writeLectureOrder(sectionID string, lectures []models.Lecture) {
	for _, l := range lectures {
		if cur, ok := s.lectures[l.ID]; ok && cur.SectionID == sectionID {
			cur.Order = l.Order
			s.lectures[l.ID] = cur
		}
	}
}
