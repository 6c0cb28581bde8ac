package models

import (
	"fmt"
	"strings"
)

type LectureType string

const (
	LectureVideo      LectureType = "video"
	LecturePDF        LectureType = "pdf"
	LectureQuiz       LectureType = "quiz"
	LectureAssignment LectureType = "assignment"
)

// ParseLectureType accepts "document" as an alias of pdf.
func ParseLectureType(raw string) (LectureType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "video":
		return LectureVideo, nil
	case "pdf", "document":
		return LecturePDF, nil
	case "quiz":
		return LectureQuiz, nil
	case "assignment":
		return LectureAssignment, nil
	}
	return "", Validation(fmt.Sprintf("invalid lecture type %q; use video, pdf, quiz, or assignment", raw))
}

// Direction is a one-step move within a sibling list.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(raw string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(raw))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", Validation(fmt.Sprintf("invalid direction %q; use up or down", raw))
}

type Section struct {
	ID       string `bson:"_id" json:"id"`
	CourseID string `bson:"courseId" json:"courseId"`
	Title    string `bson:"title" json:"title"`
	Order    int    `bson:"order" json:"order"`
}

type Lecture struct {
	ID         string      `bson:"_id" json:"id"`
	SectionID  string      `bson:"sectionId" json:"sectionId"`
	Title      string      `bson:"title" json:"title"`
	Type       LectureType `bson:"type" json:"type"`
	ContentRef string      `bson:"contentRef" json:"contentUrl"`
	Duration   int         `bson:"duration" json:"duration"` // minutes
	IsPreview  bool        `bson:"isPreview" json:"isPreview"`
	Order      int         `bson:"order" json:"order"`
}

// LectureInput creates a lecture or, with nil-able fields, edits one.
type LectureInput struct {
	Title      *string `json:"title"`
	Type       *string `json:"type"`
	ContentRef *string `json:"contentUrl"`
	Duration   *int    `json:"duration"`
	IsPreview  *bool   `json:"isPreview"`
}

// Apply validates in and writes its fields onto l.
func (in *LectureInput) Apply(l *Lecture) error {
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		if t == "" {
			return Validation("lecture title cannot be empty")
		}
		l.Title = t
	}
	if in.Type != nil {
		typ, err := ParseLectureType(*in.Type)
		if err != nil {
			return err
		}
		l.Type = typ
	}
	if in.ContentRef != nil {
		l.ContentRef = strings.TrimSpace(*in.ContentRef)
	}
	if in.Duration != nil {
		if *in.Duration < 0 {
			return Validation("duration must be a non-negative number of minutes")
		}
		l.Duration = *in.Duration
	}
	if in.IsPreview != nil {
		l.IsPreview = *in.IsPreview
	}
	return nil
}

// SectionOutline is a section with its lectures, both in order.
type SectionOutline struct {
	Section
	Lectures []Lecture `json:"lectures"`
}
