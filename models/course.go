package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Level is the difficulty of a course.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

var ValidLevels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

func ParseLevel(raw string) (Level, error) {
	s := Level(strings.ToLower(strings.TrimSpace(raw)))
	for _, l := range ValidLevels {
		if l == s {
			return l, nil
		}
	}
	return "", Validation(fmt.Sprintf("invalid level %q; use beginner, intermediate, or advanced", raw))
}

const MaxRating = 5

type Course struct {
	ID            string    `bson:"_id" json:"id"`
	Title         string    `bson:"title" json:"title"`
	Slug          string    `bson:"slug" json:"slug"`
	Description   string    `bson:"description" json:"description"`
	ThumbnailRef  string    `bson:"thumbnailRef" json:"thumbnail"`
	Language      string    `bson:"language" json:"language"`
	Level         Level     `bson:"level" json:"level"`
	CategoryID    string    `bson:"categoryId" json:"categoryId"`
	InstructorID  string    `bson:"instructorId" json:"instructorId"`
	Price         float64   `bson:"price" json:"price"`
	Tags          []string  `bson:"tags" json:"tags"`
	IsPublished   bool      `bson:"isPublished" json:"isPublished"`
	Rating        float64   `bson:"rating" json:"rating"`
	TotalDuration int       `bson:"totalDuration" json:"totalDuration"` // minutes
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// CourseInput is a course creation request after transport decoding.
// Price is a pointer so an absent price can be told apart from zero.
type CourseInput struct {
	Title        string
	Slug         string
	Description  string
	Thumbnail    string
	Language     string
	Level        string
	CategoryID   string
	InstructorID string
	Price        *float64
	Tags         []string
}

// Validate checks required fields and ranges. It does not touch the slug.
func (in *CourseInput) Validate() (Level, error) {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"title", in.Title},
		{"description", in.Description},
		{"thumbnail", in.Thumbnail},
		{"language", in.Language},
		{"level", in.Level},
		{"categoryId", in.CategoryID},
		{"instructorId", in.InstructorID},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return "", Validation("all fields are required except tags; missing: " + strings.Join(missing, ", "))
	}
	if !validPrice(*in.Price) {
		return "", Validation("price must be a non-negative number")
	}
	return ParseLevel(in.Level)
}

// validPrice rejects negatives and the NaN and Inf values strconv.ParseFloat accepts.
func validPrice(p float64) bool {
	return p >= 0 && !math.IsInf(p, 1)
}

// CourseUpdate is a partial edit; nil fields are left unchanged.
type CourseUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Thumbnail   *string   `json:"thumbnail,omitempty"`
	Language    *string   `json:"language,omitempty"`
	Level       *string   `json:"level,omitempty"`
	CategoryID  *string   `json:"categoryId,omitempty"`
	Price       *float64  `json:"price,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	IsPublished *bool     `json:"isPublished,omitempty"`
}

// Apply validates u and writes its fields onto c.
func (u *CourseUpdate) Apply(c *Course) error {
	nonEmpty := func(name string, v *string, dst *string) error {
		if v == nil {
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			return Validation(name + " cannot be empty")
		}
		*dst = strings.TrimSpace(*v)
		return nil
	}
	if err := nonEmpty("title", u.Title, &c.Title); err != nil {
		return err
	}
	if err := nonEmpty("description", u.Description, &c.Description); err != nil {
		return err
	}
	if err := nonEmpty("thumbnail", u.Thumbnail, &c.ThumbnailRef); err != nil {
		return err
	}
	if err := nonEmpty("language", u.Language, &c.Language); err != nil {
		return err
	}
	if err := nonEmpty("categoryId", u.CategoryID, &c.CategoryID); err != nil {
		return err
	}
	if u.Level != nil {
		lvl, err := ParseLevel(*u.Level)
		if err != nil {
			return err
		}
		c.Level = lvl
	}
	if u.Price != nil {
		if !validPrice(*u.Price) {
			return Validation("price must be a non-negative number")
		}
		c.Price = *u.Price
	}
	if u.Tags != nil {
		c.Tags = CleanTags(*u.Tags)
	}
	if u.IsPublished != nil {
		c.IsPublished = *u.IsPublished
	}
	return nil
}

// CleanTags trims tags and drops empties and duplicates, keeping first-seen order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// CourseFilter narrows a listing. Empty fields do not filter.
type CourseFilter struct {
	InstructorID string
}
