package store

import (
	"context"
	"time"

	"github.com/learnify/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InsertCourse maps a unique-index violation on slug to models.ErrDuplicateSlug.
func (db *DB) InsertCourse(ctx context.Context, course *models.Course) error {
	_, err := db.Courses().InsertOne(ctx, course, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateSlug
	}
	return err
}

func (db *DB) CourseByID(ctx context.Context, id string) (*models.Course, error) {
	return findOne[models.Course](ctx, db.Courses(), bson.M{"_id": id}, models.ErrCourseNotFound)
}

func (db *DB) CourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	return findOne[models.Course](ctx, db.Courses(), bson.M{"slug": slug}, models.ErrCourseNotFound)
}

// ListCourses returns courses sorted by rating, highest first, newest first on ties.
func (db *DB) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	q := bson.M{}
	if filter.InstructorID != "" {
		q["instructorId"] = filter.InstructorID
	}
	sort := bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}
	return findAll[models.Course](ctx, db.Courses(), q, options.Find().SetSort(sort))
}

// UpdateCourse writes the editable fields of course. Slug, rating and ownership are not touched.
func (db *DB) UpdateCourse(ctx context.Context, course *models.Course) error {
	set := bson.M{
		"title":        course.Title,
		"description":  course.Description,
		"thumbnailRef": course.ThumbnailRef,
		"language":     course.Language,
		"level":        course.Level,
		"categoryId":   course.CategoryID,
		"price":        course.Price,
		"tags":         course.Tags,
		"isPublished":  course.IsPublished,
		"updatedAt":    time.Now().UTC(),
	}
	res, err := db.Courses().UpdateOne(ctx, bson.M{"_id": course.ID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrCourseNotFound
	}
	return nil
}
