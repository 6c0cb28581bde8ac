package store

import (
	"context"

	"github.com/learnify/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var byOrder = options.Find().SetSort(bson.D{{Key: "order", Value: 1}})

func (db *DB) SectionsByCourse(ctx context.Context, courseID string) ([]models.Section, error) {
	return findAll[models.Section](ctx, db.Sections(), bson.M{"courseId": courseID}, byOrder)
}

func (db *DB) SectionByID(ctx context.Context, id string) (*models.Section, error) {
	return findOne[models.Section](ctx, db.Sections(), bson.M{"_id": id}, models.ErrSectionNotFound)
}

func (db *DB) LecturesBySection(ctx context.Context, sectionID string) ([]models.Lecture, error) {
	return findAll[models.Lecture](ctx, db.Lectures(), bson.M{"sectionId": sectionID}, byOrder)
}

func (db *DB) LecturesBySections(ctx context.Context, sectionIDs []string) ([]models.Lecture, error) {
	if len(sectionIDs) == 0 {
		return []models.Lecture{}, nil
	}
	sort := options.Find().SetSort(bson.D{{Key: "sectionId", Value: 1}, {Key: "order", Value: 1}})
	return findAll[models.Lecture](ctx, db.Lectures(), bson.M{"sectionId": bson.M{"$in": sectionIDs}}, sort)
}

func (db *DB) InsertSection(ctx context.Context, s *models.Section) error {
	_, err := db.Sections().InsertOne(ctx, s)
	return err
}

func (db *DB) InsertLecture(ctx context.Context, l *models.Lecture) error {
	_, err := db.Lectures().InsertOne(ctx, l)
	return err
}

func (db *DB) RenameSection(ctx context.Context, courseID, sectionID, title string) error {
	res, err := db.Sections().UpdateOne(ctx,
		bson.M{"_id": sectionID, "courseId": courseID},
		bson.M{"$set": bson.M{"title": title}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrSectionNotFound
	}
	return nil
}

// UpdateLecture writes the editable fields of l. Order and parent are left to the reorder paths.
func (db *DB) UpdateLecture(ctx context.Context, l *models.Lecture) error {
	set := bson.M{
		"title":      l.Title,
		"type":       l.Type,
		"contentRef": l.ContentRef,
		"duration":   l.Duration,
		"isPreview":  l.IsPreview,
	}
	res, err := db.Lectures().UpdateOne(ctx, bson.M{"_id": l.ID, "sectionId": l.SectionID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrLectureNotFound
	}
	return nil
}

// ReorderSections writes every section's order field in one batch scoped to courseID.
func (db *DB) ReorderSections(ctx context.Context, courseID string, sections []models.Section) error {
	return db.atomic(ctx, func(ctx context.Context) error {
		return writeSectionOrder(ctx, db.Sections(), courseID, sections)
	})
}

// ReorderLectures writes every lecture's order field in one batch scoped to sectionID.
func (db *DB) ReorderLectures(ctx context.Context, sectionID string, lectures []models.Lecture) error {
	return db.atomic(ctx, func(ctx context.Context) error {
		return writeLectureOrder(ctx, db.Lectures(), sectionID, lectures)
	})
}

// DeleteSection removes the section and its lectures, then writes the remaining order.
func (db *DB) DeleteSection(ctx context.Context, courseID, sectionID string, remaining []models.Section) error {
	return db.atomic(ctx, func(ctx context.Context) error {
		res, err := db.Sections().DeleteOne(ctx, bson.M{"_id": sectionID, "courseId": courseID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return models.ErrSectionNotFound
		}
		if _, err := db.Lectures().DeleteMany(ctx, bson.M{"sectionId": sectionID}); err != nil {
			return err
		}
		return writeSectionOrder(ctx, db.Sections(), courseID, remaining)
	})
}

func (db *DB) DeleteLecture(ctx context.Context, sectionID, lectureID string, remaining []models.Lecture) error {
	return db.atomic(ctx, func(ctx context.Context) error {
		res, err := db.Lectures().DeleteOne(ctx, bson.M{"_id": lectureID, "sectionId": sectionID})
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return models.ErrLectureNotFound
		}
		return writeLectureOrder(ctx, db.Lectures(), sectionID, remaining)
	})
}

func writeSectionOrder(ctx context.Context, coll *mongo.Collection, courseID string, sections []models.Section) error {
	writes := make([]mongo.WriteModel, 0, len(sections))
	for _, s := range sections {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": s.ID, "courseId": courseID}).
			SetUpdate(bson.M{"$set": bson.M{"order": s.Order}}))
	}
	return bulk(ctx, coll, writes)
}

func writeLectureOrder(ctx context.Context, coll *mongo.Collection, sectionID string, lectures []models.Lecture) error {
	writes := make([]mongo.WriteModel, 0, len(lectures))
	for _, l := range lectures {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": l.ID, "sectionId": sectionID}).
			SetUpdate(bson.M{"$set": bson.M{"order": l.Order}}))
	}
	return bulk(ctx, coll, writes)
}

func bulk(ctx context.Context, coll *mongo.Collection, writes []mongo.WriteModel) error {
	if len(writes) == 0 {
		return nil
	}
	_, err := coll.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
	return err
}
