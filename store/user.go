package store

import (
	"context"
	"time"

	"github.com/learnify/backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserByExternalID returns models.ErrUserNotFound when no profile is linked to extID.
func (db *DB) UserByExternalID(ctx context.Context, extID string) (*models.UserProfile, error) {
	return findOne[models.UserProfile](ctx, db.Users(), bson.M{"externalAuthId": extID}, models.ErrUserNotFound)
}

func (db *DB) CreateUser(ctx context.Context, user *models.UserProfile) error {
	_, err := db.Users().InsertOne(ctx, user, options.InsertOne())
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateUser
	}
	return err
}

// UpdateUser overwrites the provider-sourced fields of the profile linked to user.ExternalAuthID.
func (db *DB) UpdateUser(ctx context.Context, user *models.UserProfile) error {
	set := bson.M{
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"email":     user.Email,
		"role":      user.Role,
		"bio":       user.Bio,
		"updatedAt": time.Now().UTC(),
	}
	res, err := db.Users().UpdateOne(ctx, bson.M{"externalAuthId": user.ExternalAuthID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
