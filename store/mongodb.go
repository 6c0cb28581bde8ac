package store

import (
	"context"
	"errors"
	"time"

	"github.com/learnify/backend/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
	// Transactions wraps multi-document writes in a session transaction.
	// Requires a replica set; standalone servers fall back to ordered bulk writes.
	Transactions bool
}

func NewMongoDB(ctx context.Context, uri, dbName string, log *logger.Logger) (*DB, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	log.Info("connected to mongodb", "db", dbName)
	return &DB{
		Client:       client,
		Database:     client.Database(dbName),
		Transactions: true,
	}, nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection("users")
}

func (db *DB) Courses() *mongo.Collection {
	return db.Database.Collection("courses")
}

func (db *DB) Sections() *mongo.Collection {
	return db.Database.Collection("sections")
}

func (db *DB) Lectures() *mongo.Collection {
	return db.Database.Collection("lectures")
}

func (db *DB) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return db.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and lookup indexes the services rely on.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	specs := []struct {
		coll *mongo.Collection
		idx  mongo.IndexModel
	}{
		{db.Users(), mongo.IndexModel{Keys: bson.D{{Key: "externalAuthId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{db.Courses(), mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{db.Courses(), mongo.IndexModel{Keys: bson.D{{Key: "instructorId", Value: 1}, {Key: "rating", Value: -1}}}},
		{db.Courses(), mongo.IndexModel{Keys: bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}}}},
		// order is not unique: a swap passes through a transient duplicate inside the batch.
		{db.Sections(), mongo.IndexModel{Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "order", Value: 1}}}},
		{db.Lectures(), mongo.IndexModel{Keys: bson.D{{Key: "sectionId", Value: 1}, {Key: "order", Value: 1}}}},
	}
	for _, s := range specs {
		if _, err := s.coll.Indexes().CreateOne(ctx, s.idx); err != nil {
			return err
		}
	}
	return nil
}

// Health reports the database name and its collection names.
func (db *DB) Health(ctx context.Context) (string, []string, error) {
	if err := db.Client.Ping(ctx, readpref.Primary()); err != nil {
		return "", nil, err
	}
	names, err := db.Database.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return "", nil, err
	}
	return db.Database.Name(), names, nil
}

// atomic runs fn inside a transaction when enabled, otherwise directly.
func (db *DB) atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if !db.Transactions {
		return fn(ctx)
	}
	sess, err := db.Client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, notFound error) (*T, error) {
	var v T
	err := coll.FindOne(ctx, filter).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
