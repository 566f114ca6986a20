package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client           *mongo.Client
	DB               *mongo.Database
	colAnnouncements *mongo.Collection
	colTeachers      *mongo.Collection
}

func NewStore(ctx context.Context, uri, dbname string) (*Store, error) {
	cli, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetRetryWrites(true).
		SetMaxPoolSize(50),
	)
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := cli.Database(dbname)
	return &Store{
		Client:           cli,
		DB:               db,
		colAnnouncements: db.Collection("announcements"),
		colTeachers:      db.Collection("teachers"),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error { return s.Client.Disconnect(ctx) }

// EnsureIndexes covers the two read paths: the active-window scan filters on
// expiration_date, the full listing sorts on created_at. Teachers are keyed
// by _id (username), so no extra index there.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.colAnnouncements.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expiration_date", Value: 1}},
			Options: options.Index().SetName("expiration_asc"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_desc"),
		},
	})
	return err
}

// маленький хелпер — чтобы не тащить import options в каждую функцию
func optionsFind() *options.FindOptions { return options.Find() }
