package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/schoolhub/announcement-service/internal/domain"
)

var ErrNotFound = errors.New("not found")

// AnnouncementPatch carries the mutable fields of a partial update.
// nil = поле не трогаем (absent in the request body).
type AnnouncementPatch struct {
	Message        *string
	StartDate      *string
	ExpirationDate *string
}

// Empty reports whether the patch would change nothing.
func (p AnnouncementPatch) Empty() bool {
	return p.Message == nil && p.StartDate == nil && p.ExpirationDate == nil
}

func (s *Store) InsertAnnouncement(ctx context.Context, a *domain.Announcement) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.announcement.insert",
		tracer.Tag("created_by", a.CreatedBy),
	)
	defer sp.Finish()

	a.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.colAnnouncements.InsertOne(ctx, a)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return nil
}

// ListActive returns announcements whose window is open on the given day
// (lexical YYYY-MM-DD). Mongo narrows by expiration_date; the start_date
// check stays in the loop because the field may be absent entirely.
// Cursor order is whatever the collection yields — callers must not rely on it.
func (s *Store) ListActive(ctx context.Context, today string) ([]domain.Announcement, error) {
	cur, err := s.colAnnouncements.Find(ctx, bson.M{
		"expiration_date": bson.M{"$gte": today},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Announcement{}
	for cur.Next(ctx) {
		var a domain.Announcement
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		if a.StartDate != nil && *a.StartDate > today {
			continue
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

// ListAll returns every announcement, newest first by created_at.
func (s *Store) ListAll(ctx context.Context) ([]domain.Announcement, error) {
	cur, err := s.colAnnouncements.Find(ctx, bson.M{},
		optionsFind().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []domain.Announcement{}
	for cur.Next(ctx) {
		var a domain.Announcement
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

func (s *Store) FindAnnouncement(ctx context.Context, id primitive.ObjectID) (*domain.Announcement, error) {
	var a domain.Announcement
	err := s.colAnnouncements.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &a, err
}

// UpdateAnnouncement applies the non-nil patch fields. ErrNotFound when no
// document matched; fields absent from the patch are left untouched.
func (s *Store) UpdateAnnouncement(ctx context.Context, id primitive.ObjectID, p AnnouncementPatch) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.announcement.update",
		tracer.Tag("announcement_id", id.Hex()),
	)
	defer sp.Finish()

	set := bson.M{}
	if p.Message != nil {
		set["message"] = *p.Message
	}
	if p.StartDate != nil {
		set["start_date"] = *p.StartDate
	}
	if p.ExpirationDate != nil {
		set["expiration_date"] = *p.ExpirationDate
	}

	res, err := s.colAnnouncements.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAnnouncement hard-removes the document. ErrNotFound when nothing matched.
func (s *Store) DeleteAnnouncement(ctx context.Context, id primitive.ObjectID) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.announcement.delete",
		tracer.Tag("announcement_id", id.Hex()),
	)
	defer sp.Finish()

	res, err := s.colAnnouncements.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
