package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/schoolhub/announcement-service/internal/domain"
)

// TeacherExists is the whole of the credential check: the caller is trusted
// iff a directory record with that username exists. Later deletion of the
// teacher does not cascade to announcements they created.
func (s *Store) TeacherExists(ctx context.Context, username string) (bool, error) {
	err := s.colTeachers.FindOne(ctx, bson.M{"_id": username}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) InsertTeacher(ctx context.Context, t *domain.Teacher) error {
	_, err := s.colTeachers.InsertOne(ctx, t)
	return err
}
