package queue

import (
	"context"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

// Routing: exchange "announcements.events", keys "announcement.created",
// "announcement.updated", "announcement.deleted".

type AnnouncementCreated struct {
	AnnouncementID string `json:"announcement_id"`
	CreatedBy      string `json:"created_by"`
	ExpirationDate string `json:"expiration_date"`
}

type AnnouncementUpdated struct {
	AnnouncementID string `json:"announcement_id"`
	UpdatedBy      string `json:"updated_by"`
}

type AnnouncementDeleted struct {
	AnnouncementID string `json:"announcement_id"`
	DeletedBy      string `json:"deleted_by"`
}
