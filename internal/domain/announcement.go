package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Announcement is a school-wide notice shown to students while its date
// window is open. Dates stay in the lexical YYYY-MM-DD form the API accepts:
// that form sorts the same as the calendar, so the window check is a plain
// string comparison.
type Announcement struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Message        string             `bson:"message" json:"message"`
	StartDate      *string            `bson:"start_date,omitempty" json:"start_date,omitempty"` // nil = always started
	ExpirationDate string             `bson:"expiration_date" json:"expiration_date"`
	CreatedBy      string             `bson:"created_by" json:"created_by"` // teacher username
	CreatedAt      string             `bson:"created_at" json:"created_at"` // RFC3339Nano, list ordering only
}
