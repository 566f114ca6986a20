package domain

// Teacher lives in the teacher directory collection, keyed by username.
// The announcement service only ever checks that a record exists.
type Teacher struct {
	Username    string `bson:"_id" json:"username"`
	DisplayName string `bson:"display_name" json:"display_name"`
	Role        string `bson:"role,omitempty" json:"role,omitempty"`
}
