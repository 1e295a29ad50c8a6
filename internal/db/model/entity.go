package model

import "time"

const EntitiesCollection = "entities"

// EntityDocument is the stored form of a db.Entity. Numeric attributes are
// stored as int64 because bson has no unsigned 64 bit type.
type EntityDocument struct {
	Key               string            `bson:"_id"`
	Owner             string            `bson:"owner"`
	ContentType       string            `bson:"content_type"`
	Payload           []byte            `bson:"payload"`
	StringAttributes  map[string]string `bson:"string_attributes"`
	NumericAttributes map[string]int64  `bson:"numeric_attributes"`
	CreatedAt         time.Time         `bson:"created_at"`
	// expires_at carries a ttl index, mongo removes expired documents in the background
	ExpiresAt time.Time `bson:"expires_at"`
}
