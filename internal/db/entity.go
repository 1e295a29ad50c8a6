package db

import (
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const ContentTypeJSON = "application/json"

type Entity struct {
	Key               string
	Owner             string
	ContentType       string
	Payload           []byte
	StringAttributes  map[string]string
	NumericAttributes map[string]uint64
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// EntityCreate describes a new entity. ExpiresIn is relative to the write time.
type EntityCreate struct {
	Payload           []byte
	ContentType       string
	StringAttributes  map[string]string
	NumericAttributes map[string]uint64
	ExpiresIn         time.Duration
}

type EntityPage struct {
	Entities      []*Entity
	NextPageToken string
}

// NewEntityKey returns a random 32 byte key in 0x-prefixed hex form
func NewEntityKey() string {
	id := uuid.New()
	return crypto.Keccak256Hash(id[:]).Hex()
}

func (e *Entity) StringAttribute(key string) (string, bool) {
	v, ok := e.StringAttributes[key]
	return v, ok
}

func (e *Entity) NumericAttribute(key string) (uint64, bool) {
	v, ok := e.NumericAttributes[key]
	return v, ok
}

func (e *Entity) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !e.ExpiresAt.After(now)
}
