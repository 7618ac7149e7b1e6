package id

import "github.com/google/uuid"

// UUIDGenerator issues random order ids. Unlike a timestamp-derived id, two
// orders placed in the same millisecond cannot collide.
type UUIDGenerator struct{}

func NewUUIDGenerator() UUIDGenerator { return UUIDGenerator{} }

func (UUIDGenerator) NewID() string { return uuid.NewString() }
