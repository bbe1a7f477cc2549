package models

import "strconv"

// EntityID identifies an entity within one store. IDs start at 1 and are
// never reused.
type EntityID uint64

// NilEntity is the zero value; no live entity has this ID.
const NilEntity EntityID = 0

// Valid reports whether id could name an entity.
func (id EntityID) Valid() bool {
	return id != NilEntity
}

func (id EntityID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
