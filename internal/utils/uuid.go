package utils

import "github.com/google/uuid"

// UUIDGenerator mints string identifiers. Version 7 UUIDs are preferred for
// their time-ordered prefix; when the randomness source fails the generator
// falls back to version 4.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
