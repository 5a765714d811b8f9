package model

import (
	"github.com/google/uuid"
)

// Known role names. Stored upper-cased; lookups normalize first.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Role is reference data: created lazily, never deleted by this service.
type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"uniqueIndex;not null"`
}
