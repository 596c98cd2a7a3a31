package models

import (
	"time"

	"github.com/google/uuid"
)

// DataLakeVersion identifies one independently rooted snapshot of the data
// lake. Versions are created administratively and never auto-deleted;
// IsActive is advisory only and does not affect access resolution.
type DataLakeVersion struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	RootPath  string    `json:"root_path"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
