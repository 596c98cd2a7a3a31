package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessRight grants a principal read access to a dataset, optionally
// restricted to a subset of lake versions. At most one right exists per
// (principal, dataset) pair; the repository enforces this with a unique
// constraint.
type AccessRight struct {
	ID                   uuid.UUID `json:"id"`
	Principal            string    `json:"principal"`
	DatasetName          string    `json:"dataset_name"`
	AllowedVersions      []string  `json:"allowed_versions"`
	CanAccessAllVersions bool      `json:"can_access_all_versions"`
	CreatedAt            time.Time `json:"created_at"`
}

// PermitsVersion reports whether this right covers the named version.
// Dataset-level checks do not call this; the existence of the right is
// sufficient there.
func (r *AccessRight) PermitsVersion(versionName string) bool {
	if r.CanAccessAllVersions {
		return true
	}
	for _, v := range r.AllowedVersions {
		if v == versionName {
			return true
		}
	}
	return false
}
