package models

import (
	"time"

	"github.com/google/uuid"
)

// Access kinds recorded in the detailed access audit trail.
const (
	AccessTypeRead         = "read"
	AccessTypeList         = "list"
	AccessTypeVersionCheck = "version_check"
)

// AccessAuditEntry records one access-control decision: who asked for what
// dataset/version, whether it was granted, and why not when it wasn't.
type AccessAuditEntry struct {
	ID          uuid.UUID `json:"id"`
	Principal   string    `json:"principal"`
	DatasetName string    `json:"dataset_name"`
	VersionName *string   `json:"version_name,omitempty"`
	AccessType  string    `json:"access_type"`
	Success     bool      `json:"success"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RequestAuditEntry is the plain per-request audit event emitted by the
// request-audit middleware for every authenticated call.
type RequestAuditEntry struct {
	ID        uuid.UUID `json:"id"`
	Principal string    `json:"principal"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
