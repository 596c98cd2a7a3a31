package middleware

import (
	"bytes"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/lakegate-inc/lakegate-engine/pkg/auth"
	"github.com/lakegate-inc/lakegate-engine/pkg/models"
	"github.com/lakegate-inc/lakegate-engine/pkg/repositories"
)

// maxAuditBody bounds how much of a request body is captured in the audit
// trail.
const maxAuditBody = 4096

// RequestAudit returns middleware that records one request-audit entry per
// authenticated request. The entry is written before the handler runs;
// write failures are logged and never block the request.
func RequestAudit(audit repositories.AuditRepository, logger *zap.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal := auth.GetPrincipal(r.Context())
			if principal != "" {
				entry := &models.RequestAuditEntry{
					Principal: principal,
					Path:      r.URL.Path,
					Method:    r.Method,
					Body:      captureBody(r),
				}
				if err := audit.CreateRequestEntry(r.Context(), entry); err != nil {
					logger.Error("Failed to record request audit entry",
						zap.String("principal", principal),
						zap.String("path", r.URL.Path),
						zap.Error(err))
				}
			}

			next(w, r)
		}
	}
}

// captureBody reads up to maxAuditBody bytes of the request body and
// restores the body so the handler can still consume it.
func captureBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxAuditBody))
	_ = r.Body.Close()
	if err != nil {
		return ""
	}

	r.Body = io.NopCloser(bytes.NewReader(data))
	return string(data)
}
