package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/angelarchive/archive-server/internal/audit"
)

// auditRecord carries the authenticated user ID from requireAuth back out to
// the audit middleware, which runs outside it.
type auditRecord struct {
	userID string
}

const contextKeyAudit contextKey = "audit_record"

func auditRecordFrom(ctx context.Context) *auditRecord {
	if rec, ok := ctx.Value(contextKeyAudit).(*auditRecord); ok {
		return rec
	}
	return nil
}

// recordAudit writes one audit log entry per API request. Failures are
// logged and never block the response.
func (s *Server) recordAudit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auditLog == nil || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &auditRecord{}
		ctx := context.WithValue(r.Context(), contextKeyAudit, rec)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		entry := &audit.Entry{
			UserID:    rec.userID,
			Method:    r.Method,
			Path:      r.URL.Path,
			Status:    ww.Status(),
			LatencyMs: time.Since(start).Milliseconds(),
			RemoteIP:  clientIP(r),
		}
		if err := s.auditLog.Record(r.Context(), entry); err != nil {
			s.logger.Error("Failed to record audit entry", "error", err)
		}
	})
}

// clientIP returns the request's client address without the port.
// middleware.RealIP has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
