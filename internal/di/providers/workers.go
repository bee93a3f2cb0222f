package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/angelarchive/archive-server/internal/logger"
)

const (
	cleanupInterval = time.Hour
	auditRetention  = 90 * 24 * time.Hour
)

// CleanupJob periodically removes expired sessions and prunes old audit
// entries.
type CleanupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *CleanupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideCleanupJob starts the background cleanup loop.
func ProvideCleanupJob(i do.Injector) (*CleanupJob, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	auditHandle := do.MustInvoke[*AuditLogHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())
	job := &CleanupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := storeHandle.DeleteExpiredSessions(ctx); err != nil {
					log.Error("Session cleanup failed", "error", err)
				} else if n > 0 {
					log.Info("Expired sessions removed", "count", n)
				}

				if n, err := auditHandle.Prune(ctx, time.Now().Add(-auditRetention)); err != nil {
					log.Error("Audit prune failed", "error", err)
				} else if n > 0 {
					log.Info("Old audit entries pruned", "count", n)
				}
			}
		}
	}()

	log.Info("Cleanup job started", "interval", cleanupInterval)
	return job, nil
}
