package providers

import (
	"context"
	"path/filepath"
	"time"

	"github.com/samber/do/v2"

	"github.com/angelarchive/archive-server/internal/backup"
	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/logger"
)

const (
	backupInterval  = 24 * time.Hour
	backupRetention = 7
)

// BackupJob runs the daily database backup.
type BackupJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *BackupJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideBackupJob starts the scheduled backup loop.
func ProvideBackupJob(i do.Injector) (*BackupJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := backup.New(storeHandle.Store, filepath.Join(cfg.Data.BasePath, "backups"), backupRetention, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	job := &BackupJob{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(job.done)
		ticker := time.NewTicker(backupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := svc.Create(ctx); err != nil {
					log.Error("Scheduled backup failed", "error", err)
				}
			}
		}
	}()

	log.Info("Backup job started", "interval", backupInterval)
	return job, nil
}
