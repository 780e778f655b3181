package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/addictsagenda/agenda/internal/registry"
)

// StartOrphanCleaner periodically removes vault rows whose key is no
// longer part of the registry, leftovers written by app versions whose
// domains have since been retired. Runs until ctx is cancelled.
func StartOrphanCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM vault_entries
                     WHERE key <> ALL($1)
                `, pq.Array(registry.Keys()))
				if err != nil {
					log.Error("failed to clean orphaned vault entries", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned orphaned vault entries", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
