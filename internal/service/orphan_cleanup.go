package service

import (
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/internal/storage"
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrphanCleanup periodically removes blobs no file record points at. These
// are left behind when the process dies between the blob and metadata writes
// of an upload
func OrphanCleanup(ctx context.Context, t, grace time.Duration, db *gorm.DB, store storage.Store) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Orphan cleanup attached", zap.Duration("tick_every", t), zap.Duration("grace", grace))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := SweepOrphans(ctx, db, store, grace)
				if err != nil {
					zap.L().Error("Failed to sweep orphaned blobs", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Info("Removed orphaned blobs", zap.Int("count", n))
				}
			}
		}
	}()
}

// SweepOrphans does a single pass. Blobs younger than grace are skipped since
// their upload might still be writing the metadata row. Keys not generated by
// Upload are never touched, the bucket might be shared
func SweepOrphans(ctx context.Context, db *gorm.DB, store storage.Store, grace time.Duration) (int, error) {
	objects, err := store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-grace)

	var candidates []string
	for _, o := range objects {
		if isServiceKey(o.Key) && o.LastModified.Before(cutoff) {
			candidates = append(candidates, o.Key)
		}
	}

	if len(candidates) == 0 {
		return 0, nil
	}

	var known []string

	err = db.WithContext(ctx).
		Model(model.File{}).
		Where("storage_key IN ?", candidates).
		Pluck("storage_key", &known).
		Error
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{}, len(known))
	for _, k := range known {
		referenced[k] = struct{}{}
	}

	removed := 0
	for _, key := range candidates {
		if _, ok := referenced[key]; ok {
			continue
		}

		if err := store.Delete(ctx, key); err != nil {
			zap.L().Error("Failed to delete orphaned blob", zap.String("key", key), zap.Error(err))
			continue
		}

		zap.L().Debug("Deleted orphaned blob", zap.String("key", key))
		removed++
	}

	return removed, nil
}
