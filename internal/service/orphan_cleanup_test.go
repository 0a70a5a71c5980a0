package service

import (
	"bitwise74/secure-file-ops/internal/model"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepOrphans(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	store := newLocalStore(t)
	f := newTestFiles(t, d, store)
	rec := upload(t, f, createUser(t, d, "ops@example.com", model.RoleOps), "kept.xlsx", []byte("x"))

	orphan := uuid.NewString() + ".docx"
	require.NoError(t, store.Put(ctx, orphan, strings.NewReader("y"), 1, ""))

	// Everything is old enough with a negative grace
	n, err := SweepOrphans(ctx, d, store, -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	objects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, rec.StorageKey, objects[0].Key)
}

func TestSweepOrphansRespectsGrace(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	store := newLocalStore(t)

	require.NoError(t, store.Put(ctx, uuid.NewString()+".docx", strings.NewReader("y"), 1, ""))

	n, err := SweepOrphans(ctx, d, store, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	objects, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 1)
}

func TestOrphanCleanupStopsWithContext(t *testing.T) {
	d := newTestDB(t)
	store := newLocalStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, store.Put(ctx, uuid.NewString()+".pptx", strings.NewReader("z"), 1, ""))

	OrphanCleanup(ctx, 10*time.Millisecond, -time.Minute, d, store)

	assert.Eventually(t, func() bool {
		objects, err := store.List(context.Background())
		return err == nil && len(objects) == 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
}

func TestSweepOrphansLeavesForeignKeys(t *testing.T) {
	ctx := context.Background()
	d := newTestDB(t)
	store := newLocalStore(t)

	foreign := []string{
		"backup-2026.tar",
		strings.ToUpper(uuid.NewString()) + ".docx",
		uuid.NewString() + ".tar.gz",
		uuid.NewString() + "-copy",
	}
	for _, key := range foreign {
		require.NoError(t, store.Put(ctx, key, strings.NewReader("f"), 1, ""))
	}

	n, err := SweepOrphans(ctx, d, store, -time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)

	objects, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, len(foreign))
}

func TestIsServiceKey(t *testing.T) {
	id := uuid.NewString()

	assert.True(t, isServiceKey(id))
	assert.True(t, isServiceKey(storageKey(id, "report.XLSX")))
	assert.False(t, isServiceKey("backup-2026.tar"))
	assert.False(t, isServiceKey(id+".tar.gz"))
	assert.False(t, isServiceKey(strings.ToUpper(id)))
}
