package service

import (
	"bitwise74/secure-file-ops/db"
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/internal/storage"
	"bitwise74/secure-file-ops/pkg/security"
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	d, err := db.New("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return d
}

func newTestFiles(t *testing.T, d *gorm.DB, store storage.Store) *Files {
	t.Helper()

	codec, err := security.NewCodec("test-encryption-secret")
	require.NoError(t, err)

	return NewFiles(d, store, codec, "http://files.test/")
}

func newLocalStore(t *testing.T) *storage.Local {
	t.Helper()

	l, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	return l
}

func createUser(t *testing.T, d *gorm.DB, email, role string) *model.User {
	t.Helper()

	u, err := NewDirectory(d).Create(context.Background(), email, "hash", role)
	require.NoError(t, err)
	return u
}

func upload(t *testing.T, f *Files, u *model.User, name string, data []byte) *model.File {
	t.Helper()

	rec, err := f.Upload(context.Background(), UploadInput{
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    name,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Uploader:    u,
	})
	require.NoError(t, err)
	return rec
}

// failingStore fails whatever operation has an error set and otherwise
// forwards to the wrapped store
type failingStore struct {
	storage.Store
	putErr error
	getErr error
}

func (f *failingStore) Put(ctx context.Context, key string, r io.Reader, size int64, ct string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Store.Put(ctx, key, r, size, ct)
}

func (f *failingStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	if f.getErr != nil {
		return nil, 0, f.getErr
	}
	return f.Store.Get(ctx, key)
}

var errBoom = errors.New("boom")
