package service

import (
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/internal/storage"
	"bitwise74/secure-file-ops/pkg/security"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)

// Files owns the upload, link issuing and link redemption lifecycle
type Files struct {
	DB      *gorm.DB
	Store   storage.Store
	Codec   *security.Codec
	BaseURL string
}

func NewFiles(db *gorm.DB, store storage.Store, codec *security.Codec, baseURL string) *Files {
	return &Files{
		DB:      db,
		Store:   store,
		Codec:   codec,
		BaseURL: strings.TrimRight(baseURL, "/"),
	}
}

type UploadInput struct {
	Body        io.Reader
	Size        int64
	FileName    string
	ContentType string
	Uploader    *model.User
}

type Download struct {
	Body        io.ReadCloser
	Size        int64
	FileName    string
	ContentType string
}

type Summary struct {
	FileID      string    `json:"file_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadTime  time.Time `json:"upload_time"`
	UploadedBy  string    `json:"uploaded_by"`
}

func storageKey(id, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	if !extPattern.MatchString(ext) {
		return id
	}

	return id + ext
}

// isServiceKey reports whether key has the shape storageKey produces, a
// canonical UUID optionally followed by a short lowercase extension
func isServiceKey(key string) bool {
	id, ext, hasExt := strings.Cut(key, ".")
	if hasExt && !extPattern.MatchString("."+ext) {
		return false
	}

	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}

// Upload stores the bytes first and only then writes the metadata row. If the
// row can't be written the blob is removed again, at worst an orphaned blob is
// left behind for OrphanCleanup but never a row pointing at nothing
func (f *Files) Upload(ctx context.Context, in UploadInput) (*model.File, error) {
	if in.Uploader == nil {
		return nil, errors.New("no uploader provided")
	}

	id := uuid.NewString()
	key := storageKey(id, in.FileName)

	if err := f.Store.Put(ctx, key, in.Body, in.Size, in.ContentType); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	rec := &model.File{
		ID:          id,
		FileName:    in.FileName,
		ContentType: in.ContentType,
		Size:        in.Size,
		UploadedBy:  in.Uploader.ID,
		IsActive:    true,
		UploadTime:  time.Now().UTC(),
		StorageKey:  key,
	}

	if err := f.DB.WithContext(ctx).Create(rec).Error; err != nil {
		// The request context might be what failed us, clean up regardless
		if derr := f.Store.Delete(context.Background(), key); derr != nil {
			zap.L().Error("Failed to cleanup after failed upload", zap.String("key", key), zap.Error(derr))
		} else {
			zap.L().Debug("Cleaned up after failed upload", zap.String("key", key))
		}

		return nil, fmt.Errorf("%w: failed to save file record, %w", ErrStorage, err)
	}

	return rec, nil
}

// IssueLink seals a file ID into a download URL. Whether the file exists or
// is active is only checked when the link is redeemed
func (f *Files) IssueLink(fileID string) (string, error) {
	id, err := uuid.Parse(fileID)
	if err != nil {
		return "", ErrInvalidFileID
	}

	token, err := f.Codec.Seal(id.String())
	if err != nil {
		return "", fmt.Errorf("failed to encrypt file id, %w", err)
	}

	return f.BaseURL + "/files/download/" + token, nil
}

// Redeem opens a link token and fetches the file behind it. Missing and
// inactive files both return ErrNotFound
func (f *Files) Redeem(ctx context.Context, token string) (*Download, error) {
	id, err := f.Codec.Open(token)
	if err != nil {
		return nil, ErrInvalidLink
	}

	var rec model.File

	err = f.DB.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up file, %w", err)
	}

	body, size, err := f.Store.Get(ctx, rec.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	return &Download{
		Body:        body,
		Size:        size,
		FileName:    rec.FileName,
		ContentType: rec.ContentType,
	}, nil
}

// ListActive returns every active file with its uploader's email, newest
// first. No files is an empty slice, not an error
func (f *Files) ListActive(ctx context.Context) ([]Summary, error) {
	var files []model.File

	err := f.DB.WithContext(ctx).
		Preload("Uploader").
		Where("is_active = ?", true).
		Order("upload_time desc").
		Find(&files).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list files, %w", err)
	}

	out := make([]Summary, 0, len(files))
	for _, file := range files {
		s := Summary{
			FileID:      file.ID,
			FileName:    file.FileName,
			ContentType: file.ContentType,
			Size:        file.Size,
			UploadTime:  file.UploadTime,
		}

		if file.Uploader != nil {
			s.UploadedBy = file.Uploader.Email
		}

		out = append(out, s)
	}

	return out, nil
}
