package validators

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxFileSize is the biggest accepted upload, 3 MiB
	MaxFileSize = 3 << 20

	maxFileNameSize = 245
)

// AllowedFileTypes are the office formats ops users can share (pptx, docx, xlsx)
var AllowedFileTypes = []string{
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

var (
	ErrFileTooLarge        = errors.New("File size exceeds the maximum limit of 3 MB.")
	ErrFileTypeUnsupported = errors.New("Invalid file type. Only pptx, docx, and xlsx files are allowed.")
	ErrFileContentMismatch = errors.New("File content does not match an allowed format (pptx, docx, xlsx).")
	ErrFileNameTooLong     = errors.New("file name is too long")
	ErrFileNameEmpty       = errors.New("file name can't be empty")
	ErrNoFile              = errors.New("no file provided")
)

// FileValidator checks an uploaded office document. On success the returned
// file is open and rewound, the caller has to close it
func FileValidator(fh *multipart.FileHeader) (int, multipart.File, error) {
	if fh == nil {
		return http.StatusBadRequest, nil, ErrNoFile
	}

	// Check headers first which is easy to spoof, but faster for legit clients
	if !slices.Contains(AllowedFileTypes, fh.Header.Get("Content-Type")) {
		return http.StatusBadRequest, nil, ErrFileTypeUnsupported
	}

	if fh.Filename == "" {
		return http.StatusBadRequest, nil, ErrFileNameEmpty
	}

	if len(fh.Filename) > maxFileNameSize {
		return http.StatusBadRequest, nil, ErrFileNameTooLong
	}

	if fh.Size > MaxFileSize {
		return http.StatusBadRequest, nil, ErrFileTooLarge
	}

	// And now do the checks on the actual file to avoid
	// malicious clients
	f, err := fh.Open()
	if err != nil {
		return http.StatusInternalServerError, nil, err
	}

	code, err := checkContent(f)
	if err != nil {
		f.Close()
		return code, nil, err
	}

	return 0, f, nil
}

func checkContent(f multipart.File) (int, error) {
	mime, err := mimetype.DetectReader(f)
	if err != nil {
		return http.StatusInternalServerError, err
	}

	if !isOfficeContainer(mime) {
		return http.StatusBadRequest, ErrFileContentMismatch
	}

	// The header size can lie, make sure there's really nothing past the limit
	if _, err := f.Seek(MaxFileSize, io.SeekStart); err != nil {
		return http.StatusInternalServerError, err
	}

	buf := make([]byte, 1)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return http.StatusInternalServerError, err
	}

	if n > 0 {
		return http.StatusBadRequest, ErrFileTooLarge
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return http.StatusInternalServerError, err
	}

	return 0, nil
}

// OOXML documents are zip archives. Depending on the archive layout the
// detector either names the exact office type or stops at zip
func isOfficeContainer(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return true
		}

		for _, t := range AllowedFileTypes {
			if m.Is(t) {
				return true
			}
		}
	}

	return false
}
