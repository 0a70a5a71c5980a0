package validators

import (
	"archive/zip"
	"bytes"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func officeDoc(t *testing.T, padding int) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range []string{"[Content_Types].xml", "xl/workbook.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<xml/>"))
		require.NoError(t, err)
	}

	if padding > 0 {
		// Stored so the archive really grows by padding bytes
		w, err := zw.CreateHeader(&zip.FileHeader{Name: "xl/media/pad.bin", Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write(bytes.Repeat([]byte{0x5a}, padding))
		require.NoError(t, err)
	}

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func fileHeader(t *testing.T, name, contentType string, data []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)

	w, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	return form.File["file"][0]
}

func TestFileValidatorAccepts(t *testing.T) {
	data := officeDoc(t, 10*1024)
	fh := fileHeader(t, "report.xlsx", xlsxType, data)

	code, f, err := FileValidator(fh)
	require.NoError(t, err)
	assert.Zero(t, code)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, data, got, "file must be rewound")
}

func TestFileValidatorRejectsType(t *testing.T) {
	fh := fileHeader(t, "setup.exe", "application/x-msdownload", []byte("MZ..."))

	code, _, err := FileValidator(fh)
	assert.Equal(t, 400, code)
	assert.ErrorIs(t, err, ErrFileTypeUnsupported)
	assert.Contains(t, err.Error(), "pptx, docx, and xlsx")
}

func TestFileValidatorRejectsSpoofedContent(t *testing.T) {
	fh := fileHeader(t, "report.xlsx", xlsxType, []byte("just some plain text pretending"))

	code, _, err := FileValidator(fh)
	assert.Equal(t, 400, code)
	assert.ErrorIs(t, err, ErrFileContentMismatch)
}

func TestFileValidatorRejectsOversize(t *testing.T) {
	fh := fileHeader(t, "big.xlsx", xlsxType, officeDoc(t, MaxFileSize))

	code, _, err := FileValidator(fh)
	assert.Equal(t, 400, code)
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "3 MB")
}

func TestFileValidatorRejectsLongName(t *testing.T) {
	fh := fileHeader(t, strings.Repeat("a", 250)+".xlsx", xlsxType, officeDoc(t, 0))

	_, _, err := FileValidator(fh)
	assert.ErrorIs(t, err, ErrFileNameTooLong)
}

func TestFileValidatorNil(t *testing.T) {
	code, _, err := FileValidator(nil)
	assert.Equal(t, 400, code)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("user@example.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Bob <bob@example.com>"), ErrEmailInvalid)
}

func TestPasswordValidator(t *testing.T) {
	assert.NoError(t, PasswordValidator("TestPassword123!"))
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("123"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("a1", 200)), ErrPasswordTooLong)
	assert.ErrorIs(t, PasswordValidator("onlyletters"), ErrPasswordWeak)
	assert.ErrorIs(t, PasswordValidator("12345678"), ErrPasswordWeak)
}

func TestRoleValidator(t *testing.T) {
	assert.NoError(t, RoleValidator("ops"))
	assert.NoError(t, RoleValidator("client"))
	assert.ErrorIs(t, RoleValidator("invalid_role"), ErrRoleInvalid)
	assert.ErrorIs(t, RoleValidator("OPS"), ErrRoleInvalid)
}
