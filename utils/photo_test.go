package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="photo"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["photo"]) > 0 {
		fileHeader := form.File["photo"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidatePhotoFile_Success(t *testing.T) {
	content := []byte("fake png content")

	for _, filename := range []string{"latte.png", "latte.jpg", "latte.jpeg", "LATTE.PNG"} {
		fileHeader := createTestFileHeader(filename, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		err := ValidatePhotoFile(fileHeader)
		assert.NoError(t, err, "filename %s should be accepted", filename)
	}
}

func TestValidatePhotoFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 6*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidatePhotoFile(fileHeader)
	assert.Error(t, err)

	uploadErr, ok := err.(*PhotoUploadError)
	require.True(t, ok, "Error should be of type PhotoUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", uploadErr.Code)
	assert.Contains(t, uploadErr.Message, "File size exceeds maximum allowed size")
}

func TestValidatePhotoFile_InvalidFormat(t *testing.T) {
	content := []byte("%PDF")

	for _, filename := range []string{"menu.pdf", "menu.gif", "menu", "menu.png.exe"} {
		fileHeader := createTestFileHeader(filename, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		err := ValidatePhotoFile(fileHeader)
		require.Error(t, err, "filename %s should be rejected", filename)

		uploadErr, ok := err.(*PhotoUploadError)
		require.True(t, ok, "Error should be of type PhotoUploadError")
		assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	}
}

func TestPhotoContentType(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"latte.png", "image/png"},
		{"latte.jpg", "image/jpeg"},
		{"latte.jpeg", "image/jpeg"},
		{"latte.JPG", "image/jpeg"},
		{"mystery.bin", "image/png"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, PhotoContentType(tt.filename))
		})
	}
}
