package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSave(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	content := []byte{0x89, 'P', 'N', 'G'}
	path, err := store.Save(fileHeader(t, "pic.png", "image/png", content))
	require.NoError(t, err)
	require.Equal(t, store.Dir, filepath.Dir(path))
	require.Equal(t, ".png", filepath.Ext(path))

	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, content, stored)

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestSave_RejectsType(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(fileHeader(t, "notes.txt", "text/plain", []byte("hello")))
	require.ErrorIs(t, err, ErrFileType)

	_, err = store.Save(fileHeader(t, "page.html", "text/html", []byte("<html>")))
	require.ErrorIs(t, err, ErrFileType)
}

func TestSave_RejectsOversize(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	big := bytes.Repeat([]byte{0xff}, MaxFileSize+1)
	_, err = store.Save(fileHeader(t, "big.jpg", "image/jpeg", big))
	require.ErrorIs(t, err, ErrFileTooLarge)

	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	require.Empty(t, entries, "rejected upload must not be written")
}
