package images

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uploadPart builds a parsed multipart file part the way handlers
// receive it from FormFile.
func uploadPart(t *testing.T, filename, contentType string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="image"; filename="` + filename + `"`}
	h["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/feed/post", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	file, header, err := req.FormFile("image")
	require.NoError(t, err)
	return file, header
}

func TestSaveAndServe(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	file, header := uploadPart(t, "pic.png", "image/png", []byte("png-bytes"))
	defer file.Close()

	path, err := st.Save(file, header)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Contains(t, path, "pic.png")
}

func TestSaveRejectsNonImage(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	file, header := uploadPart(t, "notes.txt", "text/plain", []byte("hello"))
	defer file.Close()

	_, err = st.Save(file, header)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	// nothing may reach disk for a rejected upload
	entries, err := os.ReadDir(st.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveIsDetachedBestEffort(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	file, header := uploadPart(t, "pic.jpg", "image/jpeg", []byte("jpg-bytes"))
	defer file.Close()

	path, err := st.Save(file, header)
	require.NoError(t, err)

	st.Remove(path)
	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	// removing a missing file or an empty reference must not panic
	st.Remove(path)
	st.Remove("")
}

func TestSaveTwiceYieldsDistinctNames(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	var paths []string
	for i := 0; i < 2; i++ {
		file, header := uploadPart(t, "pic.png", "image/png", []byte("png"))
		path, err := st.Save(file, header)
		file.Close()
		require.NoError(t, err)
		paths = append(paths, path)
		time.Sleep(time.Millisecond)
	}
	assert.NotEqual(t, paths[0], paths[1])
}
