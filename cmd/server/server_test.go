package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"example.com/feedapp/internal/images"
	"example.com/feedapp/internal/models"
	"example.com/feedapp/internal/password"
	"example.com/feedapp/internal/realtime"
	"example.com/feedapp/internal/store"
	"example.com/feedapp/internal/token"
)

//
// --- Setup test server ---
//

type testEnv struct {
	srv    *Server
	ts     *httptest.Server
	store  *store.MockStore
	events *realtime.MockEmitter
	tokens *token.Service
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	mockStore := store.NewMock()
	events := realtime.NewMockEmitter()
	imgs, err := images.New(t.TempDir())
	require.NoError(t, err)
	tokens := token.New("test-secret", time.Hour)

	s := &Server{
		store:  mockStore,
		tokens: tokens,
		events: events,
		hasher: password.NewBcryptHasher(4), // low cost keeps tests fast
		images: imgs,
	}

	ts := httptest.NewServer(s.router(nil))
	t.Cleanup(ts.Close)

	return &testEnv{srv: s, ts: ts, store: mockStore, events: events, tokens: tokens}
}

//
// --- Helpers ---
//

// createTestUser seeds a user directly in the store and returns its id
// with a valid bearer token.
func createTestUser(t *testing.T, env *testEnv, email, name string) (string, string) {
	t.Helper()

	hash, err := env.srv.hasher.Hash("secret-pw")
	require.NoError(t, err)

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Status:       models.DefaultStatus,
		Posts:        []string{},
		Created:      time.Now(),
	}
	require.NoError(t, env.store.CreateUser(user))

	tok, _, err := env.tokens.Issue(token.Identity{UserID: user.ID, Email: email})
	require.NoError(t, err)
	return user.ID, tok
}

// sendJSON performs a JSON request, checks the status and decodes the
// response body into a generic map.
func sendJSON(t *testing.T, method, url string, body any, bearer string, wantStatus int) map[string]any {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status, body: %s", raw)

	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return decoded
}

// multipartBody builds a multipart form with post fields and an
// optional image part.
func multipartBody(t *testing.T, fields map[string]string, imageName, imageType string, imageData []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="image"; filename="` + imageName + `"`}
		h["Content-Type"] = []string{imageType}
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(imageData)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// sendMultipart performs a multipart request and decodes the response.
func sendMultipart(t *testing.T, method, url string, fields map[string]string, imageName, imageType string, bearer string, wantStatus int) map[string]any {
	t.Helper()

	body, contentType := multipartBody(t, fields, imageName, imageType, []byte("image-bytes"))
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "unexpected status, body: %s", raw)

	decoded := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return decoded
}

// createTestPost drives the real create endpoint and returns the new
// post id.
func createTestPost(t *testing.T, env *testEnv, bearer, title, content string) string {
	t.Helper()

	resp := sendMultipart(t, http.MethodPost, env.ts.URL+"/feed/post",
		map[string]string{"title": title, "content": content},
		"pic.png", "image/png", bearer, http.StatusCreated)

	post, ok := resp["post"].(map[string]any)
	require.True(t, ok, "response missing post: %v", resp)
	id, ok := post["_id"].(string)
	require.True(t, ok)
	return id
}
