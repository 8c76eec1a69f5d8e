package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/rule"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
	admin = "admin@example.com"
)

type server struct {
	t   *testing.T
	cfg configs.AppConfig
	e   *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()

	gin.SetMode(gin.TestMode)
	rule.Init()

	dir := t.TempDir()

	cfg := configs.Default()
	cfg.DB.Database = filepath.Join(dir, "fv")
	cfg.Storage.Mode = configs.StorageLocal
	cfg.Storage.MaxFileSize = 64
	cfg.Storage.Local.Root = filepath.Join(dir, "uploads")
	cfg.Auth.Enabled = true
	cfg.Auth.Admins = []string{admin}

	mgr, err := storage.New(context.Background(), cfg, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	deps := mgr.Deps()
	deps.Config = func() *configs.AppConfig { return &cfg }

	e := router.New(router.Options{
		Config:   cfg,
		Manager:  mgr,
		Handlers: handle.NewHandlers(deps),
	})

	return &server{t: t, cfg: cfg, e: e}
}

func (s *server) do(method, path, user string, body []byte, contentType string) *httptest.ResponseRecorder {
	s.t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if user != "" {
		req.Header.Set("X-Auth-Request-Email", user)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	w := httptest.NewRecorder()
	s.e.ServeHTTP(w, req)

	return w
}

func (s *server) json(method, path, user string, v any) *httptest.ResponseRecorder {
	s.t.Helper()

	var body []byte
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(s.t, err)

		body = b
	}

	return s.do(method, path, user, body, "application/json")
}

func (s *server) upload(user, name, mimeType, content, desired string) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	if mimeType != "" {
		h.Set("Content-Type", mimeType)
	}

	part, err := mw.CreatePart(h)
	require.NoError(s.t, err)
	_, err = part.Write([]byte(content))
	require.NoError(s.t, err)

	if desired != "" {
		require.NoError(s.t, mw.WriteField("filename", desired))
	}

	require.NoError(s.t, mw.Close())

	return s.do(http.MethodPost, "/api/v1/files/upload", user, buf.Bytes(), mw.FormDataContentType())
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	return decode[map[string]string](t, w)["code"]
}

func TestFilesFlow(t *testing.T) {
	s := newServer(t)

	w := s.upload(alice, "doc.txt", "text/plain", "hello", "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	first := decode[types.UploadFileResponse](t, w)
	assert.Equal(t, "doc.txt", first.File.Filename)
	assert.Equal(t, "/api/v1/blobs/"+first.File.OwnerID+"/doc.txt", first.URL)
	assert.Empty(t, first.File.SharedWith)

	w = s.upload(alice, "doc.txt", "text/plain", "again", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "doc (1).txt", decode[types.UploadFileResponse](t, w).File.Filename)

	// 本地下载
	w = s.do(http.MethodGet, first.URL, alice, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "doc.txt")

	w = s.do(http.MethodGet, first.URL, bob, nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	fileURL := "/api/v1/files/" + first.File.ID

	// 共享后接收者可读不可改
	w = s.json(http.MethodPost, fileURL+"/share", alice, types.ShareRequest{Email: "BOB@example.com"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.json(http.MethodPost, fileURL+"/share", alice, types.ShareRequest{Email: bob})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", errCode(t, w))

	w = s.do(http.MethodGet, first.URL, bob, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, fileURL+"/download", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "doc.txt", decode[map[string]string](t, w)["filename"])

	w = s.json(http.MethodPatch, fileURL+"/rename", bob, types.RenameFileRequest{Filename: "mine.txt"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodGet, fileURL+"/sharing", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodGet, fileURL+"/sharing", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sharing := decode[types.SharingResponse](t, w)
	require.Len(t, sharing.Recipients, 1)
	assert.Equal(t, bob, sharing.Recipients[0].Email)

	w = s.json(http.MethodGet, "/api/v1/files/shared", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[types.FileListResponse](t, w).Total)

	// 改名
	w = s.json(http.MethodPatch, fileURL+"/rename", alice, types.RenameFileRequest{Filename: "doc (1).txt"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.json(http.MethodPatch, fileURL+"/rename", alice, types.RenameFileRequest{Filename: "a/b.txt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPatch, "/api/v1/files/missing/rename", alice, types.RenameFileRequest{Filename: "a/b.txt"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(http.MethodPatch, fileURL+"/rename", alice, types.RenameFileRequest{Filename: "notes.txt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "notes.txt", decode[types.FileResponse](t, w).Filename)

	// 取消共享是幂等的
	for range 2 {
		w = s.json(http.MethodPost, fileURL+"/unshare", alice, types.ShareRequest{Email: bob})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[types.FileResponse](t, w).SharedWith)
	}

	w = s.json(http.MethodGet, fileURL, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 搜索与统计
	w = s.json(http.MethodGet, "/api/v1/files/search?q=NOTES", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[types.FileListResponse](t, w).Total)

	w = s.json(http.MethodGet, "/api/v1/files/search?q=%20", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodGet, "/api/v1/files/stats", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["files"])

	// 删除
	w = s.json(http.MethodDelete, fileURL, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodDelete, fileURL, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.json(http.MethodGet, fileURL, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, w))

	w = s.json(http.MethodGet, "/api/v1/files", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[types.FileListResponse](t, w).Total)
}

func TestUploadValidation(t *testing.T) {
	s := newServer(t)

	w := s.upload(alice, "big.bin", "application/octet-stream", string(make([]byte, 65)), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", errCode(t, w))

	w = s.upload(alice, "x.txt", "", "hi", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(alice, "x.txt", "text/plain", "hi", "bad:name.txt")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.upload(alice, "x.txt", "text/plain", "hi", "report.txt")
	require.Equal(t, http.StatusCreated, w.Code)
	got := decode[types.UploadFileResponse](t, w).File
	assert.Equal(t, "report.txt", got.Filename)
	assert.Equal(t, "x.txt", got.OriginalName)

	w = s.do(http.MethodPost, "/api/v1/files/upload", alice, nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareValidation(t *testing.T) {
	s := newServer(t)

	w := s.upload(alice, "a.txt", "text/plain", "a", "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[types.UploadFileResponse](t, w).File.ID

	w = s.json(http.MethodPost, "/api/v1/files/"+id+"/share", alice, types.ShareRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/v1/files/"+id+"/share", alice, types.ShareRequest{Email: alice})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/v1/files/"+id+"/share", alice, types.ShareRequest{Email: "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipientsHiddenFromRecipients(t *testing.T) {
	s := newServer(t)

	const carol = "carol@example.com"

	// 首次请求即注册用户
	for _, u := range []string{bob, carol} {
		require.Equal(t, http.StatusOK, s.json(http.MethodGet, "/api/v1/users/profile", u, nil).Code)
	}

	w := s.upload(alice, "doc.txt", "text/plain", "hello", "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[types.UploadFileResponse](t, w).File.ID
	fileURL := "/api/v1/files/" + id

	for _, u := range []string{bob, carol} {
		require.Equal(t, http.StatusOK, s.json(http.MethodPost, fileURL+"/share", alice, types.ShareRequest{Email: u}).Code)
	}

	w = s.json(http.MethodGet, fileURL, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[types.FileResponse](t, w).SharedWith, 2)

	w = s.json(http.MethodGet, "/api/v1/files", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	owned := decode[types.FileListResponse](t, w)
	require.Len(t, owned.Files, 1)
	assert.Len(t, owned.Files[0].SharedWith, 2)

	w = s.json(http.MethodGet, fileURL, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[types.FileResponse](t, w)
	assert.Equal(t, "doc.txt", got.Filename)
	assert.NotNil(t, got.SharedWith)
	assert.Empty(t, got.SharedWith)

	w = s.json(http.MethodGet, "/api/v1/files/shared", carol, nil)
	require.Equal(t, http.StatusOK, w.Code)
	shared := decode[types.FileListResponse](t, w)
	require.Len(t, shared.Files, 1)
	assert.Empty(t, shared.Files[0].SharedWith)
}

func TestUsers(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodGet, "/api/v1/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.json(http.MethodPost, "/api/v1/users/sync", alice, types.SyncUserRequest{Name: "Alice", GoogleID: "g-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	synced := decode[types.UserResponse](t, w)
	assert.Equal(t, "Alice", synced.Name)
	assert.Equal(t, "g-1", synced.GoogleID)

	w = s.json(http.MethodGet, "/api/v1/users/profile", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode[types.UserResponse](t, w)
	assert.Equal(t, synced.ID, profile.ID)
	assert.Equal(t, "Alice", profile.Name)
}

func TestHealthAndAdmin(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/db", "/api/v1/health/storage", "/api/v1/health/mq"} {
		w := s.json(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := s.json(http.MethodGet, "/api/v1/health/storage", "", nil)
	assert.Equal(t, "disabled", decode[map[string]any](t, w)["object"])

	w = s.json(http.MethodGet, "/api/v1/admin/jobs", alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodGet, "/api/v1/admin/jobs", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodPost, "/api/v1/admin/jobs/orphan-sweep", admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
