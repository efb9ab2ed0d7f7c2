package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/docqa/internal/docqa/biz"
	"github.com/kart-io/docqa/internal/docqa/handler"
	"github.com/kart-io/docqa/internal/docqa/router"
	"github.com/kart-io/docqa/internal/docqa/store"
	"github.com/kart-io/docqa/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, config *handler.Config) (*gin.Engine, biz.Service) {
	t.Helper()

	uploads, err := store.NewUploadStore(t.TempDir())
	require.NoError(t, err)

	extract := func(path string) ([]string, error) {
		return []string{
			"Go is a statically typed language.",
			"Gophers love concurrency and channels.",
		}, nil
	}

	svc := biz.NewQAService(
		uploads,
		biz.NewQueryCache(nil, nil),
		biz.NewGenerator(nil, nil),
		&biz.ServiceConfig{
			IndexerConfig: &biz.IndexerConfig{CacheSize: 10, Extract: extract},
		},
	)

	engine := gin.New()
	router.Register(engine, handler.New(svc, config))
	return engine, svc
}

func doMultipartUpload(t *testing.T, engine *gin.Engine, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/pdf/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) *response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return &resp
}

func uploadTestPDF(t *testing.T, engine *gin.Engine) string {
	t.Helper()

	w := doMultipartUpload(t, engine, "go.pdf", []byte("%PDF-1.4 content"))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	id, ok := data["id"].(string)
	require.True(t, ok)
	return id
}

func TestRootAndHealth(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "docqa")

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestUploadAndList(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	id := uploadTestPDF(t, engine)
	assert.NotEmpty(t, id)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/pdf/list", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}

func TestUploadRejectsNonPDF(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	w := doMultipartUpload(t, engine, "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40002`)
}

func TestUploadRejectsOversized(t *testing.T) {
	engine, _ := newTestRouter(t, &handler.Config{MaxUploadBytes: 64})

	w := doMultipartUpload(t, engine, "big.pdf", bytes.Repeat([]byte("x"), 1024))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40003`)
}

func TestUploadMissingFileField(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/pdf/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40001`)
}

func TestQueryFlow(t *testing.T) {
	engine, _ := newTestRouter(t, nil)
	id := uploadTestPDF(t, engine)

	body := `{"upload_id":"` + id + `","question":"what about concurrency","session_id":"s1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/pdf/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["answer"])
	assert.Equal(t, true, data["mock"])
	assert.Equal(t, "s1", data["session_id"])
	assert.Equal(t, false, data["cached"])

	// same question again comes from cache
	req = httptest.NewRequest(http.MethodPost, "/v1/pdf/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	resp = decodeResponse(t, w)
	data = resp.Data.(map[string]interface{})
	assert.Equal(t, true, data["cached"])
}

func TestQueryUnknownUpload(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	body := `{"upload_id":"missing","question":"q"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/pdf/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40401`)
}

func TestQueryValidation(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/pdf/query", strings.NewReader(`{"question":"q"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":40001`)
}

func TestDeletePDF(t *testing.T) {
	engine, _ := newTestRouter(t, nil)
	id := uploadTestPDF(t, engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/pdf/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/pdf/"+id, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResetSession(t *testing.T) {
	engine, _ := newTestRouter(t, nil)
	id := uploadTestPDF(t, engine)

	body := `{"upload_id":"` + id + `","question":"typed language","session_id":"s9"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/pdf/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/sessions/s9/reset", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/sessions/s9/reset", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	engine, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Contains(t, data, "queries")
	assert.Contains(t, data, "query_cache")
	assert.Contains(t, data, "uptime_seconds")
}
