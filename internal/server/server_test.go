package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func siteDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, body := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return dir
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_ServesIndexForDirectoryURL(t *testing.T) {
	h := Handler(siteDir(t, map[string]string{
		"index.html":             "<h1>home</h1>",
		"posts/hello/index.html": "<h1>hello</h1>",
	}))

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "home")

	rec = get(t, h, "/posts/hello/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "hello")
}

func TestHandler_CachingDisabled(t *testing.T) {
	h := Handler(siteDir(t, map[string]string{"index.html": "x"}))

	rec := get(t, h, "/")
	require.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	require.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	require.Equal(t, "0", rec.Header().Get("Expires"))
}

func TestHandler_DirectoryWithoutIndex_NotFound(t *testing.T) {
	h := Handler(siteDir(t, map[string]string{
		"static/style.css": "body{}",
	}))

	rec := get(t, h, "/static/")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, h, "/static/style.css")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_MissingFile_NotFound(t *testing.T) {
	h := Handler(siteDir(t, map[string]string{"index.html": "x"}))

	rec := get(t, h, "/nope.html")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
