package web

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplates(t *testing.T) {
	templates, err := NewTemplates("")
	require.NoError(t, err)
	require.NotNil(t, templates)
}

func TestTemplatesRender_Introduction(t *testing.T) {
	templates, err := NewTemplates("")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = templates.Render(w, "index.html", IntroductionPageData{SiteName: "Test Pit", Version: "9.9.9"})
	require.NoError(t, err)

	body := w.Body.String()
	assert.Contains(t, body, "<title>Test Pit</title>")
	assert.Contains(t, body, "Lamia 9.9.9")
	assert.Contains(t, body, `action="/lookup"`)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestTemplatesRender_EscapesSiteName(t *testing.T) {
	templates, err := NewTemplates("")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, templates.Render(w, "index.html", IntroductionPageData{SiteName: "<script>x</script>"}))
	assert.NotContains(t, w.Body.String(), "<script>x</script>")
}

func TestTemplatesRender_NotFound(t *testing.T) {
	templates, err := NewTemplates("")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	err = templates.Render(w, "nonexistent.html", nil)
	assert.Error(t, err)
}

func TestTemplatesRender_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(path, []byte("v1 {{ .SiteName }}"), 0o600))

	templates, err := NewTemplates(dir)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, templates.Render(w, "index.html", IntroductionPageData{SiteName: "pit"}))
	assert.Equal(t, "v1 pit", w.Body.String())

	require.NoError(t, os.WriteFile(path, []byte("v2 {{ .SiteName }}"), 0o600))

	w = httptest.NewRecorder()
	require.NoError(t, templates.Render(w, "index.html", IntroductionPageData{SiteName: "pit"}))
	assert.Equal(t, "v2 pit", w.Body.String())
}

func TestNewTemplates_ReloadDirWithoutTemplates(t *testing.T) {
	_, err := NewTemplates(t.TempDir())
	assert.Error(t, err)
}

func TestStaticFileServer(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("body{}"), 0o600))

	w := httptest.NewRecorder()
	StaticFileServer(dir).ServeHTTP(w, httptest.NewRequest("GET", "/static/css/site.css", nil))

	assert.Equal(t, 200, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "body{}"))
}
