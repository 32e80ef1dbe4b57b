package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>On the Care of Leather Bindings</title></head>
<body>
  <article>
    <h1>On the Care of Leather Bindings</h1>
    <p>Leather wants little more than stable air and clean hands. The dressing
    bottles sold to collectors do more harm over a decade than a century of
    honest shelf wear.</p>
    <p>Keep the spines out of direct sun and the boards will outlive you.</p>
  </article>
</body>
</html>`

func TestLinkPreviewFetchesTitleAndExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articlePage)
	}))
	t.Cleanup(srv.Close)

	preview, err := NewLinkPreviewService().Fetch(srv.URL)
	require.NoError(t, err)
	require.NotNil(t, preview)

	assert.Equal(t, "On the Care of Leather Bindings", preview.Title)
	assert.NotEmpty(t, preview.Excerpt)
	assert.Contains(t, preview.Excerpt, "stable air")
	assert.NotContains(t, preview.Excerpt, "<p>", "excerpts carry no markup")
}

func TestLinkPreviewRejectsNonHTTPURLs(t *testing.T) {
	svc := NewLinkPreviewService()

	for _, bad := range []string{"", "ftp://example.com/feed", "javascript:alert(1)", "not a url at all"} {
		_, err := svc.Fetch(bad)
		assert.Error(t, err, "url %q", bad)
	}
}

func TestLinkPreviewReportsDeadPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	_, err := NewLinkPreviewService().Fetch(srv.URL + "/gone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
