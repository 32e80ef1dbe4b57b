package services

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"libris/internal/models"
	"libris/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// feedServer serves a swappable RSS payload so a test can publish new
// entries between refreshes.
type feedServer struct {
	*httptest.Server
	mu   sync.Mutex
	body string
}

func newFeedServer(t *testing.T, body string) *feedServer {
	t.Helper()
	fs := &feedServer{body: body}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.mu.Lock()
		defer fs.mu.Unlock()
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		fmt.Fprint(w, fs.body)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func (fs *feedServer) publish(body string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.body = body
}

func rssFeed(items ...string) string {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Fine Press Review</title>
    <link>https://finepress.example</link>
    <description>Notes on printing and the book arts</description>
`
	for _, item := range items {
		feed += item
	}
	feed += `  </channel>
</rss>`
	return feed
}

const kelmscottItem = `    <item>
      <title>A new Kelmscott facsimile</title>
      <link>https://finepress.example/kelmscott</link>
      <guid>fp-001</guid>
      <description><![CDATA[<p>The <b>Kelmscott Chaucer</b> returns in a full-size facsimile.</p>]]></description>
      <pubDate>Mon, 02 Mar 2026 09:00:00 GMT</pubDate>
    </item>
`

// No guid element, the wire falls back to the link.
const bindingItem = `    <item>
      <title>Limp vellum, revisited</title>
      <link>https://finepress.example/limp-vellum</link>
      <description>A binding structure that outlasts its owners.</description>
      <pubDate>Tue, 03 Mar 2026 09:00:00 GMT</pubDate>
    </item>
`

func wireAccount(t *testing.T, db *gorm.DB) *models.Account {
	t.Helper()
	account := &models.Account{
		Handle:       "editor",
		Email:        "editor@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func TestAddSourceFilesCurrentEntries(t *testing.T) {
	db := setupTestDB(t)
	account := wireAccount(t, db)
	srv := newFeedServer(t, rssFeed(kelmscottItem, bindingItem))

	svc := NewNewswireService(db)
	source, err := svc.AddSource(srv.URL, account.ID)
	require.NoError(t, err)
	require.NotNil(t, source)

	assert.Equal(t, "Fine Press Review", source.Title, "title comes from the feed")
	assert.Equal(t, srv.URL, source.URL)

	stored, err := store.NewWireRepo(db).FindSourceByID(source.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.LastFetchAt, "a successful fetch is stamped")

	items, err := store.NewWireRepo(db).ListRecentItems(10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first.
	assert.Equal(t, "Limp vellum, revisited", items[0].Title)
	assert.Equal(t, "https://finepress.example/limp-vellum", items[0].GUID, "guid falls back to the link")

	assert.Equal(t, "fp-001", items[1].GUID)
	assert.Equal(t, "The Kelmscott Chaucer returns in a full-size facsimile.", items[1].Excerpt, "markup is stripped from excerpts")
	assert.Equal(t, 2026, items[1].PublishedAt.Year())
}

func TestAddSourceRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	account := wireAccount(t, db)
	srv := newFeedServer(t, rssFeed(kelmscottItem))

	svc := NewNewswireService(db)
	_, err := svc.AddSource(srv.URL, account.ID)
	require.NoError(t, err)

	_, err = svc.AddSource(srv.URL, account.ID)
	assert.ErrorIs(t, err, ErrDuplicateSource)

	sources, err := store.NewWireRepo(db).ListSources()
	require.NoError(t, err)
	assert.Len(t, sources, 1)
}

func TestAddSourceRejectsUnreadableFeed(t *testing.T) {
	db := setupTestDB(t)
	account := wireAccount(t, db)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	svc := NewNewswireService(db)
	_, err := svc.AddSource(srv.URL, account.ID)
	require.Error(t, err)

	// A feed that cannot be read is never subscribed.
	sources, listErr := store.NewWireRepo(db).ListSources()
	require.NoError(t, listErr)
	assert.Empty(t, sources)
}

func TestRefreshFilesOnlyNewEntries(t *testing.T) {
	db := setupTestDB(t)
	account := wireAccount(t, db)
	srv := newFeedServer(t, rssFeed(kelmscottItem))

	svc := NewNewswireService(db)
	source, err := svc.AddSource(srv.URL, account.ID)
	require.NoError(t, err)

	// The feed publishes one new entry alongside the old one.
	srv.publish(rssFeed(kelmscottItem, bindingItem))

	require.NoError(t, svc.Refresh(source))
	require.NoError(t, svc.Refresh(source), "refreshing twice files nothing extra")

	items, err := store.NewWireRepo(db).ListRecentItems(10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestPruneKeepsPickedAndFreshItems(t *testing.T) {
	db := setupTestDB(t)
	account := wireAccount(t, db)
	repo := store.NewWireRepo(db)

	source := &models.WireSource{URL: "https://finepress.example/feed", Title: "Fine Press Review", AddedByID: account.ID}
	require.NoError(t, repo.CreateSource(source))

	old := time.Now().Add(-40 * 24 * time.Hour)
	fresh := time.Now().Add(-time.Hour)

	stale := &models.WireItem{SourceID: source.ID, GUID: "stale", Title: "stale", Link: "https://x/1", PublishedAt: old}
	picked := &models.WireItem{SourceID: source.ID, GUID: "picked", Title: "picked", Link: "https://x/2", PublishedAt: old}
	recent := &models.WireItem{SourceID: source.ID, GUID: "recent", Title: "recent", Link: "https://x/3", PublishedAt: fresh}
	for _, item := range []*models.WireItem{stale, picked, recent} {
		require.NoError(t, repo.CreateItem(item))
	}

	news := &models.News{Nid: "abcd1234", AuthorID: account.ID, Title: "picked"}
	require.NoError(t, db.Create(news).Error)
	require.NoError(t, repo.MarkPicked(picked.ID, news.ID))

	NewNewswireService(db).Prune()

	items, err := repo.ListRecentItems(10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	guids := []string{items[0].GUID, items[1].GUID}
	assert.Contains(t, guids, "picked", "picked items survive pruning")
	assert.Contains(t, guids, "recent")
	assert.NotContains(t, guids, "stale")
}
