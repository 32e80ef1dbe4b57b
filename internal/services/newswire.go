package services

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"libris/internal/models"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"gorm.io/gorm"
)

// ErrDuplicateSource means the feed URL is already on the wire.
var ErrDuplicateSource = errors.New("wire source already subscribed")

const (
	wireExcerptRunes = 280
	wireItemMaxAge   = 30 * 24 * time.Hour
)

// NewswireService pulls external RSS/Atom sources and files their
// entries on the wire for the moderation team to pick through.
type NewswireService struct {
	wire   *store.WireRepo
	parser *gofeed.Parser
}

func NewNewswireService(db *gorm.DB) *NewswireService {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        10,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: 2,
		},
	}

	parser := gofeed.NewParser()
	parser.Client = client

	return &NewswireService{
		wire:   store.NewWireRepo(db),
		parser: parser,
	}
}

// AddSource subscribes the wire to a feed URL. The feed is fetched
// once up front, so a bad URL fails here instead of silently later,
// and its current entries are filed immediately.
func (s *NewswireService) AddSource(url string, addedByID uint) (*models.WireSource, error) {
	url = strings.TrimSpace(url)

	existing, err := s.wire.FindSourceByURL(url)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateSource
	}

	feed, err := s.parser.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("could not parse feed: %w", err)
	}

	source := &models.WireSource{
		URL:       url,
		Title:     strings.TrimSpace(feed.Title),
		SiteURL:   feed.Link,
		AddedByID: addedByID,
	}
	if source.Title == "" {
		source.Title = url
	}
	if err := s.wire.CreateSource(source); err != nil {
		return nil, err
	}

	if _, err := s.ingest(source.ID, feed); err != nil {
		log.Printf("Failed to file items for new wire source %s: %v", source.Title, err)
	}
	if err := s.wire.TouchSourceFetched(source.ID, time.Now()); err != nil {
		log.Printf("Failed to stamp fetch time for wire source %s: %v", source.Title, err)
	}

	return source, nil
}

// Refresh pulls one source and files whatever is new.
func (s *NewswireService) Refresh(source *models.WireSource) error {
	feed, err := s.parser.ParseURL(source.URL)
	if err != nil {
		return fmt.Errorf("could not parse feed: %w", err)
	}

	if _, err := s.ingest(source.ID, feed); err != nil {
		return err
	}
	return s.wire.TouchSourceFetched(source.ID, time.Now())
}

// ingest files entries the wire has not seen, keyed by GUID with the
// link as fallback. Returns how many were new.
func (s *NewswireService) ingest(sourceID uint, feed *gofeed.Feed) (int, error) {
	filed := 0
	for _, entry := range feed.Items {
		guid := entry.GUID
		if guid == "" {
			guid = entry.Link
		}
		if guid == "" {
			continue
		}

		exists, err := s.wire.ItemExists(guid)
		if err != nil {
			return filed, err
		}
		if exists {
			continue
		}

		raw := entry.Description
		if raw == "" {
			raw = entry.Content
		}

		item := &models.WireItem{
			SourceID:    sourceID,
			GUID:        guid,
			Title:       strings.TrimSpace(entry.Title),
			Link:        entry.Link,
			Excerpt:     utils.ExcerptText(raw, wireExcerptRunes),
			PublishedAt: entryTime(entry),
		}
		if item.Title == "" {
			item.Title = entry.Link
		}

		if err := s.wire.CreateItem(item); err != nil {
			log.Printf("Failed to file wire item %q: %v", item.Title, err)
			continue
		}
		filed++
	}
	return filed, nil
}

// entryTime picks the best available timestamp for an entry. Feeds in
// the wild carry dates in odd formats, so after gofeed's own parsing
// we run the raw string through dateparse before giving up.
func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	if entry.Published != "" {
		if t, err := dateparse.ParseAny(entry.Published); err == nil {
			return t
		}
	}
	return time.Now()
}

// RefreshAll pulls every source. One broken feed never stops the rest.
func (s *NewswireService) RefreshAll() {
	sources, err := s.wire.ListSources()
	if err != nil {
		log.Printf("Failed to list wire sources: %v", err)
		return
	}

	for i := range sources {
		if err := s.Refresh(&sources[i]); err != nil {
			log.Printf("Failed to refresh wire source %s: %v", sources[i].Title, err)
		}
	}
}

// Prune drops unpicked items older than thirty days.
func (s *NewswireService) Prune() {
	pruned, err := s.wire.DeleteItemsBefore(time.Now().Add(-wireItemMaxAge))
	if err != nil {
		log.Printf("Failed to prune wire items: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Pruned %d stale wire items", pruned)
	}
}

// StartScheduled refreshes every source now and then on the given
// interval, pruning after each pass.
func (s *NewswireService) StartScheduled(interval time.Duration) {
	go func() {
		log.Println("Newswire: first fetch starting")
		s.RefreshAll()
		s.Prune()
		log.Println("Newswire: first fetch done")

		ticker := time.NewTicker(interval)
		for range ticker.C {
			s.RefreshAll()
			s.Prune()
		}
	}()
}
