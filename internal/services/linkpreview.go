package services

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"libris/internal/utils"

	readability "github.com/go-shiori/go-readability"
)

const previewBodyLimit = 2 << 20 // plenty for any article page

// LinkPreview is what the submit form learns about a pasted URL.
type LinkPreview struct {
	Title   string
	Excerpt string
}

// LinkPreviewService fetches a page and distills it to a title and a
// short readable excerpt.
type LinkPreviewService struct {
	client *http.Client
}

func NewLinkPreviewService() *LinkPreviewService {
	return &LinkPreviewService{
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads the page and runs it through readability. Errors
// here are expected operation, members paste dead links all the time.
func (s *LinkPreviewService) Fetch(pageURL string) (*LinkPreview, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("not a fetchable URL")
	}

	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	// Some publishers turn plain Go user agents away at the door.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page answered with status %d", resp.StatusCode)
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, previewBodyLimit), parsed)
	if err != nil {
		return nil, fmt.Errorf("could not read the page: %w", err)
	}

	excerpt := article.Excerpt
	if excerpt == "" {
		excerpt = article.Content
	}

	return &LinkPreview{
		Title:   article.Title,
		Excerpt: utils.ExcerptText(excerpt, 280),
	}, nil
}
