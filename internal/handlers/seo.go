package handlers

import (
	"fmt"
	"html"
	"net/http"
	"os"
	"time"

	"libris/internal/db"
	"libris/internal/store"
	"libris/internal/utils"

	"github.com/gin-gonic/gin"
)

// SEOHandler serves the crawler-facing surface: robots.txt, the
// sitemap, and the public RSS feed of approved news.
type SEOHandler struct {
	news     *store.NewsRepo
	articles *store.ArticleRepo
}

func NewSEOHandler() *SEOHandler {
	return &SEOHandler{
		news:     store.NewNewsRepo(db.DB),
		articles: store.NewArticleRepo(db.DB),
	}
}

func getSiteURL() string {
	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	return siteURL
}

func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	siteURL := getSiteURL()
	content := fmt.Sprintf(`User-agent: *
Allow: /

# Member-only desks
Disallow: /dashboard/
Disallow: /moderation/
Disallow: /wire/
Disallow: /notifications

# Auth forms
Disallow: /login
Disallow: /signup

Sitemap: %s/sitemap.xml

Crawl-delay: 1
`, siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

// SitemapXML lists the static pages plus recent news and articles,
// capped so the file never balloons.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	siteURL := getSiteURL()
	now := time.Now().Format("2006-01-02")

	xml := `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
`

	type staticPage struct {
		path       string
		changefreq string
		priority   string
	}
	for _, page := range []staticPage{
		{"/", "daily", "1.0"},
		{"/articles", "daily", "0.9"},
		{"/tips", "daily", "0.8"},
		{"/glossary", "weekly", "0.7"},
		{"/members", "weekly", "0.5"},
	} {
		xml += fmt.Sprintf(`  <url>
    <loc>%s%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%s</priority>
  </url>
`, siteURL, page.path, now, page.changefreq, page.priority)
	}

	news, _ := h.news.ListApproved(0, 500)
	for _, item := range news {
		xml += sitemapEntry(siteURL+"/n/"+item.Nid, item.CreatedAt, item.UpdatedAt)
	}

	articles, _ := h.articles.List(0, 500)
	for _, article := range articles {
		xml += sitemapEntry(siteURL+"/a/"+article.Aid, article.CreatedAt, article.UpdatedAt)
	}

	xml += `</urlset>`

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, xml)
}

// sitemapEntry ranks fresher pages higher so crawlers revisit them
// sooner.
func sitemapEntry(loc string, createdAt, updatedAt time.Time) string {
	age := time.Since(createdAt).Hours() / 24
	priority := 0.6
	changefreq := "monthly"
	if age < 7 {
		priority = 0.8
		changefreq = "daily"
	} else if age < 30 {
		priority = 0.7
		changefreq = "weekly"
	}

	return fmt.Sprintf(`  <url>
    <loc>%s</loc>
    <lastmod>%s</lastmod>
    <changefreq>%s</changefreq>
    <priority>%.1f</priority>
  </url>
`, loc, updatedAt.Format("2006-01-02"), changefreq, priority)
}

// NewsFeed serves the latest approved news as RSS 2.0.
func (h *SEOHandler) NewsFeed(c *gin.Context) {
	siteURL := getSiteURL()
	now := time.Now()

	items, err := h.news.ListApproved(0, 20)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	rss := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">
  <channel>
    <title>Libris</title>
    <link>` + siteURL + `</link>
    <description>News from the reading room, picked and approved by the members</description>
    <language>en</language>
    <lastBuildDate>` + now.Format(time.RFC1123Z) + `</lastBuildDate>
    <atom:link href="` + siteURL + `/feed.xml" rel="self" type="application/rss+xml"/>
`

	for _, item := range items {
		link := fmt.Sprintf("%s/n/%s", siteURL, item.Nid)

		description := string(utils.RenderMarkdown(item.Content))
		description += fmt.Sprintf(`<p><a href="%s">Read the discussion on Libris →</a></p>`, link)
		if item.URL != "" {
			description += fmt.Sprintf(`<p><a href="%s">Original source</a></p>`, html.EscapeString(item.URL))
		}

		rss += `    <item>
      <title>` + html.EscapeString(item.Title) + `</title>
      <link>` + link + `</link>
      <description><![CDATA[` + description + `]]></description>
      <author>` + html.EscapeString(item.Author.Handle) + `</author>
      <pubDate>` + item.CreatedAt.Format(time.RFC1123Z) + `</pubDate>
      <guid isPermaLink="true">` + link + `</guid>
    </item>
`
	}

	rss += `  </channel>
</rss>`

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, rss)
}
