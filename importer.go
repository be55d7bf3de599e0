package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
)

// ImportHandler recognizes and parses one export format.
type ImportHandler interface {
	CanHandle(path string, data []byte) bool
	Handle(data []byte, platform Platform) ([]TrendingPost, error)
}

// Importer turns exported timeline files into trending posts for the
// scanner. Handlers are tried in registration order, most specific
// first.
type Importer struct {
	handlers []ImportHandler
	log      *logrus.Logger
}

func NewImporter(log *logrus.Logger) *Importer {
	i := &Importer{log: log}
	i.AddHandler(&JSONImportHandler{})
	i.AddHandler(&HTMLImportHandler{converter: md.NewConverter("", true, nil)}) // fallback
	return i
}

func (i *Importer) AddHandler(h ImportHandler) {
	i.handlers = append(i.handlers, h)
}

// ImportFile reads an export file and parses it with the first handler
// that recognizes the format.
func (i *Importer) ImportFile(path string, platform Platform) ([]TrendingPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export file: %w", err)
	}
	for _, h := range i.handlers {
		if h.CanHandle(path, data) {
			posts, err := h.Handle(data, platform)
			if err != nil {
				return nil, err
			}
			i.log.Infof("✓ Imported %d post(s) from %s", len(posts), path)
			return posts, nil
		}
	}
	return nil, fmt.Errorf("no handler found for %s", path)
}

// JSONImportHandler parses JSON exports, either a bare array of posts
// or an object with a posts field.
type JSONImportHandler struct{}

func (h *JSONImportHandler) CanHandle(path string, data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return strings.HasSuffix(path, ".json") ||
		(len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{'))
}

func (h *JSONImportHandler) Handle(data []byte, platform Platform) ([]TrendingPost, error) {
	trimmed := bytes.TrimSpace(data)

	var posts []TrendingPost
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &posts); err != nil {
			return nil, fmt.Errorf("parsing JSON export: %w", err)
		}
	} else {
		var wrapper struct {
			Posts []TrendingPost `json:"posts"`
		}
		if err := json.Unmarshal(trimmed, &wrapper); err != nil {
			return nil, fmt.Errorf("parsing JSON export: %w", err)
		}
		posts = wrapper.Posts
	}

	for i := range posts {
		if posts[i].Platform == "" {
			posts[i].Platform = platform
		}
	}
	return posts, nil
}

// HTMLImportHandler parses saved timeline pages. It looks for article
// elements carrying post text, author, and engagement counts.
type HTMLImportHandler struct {
	converter *md.Converter
}

func (h *HTMLImportHandler) CanHandle(string, []byte) bool {
	return true // fallback
}

func (h *HTMLImportHandler) Handle(data []byte, platform Platform) ([]TrendingPost, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML export: %w", err)
	}

	var posts []TrendingPost
	doc.Find("article, .post, [data-post]").Each(func(_ int, sel *goquery.Selection) {
		post := TrendingPost{Platform: platform}

		if author, ok := sel.Attr("data-author"); ok {
			post.Author = author
		} else {
			post.Author = strings.TrimSpace(sel.Find(".author, [data-role=author]").First().Text())
		}

		content := sel
		if body := sel.Find(".content, [data-role=content]"); body.Length() > 0 {
			content = body.First()
		}
		if html, err := content.Html(); err == nil {
			if markdown, err := h.converter.ConvertString(html); err == nil {
				post.Content = strings.TrimSpace(markdown)
			}
		}
		if post.Content == "" {
			post.Content = strings.TrimSpace(content.Text())
		}
		if post.Content == "" {
			return
		}

		post.Likes = attrInt(sel, "data-likes")
		post.Retweets = attrInt(sel, "data-retweets")
		post.Replies = attrInt(sel, "data-replies")
		post.Quotes = attrInt(sel, "data-quotes")

		if href, ok := sel.Find("a[href]").First().Attr("href"); ok {
			post.URL = href
		}
		if ts, ok := sel.Find("time").First().Attr("datetime"); ok {
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				post.PostedAt = parsed
			}
		}
		if post.PostedAt.IsZero() {
			post.PostedAt = time.Now()
		}

		posts = append(posts, post)
	})
	return posts, nil
}

// attrInt reads a numeric attribute, accepting shorthand like "1.2K".
func attrInt(sel *goquery.Selection, name string) int {
	raw, ok := sel.Attr(name)
	if !ok {
		return 0
	}
	v, err := parseMetric(raw)
	if err != nil {
		return 0
	}
	return v
}
