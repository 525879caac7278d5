package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/samber/lo"
)

type Metadata struct {
	Title string
	Link  string
}

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Entry, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title: feed.Title,
		Link:  feed.Link,
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entries = append(entries, p.normalizeItem(item))
	}

	return metadata, entries, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Entry {
	entry := Entry{
		Title:       item.Title,
		Link:        strings.TrimSpace(item.Link),
		Description: item.Description,
	}

	enclosures := lo.Filter(item.Enclosures, func(e *gofeed.Enclosure, _ int) bool {
		return e != nil && e.URL != ""
	})
	entry.Enclosures = lo.Map(enclosures, func(e *gofeed.Enclosure, _ int) Enclosure {
		return Enclosure{URL: e.URL, Type: e.Type}
	})

	return entry
}

// ImageEnclosure returns the URL of the first enclosure with an image/* media type.
func (e Entry) ImageEnclosure() (string, bool) {
	enclosure, ok := lo.Find(e.Enclosures, func(enc Enclosure) bool {
		return strings.HasPrefix(enc.Type, "image/")
	})
	return enclosure.URL, ok
}
