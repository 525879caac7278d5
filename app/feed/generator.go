package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/goodoffers/offer-comb/app/database"
)

// Generator renders stored records of one category as an RSS 2.0 channel.
type Generator struct {
	publicURL string
	version   string
}

func NewGenerator(publicURL, version string) *Generator {
	return &Generator{
		publicURL: publicURL,
		version:   version,
	}
}

func (g *Generator) Run(category Category, items []database.Item) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	selfLink := fmt.Sprintf("%s/feeds/%s", g.publicURL, category)

	g.writeElement(&buf, "title", fmt.Sprintf("Offer Comb: %s", category), 4)
	g.writeElement(&buf, "link", selfLink, 4)
	g.writeElement(&buf, "description", fmt.Sprintf("Aggregated %s offers", category), 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(selfLink)))

	lastBuildDate := time.Now().In(time.Local)
	if len(items) > 0 {
		lastBuildDate = items[0].PubDate
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Offer-Comb/%s", g.version), 4)

	for _, item := range items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item database.Item) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(item.ItemHash))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", item.Description, 6)
	g.writeElement(buf, "pubDate", item.PubDate.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", item.FeedType, 6)

	if item.ImageURL != "" {
		buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
			html.EscapeString(item.ImageURL),
			imageMimeType(item.ImageURL)))
	}

	if item.FeedURL != "" {
		buf.WriteString(fmt.Sprintf("      <source url=\"%s\">", html.EscapeString(item.FeedURL)))
		xml.EscapeText(buf, []byte(item.SourceURL))
		buf.WriteString("</source>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func imageMimeType(imageURL string) string {
	ext := ""
	if parsed, err := url.Parse(imageURL); err == nil {
		ext = strings.ToLower(path.Ext(parsed.Path))
	}

	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "image/jpeg"
}
