package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/voxo-cms/internal/content"
	"github.com/voxo-cms/internal/models"
)

const excerptRunes = 280

// Site describes the channel of the feed
type Site struct {
	Title       string
	BaseURL     string
	Description string
	Language    string
}

// Generator renders published posts as RSS 2.0
type Generator struct {
	now func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

func (g *Generator) Run(site Site, posts []models.Post) (string, error) {
	var buf bytes.Buffer
	base := strings.TrimRight(site.BaseURL, "/")

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", site.Title, 4)
	g.writeElement(&buf, "link", base+"/", 4)
	description := site.Description
	if description == "" {
		description = fmt.Sprintf("Latest stories from %s", site.Title)
	}
	g.writeElement(&buf, "description", description, 4)
	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(base+"/feed.xml")))

	lastBuildDate := g.now()
	if len(posts) > 0 {
		lastBuildDate = posts[0].CreatedAt
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", "Voxo", 4)
	g.writeElement(&buf, "language", site.Language, 4)

	for _, post := range posts {
		g.writeItem(&buf, base, post)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, base string, post models.Post) {
	link := base + "/posts/" + post.Slug

	buf.WriteString("    <item>\n")
	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", post.Title, 6)
	g.writeElement(buf, "link", link, 6)

	description := post.Excerpt
	if description == "" {
		description = content.Excerpt(post.Content, excerptRunes)
	}
	g.writeElement(buf, "description", description, 6)

	if post.Content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(post.Content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	g.writeElement(buf, "pubDate", post.CreatedAt.Format(time.RFC1123Z), 6)

	if post.ArtistName != "" {
		g.writeElement(buf, "category", post.ArtistName, 6)
	}
	for _, tag := range post.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	if post.CoverImage != "" {
		if ct := imageType(post.CoverImage); ct != "" {
			buf.WriteString(fmt.Sprintf("      <enclosure url=\"%s\" length=\"0\" type=\"%s\" />\n",
				html.EscapeString(absolute(base, post.CoverImage)), ct))
		}
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

func absolute(base, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}

func imageType(url string) string {
	lower := strings.ToLower(url)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	switch {
	case strings.HasSuffix(lower, ".png"):
		return "image/png"
	case strings.HasSuffix(lower, ".gif"):
		return "image/gif"
	case strings.HasSuffix(lower, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
