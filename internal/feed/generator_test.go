package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/voxo-cms/internal/models"
)

func TestGeneratorRun(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	posts := []models.Post{
		{
			Title:      "Ditto & the winter",
			Slug:       "newjeans-ditto-abc",
			Content:    `<div class="video-embed"><iframe src="x"></iframe></div><p>Body text]]> here</p>`,
			ArtistName: "NewJeans",
			Tags:       []string{"kpop", "겨울"},
			CoverImage: "/uploads/cover.png",
			CreatedAt:  created,
		},
		{
			Title:     "Palette",
			Slug:      "iu-palette-def",
			Excerpt:   "A custom excerpt",
			CreatedAt: created.Add(-time.Hour),
		},
	}

	out, err := NewGenerator().Run(Site{Title: "Voxo", BaseURL: "https://voxo.test/", Language: "ko"}, posts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	feed, err := gofeed.NewParser().ParseString(out)
	if err != nil {
		t.Fatalf("generated feed does not parse: %v\n%s", err, out)
	}

	if feed.Title != "Voxo" || feed.Language != "ko" {
		t.Errorf("channel title=%q language=%q", feed.Title, feed.Language)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(feed.Items))
	}

	first := feed.Items[0]
	if first.Title != "Ditto & the winter" {
		t.Errorf("title = %q", first.Title)
	}
	if first.Link != "https://voxo.test/posts/newjeans-ditto-abc" {
		t.Errorf("link = %q", first.Link)
	}
	if first.Description != "Body text]]> here" {
		t.Errorf("description = %q", first.Description)
	}
	if !strings.Contains(first.Content, "Body text]]> here") {
		t.Errorf("content should survive CDATA escaping: %q", first.Content)
	}
	if len(first.Categories) != 3 {
		t.Errorf("categories = %v", first.Categories)
	}
	if len(first.Enclosures) != 1 || first.Enclosures[0].URL != "https://voxo.test/uploads/cover.png" {
		t.Errorf("enclosures = %+v", first.Enclosures)
	}
	if first.PublishedParsed == nil || !first.PublishedParsed.Equal(created) {
		t.Errorf("published = %v", first.PublishedParsed)
	}

	if feed.Items[1].Description != "A custom excerpt" {
		t.Errorf("second description = %q", feed.Items[1].Description)
	}
}

func TestGeneratorEmpty(t *testing.T) {
	g := NewGenerator()
	g.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	out, err := g.Run(Site{Title: "Voxo", BaseURL: "http://localhost:8080"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	feed, err := gofeed.NewParser().ParseString(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(feed.Items) != 0 {
		t.Errorf("expected no items, got %d", len(feed.Items))
	}
	if feed.Description != "Latest stories from Voxo" {
		t.Errorf("description = %q", feed.Description)
	}
}
