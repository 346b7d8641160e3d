package models

import (
	"time"
)

// Post represents a magazine article
type Post struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"` // HTML
	Excerpt     string    `json:"excerpt,omitempty" db:"excerpt"`
	ArtistName  string    `json:"artist_name,omitempty" db:"artist_name"`
	Slug        string    `json:"slug" db:"slug"`
	CategoryID  string    `json:"category_id,omitempty" db:"category_id"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CoverImage  string    `json:"cover_image,omitempty" db:"cover_image"`
	SpotifyURI  string    `json:"spotify_uri,omitempty" db:"spotify_uri"`
	Rating      *float64  `json:"rating,omitempty" db:"rating"`
	Tags        []string  `json:"tags" db:"tags"`
	ViewCount   int       `json:"view_count" db:"view_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PostInput is the editable subset of a post accepted from the back office
type PostInput struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Excerpt     string   `json:"excerpt"`
	ArtistName  string   `json:"artist_name"`
	Slug        string   `json:"slug"`
	CategoryID  string   `json:"category_id"`
	IsPublished bool     `json:"is_published"`
	CoverImage  string   `json:"cover_image"`
	SpotifyURI  string   `json:"spotify_uri"`
	Rating      *float64 `json:"rating"`
	Tags        []string `json:"tags"`
}

// PostFilter narrows post listings
type PostFilter struct {
	CategorySlug  string
	PublishedOnly bool
	Limit         int
	Offset        int
}

// PostPage is a page of posts with the unpaged total
type PostPage struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// Home is the reader landing payload
type Home struct {
	Latest     []Post     `json:"latest"`
	Popular    []Post     `json:"popular"`
	Categories []Category `json:"categories"`
}
