package models

import "time"

// Category groups posts; a post has at most one
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CategoryInput is the editable subset of a category
type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Tag is a managed tag entity, optionally shown in the site menu
type Tag struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	ShowInMenu bool      `json:"show_in_menu" db:"show_in_menu"`
	MenuOrder  int       `json:"menu_order" db:"menu_order"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TagInput is the editable subset of a tag
type TagInput struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	ShowInMenu bool   `json:"show_in_menu"`
	MenuOrder  int    `json:"menu_order"`
}
