package models

import "time"

type Article struct {
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Snippet     string     `json:"snippet"`
	Source      string     `json:"source,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Score       int        `json:"score,omitempty"`
}
