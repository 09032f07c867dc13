// Package model defines the data structures used in the nevaNews bot: NewsPost, one
// news item scraped from the district site, and AttachedFile, a downloadable document
// linked from a post. A NewsPost is an immutable value; two posts are the same
// delivered item iff every field compares equal.
package model

import (
	"slices"
	"time"
)

type AttachedFile struct {
	Title string
	URL   string
}

type NewsPost struct {
	Title       string
	Description string
	Link        string
	Category    string
	PostedAt    time.Time
	Important   bool
	Keywords    []string
	Attachments []AttachedFile
}

// Equal reports full structural equality. This is the dedup key for delivery; there
// is no surrogate ID, so any upstream edit to a published post makes it a new one.
// PostedAt is compared with time.Equal so values survive a storage round-trip
// regardless of location and monotonic clock.
func (p NewsPost) Equal(other NewsPost) bool {
	return p.Title == other.Title &&
		p.Description == other.Description &&
		p.Link == other.Link &&
		p.Category == other.Category &&
		p.Important == other.Important &&
		p.PostedAt.Equal(other.PostedAt) &&
		slices.Equal(p.Keywords, other.Keywords) &&
		slices.Equal(p.Attachments, other.Attachments)
}
