// Package feed decides what gets delivered and what stays remembered: the diff of a
// fresh snapshot against the delivered history, the order posts go out in, and the
// merge/eviction policy applied to history after a delivery batch.
package feed

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

// Unpublished returns every snapshot post with no value-equal counterpart in
// history, in snapshot order. Absence works only one way: posts that dropped off the
// site's page are never removed from history here, retention is age/count driven.
func Unpublished(history, snapshot []model.NewsPost) []model.NewsPost {
	return lo.Filter(snapshot, func(p model.NewsPost, _ int) bool {
		return !lo.ContainsBy(history, p.Equal)
	})
}

// OrderForDelivery sorts posts for sending: important ones first, chronological
// within each tier. Keeps an urgent announcement from queueing behind a backlog of
// routine items.
func OrderForDelivery(posts []model.NewsPost) []model.NewsPost {
	ordered := make([]model.NewsPost, len(posts))
	copy(ordered, posts)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Important != ordered[j].Important {
			return ordered[i].Important
		}
		return ordered[i].PostedAt.Before(ordered[j].PostedAt)
	})

	return ordered
}

// MergeHistory folds freshly sent posts into history and applies retention: entries
// older than maxAge (relative to now, not the poll time) are dropped, the rest is
// sorted newest-first and capped at maxCount.
func MergeHistory(history, sent []model.NewsPost, now time.Time, maxAge time.Duration, maxCount int) []model.NewsPost {
	merged := make([]model.NewsPost, 0, len(history)+len(sent))
	merged = append(merged, history...)
	merged = append(merged, sent...)

	merged = lo.Filter(merged, func(p model.NewsPost, _ int) bool {
		return now.Sub(p.PostedAt) <= maxAge
	})

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PostedAt.After(merged[j].PostedAt)
	})

	if len(merged) > maxCount {
		merged = merged[:maxCount]
	}

	return merged
}
