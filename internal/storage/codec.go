package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

// storedPost is the on-disk shape of a model.NewsPost. Every field is a JSON
// primitive except posted_at, which carries a type tag so the decoder can tell a
// timestamp from a plain string.
type storedPost struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Link        string         `json:"link"`
	Category    string         `json:"category"`
	PostedAt    taggedTime     `json:"posted_at"`
	Important   bool           `json:"important"`
	Keywords    []string       `json:"keywords"`
	Attachments []storedAttach `json:"attachments"`
}

type storedAttach struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// taggedTime serializes as {"_type": "datetime", "value": "<RFC3339Nano>"}.
// RFC3339Nano keeps the round-trip lossless down to the clock resolution the source
// ever produces.
type taggedTime struct {
	time.Time
}

const datetimeTag = "datetime"

type taggedTimeJSON struct {
	Type  string `json:"_type"`
	Value string `json:"value"`
}

func (t taggedTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedTimeJSON{
		Type:  datetimeTag,
		Value: t.Format(time.RFC3339Nano),
	})
}

func (t *taggedTime) UnmarshalJSON(data []byte) error {
	var raw taggedTimeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != datetimeTag {
		return fmt.Errorf("unexpected type tag %q", raw.Type)
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw.Value)
	if err != nil {
		return fmt.Errorf("parse datetime %q: %w", raw.Value, err)
	}

	t.Time = parsed
	return nil
}

func newStoredPost(p model.NewsPost) storedPost {
	attachments := make([]storedAttach, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		attachments = append(attachments, storedAttach{Title: a.Title, URL: a.URL})
	}

	return storedPost{
		Title:       p.Title,
		Description: p.Description,
		Link:        p.Link,
		Category:    p.Category,
		PostedAt:    taggedTime{p.PostedAt},
		Important:   p.Important,
		Keywords:    p.Keywords,
		Attachments: attachments,
	}
}

func (sp storedPost) toPost() model.NewsPost {
	var attachments []model.AttachedFile
	for _, a := range sp.Attachments {
		attachments = append(attachments, model.AttachedFile{Title: a.Title, URL: a.URL})
	}

	return model.NewsPost{
		Title:       sp.Title,
		Description: sp.Description,
		Link:        sp.Link,
		Category:    sp.Category,
		PostedAt:    sp.PostedAt.Time,
		Important:   sp.Important,
		Keywords:    sp.Keywords,
		Attachments: attachments,
	}
}
