package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

const (
	testMaxCount = 100
	testMaxAge   = 72 * time.Hour
)

func newTestStorage(t *testing.T, maxSize int64) *PostStorage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "posts.json"), testMaxCount, testMaxAge, maxSize)
	require.NoError(t, err)
	return s
}

func samplePost(title string, postedAt time.Time) model.NewsPost {
	return model.NewsPost{
		Title:       title,
		Description: "Описание: " + title,
		Link:        "http://nevarono.spb.ru/novosti/" + title + ".html",
		Category:    "Новости",
		PostedAt:    postedAt,
	}
}

func TestNew_CreatesEmptyHistoryFile(t *testing.T) {
	s := newTestStorage(t, 10<<20)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
	assert.Empty(t, s.Load())
}

func TestNew_UnwritableLocationIsFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))

	_, err := New(filepath.Join(blocker, "posts.json"), testMaxCount, testMaxAge, 10<<20)
	assert.Error(t, err)
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	s := newTestStorage(t, 10<<20)

	msk := time.FixedZone("MSK", 3*60*60)
	posts := []model.NewsPost{
		{
			Title:       "Приём в школы — новый порядок",
			Description: "Текст с юникодом: ёжик, №5, 𝕌𝕋𝔽.",
			Link:        "http://nevarono.spb.ru/novosti/42.html",
			Category:    "Образование",
			PostedAt:    time.Date(2026, 8, 26, 10, 30, 45, 123456789, msk),
			Important:   true,
			Keywords:    []string{"школа", "приём"},
			Attachments: []model.AttachedFile{{Title: "Приказ", URL: "http://nevarono.spb.ru/files/prikaz.pdf"}},
		},
		{
			Title:    "Без ключевых слов и вложений",
			Link:     "http://nevarono.spb.ru/novosti/43.html",
			Category: "Новости",
			PostedAt: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, s.Save(posts))
	got := s.Load()

	require.Len(t, got, len(posts))
	for i := range posts {
		assert.True(t, posts[i].Equal(got[i]), "post %d must round-trip value-equal", i)
		assert.True(t, posts[i].PostedAt.Equal(got[i].PostedAt), "timestamp must be lossless")
	}
}

func TestSave_WritesTaggedTimestamps(t *testing.T) {
	s := newTestStorage(t, 10<<20)
	require.NoError(t, s.Save([]model.NewsPost{samplePost("a", time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))}))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	var tagged struct {
		Type  string `json:"_type"`
		Value string `json:"value"`
	}
	require.NoError(t, json.Unmarshal(raw[0]["posted_at"], &tagged))
	assert.Equal(t, "datetime", tagged.Type)
	assert.Equal(t, "2026-08-26T10:00:00Z", tagged.Value)
}

func TestLoad_CorruptedFileIsQuarantined(t *testing.T) {
	s := newTestStorage(t, 10<<20)
	garbage := []byte(`[{"title": "truncated`)
	require.NoError(t, os.WriteFile(s.Path(), garbage, 0o644))

	got := s.Load()

	assert.Empty(t, got, "corruption degrades to an empty history")

	_, err := os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "original file is moved aside")

	quarantined, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), "posts.corrupted_*.json"))
	require.NoError(t, err)
	require.Len(t, quarantined, 1)

	kept, err := os.ReadFile(quarantined[0])
	require.NoError(t, err)
	assert.Equal(t, garbage, kept, "quarantine keeps the original bytes")
}

func TestRotateIfOversized_UnderCapIsNoop(t *testing.T) {
	s := newTestStorage(t, 10<<20)
	require.NoError(t, s.Save([]model.NewsPost{samplePost("a", time.Now())}))

	rotated, err := s.RotateIfOversized(time.Now())
	require.NoError(t, err)
	assert.False(t, rotated)

	backups, _ := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), "*"+backupSuffix))
	assert.Empty(t, backups)
}

func TestRotateIfOversized_FiltersTruncatesAndBacksUp(t *testing.T) {
	s := newTestStorage(t, 1) // 1 byte cap forces rotation

	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	posts := make([]model.NewsPost, 0, 150)
	for i := 0; i < 120; i++ {
		posts = append(posts, samplePost(string(rune('a'+i%26))+"-fresh", now.Add(-time.Duration(i)*30*time.Minute)))
	}
	for i := 0; i < 30; i++ {
		posts = append(posts, samplePost(string(rune('a'+i%26))+"-stale", now.Add(-testMaxAge-time.Duration(i+1)*time.Hour)))
	}
	require.NoError(t, s.Save(posts))

	rotated, err := s.RotateIfOversized(now)
	require.NoError(t, err)
	assert.True(t, rotated)

	got := s.Load()
	assert.Len(t, got, testMaxCount, "120 in-age posts truncated to the count cap")
	for i, p := range got {
		assert.LessOrEqual(t, now.Sub(p.PostedAt), testMaxAge)
		if i > 0 {
			assert.False(t, got[i-1].PostedAt.Before(p.PostedAt), "sorted descending")
		}
	}

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(s.Path()), "*"+backupSuffix))
	require.NoError(t, err)
	require.Len(t, backups, 1, "exactly one backup file is created")

	var backedUp []storedPost
	data, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &backedUp))
	assert.Len(t, backedUp, 150, "backup holds the pre-rotation content")
}

func TestCleanupOldBackups(t *testing.T) {
	s := newTestStorage(t, 10<<20)
	dir := filepath.Dir(s.Path())

	oldBackup := filepath.Join(dir, "posts.20260801_120000"+backupSuffix)
	freshBackup := filepath.Join(dir, "posts.20260826_120000"+backupSuffix)
	require.NoError(t, os.WriteFile(oldBackup, []byte("[]"), 0o644))
	require.NoError(t, os.WriteFile(freshBackup, []byte("[]"), 0o644))

	stale := time.Now().Add(-10 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(oldBackup, stale, stale))

	s.CleanupOldBackups(7 * 24 * time.Hour)

	_, err := os.Stat(oldBackup)
	assert.True(t, os.IsNotExist(err), "stale backup removed")
	_, err = os.Stat(freshBackup)
	assert.NoError(t, err, "recent backup kept")
}
