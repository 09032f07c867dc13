package markup

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/nevaNews/internal/model"
)

func TestHashTag(t *testing.T) {
	assert.Equal(t, "#Новости", HashTag(" Новости "))
	assert.Equal(t, "#Ключевые_слова", HashTag("Ключевые слова"))
}

func TestFormatPost(t *testing.T) {
	post := model.NewsPost{
		Title:       "Приём в школы",
		Description: "Начался приём заявлений.",
		Link:        "http://nevarono.spb.ru/novosti/123.html",
		Category:    "Образование",
		PostedAt:    time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC),
		Keywords:    []string{"школа", "приём заявлений"},
	}

	got := FormatPost(post)

	assert.Contains(t, got, `<a href="http://nevarono.spb.ru/novosti/123.html"><b>Приём в школы</b></a>`)
	assert.Contains(t, got, "Начался приём заявлений.")
	assert.Contains(t, got, "26.08.2026 10:30")
	assert.True(t, strings.HasSuffix(got, "#Образование #школа #приём_заявлений"), "hashtag line is last")
	assert.NotContains(t, got, "⚠️")
}

func TestFormatPost_ImportantMarker(t *testing.T) {
	post := model.NewsPost{
		Title:     "Срочно",
		Link:      "http://nevarono.spb.ru/novosti/1.html",
		Category:  "ГО и ЧС",
		PostedAt:  time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC),
		Important: true,
	}

	assert.True(t, strings.HasPrefix(FormatPost(post), "⚠️ "))
}

func TestFormatPost_EscapesHTMLInText(t *testing.T) {
	post := model.NewsPost{
		Title:       "1 < 2 & 3 > 2",
		Description: "<b>не разметка</b>",
		Link:        "http://nevarono.spb.ru/novosti/2.html",
		Category:    "Новости",
		PostedAt:    time.Date(2026, 8, 26, 8, 0, 0, 0, time.UTC),
	}

	got := FormatPost(post)

	assert.Contains(t, got, "<b>1 &lt; 2 &amp; 3 &gt; 2</b>")
	assert.Contains(t, got, "&lt;b&gt;не разметка&lt;/b&gt;")
}

func TestSplit_ShortTextIsUntouched(t *testing.T) {
	text := "короткое сообщение.\nвторая строка"

	got := Split(text, 4096)

	require.Len(t, got, 1)
	assert.Equal(t, text, got[0])

	// Idempotence: re-splitting a produced chunk yields it unchanged.
	assert.Equal(t, got, Split(got[0], 4096))
}

func TestSplit_ExactFit(t *testing.T) {
	text := strings.Repeat("x", 4096)

	got := Split(text, 4096)

	require.Len(t, got, 1)
	assert.Equal(t, text, got[0])
}

func TestSplit_PrefersNewlineBoundary(t *testing.T) {
	head := strings.Repeat("a", 4000)
	tail := strings.Repeat("b", 999)
	text := head + "\n" + tail
	require.Equal(t, 5000, len([]rune(text)))

	got := Split(text, 4096)

	require.Len(t, got, 2)
	assert.Equal(t, head, got[0])
	assert.Equal(t, tail, got[1], "leading newline of the remainder is trimmed")
}

func TestSplit_FallsBackToSentencePeriod(t *testing.T) {
	head := strings.Repeat("a", 4090) + "."
	tail := " " + strings.Repeat("b", 500)
	text := head + tail

	got := Split(text, 4096)

	require.Len(t, got, 2)
	assert.Equal(t, head, got[0], "period stays in the chunk")
	assert.Equal(t, strings.TrimLeft(tail, " "), got[1])
}

func TestSplit_HardCutWithoutBoundaries(t *testing.T) {
	text := strings.Repeat("ф", 5000) // multibyte on purpose

	got := Split(text, 4096)

	require.Len(t, got, 2)
	assert.Equal(t, 4096, len([]rune(got[0])))
	assert.Equal(t, 904, len([]rune(got[1])))
}

func TestSplit_ChunkLengthBoundAndReconstruction(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 300; i++ {
		sb.WriteString("Абзац про районные новости номер раз. Ещё одно предложение.\n")
	}
	text := sb.String()

	got := Split(text, 200)

	require.Greater(t, len(got), 1)
	for _, chunk := range got {
		assert.LessOrEqual(t, len([]rune(chunk)), 200)
		assert.NotEmpty(t, chunk)
	}

	// Concatenation reconstructs the original modulo the whitespace trimmed at each
	// boundary.
	squash := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	assert.Equal(t, squash(text), squash(strings.Join(got, " ")))
}

func TestSplit_EmptyText(t *testing.T) {
	assert.Equal(t, []string{""}, Split("", 4096))
}
