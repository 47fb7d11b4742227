package news

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stockboard/internal/domain"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"AT&amp;T  beats\n estimates", "AT&T beats estimates"},
		{"", ""},
		{"<br/>", ""},
	}
	for _, tt := range tests {
		if got := StripHTML(tt.in); got != tt.want {
			t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractTickerContent(t *testing.T) {
	raw := "<p>Markets were mixed.</p><p>AAPL rose 2% on iPhone demand.</p><p>Oil fell.</p><p>Analysts like aapl.</p>"
	got := ExtractTickerContent(raw, "AAPL")
	if want := "AAPL rose 2% on iPhone demand. Analysts like aapl."; got != want {
		t.Errorf("ExtractTickerContent = %q, want %q", got, want)
	}

	got = ExtractTickerContent(raw, "TSLA")
	if want := "Markets were mixed. AAPL rose 2% on iPhone demand. Oil fell. Analysts like aapl."; got != want {
		t.Errorf("ExtractTickerContent fallback = %q, want %q", got, want)
	}
}

func TestNormalize(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	in := []domain.Article{
		{Headline: "Old <i>news</i>", URL: "https://x/1", Time: t0},
		{Headline: "Fresh", URL: "https://x/2", Time: t0.Add(2 * time.Hour), Summary: "<p>fresh body</p>"},
		{Headline: "Dup by url", URL: "https://x/1", Time: t0.Add(time.Hour)},
		{Headline: "   ", URL: "https://x/3", Time: t0},
		{Headline: "No link", Time: t0.Add(time.Hour)},
		{Headline: "no LINK", Time: t0.Add(3 * time.Hour)},
	}
	got := Normalize(in, "")

	var heads []string
	for _, a := range got {
		heads = append(heads, a.Headline)
	}
	assert.Equal(t, []string{"Fresh", "No link", "Old news"}, heads)
	assert.Equal(t, "fresh body", got[0].Summary)
	assert.Len(t, in, 6, "input untouched")
}

func TestRelatedTickers(t *testing.T) {
	got := RelatedTickers(domain.Article{Related: "aapl, MSFT,,  "})
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
	assert.Nil(t, RelatedTickers(domain.Article{}))
}

func TestIsCategory(t *testing.T) {
	assert.True(t, IsCategory("General"))
	assert.True(t, IsCategory("crypto"))
	assert.False(t, IsCategory("sports"))
}
