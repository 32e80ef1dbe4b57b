package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerptTextFlattensMarkup(t *testing.T) {
	got := ExcerptText("<p>Hello &amp; <b>welcome</b> to the stacks</p>", 280)
	assert.Equal(t, "Hello & welcome to the stacks", got)
}

func TestExcerptTextCollapsesWhitespace(t *testing.T) {
	got := ExcerptText("first\n\n   second\t third", 280)
	assert.Equal(t, "first second third", got)
}

func TestExcerptTextLeavesShortTextAlone(t *testing.T) {
	got := ExcerptText("short note", 280)
	assert.Equal(t, "short note", got)
}

func TestExcerptTextCutsOnWordBoundary(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 100))

	got := ExcerptText(long, 20)
	assert.Equal(t, "word word word word...", got)
}

func TestExcerptTextCutsMidWordWhenNoBoundaryIsNear(t *testing.T) {
	got := ExcerptText(strings.Repeat("a", 50), 20)
	assert.Equal(t, strings.Repeat("a", 20)+"...", got)
}

func TestExcerptTextCountsRunesNotBytes(t *testing.T) {
	got := ExcerptText(strings.Repeat("ü", 50), 20)
	assert.Equal(t, strings.Repeat("ü", 20)+"...", got)
}

func TestEnhanceHTMLContentHardensImages(t *testing.T) {
	out := string(EnhanceHTMLContent(`<p>look</p><img src="https://example.com/plate.jpg">`))

	assert.Contains(t, out, `referrerpolicy="no-referrer"`)
	assert.Contains(t, out, `loading="lazy"`)
	assert.Contains(t, out, "imgerr.svg")
	assert.Contains(t, out, "<p>look</p>")
}

func TestEnhanceHTMLContentPassesEmptyThrough(t *testing.T) {
	assert.Equal(t, "", string(EnhanceHTMLContent("")))
}
