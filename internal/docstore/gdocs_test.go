package docstore

import (
	"errors"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opportunity-sync-go/internal/document"
)

// spanText extracts the UTF-16 code unit range a style span covers, the
// same way the Docs API interprets Range indexes. Body content starts at
// index 1, so offsets shift by one.
func spanText(text string, start, end int64) string {
	units := utf16.Encode([]rune(text))
	return string(utf16.Decode(units[start-1 : end-1]))
}

func TestRender(t *testing.T) {
	doc := document.New()
	doc.InitStructure("Acme Corp", "https://salesforce.com/opp/123")

	text, bolds, links := render(doc)

	assert.Equal(t, doc.Text(), text)

	// Title plus the four section headers.
	require.Len(t, bolds, 5)
	assert.Equal(t, "Acme Corp - Customer Consolidation", spanText(text, bolds[0].Start, bolds[0].End))
	assert.Equal(t, "📞 CALL TRANSCRIPTS", spanText(text, bolds[1].Start, bolds[1].End))
	assert.Equal(t, "📧 EMAIL CORRESPONDENCE", spanText(text, bolds[2].Start, bolds[2].End))
	assert.Equal(t, "🔧 TECHNICAL REQUIREMENTS", spanText(text, bolds[3].Start, bolds[3].End))
	assert.Equal(t, "📅 TIMELINE & COMMITMENTS", spanText(text, bolds[4].Start, bolds[4].End))

	require.Len(t, links, 1)
	assert.Equal(t, "https://salesforce.com/opp/123", links[0].URL)
	assert.Equal(t, links[0].URL, spanText(text, links[0].Start, links[0].End))
}

func TestRenderOffsetsCountUTF16Units(t *testing.T) {
	doc := document.New()
	doc.InitStructure("Acme Corp", "https://salesforce.com/opp/123")

	text, bolds, _ := render(doc)
	require.Len(t, bolds, 5)

	// Each section header emoji is one rune but two UTF-16 code units, so
	// by the last header the two index schemes have drifted apart.
	last := bolds[4]
	header := "📅 TIMELINE & COMMITMENTS"
	assert.Equal(t, header, spanText(text, last.Start, last.End))
	assert.Equal(t, int64(len(utf16.Encode([]rune(header)))), last.End-last.Start)
	assert.Greater(t, int(last.Start), runeIndexOf(text, header)+1,
		"offsets preceding three emoji must exceed the rune index")
}

func runeIndexOf(text, needle string) int {
	runes := []rune(text)
	target := []rune(needle)
	for i := 0; i+len(target) <= len(runes); i++ {
		if string(runes[i:i+len(target)]) == needle {
			return i
		}
	}
	return -1
}

func TestRenderOffsetsAreAbsolute(t *testing.T) {
	doc := &document.Document{Paragraphs: []document.Paragraph{
		{Text: "plain"},
		{Text: "bold here", Bold: []document.Span{{Start: 5, End: 9}}},
	}}

	text, bolds, _ := render(doc)

	require.Len(t, bolds, 1)
	// "plain" is 5 runes plus a newline, so the second paragraph starts
	// at absolute index 7.
	assert.Equal(t, int64(12), bolds[0].Start)
	assert.Equal(t, int64(16), bolds[0].End)
	assert.Equal(t, "here", spanText(text, bolds[0].Start, bolds[0].End))
}

func TestRenderEmptyDocument(t *testing.T) {
	text, bolds, links := render(document.New())

	assert.Equal(t, "", text)
	assert.Empty(t, bolds)
	assert.Empty(t, links)
}

func TestResolutionError(t *testing.T) {
	cause := errors.New("permission denied")

	withHandle := &ResolutionError{Handle: "doc-1", Err: cause}
	assert.Contains(t, withHandle.Error(), "doc-1")
	assert.ErrorIs(t, withHandle, cause)

	created := &ResolutionError{Err: cause}
	assert.Contains(t, created.Error(), "failed to create document")
}
