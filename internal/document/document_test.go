package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opportunity-sync-go/internal/formatter"
)

func docFromLines(lines ...string) *Document {
	d := New()
	for _, line := range lines {
		d.Paragraphs = append(d.Paragraphs, Paragraph{Text: line})
	}
	return d
}

func TestFindSection(t *testing.T) {
	d := docFromLines(
		"X",
		"",
		"📞 CALL TRANSCRIPTS",
		"",
		"body",
		"",
		"📧 EMAIL CORRESPONDENCE",
		"",
	)

	assert.Equal(t, 2, d.FindSection("CALL TRANSCRIPTS"))
	assert.Equal(t, 6, d.FindSection("EMAIL CORRESPONDENCE"))
	assert.Equal(t, NotFound, d.FindSection("NO SUCH SECTION"))
}

func TestFindSectionEmptyDocument(t *testing.T) {
	d := New()
	assert.Equal(t, NotFound, d.FindSection("CALL TRANSCRIPTS"))
}

func TestAppendToSection(t *testing.T) {
	d := docFromLines(
		"📞 CALL TRANSCRIPTS",
		"",
		"existing",
	)

	ok := d.AppendToSection("CALL TRANSCRIPTS", "first\nsecond")
	require.True(t, ok)

	texts := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		texts[i] = p.Text
	}
	assert.Equal(t, []string{
		"📞 CALL TRANSCRIPTS",
		"",
		"first",
		"second",
		"existing",
	}, texts)
}

func TestAppendToSectionNewestFirst(t *testing.T) {
	d := docFromLines("📞 CALL TRANSCRIPTS", "")

	require.True(t, d.AppendToSection("CALL TRANSCRIPTS", "older"))
	require.True(t, d.AppendToSection("CALL TRANSCRIPTS", "newer"))

	assert.Equal(t, "newer", d.Paragraphs[2].Text)
	assert.Equal(t, "older", d.Paragraphs[3].Text)
}

func TestAppendToSectionMissing(t *testing.T) {
	d := docFromLines("some text", "more text")
	before := d.Text()

	ok := d.AppendToSection("CALL TRANSCRIPTS", "content")

	assert.False(t, ok)
	assert.Equal(t, before, d.Text())
}

func TestAppendToSectionHeaderAtEnd(t *testing.T) {
	d := docFromLines("📅 TIMELINE & COMMITMENTS")

	ok := d.AppendToSection("TIMELINE & COMMITMENTS", "milestone")

	require.True(t, ok)
	assert.Equal(t, "milestone", d.Paragraphs[1].Text)
}

func TestInitStructure(t *testing.T) {
	d := docFromLines("leftover content")
	d.InitStructure("Acme Corp", "https://salesforce.com/opp/123")

	require.Len(t, d.Paragraphs, 14)

	title := d.Paragraphs[0]
	assert.Equal(t, "Acme Corp - Customer Consolidation", title.Text)
	require.Len(t, title.Bold, 1)
	assert.Equal(t, Span{Start: 0, End: len([]rune(title.Text))}, title.Bold[0])

	link := d.Paragraphs[2]
	assert.Equal(t, "Salesforce Opportunity: https://salesforce.com/opp/123", link.Text)
	require.Len(t, link.Links, 1)
	assert.Equal(t, "https://salesforce.com/opp/123", link.Links[0].URL)
	assert.Equal(t, "https://salesforce.com/opp/123",
		string([]rune(link.Text)[link.Links[0].Start:link.Links[0].End]))

	assert.Equal(t, formatter.HorizontalRule, d.Paragraphs[4].Text)

	assert.Equal(t, "📞 CALL TRANSCRIPTS", d.Paragraphs[6].Text)
	assert.Equal(t, "📧 EMAIL CORRESPONDENCE", d.Paragraphs[8].Text)
	assert.Equal(t, "🔧 TECHNICAL REQUIREMENTS", d.Paragraphs[10].Text)
	assert.Equal(t, "📅 TIMELINE & COMMITMENTS", d.Paragraphs[12].Text)
	assert.NotEmpty(t, d.Paragraphs[6].Bold)

	assert.NotContains(t, d.Text(), "leftover content")
}

func TestHasStructure(t *testing.T) {
	empty := New()
	assert.False(t, empty.HasStructure())

	unstructured := docFromLines("meeting notes", "action items")
	assert.False(t, unstructured.HasStructure())

	structured := New()
	structured.InitStructure("Acme Corp", "https://salesforce.com/opp/123")
	assert.True(t, structured.HasStructure())
}

func TestInitStructureThenAppendAllSections(t *testing.T) {
	d := New()
	d.InitStructure("Acme Corp", "https://salesforce.com/opp/123")

	for _, name := range formatter.SectionNames {
		require.True(t, d.AppendToSection(name, "entry for "+name))
	}

	text := d.Text()
	for _, name := range formatter.SectionNames {
		assert.Contains(t, text, "entry for "+name)
	}
	// Each entry lands inside its own section, before the next header.
	calls := d.FindSection(formatter.SectionTranscripts)
	emails := d.FindSection(formatter.SectionEmails)
	entry := -1
	for i, p := range d.Paragraphs {
		if p.Text == "entry for "+formatter.SectionTranscripts {
			entry = i
			break
		}
	}
	require.NotEqual(t, -1, entry)
	assert.Greater(t, entry, calls)
	assert.Less(t, entry, emails)
}

func TestText(t *testing.T) {
	d := docFromLines("a", "", "b")
	assert.Equal(t, "a\n\nb", d.Text())
	assert.Equal(t, 2, strings.Count(d.Text(), "\n"))
}
