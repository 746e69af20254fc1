// Package document models a consolidation document as a flat list of
// paragraphs with optional style spans, and implements the section
// operations the orchestrator relies on. Persistence lives in docstore.
package document

import (
	"strings"

	"opportunity-sync-go/internal/formatter"
)

// NotFound is returned by FindSection when no paragraph matches.
const NotFound = -1

// Span marks a half-open [Start, End) rune-offset range within a
// paragraph's text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LinkSpan is a hyperlink range within a paragraph.
type LinkSpan struct {
	Span
	URL string `json:"url"`
}

// Paragraph is one line of a document, plain text plus style spans.
type Paragraph struct {
	Text  string     `json:"text"`
	Bold  []Span     `json:"bold,omitempty"`
	Links []LinkSpan `json:"links,omitempty"`
}

// Document is an ordered sequence of paragraphs. There is no structural
// nesting; sections exist only as header paragraphs.
type Document struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// New returns an empty document.
func New() *Document {
	return &Document{}
}

// FindSection scans top-to-bottom and returns the index of the first
// paragraph whose text contains sectionName as a substring, or NotFound.
// Substring match is deliberate: it is what the stored documents were
// built against. A stray body paragraph containing the phrase would be
// misidentified as a header.
func (d *Document) FindSection(sectionName string) int {
	for i, p := range d.Paragraphs {
		if strings.Contains(p.Text, sectionName) {
			return i
		}
	}
	return NotFound
}

// HasStructure reports whether the four-section template is present,
// probing for the CALL TRANSCRIPTS header. The probe, not paragraph
// count, decides whether InitStructure must run: a non-empty document
// without the template still needs one.
func (d *Document) HasStructure() bool {
	return d.FindSection(formatter.SectionTranscripts) != NotFound
}

// AppendToSection inserts each line of text as a new paragraph
// immediately after the named section's header and its trailing blank
// line. Returns false, with no mutation, when the section is missing.
func (d *Document) AppendToSection(sectionName, text string) bool {
	idx := d.FindSection(sectionName)
	if idx == NotFound {
		return false
	}

	insertAt := idx + 2
	if insertAt > len(d.Paragraphs) {
		insertAt = len(d.Paragraphs)
	}

	lines := strings.Split(text, "\n")
	inserted := make([]Paragraph, len(lines))
	for i, line := range lines {
		inserted[i] = Paragraph{Text: line}
	}

	d.Paragraphs = append(d.Paragraphs[:insertAt], append(inserted, d.Paragraphs[insertAt:]...)...)
	return true
}

// InitStructure clears the document and writes the standard template:
// header block, then the four fixed sections, each a bold emoji header
// followed by one blank paragraph.
func (d *Document) InitStructure(opportunityName, salesforceURL string) {
	d.Paragraphs = d.Paragraphs[:0]

	title := formatter.DocumentTitle(opportunityName)
	d.appendParagraph(Paragraph{
		Text: title,
		Bold: []Span{{Start: 0, End: len([]rune(title))}},
	})
	d.appendParagraph(Paragraph{})

	link := "Salesforce Opportunity: " + salesforceURL
	start := len([]rune("Salesforce Opportunity: "))
	d.appendParagraph(Paragraph{
		Text: link,
		Links: []LinkSpan{{
			Span: Span{Start: start, End: len([]rune(link))},
			URL:  salesforceURL,
		}},
	})
	d.appendParagraph(Paragraph{})
	d.appendParagraph(Paragraph{Text: formatter.HorizontalRule})
	d.appendParagraph(Paragraph{})

	for _, name := range formatter.SectionNames {
		header := formatter.SectionHeader(name)
		d.appendParagraph(Paragraph{
			Text: header,
			Bold: []Span{{Start: 0, End: len([]rune(header))}},
		})
		d.appendParagraph(Paragraph{})
	}
}

// Text renders the whole document as newline-joined paragraph text.
func (d *Document) Text() string {
	lines := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

func (d *Document) appendParagraph(p Paragraph) {
	d.Paragraphs = append(d.Paragraphs, p)
}
