package docstore

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/sirupsen/logrus"
	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/document"
	"opportunity-sync-go/internal/googleauth"
)

// GoogleDocsStore implements Store over the Google Docs API. Documents
// are written whole: existing content is deleted and the full paragraph
// list reinserted with its style spans in one batch update.
type GoogleDocsStore struct {
	service *docs.Service
}

// NewGoogleDocsStore creates a Docs-backed document store.
func NewGoogleDocsStore(cfg *config.GoogleConfig) (*GoogleDocsStore, error) {
	ctx := context.Background()

	service, err := docs.NewService(ctx,
		option.WithTokenSource(googleauth.TokenSource(ctx, cfg, docs.DocumentsScope)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	return &GoogleDocsStore{service: service}, nil
}

// GetOrCreate opens the document by ID when possible; any open failure,
// including an invalid ID, falls through to creating a new document.
func (s *GoogleDocsStore) GetOrCreate(ctx context.Context, handle, name string) (string, bool, error) {
	if strings.TrimSpace(handle) != "" {
		if _, err := s.service.Documents.Get(handle).Context(ctx).Do(); err == nil {
			return handle, false, nil
		} else {
			logrus.Warnf("Could not open doc %s, creating new: %v", handle, err)
		}
	}

	created, err := s.service.Documents.Create(&docs.Document{Title: name}).Context(ctx).Do()
	if err != nil {
		return "", false, &ResolutionError{Handle: handle, Err: err}
	}

	return created.DocumentId, true, nil
}

// Load reads the document's paragraph texts. Style spans are not read
// back; section probing and appending only need the text.
func (s *GoogleDocsStore) Load(ctx context.Context, handle string) (*document.Document, error) {
	d, err := s.service.Documents.Get(handle).Context(ctx).Do()
	if err != nil {
		return nil, &ResolutionError{Handle: handle, Err: err}
	}

	doc := document.New()
	if d.Body == nil {
		return doc, nil
	}

	for _, elem := range d.Body.Content {
		if elem.Paragraph == nil {
			continue
		}
		var b strings.Builder
		for _, pe := range elem.Paragraph.Elements {
			if pe.TextRun != nil {
				b.WriteString(pe.TextRun.Content)
			}
		}
		doc.Paragraphs = append(doc.Paragraphs, document.Paragraph{
			Text: strings.TrimSuffix(b.String(), "\n"),
		})
	}

	// A new Google Doc contains a single empty paragraph; treat it as an
	// empty document so the structure probe behaves the same as locally.
	if len(doc.Paragraphs) == 1 && doc.Paragraphs[0].Text == "" {
		doc.Paragraphs = nil
	}

	return doc, nil
}

// Save replaces the remote document's content with the given paragraphs.
func (s *GoogleDocsStore) Save(ctx context.Context, handle string, doc *document.Document) error {
	remote, err := s.service.Documents.Get(handle).Context(ctx).Do()
	if err != nil {
		return &ResolutionError{Handle: handle, Err: err}
	}

	var endIndex int64 = 1
	if remote.Body != nil && len(remote.Body.Content) > 0 {
		endIndex = remote.Body.Content[len(remote.Body.Content)-1].EndIndex
	}

	var requests []*docs.Request

	// Clear everything but the final implicit newline.
	if endIndex > 2 {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: endIndex - 1},
			},
		})
	}

	text, boldRanges, linkRanges := render(doc)
	if text != "" {
		requests = append(requests, &docs.Request{
			InsertText: &docs.InsertTextRequest{
				Text:     text,
				Location: &docs.Location{Index: 1},
			},
		})
	}

	for _, r := range boldRanges {
		requests = append(requests, &docs.Request{
			UpdateTextStyle: &docs.UpdateTextStyleRequest{
				Range:     &docs.Range{StartIndex: r.Start, EndIndex: r.End},
				TextStyle: &docs.TextStyle{Bold: true},
				Fields:    "bold",
			},
		})
	}

	for _, r := range linkRanges {
		requests = append(requests, &docs.Request{
			UpdateTextStyle: &docs.UpdateTextStyleRequest{
				Range:     &docs.Range{StartIndex: r.Start, EndIndex: r.End},
				TextStyle: &docs.TextStyle{Link: &docs.Link{Url: r.URL}},
				Fields:    "link",
			},
		})
	}

	if len(requests) == 0 {
		return nil
	}

	_, err = s.service.Documents.BatchUpdate(handle, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", handle, err)
	}
	return nil
}

type styleRange struct {
	Start, End int64
}

type linkRange struct {
	styleRange
	URL string
}

// render flattens the paragraph list to newline-joined text and converts
// per-paragraph style spans to absolute document indices (body content
// starts at index 1). The Docs API measures ranges in UTF-16 code units,
// not runes, so the section header emoji each count as two units.
func render(doc *document.Document) (string, []styleRange, []linkRange) {
	var b strings.Builder
	var bolds []styleRange
	var links []linkRange

	base := int64(1)
	for i, p := range doc.Paragraphs {
		runes := []rune(p.Text)
		for _, span := range p.Bold {
			bolds = append(bolds, styleRange{
				Start: base + utf16Len(runes[:span.Start]),
				End:   base + utf16Len(runes[:span.End]),
			})
		}
		for _, l := range p.Links {
			links = append(links, linkRange{
				styleRange: styleRange{
					Start: base + utf16Len(runes[:l.Start]),
					End:   base + utf16Len(runes[:l.End]),
				},
				URL: l.URL,
			})
		}

		b.WriteString(p.Text)
		if i < len(doc.Paragraphs)-1 {
			b.WriteString("\n")
		}
		base += utf16Len(runes) + 1
	}

	return b.String(), bolds, links
}

func utf16Len(runes []rune) int64 {
	return int64(len(utf16.Encode(runes)))
}
