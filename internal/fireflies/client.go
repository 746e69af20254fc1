// Package fireflies is a thin client for the Fireflies.ai GraphQL API.
// The query is a fixed template assembled by string concatenation; this
// is not a general GraphQL client.
package fireflies

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"opportunity-sync-go/internal/config"
)

// DefaultLimit caps the number of transcripts fetched per query.
const DefaultLimit = 50

// ErrMissingAPIKey indicates no Fireflies credential is configured. The
// orchestrator treats this as run-fatal: no credential, no fetch possible.
var ErrMissingAPIKey = errors.New("fireflies API key not configured")

// SourceError is a failed call to the Fireflies API: a non-200 status or
// a provider-level GraphQL error list.
type SourceError struct {
	StatusCode int
	Message    string
}

func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fireflies API error: HTTP %d - %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fireflies GraphQL errors: %s", e.Message)
}

// MalformedResponseError indicates the response lacked the expected
// data.transcripts container.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "invalid fireflies response: " + e.Reason
}

// Utterance is one (speaker, text) pair of a transcript.
type Utterance struct {
	Speaker string `json:"speaker_name"`
	Text    string `json:"text"`
}

// Transcript is a parsed meeting transcript. Immutable once parsed.
type Transcript struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Date            string      `json:"date"`
	DurationMinutes int         `json:"duration_minutes"`
	Participants    []string    `json:"participants"`
	Sentences       []Utterance `json:"sentences"`
	FullText        string      `json:"full_text"`

	// dateMillis is the provider's epoch-millisecond meeting date, kept
	// for client-side window filtering.
	dateMillis int64
}

// Filter narrows a transcript fetch. Limit and ChannelID are server-side
// query arguments; Since and ParticipantDomain are applied client-side on
// the parsed result set.
type Filter struct {
	Limit             int
	ChannelID         string
	Since             time.Time
	ParticipantDomain string
}

// Client calls the Fireflies GraphQL endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

// NewClient creates a Fireflies client from configuration.
func NewClient(cfg *config.FirefliesConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
	}
}

// HasCredential reports whether an API key is configured. The
// orchestrator refuses to start a run without one.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// buildQuery assembles the fixed transcripts query with optional limit
// and channel_id arguments.
func buildQuery(limit int, channelID string) string {
	var args []string
	if limit > 0 {
		args = append(args, fmt.Sprintf("limit: %d", limit))
	}
	if channelID != "" {
		args = append(args, fmt.Sprintf("channel_id: %q", channelID))
	}

	argsString := ""
	if len(args) > 0 {
		argsString = "(" + strings.Join(args, ", ") + ")"
	}

	return `
    query {
      transcripts` + argsString + ` {
        id
        title
        dateString
        date
        duration
        participants
        sentences {
          speaker_name
          text
          start_time
        }
        audio_url
        transcript_url
      }
    }
  `
}

type rawSentence struct {
	SpeakerName string `json:"speaker_name"`
	Text        string `json:"text"`
}

type rawTranscript struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	DateString   string        `json:"dateString"`
	Date         int64         `json:"date"`
	Duration     float64       `json:"duration"`
	Participants []string      `json:"participants"`
	Sentences    []rawSentence `json:"sentences"`
}

type graphQLResponse struct {
	Data *struct {
		Transcripts []rawTranscript `json:"transcripts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchTranscripts fetches transcripts matching the filter.
func (c *Client) FetchTranscripts(ctx context.Context, filter Filter) ([]Transcript, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	payload, err := json.Marshal(map[string]string{"query": buildQuery(limit, filter.ChannelID)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &SourceError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceError{Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var parsed graphQLResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &MalformedResponseError{Reason: err.Error()}
	}

	if len(parsed.Errors) > 0 {
		msgs := make([]string, len(parsed.Errors))
		for i, e := range parsed.Errors {
			msgs[i] = e.Message
		}
		return nil, &SourceError{Message: strings.Join(msgs, ", ")}
	}

	if parsed.Data == nil || parsed.Data.Transcripts == nil {
		return nil, &MalformedResponseError{Reason: "missing data or transcripts"}
	}

	transcripts := make([]Transcript, 0, len(parsed.Data.Transcripts))
	for _, raw := range parsed.Data.Transcripts {
		transcripts = append(transcripts, parseTranscript(raw))
	}

	if !filter.Since.IsZero() {
		transcripts = filterSince(transcripts, filter.Since)
	}
	if filter.ParticipantDomain != "" {
		transcripts = filterByParticipantDomain(transcripts, filter.ParticipantDomain)
	}

	return transcripts, nil
}

// parseTranscript maps a raw record to the domain type. Duration seconds
// become minutes by rounding; absent lists default to empty, never nil.
func parseTranscript(raw rawTranscript) Transcript {
	participants := raw.Participants
	if participants == nil {
		participants = []string{}
	}

	sentences := make([]Utterance, 0, len(raw.Sentences))
	for _, s := range raw.Sentences {
		sentences = append(sentences, Utterance{Speaker: s.SpeakerName, Text: s.Text})
	}

	return Transcript{
		ID:              raw.ID,
		Title:           raw.Title,
		Date:            raw.DateString,
		DurationMinutes: int(math.Round(raw.Duration / 60)),
		Participants:    participants,
		Sentences:       sentences,
		FullText:        formatSentences(sentences),
		dateMillis:      raw.Date,
	}
}

// formatSentences joins utterances as "Speaker: text" lines. An empty
// list renders to the empty string.
func formatSentences(sentences []Utterance) string {
	if len(sentences) == 0 {
		return ""
	}
	lines := make([]string, len(sentences))
	for i, s := range sentences {
		lines[i] = s.Speaker + ": " + s.Text
	}
	return strings.Join(lines, "\n")
}

func filterSince(transcripts []Transcript, since time.Time) []Transcript {
	cutoff := since.UnixMilli()
	filtered := make([]Transcript, 0, len(transcripts))
	for _, t := range transcripts {
		if t.dateMillis >= cutoff {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

func filterByParticipantDomain(transcripts []Transcript, domain string) []Transcript {
	suffix := "@" + domain
	filtered := make([]Transcript, 0, len(transcripts))
	for _, t := range transcripts {
		for _, p := range t.Participants {
			if strings.HasSuffix(strings.ToLower(p), strings.ToLower(suffix)) {
				filtered = append(filtered, t)
				break
			}
		}
	}
	return filtered
}
