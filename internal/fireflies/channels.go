package fireflies

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Channel is a Fireflies channel discovered from recent transcripts. The
// API exposes only channel IDs, so sample transcript titles are attached
// to help identify which customer a channel belongs to.
type Channel struct {
	ID               string   `json:"id"`
	TranscriptTitles []string `json:"transcript_titles"`
}

const channelsQuery = `
    query {
      transcripts(limit: 50) {
        id
        title
        channels {
          id
        }
      }
    }
  `

type rawChannelTranscript struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Channels []struct {
		ID string `json:"id"`
	} `json:"channels"`
}

// ListChannels extracts the unique channel IDs referenced by recent
// transcripts. Fireflies has no direct channels query, so this is the
// configuration helper for filling in the channel column of the tracker.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload, err := json.Marshal(map[string]string{"query": channelsQuery})
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

	var parsed struct {
		Data *struct {
			Transcripts []rawChannelTranscript `json:"transcripts"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
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
	if parsed.Data == nil {
		return nil, &MalformedResponseError{Reason: "missing data or transcripts"}
	}

	byID := make(map[string]*Channel)
	var order []string
	for _, t := range parsed.Data.Transcripts {
		for _, ch := range t.Channels {
			entry, ok := byID[ch.ID]
			if !ok {
				entry = &Channel{ID: ch.ID}
				byID[ch.ID] = entry
				order = append(order, ch.ID)
			}
			if t.Title != "" && len(entry.TranscriptTitles) < 3 {
				entry.TranscriptTitles = append(entry.TranscriptTitles, t.Title)
			}
		}
	}

	channels := make([]Channel, 0, len(order))
	for _, id := range order {
		channels = append(channels, *byID[id])
	}
	return channels, nil
}
