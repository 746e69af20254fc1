package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/formatter"
	"opportunity-sync-go/internal/googleauth"
)

// GmailSource implements Source using the Gmail API.
type GmailSource struct {
	service    *gmail.Service
	userEmail  string
	maxThreads int64
}

// NewGmailSource creates a Gmail-API-backed thread source.
func NewGmailSource(cfg *config.GoogleConfig, maxThreads int) (*GmailSource, error) {
	ctx := context.Background()

	service, err := gmail.NewService(ctx,
		option.WithTokenSource(googleauth.TokenSource(ctx, cfg, gmail.GmailReadonlyScope)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	if maxThreads <= 0 {
		maxThreads = DefaultMaxThreads
	}

	userEmail := cfg.UserEmail
	if userEmail == "" {
		userEmail = "me"
	}

	return &GmailSource{
		service:    service,
		userEmail:  userEmail,
		maxThreads: int64(maxThreads),
	}, nil
}

// SearchThreads searches Gmail for threads matching the filter and
// normalizes each into a Thread with plain-text message bodies.
func (s *GmailSource) SearchThreads(ctx context.Context, filter Filter) ([]Thread, error) {
	query := BuildQuery(filter)

	list, err := s.service.Users.Threads.List(s.userEmail).
		Q(query).
		MaxResults(s.maxThreads).
		Context(ctx).
		Do()
	if err != nil {
		return nil, &SearchError{Err: fmt.Errorf("failed to list threads: %w", err)}
	}

	threads := make([]Thread, 0, len(list.Threads))

	for _, ref := range list.Threads {
		full, err := s.service.Users.Threads.Get(s.userEmail, ref.Id).
			Format("full").
			Context(ctx).
			Do()
		if err != nil {
			return nil, &SearchError{Err: fmt.Errorf("failed to get thread %s: %w", ref.Id, err)}
		}

		thread, err := s.parseThread(full)
		if err != nil {
			logrus.Warnf("Failed to parse thread %s: %v", ref.Id, err)
			continue
		}

		threads = append(threads, thread)
	}

	return threads, nil
}

// parseThread normalizes a full Gmail thread.
func (s *GmailSource) parseThread(thread *gmail.Thread) (Thread, error) {
	if len(thread.Messages) == 0 {
		return Thread{}, fmt.Errorf("thread %s has no messages", thread.Id)
	}

	messages := make([]Message, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		messages = append(messages, s.parseMessage(msg))
	}

	return Thread{
		Subject:      messages[0].Subject,
		MessageCount: len(messages),
		Messages:     messages,
	}, nil
}

// parseMessage extracts headers, timestamp and the plain-text body.
func (s *GmailSource) parseMessage(msg *gmail.Message) Message {
	m := Message{}

	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				m.Subject = header.Value
			case "From":
				m.From = header.Value
			case "To":
				m.To = header.Value
			}
		}
		s.parseBody(msg.Payload, &m)
	}

	m.Date = time.UnixMilli(msg.InternalDate)
	m.DateFormatted = formatter.DisplayDate(m.Date)

	return m
}

// parseBody recursively walks message parts looking for text/plain.
func (s *GmailSource) parseBody(part *gmail.MessagePart, m *Message) {
	if part.Body != nil && part.Body.Data != "" && part.MimeType == "text/plain" {
		data, err := base64.URLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			logrus.Warnf("Failed to decode message body: %v", err)
		} else if m.Body == "" {
			m.Body = string(data)
		}
	}

	for _, sub := range part.Parts {
		s.parseBody(sub, m)
	}
}

// Close closes the Gmail source. The API client needs no explicit close.
func (s *GmailSource) Close() error {
	return nil
}
