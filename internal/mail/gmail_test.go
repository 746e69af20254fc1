package mail

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmail "google.golang.org/api/gmail/v1"

	"opportunity-sync-go/internal/formatter"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseMessage(t *testing.T) {
	src := &GmailSource{}
	sent := time.Date(2025, 1, 11, 10, 0, 0, 0, time.Local)

	msg := &gmail.Message{
		InternalDate: sent.UnixMilli(),
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Integration Questions"},
				{Name: "From", Value: "john@acme.com"},
				{Name: "To", Value: "sales@vendor.com"},
			},
			Body: &gmail.MessagePartBody{Data: encodeBody("Can you help us integrate?")},
		},
	}

	m := src.parseMessage(msg)

	assert.Equal(t, "Integration Questions", m.Subject)
	assert.Equal(t, "john@acme.com", m.From)
	assert.Equal(t, "sales@vendor.com", m.To)
	assert.Equal(t, "Can you help us integrate?", m.Body)
	assert.True(t, m.Date.Equal(sent))
	assert.Equal(t, formatter.DisplayDate(sent), m.DateFormatted)
}

func TestParseMessageMultipart(t *testing.T) {
	src := &GmailSource{}

	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encodeBody("<p>html body</p>")},
				},
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encodeBody("plain body")},
				},
			},
		},
	}

	m := src.parseMessage(msg)

	assert.Equal(t, "plain body", m.Body)
}

func TestParseMessageKeepsFirstPlainPart(t *testing.T) {
	src := &GmailSource{}

	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encodeBody("first")},
				},
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encodeBody("second")},
				},
			},
		},
	}

	m := src.parseMessage(msg)

	assert.Equal(t, "first", m.Body)
}

func TestParseMessageNoPayload(t *testing.T) {
	src := &GmailSource{}

	m := src.parseMessage(&gmail.Message{InternalDate: 0})

	assert.Empty(t, m.Subject)
	assert.Empty(t, m.Body)
	assert.NotEmpty(t, m.DateFormatted)
}

func TestParseThread(t *testing.T) {
	src := &GmailSource{}

	thread := &gmail.Thread{
		Id: "th1",
		Messages: []*gmail.Message{
			{
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "Pricing"},
						{Name: "From", Value: "a@acme.com"},
					},
					Body: &gmail.MessagePartBody{Data: encodeBody("first")},
				},
			},
			{
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Headers: []*gmail.MessagePartHeader{
						{Name: "Subject", Value: "Re: Pricing"},
						{Name: "From", Value: "b@vendor.com"},
					},
					Body: &gmail.MessagePartBody{Data: encodeBody("second")},
				},
			},
		},
	}

	parsed, err := src.parseThread(thread)

	require.NoError(t, err)
	assert.Equal(t, "Pricing", parsed.Subject)
	assert.Equal(t, 2, parsed.MessageCount)
	require.Len(t, parsed.Messages, 2)
	assert.Equal(t, "first", parsed.Messages[0].Body)
	assert.Equal(t, "second", parsed.Messages[1].Body)
}

func TestParseThreadEmpty(t *testing.T) {
	src := &GmailSource{}

	_, err := src.parseThread(&gmail.Thread{Id: "empty"})

	assert.Error(t, err)
}
