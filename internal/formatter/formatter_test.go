package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentHeader(t *testing.T) {
	header := DocumentHeader("Acme Corp", "https://salesforce.com/123")

	lines := strings.Split(header, "\n")
	assert.Equal(t, "Acme Corp - Customer Consolidation", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "Salesforce Opportunity: https://salesforce.com/123", lines[2])
	assert.Equal(t, HorizontalRule, lines[4])
	assert.Len(t, lines, 6)
}

func TestSectionHeader(t *testing.T) {
	assert.Equal(t, "📞 CALL TRANSCRIPTS", SectionHeader(SectionTranscripts))
	assert.Equal(t, "📧 EMAIL CORRESPONDENCE", SectionHeader(SectionEmails))
	assert.Equal(t, "🔧 TECHNICAL REQUIREMENTS", SectionHeader(SectionRequirements))
	assert.Equal(t, "📅 TIMELINE & COMMITMENTS", SectionHeader(SectionTimeline))
	assert.Equal(t, "📋 SOMETHING ELSE", SectionHeader("SOMETHING ELSE"))
}

func TestTranscriptSection(t *testing.T) {
	section := TranscriptSection(TranscriptInfo{
		Title:           "Acme Discovery Call",
		Date:            "2025-01-12",
		DurationMinutes: 30,
		Participants:    []string{"john@acme.com", "sara@acme.com"},
		FullText:        "John: We need help with integration.",
	})

	expected := "Acme Discovery Call - 2025-01-12\n" +
		"Participants: john@acme.com, sara@acme.com\n" +
		"Duration: 30 min\n" +
		"\n" +
		"John: We need help with integration."
	assert.Equal(t, expected, section)
}

func TestTranscriptSectionNoParticipants(t *testing.T) {
	section := TranscriptSection(TranscriptInfo{
		Title:           "Internal Sync",
		Date:            "2025-01-13",
		DurationMinutes: 15,
	})

	assert.NotContains(t, section, "Participants:")
	assert.Contains(t, section, "Duration: 15 min")
}

func TestThreadSectionSingleMessage(t *testing.T) {
	section := ThreadSection(ThreadInfo{
		Subject:      "Integration Questions",
		MessageCount: 1,
		Messages: []MessageInfo{{
			From:          "john@acme.com",
			Subject:       "Integration Questions",
			DateFormatted: "Jan 11, 2025 10:00",
			Body:          "Can you help us integrate?",
		}},
	})

	assert.Contains(t, section, `Thread: "Integration Questions" (1 message)`)
	assert.NotContains(t, section, "(1 messages)")
	assert.Contains(t, section, "From: john@acme.com")
	assert.Contains(t, section, "Date: Jan 11, 2025 10:00")
	assert.Contains(t, section, "Can you help us integrate?")
	assert.NotContains(t, section, "---")
}

func TestThreadSectionSeparatesMessages(t *testing.T) {
	section := ThreadSection(ThreadInfo{
		Subject:      "Pricing",
		MessageCount: 2,
		Messages: []MessageInfo{
			{From: "a@acme.com", Subject: "Pricing", DateFormatted: "Jan 1, 2025 09:00", Body: "first"},
			{From: "b@acme.com", Subject: "Re: Pricing", DateFormatted: "Jan 2, 2025 09:00", Body: "second"},
		},
	})

	assert.Contains(t, section, `Thread: "Pricing" (2 messages)`)
	assert.Contains(t, section, "---")
	assert.Less(t, strings.Index(section, "first"), strings.Index(section, "---"))
	assert.Less(t, strings.Index(section, "---"), strings.Index(section, "second"))
}

func TestThreadSectionSubjectNotEscaped(t *testing.T) {
	section := ThreadSection(ThreadInfo{
		Subject:      `He said "yes" to the pilot`,
		MessageCount: 1,
		Messages: []MessageInfo{{
			From:          "john@acme.com",
			Subject:       `He said "yes" to the pilot`,
			DateFormatted: "Jan 11, 2025 10:00",
			Body:          "Great news.",
		}},
	})

	assert.Contains(t, section, `Thread: "He said "yes" to the pilot" (1 message)`)
	assert.NotContains(t, section, `\"`)
}

func TestContentSeparator(t *testing.T) {
	assert.Equal(t, "\n---\n", ContentSeparator())
}

func TestDuration(t *testing.T) {
	assert.Equal(t, "45 min", Duration(45))
	assert.Equal(t, "1 hr", Duration(60))
	assert.Equal(t, "2 hr", Duration(120))
	assert.Equal(t, "1 hr 30 min", Duration(90))
	assert.Equal(t, "0 min", Duration(0))
}

func TestSyncTimestamp(t *testing.T) {
	ts := time.Date(2025, 1, 12, 8, 5, 9, 0, time.Local)
	assert.Equal(t, "2025-01-12 08:05:09", SyncTimestamp(ts))
}

func TestParseSyncTimestamp(t *testing.T) {
	parsed, ok := ParseSyncTimestamp("2025-01-12 08:05:09")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 12, 8, 5, 9, 0, time.Local), parsed)

	_, ok = ParseSyncTimestamp("")
	assert.False(t, ok)

	_, ok = ParseSyncTimestamp("not a timestamp")
	assert.False(t, ok)
}

func TestGmailSearchDate(t *testing.T) {
	d := time.Date(2025, 3, 7, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "2025/03/07", GmailSearchDate(d))
}

func TestDisplayDate(t *testing.T) {
	d := time.Date(2025, 1, 11, 10, 0, 0, 0, time.Local)
	assert.Equal(t, "Jan 11, 2025 10:00", DisplayDate(d))
}
