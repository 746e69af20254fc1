// Package formatter contains the pure text-formatting functions that turn
// transcripts and email threads into document section bodies. No I/O here.
package formatter

import (
	"fmt"
	"strings"
	"time"
)

// Fixed section names, in the order they appear in every document.
const (
	SectionTranscripts  = "CALL TRANSCRIPTS"
	SectionEmails       = "EMAIL CORRESPONDENCE"
	SectionRequirements = "TECHNICAL REQUIREMENTS"
	SectionTimeline     = "TIMELINE & COMMITMENTS"
)

// SectionNames lists the four document sections in fixed order.
var SectionNames = []string{
	SectionTranscripts,
	SectionEmails,
	SectionRequirements,
	SectionTimeline,
}

var sectionEmoji = map[string]string{
	SectionTranscripts:  "📞",
	SectionEmails:       "📧",
	SectionRequirements: "🔧",
	SectionTimeline:     "📅",
}

// HorizontalRule separates the document header from the sections.
const HorizontalRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// DocumentTitle returns the title line for an opportunity's document.
func DocumentTitle(opportunityName string) string {
	return opportunityName + " - Customer Consolidation"
}

// DocumentHeader formats the header block written at the top of every
// consolidation document.
func DocumentHeader(opportunityName, salesforceURL string) string {
	lines := []string{
		DocumentTitle(opportunityName),
		"",
		"Salesforce Opportunity: " + salesforceURL,
		"",
		HorizontalRule,
		"",
	}
	return strings.Join(lines, "\n")
}

// SectionHeader prefixes a section name with its emoji. Unknown sections
// get a generic clipboard marker.
func SectionHeader(sectionName string) string {
	emoji, ok := sectionEmoji[sectionName]
	if !ok {
		emoji = "📋"
	}
	return emoji + " " + sectionName
}

// TranscriptInfo is the subset of a transcript the formatter needs.
type TranscriptInfo struct {
	Title           string
	Date            string
	DurationMinutes int
	Participants    []string
	FullText        string
}

// TranscriptSection formats one transcript for the Call Transcripts section.
func TranscriptSection(t TranscriptInfo) string {
	lines := []string{t.Title + " - " + t.Date}

	if len(t.Participants) > 0 {
		lines = append(lines, "Participants: "+Participants(t.Participants))
	}

	lines = append(lines, fmt.Sprintf("Duration: %d min", t.DurationMinutes), "", t.FullText)

	return strings.Join(lines, "\n")
}

// MessageInfo is one email message as the formatter sees it.
type MessageInfo struct {
	From          string
	Subject       string
	DateFormatted string
	Body          string
}

// ThreadInfo is one email thread as the formatter sees it.
type ThreadInfo struct {
	Subject      string
	MessageCount int
	Messages     []MessageInfo
}

// ThreadSection formats one email thread for the Email Correspondence
// section. Messages after the first are preceded by a "---" separator.
func ThreadSection(t ThreadInfo) string {
	plural := "s"
	if t.MessageCount == 1 {
		plural = ""
	}

	// Subjects are quoted verbatim, never escaped.
	lines := []string{
		fmt.Sprintf("Thread: \"%s\" (%d message%s)", t.Subject, t.MessageCount, plural),
		"",
	}

	for i, m := range t.Messages {
		if i > 0 {
			lines = append(lines, "---", "")
		}
		lines = append(lines,
			"From: "+m.From,
			"Date: "+m.DateFormatted,
			"Subject: "+m.Subject,
			"",
			m.Body,
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// ContentSeparator delimits successive appends within the same section.
func ContentSeparator() string {
	return "\n---\n"
}

// Participants joins participant identifiers with commas.
func Participants(participants []string) string {
	return strings.Join(participants, ", ")
}

// Duration renders minutes as "N min", "N hr" or "N hr M min".
func Duration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		return fmt.Sprintf("%d hr", hours)
	}
	return fmt.Sprintf("%d hr %d min", hours, rem)
}

// SyncTimestamp renders the cursor format stored in the configuration
// sheet: zero-padded local time, YYYY-MM-DD HH:MM:SS.
func SyncTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ParseSyncTimestamp parses a stored cursor. Returns the zero time and
// false for an empty or unparseable value.
func ParseSyncTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// GmailSearchDate renders a date for Gmail search terms (yyyy/mm/dd).
func GmailSearchDate(t time.Time) string {
	return t.Format("2006/01/02")
}

// DisplayDate renders a message timestamp for document output.
func DisplayDate(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}
