// Package orchestrator drives one sync run: it walks the configuration
// rows, pulls incremental transcripts and email threads for each
// opportunity, appends them to the opportunity's consolidation document
// and advances the row's sync cursor. Failures are isolated per row and,
// within a row, per source.
package orchestrator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"opportunity-sync-go/internal/configstore"
	"opportunity-sync-go/internal/document"
	"opportunity-sync-go/internal/fireflies"
	"opportunity-sync-go/internal/formatter"
	"opportunity-sync-go/internal/mail"
	"opportunity-sync-go/internal/metrics"
	"opportunity-sync-go/internal/models"
	"opportunity-sync-go/internal/repository"
)

// TranscriptSource fetches meeting transcripts.
type TranscriptSource interface {
	FetchTranscripts(ctx context.Context, filter fireflies.Filter) ([]fireflies.Transcript, error)
	HasCredential() bool
}

// MailSource searches for email threads.
type MailSource interface {
	SearchThreads(ctx context.Context, filter mail.Filter) ([]mail.Thread, error)
}

// DocumentStore resolves, loads and saves consolidation documents.
type DocumentStore interface {
	GetOrCreate(ctx context.Context, handle, name string) (string, bool, error)
	Load(ctx context.Context, handle string) (*document.Document, error)
	Save(ctx context.Context, handle string, doc *document.Document) error
}

// RunRecorder persists run summaries. Satisfied by repository.Repository.
type RunRecorder interface {
	SaveRun(run *models.SyncRun) error
}

// RowError is one failed row in a run summary.
type RowError struct {
	Opportunity string `json:"opportunity"`
	Message     string `json:"message"`
}

// Summary is the terminal output of one run.
type Summary struct {
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Processed  int        `json:"processed"`
	Successful int        `json:"successful"`
	Failed     int        `json:"failed"`
	Errors     []RowError `json:"errors"`
}

// Options holds sync window and result-cap tunables.
type Options struct {
	LookbackDays   int
	MaxTranscripts int
	MaxThreads     int
}

// Orchestrator coordinates the collaborators for a run. All dependencies
// are injected; there is no ambient lookup.
type Orchestrator struct {
	transcripts TranscriptSource
	mail        MailSource
	docs        DocumentStore
	store       configstore.Store
	runs        RunRecorder
	metrics     *metrics.Metrics
	opts        Options
}

// New creates an orchestrator. runs may be nil when summaries should not
// be persisted.
func New(transcripts TranscriptSource, mailSource MailSource, docs DocumentStore, store configstore.Store, runs RunRecorder, m *metrics.Metrics, opts Options) *Orchestrator {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 30
	}
	return &Orchestrator{
		transcripts: transcripts,
		mail:        mailSource,
		docs:        docs,
		store:       store,
		runs:        runs,
		metrics:     m,
		opts:        opts,
	}
}

var _ RunRecorder = (*repository.Repository)(nil)

// ProcessAll processes every configuration row. Row-scoped failures are
// recorded in the summary and the row's error log; only a missing
// credential or an unreadable store aborts the whole run.
func (o *Orchestrator) ProcessAll(ctx context.Context) (*Summary, error) {
	start := time.Now()
	o.metrics.RunCount.Inc()

	if !o.transcripts.HasCredential() {
		return nil, fireflies.ErrMissingAPIKey
	}

	rows, err := o.store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}

	o.metrics.TrackedRows.Set(float64(len(rows)))
	summary := &Summary{StartedAt: start}

	if len(rows) == 0 {
		logrus.Info("No opportunities to process")
		summary.FinishedAt = time.Now()
		return summary, nil
	}

	logrus.Infof("Processing %d opportunities", len(rows))

	for i := range rows {
		row := &rows[i]
		summary.Processed++

		if err := o.processRow(ctx, row); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, RowError{Opportunity: row.Name, Message: err.Error()})
			o.metrics.RowFailures.Inc()

			logrus.Errorf("Error processing %s: %v", row.Name, err)

			if logErr := o.store.LogError(ctx, row, err.Error()); logErr != nil {
				logrus.Warnf("Could not record error for %s: %v", row.Name, logErr)
			}
			if statusErr := o.store.UpdateStatus(ctx, row, models.StatusError); statusErr != nil {
				logrus.Warnf("Could not set error status for %s: %v", row.Name, statusErr)
			}
			continue
		}

		summary.Successful++
		o.metrics.RowSuccesses.Inc()
		logrus.Infof("Successfully processed %s", row.Name)

		if err := o.store.ClearError(ctx, row); err != nil {
			logrus.Warnf("Could not clear error log for %s: %v", row.Name, err)
		}
	}

	summary.FinishedAt = time.Now()
	o.metrics.RunDuration.Observe(summary.FinishedAt.Sub(start).Seconds())

	logrus.Infof("Processing complete: %d successful, %d failed", summary.Successful, summary.Failed)
	o.saveSummary(summary)

	return summary, nil
}

// processRow runs the per-row state machine: Processing, document
// resolution, structure probe, two isolated source phases, cursor and
// status updates. Any returned error leaves the cursor untouched so the
// next run retries the same window.
func (o *Orchestrator) processRow(ctx context.Context, row *models.Opportunity) error {
	logrus.Infof("Processing opportunity: %s", row.Name)

	if err := o.store.UpdateStatus(ctx, row, models.StatusProcessing); err != nil {
		return err
	}

	handle, created, err := o.docs.GetOrCreate(ctx, row.DocID, formatter.DocumentTitle(row.Name))
	if err != nil {
		return err
	}
	if created {
		// Persist the handle before any further work so a failure later in
		// the row does not orphan the new document.
		if err := o.store.UpdateDocHandle(ctx, row, handle); err != nil {
			return err
		}
		row.DocID = handle
		logrus.Infof("Created document %s for %s", handle, row.Name)
	}

	doc, err := o.docs.Load(ctx, handle)
	if err != nil {
		return err
	}

	if !doc.HasStructure() {
		logrus.Infof("Creating document structure for %s", row.Name)
		doc.InitStructure(row.Name, row.SalesforceURL)
	}

	since, ok := formatter.ParseSyncTimestamp(row.LastSync)
	if !ok {
		since = time.Now().AddDate(0, 0, -o.opts.LookbackDays)
	}

	// The two source phases are independent: a failure in one is logged
	// and counted but must not block the other, and the row still
	// completes. Stale/partial sync beats blocking the whole row.
	if err := o.syncTranscripts(ctx, row, doc, since); err != nil {
		o.metrics.SourceFailures.WithLabelValues("transcripts").Inc()
		logrus.Warnf("Transcript fetch failed for %s, continuing without transcripts: %v", row.Name, err)
	}
	if err := o.syncThreads(ctx, row, doc, since); err != nil {
		o.metrics.SourceFailures.WithLabelValues("mail").Inc()
		logrus.Warnf("Mail fetch failed for %s, continuing without email threads: %v", row.Name, err)
	}

	if err := o.docs.Save(ctx, handle, doc); err != nil {
		return err
	}

	if err := o.store.UpdateCursor(ctx, row, time.Now()); err != nil {
		return err
	}
	return o.store.UpdateStatus(ctx, row, models.StatusSuccess)
}

// syncTranscripts fetches and appends new transcripts for the row.
func (o *Orchestrator) syncTranscripts(ctx context.Context, row *models.Opportunity, doc *document.Document, since time.Time) error {
	logrus.Infof("Fetching transcripts for %s since %s", row.CustomerDomain, formatter.SyncTimestamp(since))

	transcripts, err := o.transcripts.FetchTranscripts(ctx, fireflies.Filter{
		Limit:     o.opts.MaxTranscripts,
		ChannelID: row.CustomerDomain,
		Since:     since,
	})
	if err != nil {
		return err
	}

	logrus.Infof("Found %d new transcripts", len(transcripts))

	for _, t := range transcripts {
		body := formatter.TranscriptSection(formatter.TranscriptInfo{
			Title:           t.Title,
			Date:            t.Date,
			DurationMinutes: t.DurationMinutes,
			Participants:    t.Participants,
			FullText:        t.FullText,
		}) + formatter.ContentSeparator()

		if !doc.AppendToSection(formatter.SectionTranscripts, body) {
			logrus.Warnf("Section not found: %s", formatter.SectionTranscripts)
			continue
		}
		o.metrics.TranscriptsAppended.Inc()
	}
	return nil
}

// syncThreads fetches and appends new email threads for the row.
func (o *Orchestrator) syncThreads(ctx context.Context, row *models.Opportunity, doc *document.Document, since time.Time) error {
	logrus.Infof("Fetching email threads for %s with label %q", row.CustomerDomain, row.GmailLabel)

	threads, err := o.mail.SearchThreads(ctx, mail.Filter{
		Label:      row.GmailLabel,
		FromDomain: row.CustomerDomain,
		After:      since,
	})
	if err != nil {
		return err
	}

	logrus.Infof("Found %d new email threads", len(threads))

	for _, t := range threads {
		messages := make([]formatter.MessageInfo, len(t.Messages))
		for i, m := range t.Messages {
			messages[i] = formatter.MessageInfo{
				From:          m.From,
				Subject:       m.Subject,
				DateFormatted: m.DateFormatted,
				Body:          m.Body,
			}
		}

		body := formatter.ThreadSection(formatter.ThreadInfo{
			Subject:      t.Subject,
			MessageCount: t.MessageCount,
			Messages:     messages,
		}) + formatter.ContentSeparator()

		if !doc.AppendToSection(formatter.SectionEmails, body) {
			logrus.Warnf("Section not found: %s", formatter.SectionEmails)
			continue
		}
		o.metrics.ThreadsAppended.Inc()
	}
	return nil
}

// saveSummary persists the run summary for later inspection, best effort.
func (o *Orchestrator) saveSummary(summary *Summary) {
	if o.runs == nil {
		return
	}

	encoded, err := json.Marshal(summary.Errors)
	if err != nil {
		encoded = []byte("[]")
	}

	run := &models.SyncRun{
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
		Processed:  summary.Processed,
		Successful: summary.Successful,
		Failed:     summary.Failed,
		Errors:     string(encoded),
	}
	if err := o.runs.SaveRun(run); err != nil {
		logrus.Warnf("Could not save run summary: %v", err)
	}
}
