package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opportunity-sync-go/internal/config"
	"opportunity-sync-go/internal/document"
	"opportunity-sync-go/internal/fireflies"
	"opportunity-sync-go/internal/mail"
	"opportunity-sync-go/internal/metrics"
	"opportunity-sync-go/internal/models"
	"opportunity-sync-go/internal/orchestrator"
)

var testMetrics = metrics.NewMetrics()

type stubTranscripts struct{}

func (stubTranscripts) FetchTranscripts(ctx context.Context, filter fireflies.Filter) ([]fireflies.Transcript, error) {
	return nil, nil
}

func (stubTranscripts) HasCredential() bool { return true }

type stubMail struct{}

func (stubMail) SearchThreads(ctx context.Context, filter mail.Filter) ([]mail.Thread, error) {
	return nil, nil
}

type stubDocs struct{}

func (stubDocs) GetOrCreate(ctx context.Context, handle, name string) (string, bool, error) {
	return "doc-1", false, nil
}

func (stubDocs) Load(ctx context.Context, handle string) (*document.Document, error) {
	return document.New(), nil
}

func (stubDocs) Save(ctx context.Context, handle string, doc *document.Document) error {
	return nil
}

type stubStore struct{}

func (stubStore) ReadAll(ctx context.Context) ([]models.Opportunity, error) { return nil, nil }
func (stubStore) UpdateCursor(ctx context.Context, opp *models.Opportunity, t time.Time) error {
	return nil
}
func (stubStore) UpdateStatus(ctx context.Context, opp *models.Opportunity, status string) error {
	return nil
}
func (stubStore) UpdateDocHandle(ctx context.Context, opp *models.Opportunity, handle string) error {
	return nil
}
func (stubStore) LogError(ctx context.Context, opp *models.Opportunity, message string) error {
	return nil
}
func (stubStore) ClearError(ctx context.Context, opp *models.Opportunity) error { return nil }

func newTestScheduler() *Scheduler {
	orch := orchestrator.New(stubTranscripts{}, stubMail{}, stubDocs{}, stubStore{}, nil, testMetrics, orchestrator.Options{})
	return NewScheduler(&config.SchedulerConfig{DailyHour: 8}, orch)
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler()

	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestSchedulerDoubleStart(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start())
}

func TestSchedulerStopWhenNotRunning(t *testing.T) {
	s := newTestScheduler()
	assert.NoError(t, s.Stop())
}

func TestSchedulerRestart(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.Start())
	require.NoError(t, s.Stop())

	// The run context is recreated after a stop, so a restarted scheduler
	// must schedule again.
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())
	require.NoError(t, s.Stop())
}

func TestSchedulerRunOnce(t *testing.T) {
	s := newTestScheduler()

	summary, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Processed)
}
