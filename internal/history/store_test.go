package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symposium-ai/symposium/internal/debate"
	"github.com/symposium-ai/symposium/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id string, finished time.Time) *Record {
	return &Record{
		ID:       id,
		Prompt:   "Is a hot dog a sandwich?",
		Language: "English",
		Rounds:   2,
		Providers: []models.ProviderID{
			models.ProviderOpenAI,
			models.ProviderAnthropic,
		},
		Transcript: []debate.TranscriptEntry{
			{Provider: models.ProviderOpenAI, Round: 1, Text: "Yes."},
			{Provider: models.ProviderAnthropic, Round: 1, Text: "No.", Failed: false},
			{Provider: models.ProviderOpenAI, Round: 2, Text: "Still yes."},
		},
		ModeratorText: "It depends on your ontology of sandwiches.",
		StartedAt:     finished.Add(-time.Minute),
		FinishedAt:    finished,
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("d1", time.Now())
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, rec.Prompt, got.Prompt)
	assert.Equal(t, rec.Providers, got.Providers)
	require.Len(t, got.Transcript, 3)
	assert.Equal(t, "Still yes.", got.Transcript[2].Text)
	assert.Equal(t, rec.ModeratorText, got.ModeratorText)
}

func TestStore_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now()
	require.NoError(t, store.Save(ctx, sampleRecord("old", base.Add(-2*time.Hour))))
	require.NoError(t, store.Save(ctx, sampleRecord("new", base)))
	require.NoError(t, store.Save(ctx, sampleRecord("mid", base.Add(-time.Hour))))

	summaries, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "new", summaries[0].ID)
	assert.Equal(t, "mid", summaries[1].ID)
	assert.Equal(t, "old", summaries[2].ID)
}

func TestStore_ListLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := sampleRecord("d"+string(rune('0'+i)), time.Now().Add(time.Duration(i)*time.Second))
		require.NoError(t, store.Save(ctx, rec))
	}

	summaries, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)

	// Non-positive limit falls back to the default.
	summaries, err = store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, summaries, 5)
}

func TestStore_DuplicateIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("dup", time.Now())
	require.NoError(t, store.Save(ctx, rec))
	assert.Error(t, store.Save(ctx, rec))
}

func TestFromResult(t *testing.T) {
	res := &debate.Result{
		ID:            "r1",
		Prompt:        "q",
		Language:      "Spanish",
		Serious:       true,
		Rounds:        3,
		Providers:     []models.ProviderID{models.ProviderGemini},
		Transcript:    []debate.TranscriptEntry{{Provider: models.ProviderGemini, Round: 1, Text: "hola"}},
		ModeratorText: "verdict",
		StartedAt:     time.Now().Add(-time.Minute),
		FinishedAt:    time.Now(),
	}

	rec := FromResult(res)
	assert.Equal(t, res.ID, rec.ID)
	assert.Equal(t, res.Serious, rec.Serious)
	assert.Equal(t, res.Transcript, rec.Transcript)
	assert.Equal(t, res.ModeratorText, rec.ModeratorText)
}
