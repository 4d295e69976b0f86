package bot

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qt-konan/zeroiq-bot/db"
	"github.com/qt-konan/zeroiq-bot/memory"
)

func newTestEngine(t *testing.T, owner string) (*Engine, *memory.Store) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "memory.db")
	database, err := db.OpenWithMigrations(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := memory.NewStore(database, nil)
	return NewEngine(store, 0.6, owner, nil), store
}

func TestStartCommand(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	out := engine.Handle(context.Background(), Inbound{Sender: "alice", Text: "/start"})
	assert.Contains(t, out.Text, "Self-learning Bot Ready")
}

func TestUnknownQueryReturnsPrompt(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	out := engine.Handle(context.Background(), Inbound{Sender: "alice", Text: "capital of France"})

	assert.True(t, IsUnknownPrompt(out.Text))
	assert.Contains(t, out.Text, "capital of France", "prompt must embed the verbatim query")
}

func TestTeachRoundTrip(t *testing.T) {
	engine, _ := newTestEngine(t, "")
	ctx := context.Background()

	// 1. Fresh query: bot doesn't know
	prompt := engine.Handle(ctx, Inbound{Sender: "alice", Text: "capital of France"})
	require.True(t, IsUnknownPrompt(prompt.Text))

	// 2. Reply to the prompt teaches the answer
	learned := engine.Handle(ctx, Inbound{
		Sender:  "bob",
		Text:    "Paris",
		ReplyTo: &Ref{Sender: "zeroiq", Text: prompt.Text},
	})
	assert.Equal(t, LearnedReply, learned.Text)

	// 3. Same question now answers
	answered := engine.Handle(ctx, Inbound{Sender: "carol", Text: "capital of France"})
	assert.Equal(t, answerPrefix+"Paris", answered.Text)
}

func TestFuzzyToleranceAfterTeach(t *testing.T) {
	engine, store := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "capital of France", "Paris", ""))

	// One-character edit still lands above the threshold
	out := engine.Handle(ctx, Inbound{Sender: "alice", Text: "capitol of France"})
	assert.Equal(t, answerPrefix+"Paris", out.Text)
}

func TestThresholdBoundaryYieldsUnknown(t *testing.T) {
	engine, store := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "capital of France", "Paris", ""))

	// Far from anything taught: unknown prompt, not the nearest candidate
	out := engine.Handle(ctx, Inbound{Sender: "alice", Text: "how do magnets work"})
	assert.True(t, IsUnknownPrompt(out.Text))
}

func TestMalformedReplyFallsThroughToQuery(t *testing.T) {
	engine, store := newTestEngine(t, "")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "capital of France", "Paris", ""))

	// Reply to a non-prompt bot message: treated as a fresh query
	out := engine.Handle(ctx, Inbound{
		Sender:  "alice",
		Text:    "capital of France",
		ReplyTo: &Ref{Sender: "zeroiq", Text: LearnedReply},
	})
	assert.Equal(t, answerPrefix+"Paris", out.Text)

	// And nothing was taught by the fall-through
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReplyToPromptWithEmptyQuestionFallsThrough(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	// Marker present but no question text after it: not a teachable anchor
	out := engine.Handle(context.Background(), Inbound{
		Sender:  "alice",
		Text:    "some answer",
		ReplyTo: &Ref{Sender: "zeroiq", Text: UnknownMarker + "\nreply to teach"},
	})
	assert.True(t, IsUnknownPrompt(out.Text), "falls through to fresh query handling")
}

func TestExtractPendingQuestion(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
		ok     bool
	}{
		{
			name:   "standard prompt",
			prompt: UnknownPrompt("capital of France"),
			want:   "capital of France",
			ok:     true,
		},
		{
			name:   "marker mid-text",
			prompt: "forwarded: " + UnknownMarker + " largest ocean\nextra",
			want:   "largest ocean",
			ok:     true,
		},
		{
			name:   "no marker",
			prompt: "just a normal message",
			ok:     false,
		},
		{
			name:   "marker with no question",
			prompt: UnknownMarker + "   ",
			ok:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractPendingQuestion(tt.prompt)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEmptyInput(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	out := engine.Handle(context.Background(), Inbound{Sender: "alice", Text: "   "})
	assert.Equal(t, emptyInputReply, out.Text)
}

func TestExportRequiresOwner(t *testing.T) {
	engine, store := newTestEngine(t, "owner@laptop")
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, "capital of France", "Paris", ""))

	denied := engine.Handle(ctx, Inbound{Sender: "mallory", Text: "/export"})
	assert.Equal(t, notAuthorized, denied.Text)

	allowed := engine.Handle(ctx, Inbound{Sender: "owner@laptop", Text: "/export"})
	assert.Contains(t, allowed.Text, "capital of France")
	assert.Contains(t, allowed.Text, "Paris")
}

func TestExportDisabledWithoutOwner(t *testing.T) {
	engine, _ := newTestEngine(t, "")

	out := engine.Handle(context.Background(), Inbound{Sender: "anyone", Text: "/export"})
	assert.Equal(t, notAuthorized, out.Text)
}

func TestAnyoneMayTeach(t *testing.T) {
	engine, _ := newTestEngine(t, "owner@laptop")
	ctx := context.Background()

	prompt := engine.Handle(ctx, Inbound{Sender: "stranger", Text: "largest ocean"})
	learned := engine.Handle(ctx, Inbound{
		Sender:  "stranger",
		Text:    "Pacific",
		ReplyTo: &Ref{Text: prompt.Text},
	})
	assert.Equal(t, LearnedReply, learned.Text)
}

func TestNewlyLearnedIsImmediatelyMatchable(t *testing.T) {
	engine, _ := newTestEngine(t, "")
	ctx := context.Background()

	prompt := engine.Handle(ctx, Inbound{Sender: "alice", Text: "tallest mountain"})
	engine.Handle(ctx, Inbound{Sender: "alice", Text: "Everest", ReplyTo: &Ref{Text: prompt.Text}})

	// No caching across mutations: the very next query sees the new pair
	out := engine.Handle(ctx, Inbound{Sender: "alice", Text: "tallest mountain"})
	assert.Equal(t, answerPrefix+"Everest", out.Text)
}

func TestTeachPreservesQuestionVerbatim(t *testing.T) {
	engine, store := newTestEngine(t, "")
	ctx := context.Background()

	question := "What's the Capital of FRANCE?!"
	prompt := engine.Handle(ctx, Inbound{Sender: "alice", Text: question})
	engine.Handle(ctx, Inbound{Sender: "alice", Text: "Paris", ReplyTo: &Ref{Text: prompt.Text}})

	// Case and punctuation are preserved in the stored key
	answer, err := store.Lookup(ctx, question)
	require.NoError(t, err)
	assert.Equal(t, "Paris", answer)
}

func TestHandleRecoverPanic(t *testing.T) {
	// A nil store makes handleQuery panic; the handler boundary must
	// swallow it and answer with a failure notice.
	engine := NewEngine(nil, 0.6, "", nil)

	out := engine.Handle(context.Background(), Inbound{Sender: "alice", Text: "anything"})
	assert.True(t, strings.HasPrefix(out.Text, "⚠️"))
}
