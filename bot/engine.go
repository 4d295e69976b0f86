// Package bot implements the self-learning teaching protocol.
//
// Every inbound message is handled independently. The only "state" between
// turns is the unknown prompt itself: when the bot cannot answer, the
// prompt it sends back embeds the verbatim question after a fixed marker,
// and a reply to that prompt teaches the answer. No session table, no
// per-user setup: if the transport preserves reply linkage and message
// text, teaching works.
package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/qt-konan/zeroiq-bot/match"
	"github.com/qt-konan/zeroiq-bot/memory"
)

// Response templates. UnknownMarker doubles as the reply-chain anchor:
// extraction depends on it, so it must never change between the prompt
// that embeds a question and the reply that teaches it.
const (
	UnknownMarker = "❓ I don't know yet:"

	unknownSuffix = "Reply to this message with the correct answer to teach me."

	greeting = "🤖 Self-learning Bot Ready!\n" +
		"Ask me anything. If I don't know, reply with the correct answer to teach me."

	LearnedReply      = "✅ Learned! Thanks."
	answerPrefix      = "💡 "
	saveFailedReply   = "⚠️ I couldn't save that one. Please try again."
	lookupFailedReply = "⚠️ Something went wrong looking that up. Please try again."
	notAuthorized     = "🚫 You're not authorized to use this command."
	emptyInputReply   = "Send me a question, or reply to one of my prompts to teach me."
)

// Ref carries the literal text of the message a user replied to, as
// delivered by the transport.
type Ref struct {
	Sender string
	Text   string
}

// Inbound is one incoming chat message.
type Inbound struct {
	ID      string
	Sender  string
	Text    string
	ReplyTo *Ref // nil when the message is not a reply
}

// Outbound is the bot's response for one turn.
type Outbound struct {
	Text string
}

// Engine routes messages through the teach/lookup state machine.
type Engine struct {
	store     *memory.Store
	threshold float64
	owner     string
	logger    *zap.SugaredLogger
}

// NewEngine creates a message engine. threshold <= 0 falls back to the
// default match threshold; owner may be empty to disable privileged
// commands entirely.
func NewEngine(store *memory.Store, threshold float64, owner string, logger *zap.SugaredLogger) *Engine {
	if threshold <= 0 {
		threshold = match.DefaultThreshold
	}
	return &Engine{
		store:     store,
		threshold: threshold,
		owner:     owner,
		logger:    logger,
	}
}

// Handle processes one inbound message and returns the response for this
// turn. It never panics out: unexpected failures are caught here so one
// bad message cannot take down the dispatcher.
func (e *Engine) Handle(ctx context.Context, in Inbound) (out Outbound) {
	defer func() {
		if r := recover(); r != nil {
			if e.logger != nil {
				e.logger.Errorw("Handler panic recovered",
					"panic", r,
					"message_id", in.ID,
					"sender", in.Sender,
				)
			}
			out = Outbound{Text: lookupFailedReply}
		}
	}()

	if e.logger != nil {
		e.logger.Infow("Received message",
			"message_id", in.ID,
			"sender", in.Sender,
			"is_reply", in.ReplyTo != nil,
		)
	}

	text := strings.TrimSpace(in.Text)

	switch {
	case text == "":
		return Outbound{Text: emptyInputReply}
	case text == "/start":
		return Outbound{Text: greeting}
	case text == "/export":
		return e.handleExport(ctx, in)
	}

	// A reply to an unknown prompt is a teach event. A reply to anything
	// else falls through to fresh-query handling; never drop user input.
	if in.ReplyTo != nil {
		if question, ok := extractPendingQuestion(in.ReplyTo.Text); ok {
			return e.handleTeach(ctx, question, text, in.Sender)
		}
		if e.logger != nil {
			e.logger.Debugw("Reply without unknown marker, treating as fresh query",
				"message_id", in.ID,
			)
		}
	}

	return e.handleQuery(ctx, text)
}

// extractPendingQuestion recovers the original query from an unknown
// prompt: everything up to and including the first marker occurrence is
// stripped, the instruction line after the question is dropped, and the
// remainder is trimmed.
func extractPendingQuestion(promptText string) (string, bool) {
	idx := strings.Index(promptText, UnknownMarker)
	if idx < 0 {
		return "", false
	}
	rest := promptText[idx+len(UnknownMarker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	question := strings.TrimSpace(rest)
	if question == "" {
		return "", false
	}
	return question, true
}

// handleTeach stores a taught pair and confirms. A persistence failure is
// reported for this turn only; the process keeps serving.
func (e *Engine) handleTeach(ctx context.Context, question, answer, sender string) Outbound {
	if err := e.store.Upsert(ctx, question, answer, sender); err != nil {
		if e.logger != nil {
			e.logger.Errorw("Failed to store taught answer",
				"question", question,
				"error", err,
			)
		}
		return Outbound{Text: saveFailedReply}
	}
	return Outbound{Text: LearnedReply}
}

// handleQuery runs the fuzzy lookup and answers, or sends the unknown
// prompt that anchors a future teach event.
func (e *Engine) handleQuery(ctx context.Context, query string) Outbound {
	questions, err := e.store.Questions(ctx)
	if err != nil {
		if e.logger != nil {
			e.logger.Errorw("Failed to read stored questions", "error", err)
		}
		return Outbound{Text: lookupFailedReply}
	}

	matched, ok := match.BestMatch(query, questions, e.threshold)
	if !ok {
		return Outbound{Text: UnknownPrompt(query)}
	}

	answer, err := e.store.Lookup(ctx, matched)
	if err != nil {
		// Matched key vanished or read failed: report, don't crash the turn
		if e.logger != nil {
			e.logger.Errorw("Lookup failed for matched question",
				"question", matched,
				"error", err,
			)
		}
		return Outbound{Text: lookupFailedReply}
	}

	return Outbound{Text: answerPrefix + answer}
}

// handleExport renders the full store for the owner. Learning is open to
// everyone; dumping is not.
func (e *Engine) handleExport(ctx context.Context, in Inbound) Outbound {
	if e.owner == "" || in.Sender != e.owner {
		return Outbound{Text: notAuthorized}
	}

	entries, err := e.store.All(ctx)
	if err != nil {
		if e.logger != nil {
			e.logger.Errorw("Failed to export memory", "error", err)
		}
		return Outbound{Text: "⚠️ Failed to export memory."}
	}

	if len(entries) == 0 {
		return Outbound{Text: "🧠 Memory is empty."}
	}

	var b strings.Builder
	b.WriteString("🧠 Full learned memory:\n")
	for _, entry := range entries {
		b.WriteString("\nQ: ")
		b.WriteString(entry.Question)
		b.WriteString("\nA: ")
		b.WriteString(entry.Answer)
		b.WriteString("\n")
	}
	return Outbound{Text: b.String()}
}

// UnknownPrompt builds the deterministic prompt for an unanswered query.
// The query text is embedded verbatim so it can be recovered from a reply.
func UnknownPrompt(query string) string {
	return UnknownMarker + " " + query + "\n" + unknownSuffix
}

// IsUnknownPrompt reports whether text is one of the bot's unknown
// prompts. Exposed for transports that want to badge pending questions.
func IsUnknownPrompt(text string) bool {
	return strings.Contains(text, UnknownMarker)
}
