package dialogue

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"telegram_booking_assistant/internal/booking"
	"telegram_booking_assistant/internal/extract"
	"telegram_booking_assistant/internal/llm"
	"telegram_booking_assistant/internal/session"
	"telegram_booking_assistant/internal/storage"
	"telegram_booking_assistant/pkg/logger"
	"telegram_booking_assistant/pkg/metrics"
)

// personaInstruction is the conversational profile. Confidentiality is asked
// of the model here and additionally enforced in code: the schedule snapshot
// the model sees has every event description stripped (see Redacted).
const personaInstruction = `You are a professional virtual assistant helping clients book appointments.
Your goal is to:
- Sound natural and conversational
- Understand the client's scheduling needs
- Check availability based on a pre-defined schedule
- Be helpful and guide the client to find a suitable time slot
- Avoid revealing the internal structure of the scheduling system
- Do not provide details of the schedule, of the other events on the schedule as it is confidential and not to be accessed by the client, only thing client is entitled to is to know the free times
- When a requested time is occupied, strictly state that, do not reveal the confidential nature of the event to the client
- Do not tell the client the details are confidential.
- do not answer to questions other than about scheduling meetings

Communicate as if you're a friendly, but strict efficient scheduling assistant.`

// User-facing replies
const (
	FallbackReply     = "Sorry, I'm experiencing technical difficulties."
	FarewellBooked    = "Thank you! Your appointment has been booked successfully. Have a great day!"
	FarewellNotBooked = "Thank you for your interest. No appointment was booked. Have a great day!"
)

// endTokens terminate a conversation and trigger the extraction/commit
// attempt. Matched case-insensitively against the whole trimmed message.
var endTokens = map[string]struct{}{
	"exit":       {},
	"quit":       {},
	"bye":        {},
	"that's all": {},
	"done":       {},
}

// IsEndToken reports whether the message ends the session
func IsEndToken(text string) bool {
	_, ok := endTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Engine orchestrates one conversation turn: history bookkeeping, schedule
// grounding, the model call, and on an end token the extraction/commit
// handoff. Messages for the same user are processed strictly one at a time;
// different users proceed concurrently.
type Engine struct {
	client    llm.Client
	sessions  *session.Store
	store     storage.ScheduleStore
	extractor *extract.Extractor
	committer *booking.Committer
	log       *logger.Logger

	userLocks map[int64]*sync.Mutex
	mu        sync.Mutex
}

// New creates a dialogue engine
func New(
	client llm.Client,
	sessions *session.Store,
	store storage.ScheduleStore,
	extractor *extract.Extractor,
	committer *booking.Committer,
	log *logger.Logger,
) *Engine {
	return &Engine{
		client:    client,
		sessions:  sessions,
		store:     store,
		extractor: extractor,
		committer: committer,
		log:       log,
		userLocks: make(map[int64]*sync.Mutex),
	}
}

// lockFor returns the per-user mutex, creating it on first use
func (e *Engine) lockFor(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		e.userLocks[userID] = lock
	}
	return lock
}

// Respond processes one inbound message to completion and returns the reply
// text. ended is true when the message closed the session; a later message
// from the same user starts a brand-new one.
func (e *Engine) Respond(ctx context.Context, userID int64, text string) (reply string, ended bool) {
	lock := e.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	if IsEndToken(text) {
		return e.endSession(ctx, userID), true
	}

	return e.turn(ctx, userID, text), false
}

// turn runs the Active→Active transition. Side effects are strictly ordered:
// user turn append → grounding read → model call → assistant turn append →
// reply to the caller. The persisted history must reflect exactly what was
// sent to and received from the model.
func (e *Engine) turn(ctx context.Context, userID int64, text string) string {
	start := time.Now()

	e.sessions.Append(userID, session.RoleUser, text)

	grounding := e.groundingSnapshot(ctx, userID)

	history := e.sessions.History(userID)
	messages := make([]llm.Message, 0, len(history)+1)
	for _, turn := range history {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	messages = append(messages, llm.Message{
		Role:    session.RoleUser,
		Content: grounding + "\n\nUser's latest message: " + text,
	})

	reply, err := e.client.Complete(ctx, llm.Request{
		Profile:     llm.ProfilePersona,
		System:      personaInstruction,
		Messages:    messages,
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	if err != nil {
		// The user turn stays; no assistant turn is recorded for a failed
		// call, so the history never carries text the model did not produce.
		e.log.Warn("Model call failed, sending fallback reply",
			logger.Int64("user_id", userID),
			logger.Error(err),
		)
		metrics.RecordTurn("llm_error")
		return FallbackReply
	}

	e.sessions.Append(userID, session.RoleAssistant, reply)

	metrics.RecordTurn("ok")
	metrics.TurnDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return reply
}

// groundingSnapshot serializes a fresh redacted read of the schedule. A
// failed read degrades to an empty document: the model then simply has no
// availability to offer, and the turn still completes.
func (e *Engine) groundingSnapshot(ctx context.Context, userID int64) string {
	schedule, err := e.store.Read(ctx)
	if err != nil {
		e.log.Error("Failed to read schedule for grounding",
			logger.Int64("user_id", userID),
			logger.Error(err),
		)
		metrics.RecordError("dialogue", "grounding_read")
		return "{}"
	}

	data, err := json.Marshal(schedule.Redacted())
	if err != nil {
		return "{}"
	}
	return string(data)
}

// endSession runs the Active→Ended transition: extraction against the
// pre-destruction history, then the commit attempt, then teardown. The
// farewell wording depends only on whether the booking succeeded; why a
// booking failed never reaches the user.
func (e *Engine) endSession(ctx context.Context, userID int64) string {
	history := e.sessions.History(userID)

	result := booking.Insufficient
	candidate, err := e.extractor.Extract(ctx, history)
	if err != nil {
		e.log.Warn("Extraction call failed, no booking attempted",
			logger.Int64("user_id", userID),
			logger.Error(err),
		)
		metrics.RecordError("dialogue", "extraction_unavailable")
	} else {
		result = e.committer.Commit(ctx, candidate)
	}

	e.log.Info("Session ended",
		logger.Int64("user_id", userID),
		logger.Int("history_turns", len(history)),
		logger.String("booking_result", result.String()),
	)

	e.sessions.End(userID)
	metrics.RecordSessionEnd("farewell")
	metrics.RecordTurn("farewell")

	if result == booking.Booked {
		return FarewellBooked
	}
	return FarewellNotBooked
}
