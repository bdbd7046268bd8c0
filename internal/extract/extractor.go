package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"telegram_booking_assistant/internal/llm"
	"telegram_booking_assistant/internal/session"
	"telegram_booking_assistant/internal/storage/models"
	"telegram_booking_assistant/pkg/metrics"
)

// extractionInstruction is the strict structure-only profile. The model must
// answer with the JSON object and nothing else.
const extractionInstruction = `You are an expert at extracting scheduling details from conversation history.
Your task is to carefully identify:
1. The day of the week for the appointment
2. The specific time slot of the appointment
3. The client's name (if provided)

Respond ONLY with a JSON object containing these fields:
{
    "day": "monday/tuesday/etc",
    "time": "HH:MM",
    "client_name": "Client Name"
}

If any information is missing or unclear, return null for that field.
Do not make up information. Only return what you can definitively extract.`

// BookingCandidate is the structured booking guess produced from a finished
// conversation. Empty fields mean the detail could not be identified; the
// zero value is the definitive "no booking" result.
type BookingCandidate struct {
	Day        string `json:"day"`
	Time       string `json:"time"`
	ClientName string `json:"client_name"`
}

// Complete reports whether the candidate carries enough to attempt a commit
func (c BookingCandidate) Complete() bool {
	return c.Day != "" && c.Time != ""
}

// Extractor turns a session history into a BookingCandidate with a single
// model call. It never retries: extraction runs during a live farewell
// exchange and latency must stay bounded.
type Extractor struct {
	client llm.Client
}

// New creates an extractor backed by the given completion client
func New(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract produces a best-effort candidate from the full history of a
// session about to end. Unparseable model output is an expected outcome and
// yields the zero candidate with a nil error; only a failed model call is
// reported as an error.
func (e *Extractor) Extract(ctx context.Context, history []session.Turn) (BookingCandidate, error) {
	serialized, err := json.Marshal(history)
	if err != nil {
		// A []Turn always marshals; kept for completeness
		return BookingCandidate{}, nil
	}

	reply, err := e.client.Complete(ctx, llm.Request{
		Profile: llm.ProfileExtraction,
		System:  extractionInstruction,
		Messages: []llm.Message{
			{Role: session.RoleUser, Content: "Conversation History: " + string(serialized)},
		},
		MaxTokens:   300,
		Temperature: 0.2,
	})
	if err != nil {
		return BookingCandidate{}, err
	}

	candidate, ok := parseCandidate(reply)
	if !ok {
		metrics.RecordError("extract", "malformed_extraction")
		return BookingCandidate{}, nil
	}

	return normalize(candidate), nil
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// parseCandidate decodes the model reply, tolerating markdown code fences
func parseCandidate(reply string) (BookingCandidate, bool) {
	content := strings.TrimSpace(reply)

	if strings.HasPrefix(content, "```") {
		if matches := fenceRe.FindStringSubmatch(content); len(matches) > 1 {
			content = matches[1]
		}
	}

	var candidate BookingCandidate
	if err := json.Unmarshal([]byte(content), &candidate); err != nil {
		return BookingCandidate{}, false
	}

	return candidate, true
}

// normalize canonicalizes the day and clears fields the model nulled out as
// the literal string "null"
func normalize(c BookingCandidate) BookingCandidate {
	if strings.EqualFold(strings.TrimSpace(c.Day), "null") {
		c.Day = ""
	}
	if strings.EqualFold(strings.TrimSpace(c.Time), "null") {
		c.Time = ""
	}
	if strings.EqualFold(strings.TrimSpace(c.ClientName), "null") {
		c.ClientName = ""
	}

	if c.Day != "" {
		day, ok := models.NormalizeDay(c.Day)
		if !ok {
			// An unrecognized day counts as a missing day
			day = ""
		}
		c.Day = day
	}

	c.Time = strings.TrimSpace(c.Time)
	c.ClientName = strings.TrimSpace(c.ClientName)

	return c
}
