// Package session owns the per-browser-session application state: which of
// the four screens is active, the selected service, the rendered report, the
// follow-up transcript and the live chat handle. All mutable state that the
// UI depends on lives here, behind one mutex per session.
package session

import (
	"context"
	"errors"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/schema"
)

// ViewState is the screen currently shown to the user. Exactly one is active.
type ViewState string

const (
	StateWelcome ViewState = "welcome"
	StateForm    ViewState = "form"
	StateLoading ViewState = "loading"
	StateResults ViewState = "results"
)

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAI    Sender = "ai"
	SenderError Sender = "error"
)

// Message is one entry in the append-only follow-up transcript.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Chat is a live follow-up conversation seeded with the original report.
// Ask returns a finite, non-restartable sequence of reply fragments.
type Chat interface {
	Ask(ctx context.Context, message string) iter.Seq2[string, error]
}

var (
	ErrNotFound      = errors.New("session not found")
	ErrBusy          = errors.New("analysis already in progress")
	ErrBadTransition = errors.New("operation not valid in current state")
)

// Session is the explicit state object for one user session. It is owned by
// a Manager and safe for concurrent use.
type Session struct {
	id string

	mu           sync.Mutex
	state        ViewState
	service      schema.ServiceKind
	report       string // raw markdown
	reportHTML   string
	transcript   []Message
	chat         Chat
	generation   uint64
	lastActivity time.Time
}

func newSession() *Session {
	return &Session{
		id:           uuid.NewString(),
		state:        StateWelcome,
		lastActivity: time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// State returns the active view state.
func (s *Session) State() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the current reset generation. Work started against an
// older generation must discard its results.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// SelectService transitions welcome -> form and records the chosen service.
// Re-selecting while already on the form replaces it wholesale.
func (s *Session) SelectService(kind schema.ServiceKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateWelcome && s.state != StateForm {
		return ErrBadTransition
	}
	s.state = StateForm
	s.service = kind
	return nil
}

// BeginAnalysis transitions form -> loading, synchronously, before any
// backend call is made. It returns the generation the caller must stamp its
// eventual result with.
func (s *Session) BeginAnalysis() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateLoading:
		return 0, ErrBusy
	case StateForm:
		s.state = StateLoading
		return s.generation, nil
	default:
		return 0, ErrBadTransition
	}
}

// FinishAnalysis lands the session on results with the report (success and
// failure both end here; the caller passes the apology text on failure).
// A stale generation means the user started over while the request was in
// flight: the result is dropped and false is returned.
func (s *Session) FinishAnalysis(gen uint64, report, reportHTML string, chat Chat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.state = StateResults
	s.report = report
	s.reportHTML = reportHTML
	s.chat = chat
	return true
}

// StartOver resets to welcome from any state, unconditionally. Report,
// transcript, service selection and the chat handle are cleared together,
// and the generation is bumped so in-flight work is dropped on arrival.
func (s *Session) StartOver() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateWelcome
	s.service = ""
	s.report = ""
	s.reportHTML = ""
	s.transcript = nil
	s.chat = nil
	s.generation++
}

// Chat returns the live chat handle and the generation it belongs to.
func (s *Session) Chat() (Chat, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chat, s.generation
}

// Service returns the selected service kind ("" on the welcome screen).
func (s *Session) Service() schema.ServiceKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.service
}

// AppendMessage appends one transcript message. Stale generations are
// dropped; the return value reports whether the append landed.
func (s *Session) AppendMessage(gen uint64, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.transcript = append(s.transcript, msg)
	return true
}

// AppendChunk streams one fragment into the in-progress assistant message,
// creating it on the first fragment.
func (s *Session) AppendChunk(gen uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	if n := len(s.transcript); n > 0 && s.transcript[n-1].Sender == SenderAI {
		s.transcript[n-1].Text += text
		return true
	}
	s.transcript = append(s.transcript, Message{Sender: SenderAI, Text: text})
	return true
}

// Snapshot is a point-in-time copy of everything the UI renders.
type Snapshot struct {
	ID         string             `json:"id"`
	State      ViewState          `json:"state"`
	Service    schema.ServiceKind `json:"service,omitempty"`
	ReportHTML string             `json:"reportHtml,omitempty"`
	Transcript []Message          `json:"transcript"`
}

// Snapshot returns a consistent copy of the session's visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	transcript := make([]Message, len(s.transcript))
	copy(transcript, s.transcript)
	return Snapshot{
		ID:         s.id,
		State:      s.state,
		Service:    s.service,
		ReportHTML: s.reportHTML,
		Transcript: transcript,
	}
}
