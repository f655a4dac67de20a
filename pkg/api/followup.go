package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/session"
)

// SendSSE sends a Server-Sent Event.
func SendSSE(w io.Writer, flusher http.Flusher, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("marshal SSE data")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
	if flusher != nil {
		flusher.Flush()
	}
}

// SendErrorSSE sends an error event.
func SendErrorSSE(w io.Writer, flusher http.Flusher, msg string) {
	SendSSE(w, flusher, "error", map[string]string{"error": msg})
}

// followUpErrorText is the transcript entry for a failed follow-up. The chat
// session stays usable for further attempts.
const followUpErrorText = "Sorry, I couldn't answer that. Please try again."

// FollowUpRequest is the body for POST /api/sessions/{id}/followup.
type FollowUpRequest struct {
	Message string `json:"message"`
}

// HandleFollowUp handles POST /api/sessions/{id}/followup with SSE
// streaming: the user message lands in the transcript synchronously, then
// the assistant reply streams as "chunk" events, finished by "done" or a
// single "error" event.
func (s *Server) HandleFollowUp(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req FollowUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	chat, gen := sess.Chat()
	sess.AppendMessage(gen, session.Message{Sender: session.SenderUser, Text: req.Message})

	if chat == nil {
		sess.AppendMessage(gen, session.Message{Sender: session.SenderError, Text: followUpErrorText})
		SendErrorSSE(w, flusher, "no report has been generated yet")
		return
	}

	for chunk, err := range chat.Ask(r.Context(), req.Message) {
		if err != nil {
			log.Error().Err(err).Str("session", sess.ID()).Msg("follow-up stream failed")
			sess.AppendMessage(gen, session.Message{Sender: session.SenderError, Text: followUpErrorText})
			SendErrorSSE(w, flusher, followUpErrorText)
			return
		}
		if !sess.AppendChunk(gen, chunk) {
			// Session was reset mid-stream; stop rendering, drop the rest.
			log.Info().Str("session", sess.ID()).Msg("dropping stale follow-up stream")
			return
		}
		SendSSE(w, flusher, "chunk", map[string]string{"text": chunk})
	}

	SendSSE(w, flusher, "done", map[string]bool{"done": true})
}
