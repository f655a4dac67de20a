package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/advisor"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/markdown"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/session"
)

// apologyReport is shown in the report area when the one-shot generation
// call fails. The session still lands on results so the user can start over.
const apologyReport = "# Analysis Failed\nWe're sorry, something went wrong while generating your report. Please start over and try again."

// AnalyzeRequest is the body for POST /api/sessions/{id}/analyze.
type AnalyzeRequest struct {
	Fields advisor.AnalysisRequest `json:"fields"`
}

// AnalyzeResponse reports where the session landed. Failed is set when the
// backend call did not produce a report and the apology text is shown.
type AnalyzeResponse struct {
	Session session.Snapshot `json:"session"`
	Failed  bool             `json:"failed"`
}

// HandleAnalyze handles POST /api/sessions/{id}/analyze. The transition to
// loading happens before the backend call; success and failure both finish
// on results, never leaving the session stuck in loading.
func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Fields) == 0 {
		http.Error(w, "fields are required", http.StatusBadRequest)
		return
	}

	kind := sess.Service()
	gen, err := sess.BeginAnalysis()
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, session.ErrBadTransition) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	ctx := r.Context()
	report, err := s.adviser.RunAnalysis(ctx, kind, req.Fields)
	if err != nil {
		log.Error().Err(err).Str("session", sess.ID()).Str("service", string(kind)).Msg("analysis failed")
		sess.FinishAnalysis(gen, apologyReport, markdown.Render(apologyReport), nil)
		writeJSON(w, http.StatusOK, AnalyzeResponse{Session: sess.Snapshot(), Failed: true})
		return
	}

	// Seed the follow-up chat with the exchange. If priming fails the report
	// is still served; follow-ups will surface the error per message.
	chat, err := s.adviser.OpenFollowUp(ctx, kind, req.Fields, report)
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID()).Msg("follow-up chat unavailable")
		chat = nil
	}

	if !sess.FinishAnalysis(gen, report, markdown.Render(report), chat) {
		// User started over mid-flight; the result has no rendering target.
		log.Info().Str("session", sess.ID()).Msg("discarded stale analysis result")
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{Session: sess.Snapshot()})
}
