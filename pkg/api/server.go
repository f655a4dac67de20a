// Package api exposes the audit UI's HTTP surface: session lifecycle, form
// schemas, one-shot analysis and the SSE follow-up stream.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/advisor"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/schema"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/session"
)

// Adviser is the slice of the generation backend the handlers need.
// *advisor.Client satisfies it; tests substitute fakes.
type Adviser interface {
	RunAnalysis(ctx context.Context, kind schema.ServiceKind, req advisor.AnalysisRequest) (string, error)
	OpenFollowUp(ctx context.Context, kind schema.ServiceKind, req advisor.AnalysisRequest, report string) (session.Chat, error)
}

// Server carries the handler dependencies: the session manager and the
// generation backend adapter.
type Server struct {
	sessions *session.Manager
	adviser  Adviser
}

func NewServer(sessions *session.Manager, adviser Adviser) *Server {
	return &Server{sessions: sessions, adviser: adviser}
}

// RegisterRoutes registers the API routes on a router.
func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/health", s.HandleHealth).Methods("GET")
	router.HandleFunc("/api/services", s.HandleListServices).Methods("GET")
	router.HandleFunc("/api/sessions", s.HandleCreateSession).Methods("POST")
	router.HandleFunc("/api/sessions/{id}", s.HandleGetSession).Methods("GET")
	router.HandleFunc("/api/sessions/{id}/select", s.HandleSelectService).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/analyze", s.HandleAnalyze).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/followup", s.HandleFollowUp).Methods("POST")
	router.HandleFunc("/api/sessions/{id}/reset", s.HandleReset).Methods("POST")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) *session.Session {
	id := mux.Vars(r)["id"]
	sess, err := s.sessions.Get(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil
	}
	return sess
}

// ServiceInfo is one entry of the service catalog.
type ServiceInfo struct {
	Kind schema.ServiceKind `json:"kind"`
	Name string             `json:"name"`
}

func serviceCatalog() []ServiceInfo {
	catalog := make([]ServiceInfo, 0, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		catalog = append(catalog, ServiceInfo{Kind: kind, Name: kind.DisplayName()})
	}
	return catalog
}

// HandleHealth handles GET /api/health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleListServices handles GET /api/services.
func (s *Server) HandleListServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"services": serviceCatalog()})
}

// CreateSessionResponse is the response for POST /api/sessions.
type CreateSessionResponse struct {
	Session  session.Snapshot `json:"session"`
	Services []ServiceInfo    `json:"services"`
}

// HandleCreateSession handles POST /api/sessions. Every browser tab starts
// its own session on the welcome screen.
func (s *Server) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	log.Info().Str("session", sess.ID()).Msg("session created")
	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		Session:  sess.Snapshot(),
		Services: serviceCatalog(),
	})
}

// HandleGetSession handles GET /api/sessions/{id}; the client uses it to
// re-sync after a reload.
func (s *Server) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// SelectServiceRequest is the body for POST /api/sessions/{id}/select.
type SelectServiceRequest struct {
	Service string `json:"service"`
}

// SelectServiceResponse returns the materialized form for the chosen service.
type SelectServiceResponse struct {
	Session session.Snapshot `json:"session"`
	Form    *schema.Form     `json:"form"`
}

// HandleSelectService handles POST /api/sessions/{id}/select: welcome -> form.
func (s *Server) HandleSelectService(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}

	var req SelectServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	kind, err := schema.ParseServiceKind(req.Service)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := sess.SelectService(kind); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	form, err := schema.BuildForm(kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SelectServiceResponse{
		Session: sess.Snapshot(),
		Form:    form,
	})
}

// HandleReset handles POST /api/sessions/{id}/reset: unconditional return to
// the welcome screen, dropping report, transcript and chat together.
func (s *Server) HandleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	sess.StartOver()
	log.Info().Str("session", sess.ID()).Msg("session reset")
	writeJSON(w, http.StatusOK, sess.Snapshot())
}
