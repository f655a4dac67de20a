package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/advisor"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/schema"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/session"
)

type fakeChat struct {
	chunks []string
	err    error
}

func (f *fakeChat) Ask(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.err != nil {
			yield("", f.err)
		}
	}
}

type fakeAdviser struct {
	report      string
	analysisErr error
	chat        session.Chat
	chatErr     error
	lastPrompt  advisor.AnalysisRequest
}

func (f *fakeAdviser) RunAnalysis(ctx context.Context, kind schema.ServiceKind, req advisor.AnalysisRequest) (string, error) {
	f.lastPrompt = req
	return f.report, f.analysisErr
}

func (f *fakeAdviser) OpenFollowUp(ctx context.Context, kind schema.ServiceKind, req advisor.AnalysisRequest, report string) (session.Chat, error) {
	return f.chat, f.chatErr
}

func newTestServer(adviser Adviser) (*mux.Router, *session.Manager) {
	m := session.NewManager(0)
	srv := NewServer(m, adviser)
	router := mux.NewRouter()
	srv.RegisterRoutes(router)
	return router, m
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, router *mux.Router) string {
	t.Helper()
	rec := doJSON(t, router, "POST", "/api/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d", rec.Code)
	}
	var resp CreateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Session.ID
}

func TestCreateSession(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{})
	rec := doJSON(t, router, "POST", "/api/sessions", nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, expected 201", rec.Code)
	}
	var resp CreateSessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.State != session.StateWelcome {
		t.Errorf("state = %q, expected welcome", resp.Session.State)
	}
	if len(resp.Services) != 3 {
		t.Errorf("services = %d, expected 3", len(resp.Services))
	}
}

func TestSelectService(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{})
	id := createSession(t, router)

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "gtm"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp SelectServiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.State != session.StateForm {
		t.Errorf("state = %q, expected form", resp.Session.State)
	}
	if got := len(resp.Form.Fields); got != 3 {
		t.Errorf("fields = %d, expected 3", got)
	}
	if resp.Form.Fields[0].ID != "url" {
		t.Errorf("first field = %q, expected url", resp.Form.Fields[0].ID)
	}
}

func TestSelectServiceUnknownKind(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{})
	id := createSession(t, router)

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "myspace"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestSessionNotFound(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{})
	rec := doJSON(t, router, "GET", "/api/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, expected 404", rec.Code)
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	adviser := &fakeAdviser{
		report: "# Analysis Summary\nAll good.",
		chat:   &fakeChat{chunks: []string{"ok"}},
	}
	router, _ := newTestServer(adviser)
	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "gtm"})

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/analyze", AnalyzeRequest{
		Fields: advisor.AnalysisRequest{"url": "https://x.com", "gtm-id": "GTM-123", "description": "test"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Failed {
		t.Error("Failed = true, expected success")
	}
	if resp.Session.State != session.StateResults {
		t.Errorf("state = %q, expected results", resp.Session.State)
	}
	if !strings.Contains(resp.Session.ReportHTML, "<h1>Analysis Summary</h1>") {
		t.Errorf("report HTML missing rendered heading: %q", resp.Session.ReportHTML)
	}
	if adviser.lastPrompt["gtm-id"] != "GTM-123" {
		t.Errorf("adviser did not receive submitted fields: %v", adviser.lastPrompt)
	}
}

func TestAnalyzeBackendFailureLandsOnResults(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{analysisErr: errors.New("backend down")})
	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "ga4"})

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/analyze", AnalyzeRequest{
		Fields: advisor.AnalysisRequest{"ga4-id": "G-1"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Failed {
		t.Error("Failed = false, expected failure flag")
	}
	if resp.Session.State != session.StateResults {
		t.Errorf("state = %q, must not remain on loading", resp.Session.State)
	}
	if !strings.Contains(resp.Session.ReportHTML, "Analysis Failed") {
		t.Errorf("report area missing apology: %q", resp.Session.ReportHTML)
	}
}

func TestAnalyzeWithoutSelectingService(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{report: "r"})
	id := createSession(t, router)

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/analyze", AnalyzeRequest{
		Fields: advisor.AnalysisRequest{"url": "https://x.com"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", rec.Code)
	}
}

func TestFollowUpStreaming(t *testing.T) {
	adviser := &fakeAdviser{
		report: "# Report",
		chat:   &fakeChat{chunks: []string{"Hel", "lo"}},
	}
	router, m := newTestServer(adviser)
	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "gtm"})
	doJSON(t, router, "POST", "/api/sessions/"+id+"/analyze", AnalyzeRequest{
		Fields: advisor.AnalysisRequest{"url": "https://x.com"},
	})

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/followup", FollowUpRequest{Message: "why?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: chunk") {
		t.Errorf("missing chunk events: %q", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Errorf("missing done event: %q", body)
	}

	sess, err := m.Get(id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	transcript := sess.Snapshot().Transcript
	if len(transcript) != 2 {
		t.Fatalf("transcript length = %d, expected 2", len(transcript))
	}
	if transcript[0] != (session.Message{Sender: session.SenderUser, Text: "why?"}) {
		t.Errorf("user message = %+v", transcript[0])
	}
	if transcript[1] != (session.Message{Sender: session.SenderAI, Text: "Hello"}) {
		t.Errorf("assistant message = %+v, expected accumulated \"Hello\"", transcript[1])
	}
}

func TestFollowUpStreamError(t *testing.T) {
	adviser := &fakeAdviser{
		report: "# Report",
		chat:   &fakeChat{err: errors.New("stream broke")},
	}
	router, m := newTestServer(adviser)
	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "gtm"})
	doJSON(t, router, "POST", "/api/sessions/"+id+"/analyze", AnalyzeRequest{
		Fields: advisor.AnalysisRequest{"url": "https://x.com"},
	})

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/followup", FollowUpRequest{Message: "why?"})
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("missing error event: %q", rec.Body.String())
	}

	sess, _ := m.Get(id)
	transcript := sess.Snapshot().Transcript
	last := transcript[len(transcript)-1]
	if last.Sender != session.SenderError {
		t.Errorf("last message sender = %q, expected error", last.Sender)
	}

	// The session stays usable: a later attempt still streams.
	adviser.chat.(*fakeChat).err = nil
	adviser.chat.(*fakeChat).chunks = []string{"better"}
	rec = doJSON(t, router, "POST", "/api/sessions/"+id+"/followup", FollowUpRequest{Message: "again?"})
	if !strings.Contains(rec.Body.String(), "event: done") {
		t.Errorf("retry after error did not complete: %q", rec.Body.String())
	}
}

func TestFollowUpBeforeAnalysis(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{})
	id := createSession(t, router)

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/followup", FollowUpRequest{Message: "hello?"})
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("expected error event, got: %q", rec.Body.String())
	}
}

func TestResetClearsSession(t *testing.T) {
	adviser := &fakeAdviser{report: "# Report", chat: &fakeChat{chunks: []string{"x"}}}
	router, _ := newTestServer(adviser)
	id := createSession(t, router)
	doJSON(t, router, "POST", "/api/sessions/"+id+"/select", SelectServiceRequest{Service: "ads"})
	doJSON(t, router, "POST", "/api/sessions/"+id+"/analyze", AnalyzeRequest{
		Fields: advisor.AnalysisRequest{"ads-id": "AW-9"},
	})
	doJSON(t, router, "POST", "/api/sessions/"+id+"/followup", FollowUpRequest{Message: "q"})

	rec := doJSON(t, router, "POST", "/api/sessions/"+id+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.State != session.StateWelcome {
		t.Errorf("state = %q, expected welcome", snap.State)
	}
	if snap.ReportHTML != "" || len(snap.Transcript) != 0 || snap.Service != "" {
		t.Errorf("residual state after reset: %+v", snap)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestServer(&fakeAdviser{})
	rec := doJSON(t, router, "GET", "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
