// Package advisor adapts the hosted Gemini backend: one-shot report
// generation plus a stateful follow-up chat seeded with the original
// exchange. It is the only package that talks to the network.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/schema"
	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/session"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Client wraps the Gemini API for audit generation and follow-up chats.
type Client struct {
	genai *genai.Client
	model string
}

// New creates a Client. The API key is required: failing here keeps the
// server from ever issuing unauthenticated requests.
func New(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required (set GEMINI_API_KEY or configure providers.gemini.api_key)")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{genai: client, model: model}, nil
}

func systemInstruction(text string) *genai.Content {
	return &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(text)}}
}

// RunAnalysis serializes the request, sends it with the auditor system
// instruction to the one-shot generation endpoint and returns the raw
// markdown report.
func (c *Client) RunAnalysis(ctx context.Context, kind schema.ServiceKind, req AnalysisRequest) (string, error) {
	prompt := BuildAnalysisPrompt(kind, req)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(analysisSystemInstruction),
	})
	if err != nil {
		return "", fmt.Errorf("generate analysis: %w", err)
	}
	report := resp.Text()
	if report == "" {
		return "", errors.New("model returned an empty report")
	}
	return report, nil
}

// OpenFollowUp creates a chat session with the concise-assistant persona and
// primes it with one seed message embedding the request and report. The
// session is ready only once the priming call has completed; the priming
// response itself is discarded.
func (c *Client) OpenFollowUp(ctx context.Context, kind schema.ServiceKind, req AnalysisRequest, report string) (session.Chat, error) {
	chat, err := c.genai.Chats.Create(ctx, c.model, &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction(followUpSystemInstruction),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("create follow-up chat: %w", err)
	}
	if _, err := chat.SendMessage(ctx, genai.Part{Text: buildSeedMessage(kind, req, report)}); err != nil {
		return nil, fmt.Errorf("prime follow-up chat: %w", err)
	}
	return &FollowUp{chat: chat}, nil
}

// FollowUp is a live follow-up conversation. It implements session.Chat.
type FollowUp struct {
	chat *genai.Chat
}

// Ask sends a user message on the open chat and yields the reply as an
// incremental, finite, non-restartable sequence of text fragments. Partial
// consumption is permitted. A failure yields exactly one error element; the
// underlying chat stays usable for further attempts.
func (f *FollowUp) Ask(ctx context.Context, message string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range f.chat.SendMessageStream(ctx, genai.Part{Text: message}) {
			if err != nil {
				yield("", err)
				return
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}
