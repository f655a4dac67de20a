package advisor

import (
	"fmt"
	"strings"

	"github.com/faisalkhan8/MarTech-Analysis-Agent/pkg/schema"
)

// AnalysisRequest maps field identifiers to the user-entered values. It is
// built fresh per submission and never persisted.
type AnalysisRequest map[string]string

const analysisSystemInstruction = `You are a senior marketing technology consultant specializing in Google Tag Manager, Google Analytics 4 and Google Ads implementations. A user will describe their setup and you audit it for common misconfigurations, tracking gaps and measurement risks.

Structure every report exactly as follows, using markdown:

# Analysis Summary
A short overall assessment of the setup.

## Potential Issues Found
Bullet points for each likely problem, most severe first.

## Recommendations
Bullet points with concrete, actionable fixes.

## Verification Steps
Numbered or bulleted steps the user can follow to confirm the fixes worked.

Base your audit only on the details provided. When something important is missing, say so rather than guessing.`

const followUpSystemInstruction = `You are a concise marketing analytics assistant. The user has just received an audit report and will ask follow-up questions about it. Answer briefly and specifically, referring back to the report context when relevant. Plain text answers are preferred over long markdown documents.`

// BuildAnalysisPrompt serializes an analysis request into the single
// natural-language prompt sent to the model: the service display name
// followed by one "- id: value" line per field, in schema order. Fields the
// user did not submit are omitted.
func BuildAnalysisPrompt(kind schema.ServiceKind, req AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please audit the following %s configuration:\n", kind.DisplayName())
	for _, f := range schema.Fields(kind) {
		if v, ok := req[f.ID]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", f.ID, v)
		}
	}
	return b.String()
}

// buildSeedMessage embeds the original request and report as context for the
// follow-up chat. The model's reply to this message is discarded; only the
// server-side conversation state it establishes matters.
func buildSeedMessage(kind schema.ServiceKind, req AnalysisRequest, report string) string {
	var b strings.Builder
	b.WriteString("For context, here is the configuration I submitted:\n\n")
	b.WriteString(BuildAnalysisPrompt(kind, req))
	b.WriteString("\nAnd here is the audit report you produced:\n\n")
	b.WriteString(report)
	b.WriteString("\n\nI will ask follow-up questions about this report. Reply with a one-line acknowledgement.")
	return b.String()
}
