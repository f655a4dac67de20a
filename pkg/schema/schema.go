// Package schema defines the static per-service form schemas that drive the
// audit UI. Schemas are immutable: the builder hands out copies so callers
// can never mutate the catalog.
package schema

import "fmt"

// ServiceKind selects which marketing service is being audited.
type ServiceKind string

const (
	GTM ServiceKind = "gtm"
	GA4 ServiceKind = "ga4"
	Ads ServiceKind = "ads"
)

// Kinds lists every supported service in display order.
var Kinds = []ServiceKind{GTM, GA4, Ads}

// ParseServiceKind maps a wire value to a ServiceKind.
func ParseServiceKind(s string) (ServiceKind, error) {
	switch ServiceKind(s) {
	case GTM, GA4, Ads:
		return ServiceKind(s), nil
	}
	return "", fmt.Errorf("unknown service kind: %q", s)
}

// DisplayName returns the human-readable service name used in prompts and UI.
func (k ServiceKind) DisplayName() string {
	switch k {
	case GTM:
		return "Google Tag Manager"
	case GA4:
		return "Google Analytics 4"
	case Ads:
		return "Google Ads"
	}
	return string(k)
}

// InputKind is the control type a field renders as.
type InputKind string

const (
	InputText     InputKind = "text"
	InputURL      InputKind = "url"
	InputTextarea InputKind = "textarea"
)

// FieldSpec describes one form control.
type FieldSpec struct {
	Label       string    `json:"label"`
	ID          string    `json:"id"`
	Kind        InputKind `json:"kind"`
	Placeholder string    `json:"placeholder"`
	Required    bool      `json:"required"`
	// Rows is the visual height for textarea fields, 0 for single-line inputs.
	Rows int `json:"rows,omitempty"`
}

var fieldSchemas = map[ServiceKind][]FieldSpec{
	GTM: {
		{Label: "Website URL", ID: "url", Kind: InputURL, Placeholder: "https://www.example.com", Required: true},
		{Label: "GTM Container ID", ID: "gtm-id", Kind: InputText, Placeholder: "GTM-XXXXXXX", Required: true},
		{Label: "Describe your setup", ID: "description", Kind: InputTextarea, Placeholder: "e.g. We fire a purchase tag on the order confirmation page...", Required: true, Rows: 4},
	},
	GA4: {
		{Label: "Website URL", ID: "url", Kind: InputURL, Placeholder: "https://www.example.com", Required: true},
		{Label: "GA4 Measurement ID", ID: "ga4-id", Kind: InputText, Placeholder: "G-XXXXXXXXXX", Required: true},
		{Label: "Key events you track", ID: "key-events", Kind: InputTextarea, Placeholder: "e.g. purchase, sign_up, generate_lead...", Required: true, Rows: 4},
	},
	Ads: {
		{Label: "Google Ads Customer ID", ID: "ads-id", Kind: InputText, Placeholder: "AW-XXXXXXXXX", Required: true},
		{Label: "Conversion actions", ID: "conversion-actions", Kind: InputTextarea, Placeholder: "e.g. Purchase conversion imported from GA4...", Required: true, Rows: 4},
		{Label: "What do you want to audit?", ID: "audit-goal", Kind: InputTextarea, Placeholder: "e.g. Verify conversion tracking fires once per order...", Required: true, Rows: 4},
	},
}

// Fields returns the ordered field schema for a service kind.
// The returned slice is a copy.
func Fields(kind ServiceKind) []FieldSpec {
	specs := fieldSchemas[kind]
	out := make([]FieldSpec, len(specs))
	copy(out, specs)
	return out
}

// Form is a materialized set of controls for one service.
type Form struct {
	Service ServiceKind `json:"service"`
	Title   string      `json:"title"`
	Fields  []FieldSpec `json:"fields"`
}

// BuildForm materializes the form for a service kind. Building a form for a
// new kind fully replaces the prior one; no state is shared between builds.
func BuildForm(kind ServiceKind) (*Form, error) {
	if _, ok := fieldSchemas[kind]; !ok {
		return nil, fmt.Errorf("no schema for service kind: %q", kind)
	}
	return &Form{
		Service: kind,
		Title:   kind.DisplayName() + " Audit",
		Fields:  Fields(kind),
	}, nil
}
