package domain

// WebhookLang is the answer language requested from the webhook.
const WebhookLang = "th"

// WebhookRequest is the payload forwarded to the external workflow webhook.
type WebhookRequest struct {
	Transcript string    `json:"transcript"`
	Products   []Product `json:"products"`
	Lang       string    `json:"lang"`
}

// QueryResult is the shape the webhook is expected to answer with. The relay
// never validates it; only presentation decodes it.
type QueryResult struct {
	Transcript *string   `json:"transcript,omitempty"`
	Answer     *string   `json:"answer,omitempty"`
	Matches    []Product `json:"matches,omitempty"`
	Error      string    `json:"error,omitempty"`
}
