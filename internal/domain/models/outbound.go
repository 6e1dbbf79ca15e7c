package models

// OutboundMessageRequest is a text notification pushed through WhatsApp.
type OutboundMessageRequest struct {
	To         string `json:"to"`
	Message    string `json:"message"`
	PreviewURL bool   `json:"preview_url"`
}
