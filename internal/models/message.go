package models

// MessageDraft is a rendered, PII-masked outreach message.
type MessageDraft struct {
	Text         string   `json:"text"`
	MaskedFields []string `json:"masked_fields"`
	Reasons      []string `json:"reasons"`
}
