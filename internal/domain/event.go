package domain

// WebhookEvent is a verified inbound webhook, ready for dispatch.
// Payload holds the exact raw bytes as received; the HMAC signature is
// computed over them, and any re-serialization before verification would
// invalidate it.
type WebhookEvent struct {
	Topic     string
	Shop      string
	WebhookID string
	Payload   []byte
}

// OrderEvent is published after an order is durably persisted. It feeds
// the dashboard's live feed subscriptions.
type OrderEvent struct {
	Topic string `json:"topic"`
	Shop  string `json:"shop"`
	Order *Order `json:"order"`
}
