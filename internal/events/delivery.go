package events

// DeliverySent is emitted when an artifact is copied into a user chat.
type DeliverySent struct {
	BaseEvent
	ChatID    int64  `json:"chat_id"`
	ContentID string `json:"content_id"`
	Kind      string `json:"kind"` // "movie" or "episode"
	MessageID int    `json:"message_id"`
}

// DeliveryMissed is emitted when a requested id resolves to nothing.
type DeliveryMissed struct {
	BaseEvent
	ChatID int64  `json:"chat_id"`
	Query  string `json:"query"`
}
