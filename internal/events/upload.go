package events

// Entity types
const (
	EntityMovie   = "movie"
	EntityEpisode = "episode"
	EntitySeries  = "series"
	EntityChat    = "chat"
)

// Event type constants
const (
	EventUploadEnqueued  = "upload.enqueued"
	EventUploadStarted   = "upload.started"
	EventUploadCompleted = "upload.completed"
	EventUploadFailed    = "upload.failed"
	EventUploadCancelled = "upload.cancelled"
	EventUploadPurged    = "upload.purged"
	EventDeliverySent    = "delivery.sent"
	EventDeliveryMissed  = "delivery.missed"
)

// UploadEnqueued is emitted when an id joins the upload queue.
type UploadEnqueued struct {
	BaseEvent
	ContentID string `json:"content_id"`
	Position  int    `json:"position"` // 1-based position in the pending sequence
}

// UploadStarted is emitted when the worker begins forwarding an item.
type UploadStarted struct {
	BaseEvent
	ContentID string `json:"content_id"`
	AttemptID string `json:"attempt_id"`
}

// UploadCompleted is emitted when an item lands in its storage channel.
type UploadCompleted struct {
	BaseEvent
	ContentID string `json:"content_id"`
	AttemptID string `json:"attempt_id"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	ShareLink string `json:"share_link,omitempty"`
	Tries     int    `json:"tries"` // provider calls made, including transient retries
}

// UploadFailed is emitted when forwarding gives up on an item.
type UploadFailed struct {
	BaseEvent
	ContentID string `json:"content_id"`
	AttemptID string `json:"attempt_id,omitempty"`
	Reason    string `json:"reason"`
	Tries     int    `json:"tries"`
}

// UploadCancelled is emitted when a stale pending item is cancelled.
type UploadCancelled struct {
	BaseEvent
	ContentID string `json:"content_id"`
	Reason    string `json:"reason"`
}

// UploadPurged is emitted when a cancelled item is deleted after retention.
type UploadPurged struct {
	BaseEvent
	ContentID string `json:"content_id"`
}
