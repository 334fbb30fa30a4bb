package library

// UploadStatus tracks forwarding of an artifact into its storage channel.
type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
	UploadCancelled  UploadStatus = "cancelled"
)

// validTransitions defines allowed state transitions.
// Key is the "from" status, value is list of valid "to" statuses.
var validTransitions = map[UploadStatus][]UploadStatus{
	UploadPending:    {UploadProcessing, UploadCancelled},
	UploadProcessing: {UploadCompleted, UploadFailed},
	UploadFailed:     {UploadPending}, // fresh enqueue
	UploadCompleted:  {},
	UploadCancelled:  {},
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s UploadStatus) CanTransitionTo(target UploadStatus) bool {
	for _, v := range validTransitions[s] {
		if v == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no transition leaves this status.
func (s UploadStatus) IsTerminal() bool {
	return s == UploadCompleted || s == UploadCancelled
}

// Valid reports whether s is a known status.
func (s UploadStatus) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}
