package state

// NotificationEvent is the payload of a *_changes notification.
type NotificationEvent struct {
	Table string
	// Key identifies the changed row set; the language for features.
	Key string
}
