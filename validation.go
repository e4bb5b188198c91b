package tracklight

// validateTrack rejects malformed events before they enter the queue.
// Runs synchronously in Track, before enrichment; a returned error is
// propagated directly to the caller and the event is never queued.
func validateTrack(t Track) error {
	if t.Event == "" {
		return NewValidationError("event", "is required")
	}
	if emptyIdentity(t.UserID) && emptyIdentity(t.AnonymousID) {
		return NewValidationError("userId", "or anonymousId is required")
	}
	return nil
}

// emptyIdentity reports whether an identity field carries no value.
func emptyIdentity(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}
