package recording

import "strings"

// ChannelPredicate selects channels in FindChannel.
type ChannelPredicate func(*Channel) bool

// NameContains matches channels whose name contains the given substring,
// case-insensitively.
func NameContains(substr string) ChannelPredicate {
	want := strings.ToLower(substr)
	return func(ch *Channel) bool {
		return strings.Contains(strings.ToLower(ch.Name), want)
	}
}

// OfKind matches channels of the given signal kind.
func OfKind(kind SignalKind) ChannelPredicate {
	return func(ch *Channel) bool {
		return ch.Kind == kind
	}
}

// FindChannel returns the first channel, in insertion order, satisfying the
// predicate. The first-by-insertion-order tie-break is part of the
// contract: when several channels match, callers get the one discovered
// earliest.
func (r *Recording) FindChannel(pred ChannelPredicate) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ch := range r.channels {
		if pred(ch) {
			return ch, true
		}
	}
	return nil, false
}
