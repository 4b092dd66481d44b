package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

// TopicKind identifies the audience class of a topic
type TopicKind string

const (
	// KindOrderOwner scopes events to the customer who placed an order
	KindOrderOwner TopicKind = "user"
	// KindCafeStaff scopes events to staff of a café
	KindCafeStaff TopicKind = "cafe"
	// KindPublicQueue scopes events to unauthenticated queue watchers
	KindPublicQueue TopicKind = "queue"
)

// Topic is a typed subscription channel. Using a struct instead of
// bare "user:42" strings keeps room names in one place and removes a
// class of typo bugs.
type Topic struct {
	Kind TopicKind
	ID   uint
}

// OrderOwner returns the topic for a customer's own order events
func OrderOwner(userID uint) Topic {
	return Topic{Kind: KindOrderOwner, ID: userID}
}

// CafeStaff returns the topic for a café's staff channel
func CafeStaff(cafeID uint) Topic {
	return Topic{Kind: KindCafeStaff, ID: cafeID}
}

// PublicQueue returns the public queue-watcher topic for a café
func PublicQueue(cafeID uint) Topic {
	return Topic{Kind: KindPublicQueue, ID: cafeID}
}

// String renders the topic as its wire/room name, e.g. "cafe:42"
func (t Topic) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// RequiresAuth returns true if subscribing to the topic needs an
// authenticated caller. Public queue topics are open to everyone.
func (t Topic) RequiresAuth() bool {
	return t.Kind != KindPublicQueue
}

// ParseTopic parses a wire/room name back into a Topic
func ParseTopic(s string) (Topic, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return Topic{}, fmt.Errorf("malformed topic %q", s)
	}

	kind := TopicKind(parts[0])
	switch kind {
	case KindOrderOwner, KindCafeStaff, KindPublicQueue:
	default:
		return Topic{}, fmt.Errorf("unknown topic kind %q", parts[0])
	}

	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || id == 0 {
		return Topic{}, fmt.Errorf("invalid topic id %q", parts[1])
	}

	return Topic{Kind: kind, ID: uint(id)}, nil
}
