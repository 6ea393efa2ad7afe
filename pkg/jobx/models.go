package jobx

import "time"

// Message is one delivery of a queued payload to a consumer.
// Delivery is at-least-once: the same payload may arrive again after a crash.
type Message struct {
	Queue    string
	Payload  string
	Consumer string

	ReceivedAt time.Time
}
