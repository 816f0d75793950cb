package gateway

// Frame is one JSON message on the room websocket
type Frame struct {
	Command     string `json:"command"`
	Destination string `json:"destination,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Client commands
const (
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandSend        = "SEND"
)

// Server commands
const (
	CommandMessage = "MESSAGE"
	CommandError   = "ERROR"
)

// topicPrefix marks subscribable destinations; the rest is the broker topic
const topicPrefix = "/topic/"
