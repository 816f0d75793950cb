package publisher

import "github.com/mcoot/couplobby/internal/model"

// TopicFunc maps a room token to the topic its snapshots are published on
type TopicFunc func(token model.RoomToken) string

// StateTopic is the topic existing subscribers listen on
func StateTopic(token model.RoomToken) string {
	return "state-room/" + string(token)
}

// StructuredStateTopic carries snapshots in the structured encoding
func StructuredStateTopic(token model.RoomToken) string {
	return "v2/state-room/" + string(token)
}

// ErrorTopic carries failures of inbound requests addressed to a room
func ErrorTopic(token model.RoomToken) string {
	return "room-errors/" + string(token)
}
