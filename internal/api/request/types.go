package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	RoomName string `json:"roomName"`
}

// JoinRoomRequest is the request body for joining a room over HTTP
type JoinRoomRequest struct {
	PlayerName string `json:"playerName"`
}
