package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/couplobby/internal/api/request"
	"github.com/mcoot/couplobby/internal/api/response"
	"github.com/mcoot/couplobby/internal/model"
	"github.com/mcoot/couplobby/internal/services/room"
)

// RoomHandler handles room-related endpoints
type RoomHandler struct {
	coordinator *room.Coordinator
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(coordinator *room.Coordinator) *RoomHandler {
	return &RoomHandler{coordinator: coordinator}
}

// Create handles POST /create-room
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	snapshot, err := h.coordinator.CreateRoom(r.Context(), req.RoomName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomFromSnapshot(snapshot))
}

// Get handles GET /rooms/{token}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	token := model.RoomToken(mux.Vars(r)["token"])

	snapshot, err := h.coordinator.Snapshot(r.Context(), token)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromSnapshot(snapshot))
}

// Join handles POST /rooms/{token}/players
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	token := model.RoomToken(mux.Vars(r)["token"])

	var req request.JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("Invalid request body"))
		return
	}

	snapshot, err := h.coordinator.JoinRoom(r.Context(), token, req.PlayerName)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomFromSnapshot(snapshot))
}
