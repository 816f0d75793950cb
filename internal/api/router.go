package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/couplobby/internal/api/handler"
	"github.com/mcoot/couplobby/internal/api/middleware"
	"github.com/mcoot/couplobby/internal/api/response"
	sharedmw "github.com/mcoot/couplobby/internal/middleware"
	"github.com/mcoot/couplobby/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	Coordinator    *room.Coordinator
	Gateway        http.Handler // optional websocket endpoint
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(cfg.Coordinator)

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(sharedmw.Logging(cfg.Logger))
	r.Use(mux.CORSMethodMiddleware(r))
	r.Use(sharedmw.CORS(cfg.AllowedOrigins))

	r.HandleFunc("/create-room", roomHandler.Create).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/rooms/{token}", roomHandler.Get).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/rooms/{token}/players", roomHandler.Join).Methods(http.MethodPost, http.MethodOptions)

	if cfg.Gateway != nil {
		r.Handle("/room-websocket", cfg.Gateway).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}
