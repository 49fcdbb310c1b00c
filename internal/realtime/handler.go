package realtime

import (
	"log/slog"
	"net/http"
	"strings"

	"storm/internal/httputil"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ServeWS upgrades GET /ws to a WebSocket and attaches it to the hub.
// allowedOrigins is the CORS origin list; "*" or an empty list accepts any
// origin.
func ServeWS(hub *Hub, surface *Surface, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written the error response
			logger.Warn("failed to upgrade websocket connection", "error", err)
			return
		}

		client := &Client{
			id:      uuid.NewString(),
			userID:  httputil.GetUserID(r),
			hub:     hub,
			conn:    conn,
			mail:    newMailbox(),
			surface: surface,
			logger:  logger,
		}
		if !hub.attach(client) {
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		if origin != "" {
			set[origin] = true
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no Origin
		if origin == "" || len(set) == 0 {
			return true
		}
		return set[origin]
	}
}
