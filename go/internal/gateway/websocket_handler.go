package gateway

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
)

// WebSocketHandler handles WebSocket upgrade requests for timeline connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleTimelineConnection handles WebSocket connections for a specific broadcast
func (h *WebSocketHandler) HandleTimelineConnection(w http.ResponseWriter, r *http.Request) {
	broadcastID := r.URL.Query().Get("broadcast_id")
	if broadcastID == "" {
		http.Error(w, "broadcast_id is required", http.StatusBadRequest)
		return
	}

	// Extract viewer ID from query parameter or header
	// In production, this would come from JWT token or session
	viewerID := r.URL.Query().Get("viewer_id")
	if viewerID == "" {
		// For development, allow anonymous connections
		viewerID = "anonymous"
	}

	if err := h.connectionManager.UpgradeConnection(w, r, viewerID, broadcastID); err != nil {
		log.Error().
			Err(err).
			Str("broadcast_id", broadcastID).
			Str("viewer_id", viewerID).
			Msg("failed to upgrade WebSocket connection")
		http.Error(w, "failed to upgrade connection", http.StatusInternalServerError)
		return
	}

	// Connection is now handled by the connection manager
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	stats := h.connectionManager.GetConnectionStats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	w.Write([]byte("{"))
	w.Write([]byte("\"total_connections\":" + strconv.Itoa(stats["total_connections"].(int)) + ","))
	w.Write([]byte("\"active_broadcasts\":" + strconv.Itoa(stats["active_broadcasts"].(int))))
	w.Write([]byte("}"))
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/timeline", h.HandleTimelineConnection)
	mux.HandleFunc("/ws/stats", h.HandleConnectionStats)
}
