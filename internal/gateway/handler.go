// Package gateway is the HTTP boundary of the change planner: a plain JSON
// mux plus a websocket stream of per-run planner events.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tripflow/internal/fixes"
	"tripflow/internal/planner"
	"tripflow/internal/trip"
)

// Handler wires the planner into HTTP routes.
type Handler struct {
	Planner *planner.Planner
	Hub     *Hub
	Log     *log.Logger
}

func New(p *planner.Planner, hub *Hub, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{Planner: p, Hub: hub, Log: logger}
}

// Mux returns the route table.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/replan", h.handleReplan)
	mux.HandleFunc("/v1/fix-options", h.handleFixOptions)
	mux.HandleFunc("/v1/runs/", h.handleRunEvents)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	return mux
}

type replanResponse struct {
	RunID string `json:"run_id"`
	*planner.Response
}

func (h *Handler) handleReplan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req planner.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	runID := uuid.NewString()
	ctx := planner.WithRunID(r.Context(), runID)
	resp, err := h.Planner.Plan(ctx, req)
	if err != nil {
		// Only input errors surface here; everything else resolves to a
		// complete response.
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, replanResponse{RunID: runID, Response: resp})
}

type fixOptionsRequest struct {
	Report trip.FeasibilityReport `json:"report"`
	Input  trip.TripInput         `json:"input"`
}

type fixOptionsResponse struct {
	Options []fixes.Option `json:"options"`
}

func (h *Handler) handleFixOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req fixOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	opts := h.Planner.FixOptions(req.Report, req.Input)
	if opts == nil {
		opts = []fixes.Option{}
	}
	writeJSON(w, http.StatusOK, fixOptionsResponse{Options: opts})
}

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// handleRunEvents streams /v1/runs/{id}/events over a websocket: buffered
// history first, then live planner events.
func (h *Handler) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	runID, ok := strings.CutSuffix(rest, "/events")
	runID = strings.Trim(runID, "/")
	if !ok || runID == "" {
		http.NotFound(w, r)
		return
	}
	if h.Hub == nil {
		httpError(w, http.StatusServiceUnavailable, "event stream disabled")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	// Reader pump: processes pongs and close frames and detects dead peers
	// via the read deadline. Payloads are discarded.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	history, live, cancel := h.Hub.Subscribe(runID)
	defer cancel()

	for _, ev := range history {
		if err := writeEvent(conn, ev); err != nil {
			return
		}
	}

	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()
	for {
		select {
		case ev := <-live:
			if err := writeEvent(conn, ev); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev Event) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(ev)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
