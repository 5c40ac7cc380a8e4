package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"tripflow/internal/planner"
	"tripflow/internal/trip"
)

func testPlanner() *planner.Planner {
	return &planner.Planner{
		Now: func() time.Time { return time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC) },
	}
}

func testRequestBody(t *testing.T) []byte {
	t.Helper()
	prev := trip.TripInput{
		Dates:       trip.DateRange{Start: "2026-04-10", End: "2026-04-17"},
		Budget:      trip.Budget{Amount: 3000, Currency: "USD"},
		Origin:      "Tokyo",
		Destination: "Paris",
		Passport:    "Japan",
		Travelers:   trip.TravelerCounts{Adults: 2},
	}
	prop := prev
	prop.Budget.Amount = 2500
	req := planner.Request{
		TripID:   "trip-1",
		Previous: prev,
		Proposed: prop,
		Current: trip.TripResult{
			Feasibility: trip.FeasibilityReport{Certainty: 80},
			Cost:        trip.CostBreakdown{Total: 2600, Currency: "USD"},
		},
		Source: planner.SourceEdit,
	}
	b, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestHandleReplan(t *testing.T) {
	h := New(testPlanner(), NewHub(), nil)
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/replan", "application/json", bytes.NewReader(testRequestBody(t)))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		RunID    string `json:"run_id"`
		ChangeID string `json:"change_id"`
		Changes  []struct {
			Field string `json:"field"`
		} `json:"changes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.RunID == "" || out.ChangeID == "" {
		t.Fatalf("missing ids in response: %+v", out)
	}
	if len(out.Changes) != 1 || out.Changes[0].Field != "budget" {
		t.Fatalf("unexpected changes: %+v", out.Changes)
	}
}

func TestHandleReplan_BadInput(t *testing.T) {
	h := New(testPlanner(), NewHub(), nil)
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/replan", "application/json", bytes.NewReader([]byte("not json")))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body: status = %d", resp.StatusCode)
	}

	// Valid JSON but missing trip_id.
	resp, err = http.Post(srv.URL+"/v1/replan", "application/json", bytes.NewReader([]byte(`{}`)))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid request: status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/replan")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("GET: status = %d", resp.StatusCode)
	}
}

func TestHandleFixOptions(t *testing.T) {
	h := New(testPlanner(), NewHub(), nil)
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"report": trip.FeasibilityReport{
			Certainty: 55,
			Visa: &trip.VisaFacts{
				Passport: "India", Destination: "Japan",
				Required: true, ProcessingDays: 10,
			},
		},
		"input": trip.TripInput{
			Dates:       trip.DateRange{Start: "2026-04-10", End: "2026-04-17"},
			Destination: "Japan",
			Passport:    "India",
			Travelers:   trip.TravelerCounts{Adults: 1},
		},
	})
	resp, err := http.Post(srv.URL+"/v1/fix-options", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var out struct {
		Options []struct {
			Kind      string `json:"kind"`
			ShiftDays int    `json:"shift_days"`
		} `json:"options"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Options) != 1 || out.Options[0].Kind != "shift_dates" {
		t.Fatalf("unexpected options: %+v", out.Options)
	}
}

func TestHealthz(t *testing.T) {
	h := New(testPlanner(), NewHub(), nil)
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRunEvents_BadPath(t *testing.T) {
	h := New(testPlanner(), NewHub(), nil)
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/runs/abc")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRunEvents_StreamsAndHonorsClientClose(t *testing.T) {
	hub := NewHub()
	hub.Append("run-1", "analyze", map[string]any{"iteration": 1})
	h := New(testPlanner(), hub, nil)
	srv := httptest.NewServer(h.Mux())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/runs/run-1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	var ev Event
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read history event: %v", err)
	}
	if ev.Stage != "analyze" {
		t.Fatalf("stage = %q", ev.Stage)
	}

	hub.Append("run-1", "synthesize", nil)
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("read live event: %v", err)
	}
	if ev.Stage != "synthesize" {
		t.Fatalf("stage = %q", ev.Stage)
	}

	// A client close frame must terminate the server side of the stream.
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		t.Fatalf("write close: %v", err)
	}
	conn.SetReadDeadline(deadline)
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the server to close the stream after the close frame")
	}
}

func TestHub_HistoryAndFanOut(t *testing.T) {
	hub := NewHub()
	hub.Append("run-1", "analyze", map[string]any{"round": 1})

	history, live, cancel := hub.Subscribe("run-1")
	defer cancel()
	if len(history) != 1 || history[0].Stage != "analyze" {
		t.Fatalf("history = %+v", history)
	}

	hub.Append("run-1", "synthesize", nil)
	select {
	case ev := <-live:
		if ev.Stage != "synthesize" {
			t.Fatalf("stage = %q", ev.Stage)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live event")
	}

	if got := hub.Events("run-1"); len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got := hub.Events("other"); len(got) != 0 {
		t.Fatalf("unrelated run has %d events", len(got))
	}
}

func TestHub_CancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	_, live, cancel := hub.Subscribe("run-1")
	cancel()
	hub.Append("run-1", "analyze", nil)
	select {
	case <-live:
		t.Fatal("canceled subscriber must not receive events")
	default:
	}
}

func TestHub_DropsFinishedRunAfterRetention(t *testing.T) {
	hub := NewHub()
	hub.retention = 10 * time.Millisecond
	hub.Append("run-1", "analyze", nil)
	hub.Append("run-1", "done", nil)

	deadline := time.Now().Add(2 * time.Second)
	for len(hub.Events("run-1")) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("finished run history was never dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_CapsRunBuffer(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxRunEvents+10; i++ {
		hub.Append("run-1", "analyze", nil)
	}
	if got := len(hub.Events("run-1")); got != maxRunEvents {
		t.Fatalf("buffer length = %d, want %d", got, maxRunEvents)
	}
}
