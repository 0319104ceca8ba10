package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/miqbot/obs-subtitles/pkg/wire"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Category:     CategoryMessage,
		Frame:        &FrameEvent{Size: 256},
	})

	if entry["msg"] != "protocol" {
		t.Errorf("msg = %v, want protocol", entry["msg"])
	}
	if entry["conn_id"] != "conn-123" {
		t.Errorf("conn_id = %v", entry["conn_id"])
	}
	if entry["direction"] != "IN" {
		t.Errorf("direction = %v", entry["direction"])
	}
	if entry["frame_size"] != float64(256) {
		t.Errorf("frame_size = %v", entry["frame_size"])
	}
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	ok := true
	status := wire.StatusSuccess
	entry := logOne(t, Event{
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Layer:        LayerWire,
		Category:     CategoryMessage,
		Message: &MessageEvent{
			Op:          wire.OpRequestResponse,
			RequestType: wire.RequestSetInputSettings,
			RequestID:   "req-7",
			Result:      &ok,
			Status:      &status,
		},
	})

	if entry["op"] != "REQUEST_RESPONSE" {
		t.Errorf("op = %v", entry["op"])
	}
	if entry["request_id"] != "req-7" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["result"] != true {
		t.Errorf("result = %v", entry["result"])
	}
	if entry["status"] != "SUCCESS" {
		t.Errorf("status = %v", entry["status"])
	}
}

func TestSlogAdapterLogsStateAndError(t *testing.T) {
	entry := logOne(t, Event{
		ConnectionID: "conn-1",
		Layer:        LayerSession,
		Category:     CategoryState,
		StateChange:  &StateChangeEvent{Entity: StateEntityChannel, OldState: "IDENTIFYING", NewState: "READY"},
	})
	if entry["new_state"] != "READY" || entry["old_state"] != "IDENTIFYING" {
		t.Errorf("state entry = %v", entry)
	}
	if _, ok := entry["direction"]; ok {
		t.Error("state events should not carry a direction")
	}

	entry = logOne(t, Event{
		ConnectionID: "conn-1",
		Layer:        LayerSession,
		Category:     CategoryError,
		Error:        &ErrorEventData{Layer: LayerWire, Message: "boom", Kind: "PROTOCOL", Context: "SetText"},
	})
	if entry["error_msg"] != "boom" || entry["error_kind"] != "PROTOCOL" {
		t.Errorf("error entry = %v", entry)
	}
}
