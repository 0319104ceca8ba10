package commands

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqbot/obs-subtitles/pkg/log"
	"github.com/miqbot/obs-subtitles/pkg/wire"
)

func TestStatsCountsByLayerAndCategory(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerTransport, Category: log.CategoryMessage, Direction: log.DirectionOut},
		{Timestamp: ts, Layer: log.LayerWire, Category: log.CategoryMessage},
		{Timestamp: ts, Layer: log.LayerSession, Category: log.CategoryState},
		{Timestamp: ts, Layer: log.LayerWire, Category: log.CategoryError, Error: &log.ErrorEventData{Message: "boom"}},
	}

	path := createTestLogFile(t, events)

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	output := buf.String()

	assert.Contains(t, output, "Total Events: 5")
	assert.Contains(t, output, "TRANSPORT:   2")
	assert.Contains(t, output, "WIRE:        2")
	assert.Contains(t, output, "SESSION:     1")
	assert.Contains(t, output, "MESSAGE:     3")
	assert.Contains(t, output, "STATE:       1")
	assert.Contains(t, output, "ERROR:       1")
	assert.Contains(t, output, "IN:          2")
	assert.Contains(t, output, "OUT:         1")
	assert.Contains(t, output, "Errors: 1")
}

func TestStatsRequests(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := sampleSession(ts)

	failed := false
	status := wire.StatusResourceNotFound
	rtt := 3500 * time.Microsecond
	events = append(events, log.Event{
		Timestamp: ts.Add(time.Second), ConnectionID: "conn-1", Direction: log.DirectionIn,
		Layer: log.LayerWire, Category: log.CategoryMessage,
		Message: &log.MessageEvent{
			Op: wire.OpRequestResponse, RequestID: "req-2",
			Result: &failed, Status: &status, RoundTrip: &rtt,
		},
	})

	reader, err := log.NewReader(createTestLogFile(t, events))
	require.NoError(t, err)
	defer reader.Close()

	stats, err := collectStats(reader)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Requests.Responses)
	assert.Equal(t, 1, stats.Requests.Failures)
	assert.Equal(t, 1, stats.Requests.ByStatus[wire.StatusSuccess])
	assert.Equal(t, 1, stats.Requests.ByStatus[wire.StatusResourceNotFound])
	assert.Equal(t, 2500*time.Microsecond, stats.Requests.MeanRoundTrip())
	assert.Equal(t, rtt, stats.Requests.MaxRoundTrip)

	var buf bytes.Buffer
	printStats(&buf, stats)
	assert.Contains(t, buf.String(), "Requests: 2 (1 failed)")
	assert.Contains(t, buf.String(), "RESOURCE_NOT_FOUND:")
	assert.Contains(t, buf.String(), "Round trip: mean 2.500ms, max 3.500ms")
}

func TestStatsConnections(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, ConnectionID: "aaaaaaaa-1111", RemoteAddr: "ws://127.0.0.1:4455", Category: log.CategoryMessage},
		{
			Timestamp: ts.Add(time.Second), ConnectionID: "aaaaaaaa-1111", Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityChannel, NewState: "READY"},
		},
		{
			Timestamp: ts.Add(2 * time.Second), ConnectionID: "aaaaaaaa-1111", Category: log.CategoryState,
			StateChange: &log.StateChangeEvent{Entity: log.StateEntityScheduler, NewState: "SHOWN"},
		},
		{Timestamp: ts.Add(3 * time.Second), ConnectionID: "bbbbbbbb-2222", Category: log.CategoryMessage},
	}

	var buf bytes.Buffer
	require.NoError(t, RunStats(createTestLogFile(t, events), &buf))
	output := buf.String()

	assert.Contains(t, output, "Connections: 2")
	assert.Contains(t, output, "[aaaaaaaa] 3 events, duration 2s")
	assert.Contains(t, output, "Remote: ws://127.0.0.1:4455")
	assert.Contains(t, output, "Last state: READY")
	assert.Contains(t, output, "[bbbbbbbb] 1 events")
}

func TestStatsEmptyFile(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunStats(createTestLogFile(t, nil), &buf))
	assert.Contains(t, buf.String(), "Total Events: 0")
	assert.Contains(t, buf.String(), "Connections: 0")
	assert.NotContains(t, buf.String(), "Time Range")
}
