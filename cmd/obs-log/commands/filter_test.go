package commands

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqbot/obs-subtitles/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	require.NoError(t, err)
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, event)
	}
}

func TestFilterByConnectionID(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, ConnectionID: "conn-1", Category: log.CategoryMessage},
		{Timestamp: ts, ConnectionID: "conn-2", Category: log.CategoryMessage},
		{Timestamp: ts, ConnectionID: "conn-1", Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.olog")

	var out bytes.Buffer
	require.NoError(t, RunFilter(path, outPath, FilterOptions{ConnID: "conn-1"}, &out))
	assert.Equal(t, "Filtered 2 events to "+outPath+"\n", out.String())

	got := readAll(t, outPath)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, "conn-1", e.ConnectionID)
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, ConnectionID: "early"},
		{Timestamp: base.Add(time.Hour), ConnectionID: "middle"},
		{Timestamp: base.Add(2 * time.Hour), ConnectionID: "late"},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.olog")

	err := RunFilter(path, outPath, FilterOptions{
		TimeStart: "2026-01-28T10:30:00Z",
		TimeEnd:   "2026-01-28T11:30:00Z",
	}, io.Discard)
	require.NoError(t, err)

	got := readAll(t, outPath)
	require.Len(t, got, 1)
	assert.Equal(t, "middle", got[0].ConnectionID)
}

func TestFilterByRequestID(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	path := createTestLogFile(t, sampleSession(ts))
	outPath := filepath.Join(t.TempDir(), "filtered.olog")

	require.NoError(t, RunFilter(path, outPath, FilterOptions{RequestID: "req-1"}, io.Discard))

	got := readAll(t, outPath)
	require.Len(t, got, 2)
	for _, e := range got {
		require.NotNil(t, e.Message)
		assert.Equal(t, "req-1", e.Message.RequestID)
	}
}

func TestFilterByDirectionSkipsStateEvents(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	path := createTestLogFile(t, sampleSession(ts))
	outPath := filepath.Join(t.TempDir(), "filtered.olog")

	// State events carry the zero Direction, which equals DirectionIn.
	require.NoError(t, RunFilter(path, outPath, FilterOptions{Direction: "in"}, io.Discard))

	got := readAll(t, outPath)
	require.Len(t, got, 1)
	assert.Equal(t, log.DirectionIn, got[0].Direction)
	assert.NotNil(t, got[0].Message)
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, nil)
	outPath := filepath.Join(t.TempDir(), "filtered.olog")

	tests := []struct {
		name string
		opts FilterOptions
		want string
	}{
		{"layer", FilterOptions{Layer: "service"}, "invalid layer: service"},
		{"direction", FilterOptions{Direction: "up"}, "invalid direction: up"},
		{"category", FilterOptions{Category: "snapshot"}, "invalid category: snapshot"},
		{"time start", FilterOptions{TimeStart: "yesterday"}, "invalid time-start format"},
		{"time end", FilterOptions{TimeEnd: "tomorrow"}, "invalid time-end format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunFilter(path, outPath, tt.opts, io.Discard)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseFlagsCaseInsensitive(t *testing.T) {
	l, err := ParseLayer("SESSION")
	require.NoError(t, err)
	assert.Equal(t, log.LayerSession, l)

	d, err := ParseDirection("Out")
	require.NoError(t, err)
	assert.Equal(t, log.DirectionOut, d)

	c, err := ParseCategory("Error")
	require.NoError(t, err)
	assert.Equal(t, log.CategoryError, c)
}
