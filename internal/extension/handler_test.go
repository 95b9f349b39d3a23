package extension

import (
	"errors"
	"testing"

	"github.com/robottwo/mapsroute/internal/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandle_RouteQuery(t *testing.T) {
	h := NewKeywordHandler("", zap.NewNop())

	entries := h.Handle("Vienna to Munich")
	require.Len(t, entries, 2)

	forward := entries[0]
	assert.Equal(t, "Route from Vienna to Munich", forward.Title)
	assert.Equal(t, "Open Google Maps in the browser and search for a route", forward.Description)
	assert.Equal(t, DefaultIcon, forward.Icon)
	assert.Equal(t, ActionOpenURL, forward.OnEnter.Kind)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&origin=Vienna&destination=Munich", forward.OnEnter.URL)
	require.NotNil(t, forward.OnAltEnter)
	assert.Equal(t, CopyToClipboard(forward.OnEnter.URL), *forward.OnAltEnter)

	reverse := entries[1]
	assert.Equal(t, "Reverse: Munich to Vienna", reverse.Title)
	assert.Equal(t, "Open reverse route in Google Maps", reverse.Description)
	assert.Equal(t, ActionOpenURL, reverse.OnEnter.Kind)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&origin=Munich&destination=Vienna", reverse.OnEnter.URL)
	require.NotNil(t, reverse.OnAltEnter)
	assert.Equal(t, reverse.OnEnter.URL, reverse.OnAltEnter.Text)
}

func TestHandle_HelpEntries(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		title       string
		description string
	}{
		{
			name:        "Empty query prompts for the pattern",
			query:       "",
			title:       "Google Maps Routes",
			description: `Type: <origin> to <destination> (e.g., "Vienna to Munich")`,
		},
		{
			name:        "Whitespace-only query is treated as empty",
			query:       "   \t ",
			title:       "Google Maps Routes",
			description: `Type: <origin> to <destination> (e.g., "Vienna to Munich")`,
		},
		{
			name:        "Text without separator shows the format",
			query:       "just some text",
			title:       "Search for a route",
			description: "Use format: <origin> to <destination>",
		},
		{
			name:        "Empty origin shows the format",
			query:       "  to Munich",
			title:       "Search for a route",
			description: "Use format: <origin> to <destination>",
		},
		{
			name:        "Empty destination shows the format",
			query:       "Vienna to ",
			title:       "Search for a route",
			description: "Use format: <origin> to <destination>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewKeywordHandler("", zap.NewNop())

			entries := h.Handle(tt.query)
			require.Len(t, entries, 1)
			assert.Equal(t, tt.title, entries[0].Title)
			assert.Equal(t, tt.description, entries[0].Description)
			assert.Equal(t, HideWindow(), entries[0].OnEnter)
			assert.Nil(t, entries[0].OnAltEnter)
			assert.False(t, entries[0].Navigates())
		})
	}
}

func TestHandle_SplitsOnFirstSeparator(t *testing.T) {
	h := NewKeywordHandler("", nil)

	entries := h.Handle("A to B to C")
	require.Len(t, entries, 2)
	assert.Equal(t, "Route from A to B to C", entries[0].Title)
	assert.Equal(t, route.DirectionsURL("A", "B to C"), entries[0].OnEnter.URL)
	assert.Equal(t, "Reverse: B to C to A", entries[1].Title)
	assert.Equal(t, route.DirectionsURL("B to C", "A"), entries[1].OnEnter.URL)
}

func TestHandle_IconIsPassedThrough(t *testing.T) {
	h := NewKeywordHandler("/opt/icons/maps.svg", zap.NewNop())
	assert.Equal(t, "/opt/icons/maps.svg", h.Icon())

	for _, q := range []string{"", "nothing", "Graz to Linz"} {
		for _, e := range h.Handle(q) {
			assert.Equal(t, "/opt/icons/maps.svg", e.Icon)
		}
	}
}

func TestHandle_BuilderErrorBecomesErrorEntry(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewKeywordHandler("", zap.New(core), WithURLBuilder(func(origin, destination string) (string, error) {
		return "", errors.New("encoder unavailable")
	}))

	entries := h.Handle("Vienna to Munich")
	require.Len(t, entries, 1)
	assert.Equal(t, "Error occurred", entries[0].Title)
	assert.Contains(t, entries[0].Description, "Error: ")
	assert.Contains(t, entries[0].Description, "encoder unavailable")
	assert.Equal(t, HideWindow(), entries[0].OnEnter)

	assert.Equal(t, 1, logs.FilterMessage("failed to handle query").Len())
}

func TestHandle_PanicIsRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := NewKeywordHandler("", zap.New(core), WithURLBuilder(func(origin, destination string) (string, error) {
		panic("boom")
	}))

	var entries []Entry
	require.NotPanics(t, func() {
		entries = h.Handle("Vienna to Munich")
	})
	require.Len(t, entries, 1)
	assert.Equal(t, "Error occurred", entries[0].Title)
	assert.Equal(t, "Error: boom", entries[0].Description)
	assert.False(t, entries[0].Navigates())

	assert.Equal(t, 1, logs.FilterMessage("panic while handling query").Len())
}

func TestHandle_ErrorPathLeavesHelpQueriesAlone(t *testing.T) {
	h := NewKeywordHandler("", zap.NewNop(), WithURLBuilder(func(origin, destination string) (string, error) {
		panic("never called")
	}))

	entries := h.Handle("just some text")
	require.Len(t, entries, 1)
	assert.Equal(t, "Search for a route", entries[0].Title)
}

func TestHandle_LogsGeneratedURL(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewKeywordHandler("", zap.New(core))

	h.Handle("Vienna to Munich")

	generated := logs.FilterMessage("generated url").All()
	require.Len(t, generated, 1)
	assert.Equal(t, route.DirectionsURL("Vienna", "Munich"), generated[0].ContextMap()["url"])
}

func TestActionKind_String(t *testing.T) {
	assert.Equal(t, "hide", ActionHideWindow.String())
	assert.Equal(t, "open_url", ActionOpenURL.String())
	assert.Equal(t, "copy", ActionCopyToClipboard.String())
	assert.Equal(t, "unknown", ActionKind(42).String())
}
