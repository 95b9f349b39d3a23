// Package extension maps keyword queries onto launcher result entries.
package extension

import (
	"fmt"
	"strings"

	"github.com/robottwo/mapsroute/internal/route"
	"go.uber.org/zap"
)

const (
	emptyQueryTitle       = "Google Maps Routes"
	emptyQueryDescription = `Type: <origin> to <destination> (e.g., "Vienna to Munich")`

	noMatchTitle       = "Search for a route"
	noMatchDescription = "Use format: <origin> to <destination>"

	forwardDescription = "Open Google Maps in the browser and search for a route"
	reverseDescription = "Open reverse route in Google Maps"

	errorTitle = "Error occurred"
)

// URLBuilder produces the directions link for an origin/destination pair.
type URLBuilder func(origin, destination string) (string, error)

// Option configures a KeywordHandler.
type Option func(*KeywordHandler)

// WithURLBuilder replaces the default directions link builder.
func WithURLBuilder(b URLBuilder) Option {
	return func(h *KeywordHandler) {
		h.buildURL = b
	}
}

// KeywordHandler answers keyword queries. It holds no per-query state and is
// safe to call from any goroutine.
type KeywordHandler struct {
	icon     string
	logger   *zap.Logger
	buildURL URLBuilder
}

func NewKeywordHandler(icon string, logger *zap.Logger, opts ...Option) *KeywordHandler {
	if icon == "" {
		icon = DefaultIcon
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &KeywordHandler{
		icon:   icon,
		logger: logger,
		buildURL: func(origin, destination string) (string, error) {
			return route.DirectionsURL(origin, destination), nil
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Icon returns the icon path attached to every entry.
func (h *KeywordHandler) Icon() string {
	return h.icon
}

// Handle returns the entries to render for query. It never fails: anything
// that goes wrong is reported as a single error entry.
func (h *KeywordHandler) Handle(query string) (entries []Entry) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			h.logger.Error("panic while handling query", zap.String("query", query), zap.Error(err))
			entries = []Entry{h.errorEntry(err)}
		}
	}()

	h.logger.Debug("keyword query received", zap.String("query", query))

	entries, err := h.entries(query)
	if err != nil {
		h.logger.Error("failed to handle query", zap.String("query", query), zap.Error(err))
		return []Entry{h.errorEntry(err)}
	}

	h.logger.Debug("returning entries", zap.Int("count", len(entries)))
	return entries
}

func (h *KeywordHandler) entries(query string) ([]Entry, error) {
	if strings.TrimSpace(query) == "" {
		return []Entry{h.infoEntry(emptyQueryTitle, emptyQueryDescription)}, nil
	}

	req, ok := route.Parse(query)
	if !ok {
		return []Entry{h.infoEntry(noMatchTitle, noMatchDescription)}, nil
	}

	forwardURL, err := h.buildURL(req.Origin, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("build route %q to %q: %w", req.Origin, req.Destination, err)
	}
	h.logger.Info("generated url", zap.String("url", forwardURL))

	rev := req.Reverse()
	reverseURL, err := h.buildURL(rev.Origin, rev.Destination)
	if err != nil {
		return nil, fmt.Errorf("build route %q to %q: %w", rev.Origin, rev.Destination, err)
	}

	return []Entry{
		h.routeEntry(fmt.Sprintf("Route from %s to %s", req.Origin, req.Destination), forwardDescription, forwardURL),
		h.routeEntry(fmt.Sprintf("Reverse: %s to %s", rev.Origin, rev.Destination), reverseDescription, reverseURL),
	}, nil
}

func (h *KeywordHandler) infoEntry(title, description string) Entry {
	return Entry{
		Icon:        h.icon,
		Title:       title,
		Description: description,
		OnEnter:     HideWindow(),
	}
}

func (h *KeywordHandler) routeEntry(title, description, link string) Entry {
	alt := CopyToClipboard(link)
	return Entry{
		Icon:        h.icon,
		Title:       title,
		Description: description,
		OnEnter:     OpenURL(link),
		OnAltEnter:  &alt,
	}
}

func (h *KeywordHandler) errorEntry(err error) Entry {
	return h.infoEntry(errorTitle, "Error: "+err.Error())
}
