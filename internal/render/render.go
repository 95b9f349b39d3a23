// Package render writes result entries in the formats launcher hosts read
// from a script's standard output.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/robottwo/mapsroute/internal/extension"
	"github.com/robottwo/mapsroute/internal/styles"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

var ErrUnknownFormat = errors.New("unknown output format")

const defaultWidth = 80

// ActionVariable is the workflow variable naming the entry's action kind.
const ActionVariable = "mapsroute_action"

// ScriptFilter is the Alfred script filter document.
type ScriptFilter struct {
	Items []Item `json:"items" yaml:"items"`
}

type Item struct {
	UID      string `json:"uid" yaml:"uid"`
	Title    string `json:"title" yaml:"title"`
	Subtitle string `json:"subtitle" yaml:"subtitle"`
	Arg      string `json:"arg,omitempty" yaml:"arg,omitempty"`
	Valid    bool   `json:"valid" yaml:"valid"`
	Icon     Icon   `json:"icon" yaml:"icon"`
	// Variables reach the workflow step that receives Arg. Alfred's own
	// "action" key means file actions, so the entry action travels here.
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Mods      map[string]Mod    `json:"mods,omitempty" yaml:"mods,omitempty"`
}

type Icon struct {
	Path string `json:"path" yaml:"path"`
}

// Mod is the alternative behaviour a host offers while a modifier is held.
type Mod struct {
	Arg       string            `json:"arg" yaml:"arg"`
	Subtitle  string            `json:"subtitle" yaml:"subtitle"`
	Valid     bool              `json:"valid" yaml:"valid"`
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Renderer writes entries in one format.
type Renderer struct {
	format string
	width  int
}

// New returns a renderer for format. width only affects text output; values
// below 20 fall back to 80 columns.
func New(format string, width int) (*Renderer, error) {
	switch format {
	case "json", "yaml", "text":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if width < 20 {
		width = defaultWidth
	}
	return &Renderer{format: format, width: width}, nil
}

func (r *Renderer) Format() string {
	return r.format
}

// Render writes entries to w. JSON output is a single line so that a stream
// of queries produces one document per line.
func (r *Renderer) Render(w io.Writer, entries []extension.Entry) error {
	switch r.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(NewScriptFilter(entries)); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(NewScriptFilter(entries)); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		_, err := io.WriteString(w, r.text(entries))
		return err
	}
}

// NewScriptFilter converts entries into script filter items.
func NewScriptFilter(entries []extension.Entry) ScriptFilter {
	return ScriptFilter{Items: lo.Map(entries, func(e extension.Entry, _ int) Item {
		return toItem(e)
	})}
}

func toItem(e extension.Entry) Item {
	arg := actionArg(e.OnEnter)
	item := Item{
		UID:       uuid.NewSHA1(uuid.NameSpaceURL, []byte(e.Title+"\x00"+arg)).String(),
		Title:     e.Title,
		Subtitle:  e.Description,
		Arg:       arg,
		Valid:     e.Navigates(),
		Icon:      Icon{Path: e.Icon},
		Variables: actionVariables(e.OnEnter),
	}

	if e.OnAltEnter != nil {
		item.Mods = map[string]Mod{
			"alt": {
				Arg:       actionArg(*e.OnAltEnter),
				Subtitle:  altSubtitle(*e.OnAltEnter),
				Valid:     e.OnAltEnter.Kind != extension.ActionHideWindow,
				Variables: actionVariables(*e.OnAltEnter),
			},
		}
	}

	return item
}

func actionVariables(a extension.Action) map[string]string {
	return map[string]string{ActionVariable: a.Kind.String()}
}

func actionArg(a extension.Action) string {
	switch a.Kind {
	case extension.ActionOpenURL:
		return a.URL
	case extension.ActionCopyToClipboard:
		return a.Text
	default:
		return ""
	}
}

func altSubtitle(a extension.Action) string {
	if a.Kind == extension.ActionCopyToClipboard {
		return "Copy link to clipboard"
	}
	return ""
}

func (r *Renderer) text(entries []extension.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.TITLE(e.Title) + "\n")
		desc := wordwrap.String(e.Description, r.width-2)
		b.WriteString(indent.String(styles.HINT(desc), 2) + "\n")
		if e.Navigates() {
			b.WriteString("  " + styles.URL(e.OnEnter.URL) + "\n")
		}
	}
	return b.String()
}
