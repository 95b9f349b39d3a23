package extension

// DefaultIcon is the icon shipped next to the extension manifest.
const DefaultIcon = "images/icon.png"

// ActionKind identifies what a host does when an entry is activated.
type ActionKind int

const (
	// ActionHideWindow dismisses the launcher without doing anything else.
	ActionHideWindow ActionKind = iota
	// ActionOpenURL opens URL in the default browser.
	ActionOpenURL
	// ActionCopyToClipboard places Text on the system clipboard.
	ActionCopyToClipboard
)

func (k ActionKind) String() string {
	switch k {
	case ActionHideWindow:
		return "hide"
	case ActionOpenURL:
		return "open_url"
	case ActionCopyToClipboard:
		return "copy"
	default:
		return "unknown"
	}
}

// Action is the activation behaviour attached to an Entry.
type Action struct {
	Kind ActionKind
	URL  string
	Text string
}

func HideWindow() Action {
	return Action{Kind: ActionHideWindow}
}

func OpenURL(u string) Action {
	return Action{Kind: ActionOpenURL, URL: u}
}

func CopyToClipboard(text string) Action {
	return Action{Kind: ActionCopyToClipboard, Text: text}
}

// Entry is a single result handed to the launcher host for rendering.
type Entry struct {
	Icon        string
	Title       string
	Description string
	OnEnter     Action
	// OnAltEnter is the secondary action, nil when the entry has none.
	OnAltEnter *Action
}

// Navigates reports whether activating the entry leaves the launcher for a URL.
func (e Entry) Navigates() bool {
	return e.OnEnter.Kind == ActionOpenURL
}
