package styles

import (
	"os"

	"github.com/muesli/termenv"
)

var (
	stdout = termenv.NewOutput(os.Stdout)

	ERROR = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("9")).
			String()
	}
	// TITLE styles section headers and entry titles.
	TITLE = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("11")).
			Bold().
			String()
	}
	// URL styles links so they stand out from descriptions.
	URL = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("12")).
			Underline().
			String()
	}
	HINT = func(s string) string {
		return stdout.String(s).
			Foreground(stdout.Color("244")).
			String()
	}
)
