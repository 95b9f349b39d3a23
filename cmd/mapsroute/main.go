package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/robottwo/mapsroute/internal/actions"
	"github.com/robottwo/mapsroute/internal/config"
	"github.com/robottwo/mapsroute/internal/core"
	"github.com/robottwo/mapsroute/internal/extension"
	"github.com/robottwo/mapsroute/internal/render"
	"github.com/robottwo/mapsroute/internal/styles"
	"github.com/robottwo/mapsroute/internal/ui"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var BUILD_VERSION = "dev"

var errNoRoute = errors.New("no route")

var (
	helpFlag     bool
	versionFlag  bool
	queryFlag    string
	openFlag     string
	formatFlag   string
	interactive  bool
	iconFlag     = flag.String("icon", "", "icon path attached to every result")
	cleanLogFlag = flag.Bool("clean-log", false, "remove log files before starting")
)

func init() {
	flag.BoolVar(&helpFlag, "h", false, "display help information")
	flag.BoolVar(&helpFlag, "help", false, "display help information")

	flag.BoolVar(&versionFlag, "v", false, "display build version")
	flag.BoolVar(&versionFlag, "version", false, "display build version")

	flag.StringVar(&queryFlag, "q", "", "print results for a query")
	flag.StringVar(&queryFlag, "query", "", "print results for a query")

	flag.StringVar(&openFlag, "o", "", "open the first result for a query")
	flag.StringVar(&openFlag, "open", "", "open the first result for a query")

	flag.BoolVar(&interactive, "i", false, "open the interactive launcher, pre-filled with any positional words")
	flag.BoolVar(&interactive, "interactive", false, "open the interactive launcher, pre-filled with any positional words")

	flag.StringVar(&formatFlag, "f", "", "output format: json, yaml or text")
	flag.StringVar(&formatFlag, "format", "", "output format: json, yaml or text")

	if err := zap.RegisterSink("zstd", openSessionLog); err != nil {
		panic(fmt.Sprintf("failed to register zstd sink: %v", err))
	}
}

type mode int

const (
	modeQuery mode = iota
	modeOpen
	modeInteractive
	modeStream
)

// invocation is what main resolved from flags, arguments and stdin.
type invocation struct {
	mode  mode
	query string
}

func main() {
	flag.Parse()

	if versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if helpFlag {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		os.Exit(2)
	}
	if formatFlag != "" {
		if err := config.ValidateFormat(formatFlag); err != nil {
			fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
			os.Exit(2)
		}
		cfg.Format = formatFlag
	}
	if *iconFlag != "" {
		cfg.Icon = *iconFlag
	}

	if *cleanLogFlag {
		if err := core.CleanLogFiles(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to clean log files: %v\n", err)
		}
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("-------- new mapsroute session --------", zap.Strings("args", os.Args), zap.String("config", cfg.Source))
	for _, skipped := range cfg.Skipped {
		logger.Warn("skipped unreadable config file", zap.Error(skipped))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	handler := extension.NewKeywordHandler(cfg.Icon, logger)
	executor := actions.NewExecutor(cfg.OpenCommand, logger)

	err = run(ctx, resolveInvocation(), cfg, handler, executor, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("unhandled error", zap.Error(err))
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}

// resolveInvocation reads the parsed command line and the terminal state of
// stdin.
func resolveInvocation() invocation {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	return resolve(set, flag.Args(), term.IsTerminal(int(os.Stdin.Fd())))
}

// resolve picks the mode: explicit -o/-q first, then -i (positional words
// pre-fill the input), then positional words as a query, then the interactive
// UI on a terminal, else one query per stdin line.
func resolve(set map[string]bool, args []string, stdinIsTTY bool) invocation {
	words := strings.Join(args, " ")
	switch {
	case set["o"] || set["open"]:
		return invocation{mode: modeOpen, query: openFlag}
	case set["q"] || set["query"]:
		return invocation{mode: modeQuery, query: queryFlag}
	case set["i"] || set["interactive"]:
		return invocation{mode: modeInteractive, query: words}
	case len(args) > 0:
		return invocation{mode: modeQuery, query: words}
	case stdinIsTTY:
		return invocation{mode: modeInteractive}
	default:
		return invocation{mode: modeStream}
	}
}

func run(
	ctx context.Context,
	inv invocation,
	cfg config.Config,
	handler *extension.KeywordHandler,
	activator ui.Activator,
	logger *zap.Logger,
	stdin io.Reader,
	stdout io.Writer,
) error {
	switch inv.mode {
	case modeInteractive:
		return ui.Run(ctx, handler, activator, logger, inv.query)

	case modeOpen:
		entries := handler.Handle(inv.query)
		if len(entries) == 0 || !entries[0].Navigates() {
			desc := ""
			if len(entries) > 0 {
				desc = entries[0].Description
			}
			return fmt.Errorf("%w for %q: %s", errNoRoute, inv.query, desc)
		}
		return activator.Run(ctx, entries[0].OnEnter)
	}

	r, err := render.New(cfg.Format, terminalWidth(stdout))
	if err != nil {
		return err
	}

	if inv.mode == modeQuery {
		return r.Render(stdout, handler.Handle(inv.query))
	}

	// A bufio.Reader has no line length cap, unlike bufio.Scanner.
	reader := bufio.NewReader(stdin)
	for first := true; ; first = false {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("failed to read queries: %w", readErr)
		}
		if readErr != nil && line == "" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !first {
			if err := writeSeparator(stdout, r.Format()); err != nil {
				return err
			}
		}
		query := strings.TrimRight(line, "\r\n")
		if err := r.Render(stdout, handler.Handle(query)); err != nil {
			return err
		}
		if readErr != nil {
			return nil
		}
	}
}

// writeSeparator separates consecutive documents in stream mode. JSON output
// is already one document per line.
func writeSeparator(w io.Writer, format string) error {
	var sep string
	switch format {
	case "yaml":
		sep = "---\n"
	case "text":
		sep = "\n"
	default:
		return nil
	}
	_, err := io.WriteString(w, sep)
	return err
}

func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

func initializeLogger(cfg config.Config) (*zap.Logger, error) {
	logLevel := cfg.ZapLevel()
	if BUILD_VERSION == "dev" {
		logLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	if err := core.RotateLogFiles(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to rotate log files: %v\n", err)
	}

	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = logLevel
	loggerConfig.OutputPaths = []string{
		"zstd://" + filepath.ToSlash(core.LogFile()),
	}
	loggerConfig.InitialFields = map[string]interface{}{
		"session_id": uuid.New().String(),
		"version":    BUILD_VERSION,
	}

	return loggerConfig.Build()
}

func printUsage() {
	fmt.Println(styles.TITLE("Usage:") + " mapsroute [flags] [<origin> to <destination>]")
	fmt.Println("\nGoogle Maps directions for launcher queries like \"Vienna to Munich\".")
	fmt.Println()

	fmt.Println(styles.TITLE("Options:"))

	// Flags sharing a usage string are aliases and print on one line.
	printed := make(map[string]bool)
	flag.VisitAll(func(f *flag.Flag) {
		if printed[f.Name] {
			return
		}

		names := []string{f.Name}
		flag.VisitAll(func(p *flag.Flag) {
			if p.Name != f.Name && p.Usage == f.Usage {
				names = append(names, p.Name)
			}
		})
		// Short names first
		if len(names) > 1 && len(names[0]) > len(names[1]) {
			names[0], names[1] = names[1], names[0]
		}

		for i, name := range names {
			printed[name] = true
			names[i] = "-" + name
		}
		flagStr := strings.Join(names, ", ")

		if argName, _ := flag.UnquoteUsage(f); argName != "" {
			flagStr += " <" + argName + ">"
		}

		fmt.Printf("  %-28s %s\n", flagStr, f.Usage)
	})

	fmt.Println()
	fmt.Println(styles.TITLE("Modes:"))
	fmt.Printf("  %-28s %s\n", "mapsroute", "interactive launcher (on a terminal)")
	fmt.Printf("  %-28s %s\n", "mapsroute Vienna to Munich", "print results for a query")
	fmt.Printf("  %-28s %s\n", "mapsroute -i Vienna to", "interactive launcher, pre-filled")
	fmt.Printf("  %-28s %s\n", "... | mapsroute", "one result document per input line")
	fmt.Println()
	fmt.Println(styles.HINT("Config: ~/.config/mapsroute/config.yaml, MAPSROUTE_* environment variables"))
}
