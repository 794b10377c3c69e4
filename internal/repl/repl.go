package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chzyer/readline"

	"github.com/notexe/motivator/internal/config"
	"github.com/notexe/motivator/internal/motivation"
	"github.com/notexe/motivator/internal/ui"
)

// AI is the part of the gateway the REPL talks to directly.
type AI interface {
	TestConnection(ctx context.Context) bool
	Greeting(ctx context.Context, timeOfDay string) (string, error)
}

// KeyStore persists the API key entered with /apikey.
type KeyStore interface {
	SetAPIKey(ctx context.Context, key string) error
}

const greetingTimeout = 5 * time.Second

type REPL struct {
	svc       *motivation.Service
	ai        AI
	keys      KeyStore
	config    *config.Config
	rl        *readline.Instance
	formatter *ui.Formatter
	spinner   *ui.Spinner
	out       io.Writer
	now       func() time.Time

	// confirm and choose ask the user outside the readline prompt.
	confirm func(question string) (bool, error)
	choose  func(question string, options []string) (string, error)
}

// NewREPL builds a REPL. ai and keys may be nil when no AI is configured.
func NewREPL(svc *motivation.Service, ai AI, keys KeyStore, cfg *config.Config) *REPL {
	r := &REPL{
		svc:       svc,
		ai:        ai,
		keys:      keys,
		config:    cfg,
		formatter: ui.NewFormatter(cfg.UI.ColoredOutput, cfg.UI.ShowTimestamps),
		spinner:   ui.NewSpinner(os.Stdout, cfg.UI.ColoredOutput),
		out:       os.Stdout,
		now:       time.Now,
	}
	r.confirm = r.confirmInteractive
	r.choose = r.chooseInteractive
	return r
}

// Start runs the read loop until /quit, EOF or Ctrl+C.
func (r *REPL) Start(ctx context.Context) error {
	rl, err := setupReadline(r.config.UI.HistoryFile, r.formatter.FormatPrompt())
	if err != nil {
		return fmt.Errorf("failed to setup readline: %w", err)
	}
	r.rl = rl
	defer func() { r.rl.Close() }()

	r.displayWelcome(ctx)

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		quit, err := r.Execute(ctx, input)
		if err != nil {
			r.displayError(err)
		}
		if quit {
			return nil
		}
	}
}

func (r *REPL) Stop() {
	if r.rl != nil {
		r.rl.Close()
	}
}

// Execute runs one line of input. It reports whether the REPL should exit.
func (r *REPL) Execute(ctx context.Context, input string) (bool, error) {
	isCommand, command, args := r.parseCommand(input)
	if !isCommand {
		r.displayInfo("Commands start with /. Try /goal 2 weeks | learn Go, or /help.")
		return false, nil
	}
	return r.handleCommand(ctx, command, args)
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) (bool, error) {
	switch command {
	case "/help", "/h":
		r.displayHelp()
	case "/quit", "/exit", "/q":
		fmt.Fprintln(r.out, "\nGoodbye!")
		return true, nil
	case "/add", "/a":
		return false, r.handleAdd(ctx, args)
	case "/goal", "/g":
		return false, r.handleGoal(ctx, args)
	case "/list", "/ls", "/l":
		return false, r.handleList(ctx, args)
	case "/upcoming", "/u":
		return false, r.handleUpcoming(ctx, args)
	case "/cancel":
		return false, r.handleCancel(ctx, args)
	case "/delete", "/rm":
		return false, r.handleDelete(ctx, args)
	case "/clear":
		return false, r.handleClear(ctx)
	case "/sync":
		return false, r.handleSync(ctx)
	case "/stats":
		return false, r.handleStats(ctx)
	case "/apikey":
		return false, r.handleAPIKey(ctx, args)
	case "/test":
		return false, r.handleTest(ctx)
	default:
		return false, fmt.Errorf("unknown command: %s (type /help for available commands)", command)
	}
	return false, nil
}
