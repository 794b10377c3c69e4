package repl

import (
	"fmt"
	"os"

	"github.com/notexe/motivator/internal/ui"
)

// withoutReadline closes readline while fn reads stdin itself, then opens a
// fresh instance. readline keeps its own reader goroutine on stdin.
func (r *REPL) withoutReadline(fn func() error) error {
	if r.rl != nil {
		r.rl.Close()
	}
	fnErr := fn()

	if r.rl != nil {
		rl, err := setupReadline(r.config.UI.HistoryFile, r.formatter.FormatPrompt())
		if err != nil {
			return fmt.Errorf("failed to restore readline: %w", err)
		}
		r.rl = rl
	}
	return fnErr
}

func (r *REPL) confirmInteractive(question string) (bool, error) {
	var ok bool
	err := r.withoutReadline(func() error {
		var err error
		ok, err = ui.Confirm(question, r.config.UI.ColoredOutput, os.Stdin, os.Stdout)
		return err
	})
	return ok, err
}

func (r *REPL) chooseInteractive(question string, options []string) (string, error) {
	var choice string
	err := r.withoutReadline(func() error {
		var err error
		choice, err = ui.NewSelector(question, options, r.config.UI.ColoredOutput).Run()
		return err
	})
	return choice, err
}
