package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	bellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Warm yellow
			Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// ConsoleSender prints due notifications to a terminal.
type ConsoleSender struct {
	mu      sync.Mutex
	w       io.Writer
	colored bool
}

func NewConsoleSender(w io.Writer, colored bool) *ConsoleSender {
	return &ConsoleSender{w: w, colored: colored}
}

func (c *ConsoleSender) Send(_ context.Context, n Notification) error {
	when := n.FireAt.Format("Jan 2 15:04")
	line := fmt.Sprintf("🔔 %s  %s  %s", n.Title, n.Body, when)
	if c.colored {
		line = bellStyle.Render("🔔 "+n.Title) + "  " + bodyStyle.Render(n.Body) + "  " + timeStyle.Render(when)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintln(c.w, line); err != nil {
		return fmt.Errorf("failed to print notification: %w", err)
	}
	return nil
}
