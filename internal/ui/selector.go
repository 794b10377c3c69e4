package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrCancelled is returned when the user aborts a selection with Ctrl+C.
var ErrCancelled = errors.New("selection cancelled")

// Selector is an arrow-key menu. Without a terminal on the input it falls
// back to a numbered prompt read line by line.
type Selector struct {
	question string
	options  []string
	selected int
	colored  bool

	in  io.Reader
	out io.Writer

	cursorStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	optionStyle   lipgloss.Style
	questionStyle lipgloss.Style
	hintStyle     lipgloss.Style
}

func NewSelector(question string, options []string, colored bool) *Selector {
	return &Selector{
		question: question,
		options:  options,
		colored:  colored,
		in:       os.Stdin,
		out:      os.Stdout,

		cursorStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true),
		optionStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		questionStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		hintStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
	}
}

// WithIO replaces stdin and stdout.
func (s *Selector) WithIO(in io.Reader, out io.Writer) *Selector {
	s.in = in
	s.out = out
	return s
}

// Run shows the menu and returns the chosen option.
func (s *Selector) Run() (string, error) {
	if len(s.options) == 0 {
		return "", errors.New("selector has no options")
	}

	f, ok := s.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return s.runSimple()
	}

	fd := int(f.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return s.runSimple()
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(s.out, "\033[?25h")
	}()

	fmt.Fprint(s.out, "\033[?25l")
	lines := len(s.options) + 2
	s.printMenu()

	reader := bufio.NewReader(s.in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return "", err
		}

		switch b {
		case '\r', '\n', ' ':
			s.clearMenu(lines)
			return s.options[s.selected], nil
		case 3: // Ctrl+C
			s.clearMenu(lines)
			return "", ErrCancelled
		case 'j':
			s.move(1)
		case 'k':
			s.move(-1)
		case 27:
			if b2, _ := reader.ReadByte(); b2 == '[' {
				switch b3, _ := reader.ReadByte(); b3 {
				case 'A':
					s.move(-1)
				case 'B':
					s.move(1)
				}
			}
		default:
			if b >= '1' && b <= '9' && int(b-'1') < len(s.options) {
				s.selected = int(b - '1')
				s.clearMenu(lines)
				return s.options[s.selected], nil
			}
		}

		s.clearMenu(lines)
		s.printMenu()
	}
}

func (s *Selector) move(delta int) {
	n := len(s.options)
	s.selected = (s.selected + delta + n) % n
}

func (s *Selector) printMenu() {
	var sb strings.Builder

	sb.WriteString(s.style(s.questionStyle, s.question))
	sb.WriteString("\r\n")
	sb.WriteString(s.style(s.hintStyle, "[j/k or arrows] move  [enter] select"))
	sb.WriteString("\r\n")

	for i, opt := range s.options {
		if i == s.selected {
			sb.WriteString(s.style(s.cursorStyle, "> "))
			sb.WriteString(s.style(s.selectedStyle, opt))
		} else {
			sb.WriteString("  ")
			sb.WriteString(s.style(s.optionStyle, opt))
		}
		sb.WriteString("\r\n")
	}
	fmt.Fprint(s.out, sb.String())
}

func (s *Selector) clearMenu(lines int) {
	for i := 0; i < lines; i++ {
		fmt.Fprint(s.out, "\033[A\033[2K\r")
	}
}

func (s *Selector) style(st lipgloss.Style, text string) string {
	if !s.colored {
		return text
	}
	return st.Render(text)
}

// runSimple reads a 1-based option number. Anything else picks the first option.
func (s *Selector) runSimple() (string, error) {
	fmt.Fprintln(s.out, s.question)
	for i, opt := range s.options {
		fmt.Fprintf(s.out, "  [%d] %s\n", i+1, opt)
	}
	fmt.Fprint(s.out, "Enter number: ")

	input, err := bufio.NewReader(s.in).ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}

	if n, err := strconv.Atoi(strings.TrimSpace(input)); err == nil && n >= 1 && n <= len(s.options) {
		return s.options[n-1], nil
	}
	return s.options[0], nil
}

// Confirm asks a yes/no question. "No" is the default.
func Confirm(question string, colored bool, in io.Reader, out io.Writer) (bool, error) {
	answer, err := NewSelector(question, []string{"No", "Yes"}, colored).WithIO(in, out).Run()
	if err != nil {
		return false, err
	}
	return answer == "Yes", nil
}
