package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// CLIError represents a structured CLI error with remediation hints.
type CLIError struct {
	Message string // What failed
	Cause   string // Why it failed (optional)
	Hint    string // Fastest command/action to fix it (optional)
	Code    string // Error code for programmatic handling (optional)
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// NewCLIError creates a new CLI error with just a message.
func NewCLIError(msg string) *CLIError {
	return &CLIError{Message: msg}
}

// WithCause adds a cause to the error.
func (e *CLIError) WithCause(cause string) *CLIError {
	e.Cause = cause
	return e
}

// WithHint adds a remediation hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// WithCode adds an error code to the error.
func (e *CLIError) WithCode(code string) *CLIError {
	e.Code = code
	return e
}

// isStderrTerminal checks if stderr is a terminal (for color output).
func isStderrTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	causeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	codeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// FormatCLIError formats a CLIError for terminal output with colors.
// Returns plain text if stderr is not a terminal or NO_COLOR is set.
func FormatCLIError(e *CLIError) string {
	useColor := isStderrTerminal() && os.Getenv("NO_COLOR") == ""

	var sb strings.Builder

	if useColor {
		sb.WriteString(errorStyle.Render("Error: "))
		sb.WriteString(e.Message)
		if e.Code != "" {
			sb.WriteString(" ")
			sb.WriteString(codeStyle.Render("[" + e.Code + "]"))
		}
		sb.WriteString("\n")
		if e.Cause != "" {
			sb.WriteString(causeStyle.Render("  cause: " + e.Cause))
			sb.WriteString("\n")
		}
		if e.Hint != "" {
			sb.WriteString(hintStyle.Render("  hint: " + e.Hint))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	sb.WriteString("Error: " + e.Message)
	if e.Code != "" {
		sb.WriteString(" [" + e.Code + "]")
	}
	sb.WriteString("\n")
	if e.Cause != "" {
		sb.WriteString("  cause: " + e.Cause + "\n")
	}
	if e.Hint != "" {
		sb.WriteString("  hint: " + e.Hint + "\n")
	}
	return sb.String()
}

// PrintError writes a formatted error to stderr. Plain errors get the
// simple one-line treatment; CLIErrors keep their cause and hint.
func PrintError(err error) {
	if cliErr, ok := err.(*CLIError); ok {
		fmt.Fprint(os.Stderr, FormatCLIError(cliErr))
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
