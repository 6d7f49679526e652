package diagnostics

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats diagnostics for display.
type Formatter struct {
	// ShowContext controls whether to display code snippets.
	ShowContext bool
	// ShowSuggestions controls whether to display suggestions.
	ShowSuggestions bool
	// ShowNotes controls whether to display notes.
	ShowNotes bool
	// ShowSource controls whether to display the source component.
	ShowSource bool
	// ShowCode controls whether to display error codes.
	ShowCode bool
	// ShowCodeDescription controls whether to display error code descriptions.
	ShowCodeDescription bool
	// Colorize controls whether to use ANSI color codes.
	Colorize bool
}

// NewFormatter creates a new formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowContext:     true,
		ShowSuggestions: true,
		ShowNotes:       true,
		ShowCode:        true,
	}
}

// NewVerboseFormatter creates a formatter with all options enabled.
func NewVerboseFormatter() *Formatter {
	return &Formatter{
		ShowContext:         true,
		ShowSuggestions:     true,
		ShowNotes:           true,
		ShowSource:          true,
		ShowCode:            true,
		ShowCodeDescription: true,
	}
}

// Format formats a single diagnostic as a string.
func (f *Formatter) Format(d Diagnostic) string {
	var b strings.Builder
	f.formatDiagnostic(&b, d)
	return b.String()
}

// FormatAll formats all diagnostics in a collection.
func (f *Formatter) FormatAll(c *Collection) string {
	var b strings.Builder
	for _, d := range c.All() {
		f.formatDiagnostic(&b, d)
	}
	return b.String()
}

// WriteAll writes all diagnostics in a collection to the writer.
func (f *Formatter) WriteAll(w io.Writer, c *Collection) error {
	_, err := io.WriteString(w, f.FormatAll(c))
	return err
}

// PrintSummary prints a one-line count of errors and warnings.
func (f *Formatter) PrintSummary(w io.Writer, c *Collection) {
	summary := c.Summary()
	if summary.Total == 0 {
		return
	}

	parts := make([]string, 0, 3)
	if summary.Errors > 0 {
		parts = append(parts, f.colorize(fmt.Sprintf("%d error(s)", summary.Errors), colorRed))
	}
	if summary.Warnings > 0 {
		parts = append(parts, f.colorize(fmt.Sprintf("%d warning(s)", summary.Warnings), colorYellow))
	}
	if summary.Infos > 0 {
		parts = append(parts, f.colorize(fmt.Sprintf("%d info(s)", summary.Infos), colorBlue))
	}
	_, _ = fmt.Fprintf(w, "%s\n", strings.Join(parts, ", "))
}

func (f *Formatter) formatDiagnostic(b *strings.Builder, d Diagnostic) {
	if d.HasLocation() {
		location := f.colorize(fmt.Sprintf("%s:%d:%d", d.Location.Path, d.Location.Line, d.Location.Column), colorCyan)
		fmt.Fprintf(b, "%s: ", location)
	} else if d.Location.Path != "" {
		fmt.Fprintf(b, "%s: ", f.colorize(d.Location.Path, colorCyan))
	}

	severity := f.colorize(d.Severity.String(), f.severityColor(d.Severity))
	fmt.Fprintf(b, "%s: %s", severity, d.Message)

	if f.ShowCode && d.Code != "" {
		fmt.Fprintf(b, " %s", f.colorize("["+d.Code+"]", colorMagenta))
		if f.ShowCodeDescription {
			if desc := CodeDescription(d.Code); desc != "Unknown error code" {
				fmt.Fprintf(b, " (%s)", desc)
			}
		}
	}
	if f.ShowSource && d.Source != "" {
		fmt.Fprintf(b, " (%s)", d.Source)
	}
	b.WriteString("\n")

	if f.ShowContext && d.Context != "" {
		for _, line := range strings.Split(strings.TrimSuffix(d.Context, "\n"), "\n") {
			fmt.Fprintf(b, "  %s %s\n", f.colorize("-->", colorBlue), line)
		}
	}
	if f.ShowSuggestions {
		for _, sugg := range d.Suggestions {
			fmt.Fprintf(b, "  %s %s\n", f.colorize("help:", colorGreen), sugg.Message)
			if sugg.Replacement != "" {
				fmt.Fprintf(b, "    %s %s\n", f.colorize("=>", colorGreen), sugg.Replacement)
			}
		}
	}
	if f.ShowNotes {
		for _, note := range d.Notes {
			fmt.Fprintf(b, "  %s %s\n", f.colorize("note:", colorBlue), note)
		}
	}
}

func (f *Formatter) severityColor(s Severity) string {
	switch s {
	case SeverityError:
		return colorRed
	case SeverityWarning:
		return colorYellow
	case SeverityInfo:
		return colorBlue
	default:
		return colorReset
	}
}

func (f *Formatter) colorize(s, color string) string {
	if !f.Colorize {
		return s
	}
	return color + s + colorReset
}

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// JSONFormatter formats diagnostics as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatCollection encodes the whole collection as a JSON array.
func (f *JSONFormatter) FormatCollection(c *Collection) (string, error) {
	all := c.All()
	if all == nil {
		all = []Diagnostic{}
	}
	var (
		data []byte
		err  error
	)
	if f.Indent {
		data, err = json.MarshalIndent(all, "", "  ")
	} else {
		data, err = json.Marshal(all)
	}
	if err != nil {
		return "", fmt.Errorf("encode diagnostics: %w", err)
	}
	return string(data), nil
}
