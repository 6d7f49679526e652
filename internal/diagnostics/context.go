package diagnostics

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// Context represents extracted code context.
type Context struct {
	Lines       []string
	StartLine   int
	ErrorLine   int
	ErrorColumn int
}

// ExtractContext returns the lines around line in content, with contextLines
// of surrounding source on each side.
func ExtractContext(content []byte, line, column, contextLines int) (Context, error) {
	lines := splitLines(content)
	if line < 1 || line > len(lines) {
		return Context{}, fmt.Errorf("line %d out of range [1, %d]", line, len(lines))
	}
	startLine := max(line-contextLines, 1)
	endLine := min(line+contextLines, len(lines))
	return Context{
		Lines:       append([]string(nil), lines[startLine-1:endLine]...),
		StartLine:   startLine,
		ErrorLine:   line,
		ErrorColumn: column,
	}, nil
}

// IsEmpty returns true if the context has no lines.
func (c Context) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Format renders the context with line numbers and a caret under the error column.
func (c Context) Format() string {
	if c.IsEmpty() {
		return ""
	}

	var b strings.Builder
	maxLineNum := c.StartLine + len(c.Lines) - 1
	lineNumWidth := len(fmt.Sprintf("%d", maxLineNum))

	for i, line := range c.Lines {
		lineNum := c.StartLine + i
		isErrorLine := lineNum == c.ErrorLine

		if isErrorLine {
			fmt.Fprintf(&b, "> %*d | ", lineNumWidth, lineNum)
		} else {
			fmt.Fprintf(&b, "  %*d | ", lineNumWidth, lineNum)
		}
		b.WriteString(line)
		b.WriteString("\n")

		if isErrorLine && c.ErrorColumn > 0 {
			b.WriteString(strings.Repeat(" ", lineNumWidth+4))
			// Tabs are kept so the caret lines up under tab-indented source.
			for j := 0; j < c.ErrorColumn-1 && j < len(line); j++ {
				if line[j] == '\t' {
					b.WriteByte('\t')
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString("^\n")
		}
	}
	return b.String()
}

// String returns the context lines without decoration.
func (c Context) String() string {
	return strings.Join(c.Lines, "\n")
}

// ErrorLineText returns the line containing the error.
func (c Context) ErrorLineText() string {
	idx := c.ErrorLine - c.StartLine
	if idx >= 0 && idx < len(c.Lines) {
		return c.Lines[idx]
	}
	return ""
}

func splitLines(data []byte) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	// An error at end of input still has a line to point at.
	if len(data) == 0 || data[len(data)-1] == '\n' {
		lines = append(lines, "")
	}
	return lines
}
