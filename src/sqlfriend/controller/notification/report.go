package notification

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	textmapper "github.com/sqlfriend/sqlfriend/src/sqlfriend/internal/protocol"
	"go.lsp.dev/protocol"
)

const _sourceName = "query"

// ReportKind is the heading of a rendered diagnostic.
type ReportKind string

const (
	ReportKindError   ReportKind = "Error"
	ReportKindWarning ReportKind = "Warning"
	ReportKindAdvice  ReportKind = "Advice"
)

// SeverityToReportKind maps a diagnostic severity to its heading. Diagnostics without a
// severity are shown as warnings.
func SeverityToReportKind(severity protocol.DiagnosticSeverity) ReportKind {
	switch severity {
	case protocol.DiagnosticSeverityError:
		return ReportKindError
	case protocol.DiagnosticSeverityHint:
		return ReportKindAdvice
	default:
		return ReportKindWarning
	}
}

// RenderDiagnostics renders every diagnostic against text, separated by newlines.
// It returns the empty string when there is nothing to report.
func RenderDiagnostics(text string, diagnostics []protocol.Diagnostic) string {
	if len(diagnostics) == 0 {
		return ""
	}
	m := textmapper.NewTextOffsetMapper([]byte(text))
	reports := make([]string, 0, len(diagnostics))
	for _, d := range diagnostics {
		start := m.ClampedOffset(d.Range.Start)
		end := m.ClampedOffset(d.Range.End)
		reports = append(reports, renderDiagnostic(text, start, end, d))
	}
	return strings.Join(reports, "\n")
}

// renderDiagnostic draws the line holding start and underlines start..end on it.
func renderDiagnostic(text string, start, end int, d protocol.Diagnostic) string {
	kind := SeverityToReportKind(d.Severity)
	if text == "" {
		return fmt.Sprintf("%s: %s", kind, d.Message)
	}

	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	lineEnd := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		lineEnd = start + i
	}
	line := strings.TrimSuffix(text[lineStart:lineEnd], "\r")
	if start > lineStart+len(line) {
		start = lineStart + len(line)
	}
	if end > lineStart+len(line) {
		end = lineStart + len(line)
	}
	if end < start {
		end = start
	}

	row := strings.Count(text[:lineStart], "\n") + 1
	col := utf8.RuneCountInString(text[lineStart:start])
	width := utf8.RuneCountInString(text[start:end])
	if width == 0 {
		width = 1
	}

	gutter := strings.Repeat(" ", len(strconv.Itoa(row)))
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", kind, d.Message)
	fmt.Fprintf(&b, "%s--> %s:%d:%d\n", gutter, _sourceName, row, col+1)
	fmt.Fprintf(&b, "%s |\n", gutter)
	fmt.Fprintf(&b, "%d | %s\n", row, line)
	fmt.Fprintf(&b, "%s | %s%s %s", gutter, strings.Repeat(" ", col), strings.Repeat("^", width), d.Message)
	return b.String()
}
