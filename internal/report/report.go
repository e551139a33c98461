// Package report renders metric tables and name lists as report sections and
// writes them to the screen or a file.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/genexpr-cli/internal/utils"
)

// Screen is the destination name for standard output.
const Screen = "screen"

// Format selects the section layout.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (use text|markdown)", s)
	}
}

// Table is a two-column section body: a header pair and formatted rows.
type Table interface {
	Columns() (key, value string)
	Rows() [][2]string
}

// Names is a list section body.
type Names []string

// Writer renders sections to a destination. Screen output is written as each
// section is rendered; file output is buffered and written once by Close,
// replacing any previous file content.
type Writer struct {
	format Format
	out    io.Writer
	path   string
	buf    *bytes.Buffer
	closed bool
}

// New returns a Writer that writes sections straight to out.
func New(out io.Writer, format Format) *Writer {
	return &Writer{format: format, out: out}
}

// Open returns a Writer for dest. Screen (or empty) streams to screen, which
// defaults to standard output when nil; anything else is a file path.
func Open(dest string, format Format, screen io.Writer) (*Writer, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.EqualFold(dest, Screen) {
		if screen == nil {
			screen = os.Stdout
		}
		return New(screen, format), nil
	}
	buf := &bytes.Buffer{}
	return &Writer{format: format, out: buf, path: dest, buf: buf}, nil
}

// Path returns the output file path, or "" for stream output.
func (w *Writer) Path() string { return w.path }

// Preamble writes a heading naming the dataset and the run. Text reports
// carry no preamble.
func (w *Writer) Preamble(dataset, runID string) error {
	if w.format != FormatMarkdown {
		return nil
	}
	var b strings.Builder
	b.WriteString("[GENE EXPRESSION REPORT]\n")
	if dataset != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", dataset))
	}
	if runID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", runID))
	}
	b.WriteString("\n")
	return w.write(b.String())
}

// Render writes one section. data must be a Table, Names or []string.
func (w *Writer) Render(title string, data any, footer string) error {
	switch d := data.(type) {
	case []string:
		data = Names(d)
	case Table, Names:
	default:
		return fmt.Errorf("render %q: unsupported data %T", title, data)
	}
	var b strings.Builder
	if w.format == FormatMarkdown {
		markdownSection(&b, title, data, footer)
	} else {
		textSection(&b, title, data, footer)
	}
	return w.write(b.String())
}

func (w *Writer) write(s string) error {
	if w.closed {
		return fmt.Errorf("report writer closed")
	}
	if _, err := io.WriteString(w.out, s); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Close flushes buffered file output. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.buf == nil {
		return nil
	}
	if err := utils.SafeWriteFile(w.path, w.buf.Bytes()); err != nil {
		return fmt.Errorf("write report %s: %w", w.path, err)
	}
	return nil
}
