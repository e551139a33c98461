package report

import (
	"fmt"
	"strings"
)

func markdownSection(b *strings.Builder, title string, data any, footer string) {
	b.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(title), ":"))))
	switch d := data.(type) {
	case Table:
		k, v := d.Columns()
		b.WriteString(fmt.Sprintf("| %s | %s |\n", safeVal(k), safeVal(v)))
		b.WriteString("| --- | --- |\n")
		for _, r := range d.Rows() {
			b.WriteString(fmt.Sprintf("| %s | %s |\n", safeVal(r[0]), safeVal(r[1])))
		}
	case Names:
		if len(d) == 0 {
			b.WriteString("(none)\n")
		}
		for _, n := range d {
			b.WriteString("- " + safeVal(n) + "\n")
		}
	}
	if footer != "" {
		b.WriteString(fmt.Sprintf("\n_%s_\n", footer))
	}
	b.WriteString("\n")
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
