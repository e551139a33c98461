package report

import (
	"strings"
	"unicode/utf8"
)

const (
	keyWidth   = 15
	valueWidth = 97
	ruleWidth  = 112
	nameWidth  = 40
	namesPerLn = 3
)

var (
	stars  = strings.Repeat("*", 25)
	equals = strings.Repeat("=", 35)
	rule   = strings.Repeat("-", ruleWidth)
)

// textSection renders a bordered block:
//
//	***** title *****
//	<table or name columns>
//
//	=====footer=====
//	 End of Report
func textSection(b *strings.Builder, title string, data any, footer string) {
	b.WriteString(stars + " " + title + " " + stars + "\n")
	switch d := data.(type) {
	case Table:
		textTable(b, d)
	case Names:
		textNames(b, d)
	}
	b.WriteString("\n")
	b.WriteString(equals + footer + equals + "\n")
	b.WriteString(" End of Report\n\n")
}

func textTable(b *strings.Builder, t Table) {
	b.WriteString(rule + "\n")
	k, v := t.Columns()
	textRow(b, k, v)
	for _, r := range t.Rows() {
		textRow(b, r[0], r[1])
	}
}

func textRow(b *strings.Builder, key, value string) {
	b.WriteString("|" + center(key, keyWidth) + " | " + center(value, valueWidth) + " |\n")
	b.WriteString(rule + "\n")
}

func textNames(b *strings.Builder, names Names) {
	var line strings.Builder
	for i, n := range names {
		line.WriteString(pad(n, nameWidth))
		if (i+1)%namesPerLn == 0 || i == len(names)-1 {
			b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
			line.Reset()
		}
	}
}

// center pads s to width, putting the odd extra space on the left when the
// width is odd.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	marg := width - n
	left := marg/2 + (marg & width & 1)
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", marg-left)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
