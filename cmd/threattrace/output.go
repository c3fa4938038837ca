// ThreatTrace - Real-time Threat Dashboard Reconciliation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/threattrace

package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/tomtom215/threattrace/internal/models"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgWhite, color.Bold)
	titleColor   = color.New(color.FgCyan, color.Bold)
)

var severityColors = map[models.Severity]*color.Color{
	models.SeverityCritical: color.New(color.FgRed, color.Bold),
	models.SeverityHigh:     color.New(color.FgRed),
	models.SeverityMedium:   color.New(color.FgYellow),
	models.SeverityLow:      color.New(color.FgGreen),
	models.SeverityInfo:     color.New(color.FgBlue),
}

func severityText(s models.Severity) string {
	if c, ok := severityColors[s]; ok {
		return c.Sprint(string(s))
	}
	return string(s)
}

// table renders aligned columns. Widths are measured on the plain text so
// colored cells stay aligned.
type table struct {
	headers []string
	rows    [][]cell
}

type cell struct {
	plain    string
	rendered string
}

func plain(s string) cell { return cell{plain: s, rendered: s} }

func severityCell(s models.Severity) cell {
	return cell{plain: string(s), rendered: severityText(s)}
}

func newTable(headers ...string) *table {
	return &table{headers: headers}
}

func (t *table) add(cells ...cell) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, c := range row {
			if n := utf8.RuneCountInString(c.plain); n > widths[i] {
				widths[i] = n
			}
		}
	}

	for i, h := range t.headers {
		headerColor.Fprint(w, pad(h, h, widths[i]))
	}
	fmt.Fprintln(w)
	for i := range t.headers {
		fmt.Fprint(w, strings.Repeat("-", widths[i])+"  ")
	}
	fmt.Fprintln(w)
	for _, row := range t.rows {
		for i, c := range row {
			fmt.Fprint(w, pad(c.plain, c.rendered, widths[i]))
		}
		fmt.Fprintln(w)
	}
}

func pad(plainText, rendered string, width int) string {
	return rendered + strings.Repeat(" ", width-utf8.RuneCountInString(plainText)) + "  "
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	titleColor.Fprintln(w, title)
}
