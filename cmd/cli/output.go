package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dormscore/app"
	"dormscore/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Width(10)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD787"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
)

// writeSummary encodes a run or conversion result in the requested format.
func writeSummary(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.FormatYAML, "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatMarkdown, "md":
		_, err := io.WriteString(w, renderMarkdown(v))
		return err
	case config.FormatHTML:
		_, err := w.Write(markdownToHTML(renderMarkdown(v)))
		return err
	}

	switch res := v.(type) {
	case *app.RunResult:
		_, err := io.WriteString(w, renderRun(res))
		return err
	case *app.ConvertResult:
		_, err := io.WriteString(w, renderConvert(res))
		return err
	default:
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	}
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func renderRun(res *app.RunResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(res.Title))
	b.WriteString("\n")

	line(&b, "report", res.Output)
	line(&b, "inputs", fmt.Sprintf("%d files, %d rows, %d duplicates dropped", len(res.Files), res.RowsRead, res.Duplicates))
	line(&b, "records", fmt.Sprintf("%d on %d pages", res.Records, res.Pages))
	if s := res.Scores; s != nil && s.Count > 0 {
		line(&b, "scores", fmt.Sprintf("mean %.2f  sd %.2f  min %g  median %g  max %g", s.Mean, s.StdDev, s.Min, s.Median, s.Max))
	}

	if res.Clean {
		line(&b, "cells", okStyle.Render("all filled"))
	} else {
		line(&b, "cells", warnStyle.Render(fmt.Sprintf("%d empty", len(res.Anomalies))))
		for _, a := range res.Anomalies {
			b.WriteString(fmt.Sprintf("  %s %s %s\n", a.Cell, a.Field, a.Key))
		}
	}

	switch res.Conversion {
	case app.ConversionDone:
		line(&b, "pdf", okStyle.Render(res.PDF))
	case app.ConversionFailed:
		line(&b, "pdf", warnStyle.Render("failed: "+res.ConversionError))
	case app.ConversionSkipped:
		line(&b, "pdf", warnStyle.Render("skipped"))
	}
	if len(res.Removed) > 0 {
		line(&b, "removed", fmt.Sprintf("%d inputs", len(res.Removed)))
	}
	for _, w := range res.Warnings {
		line(&b, "warning", warnStyle.Render(w))
	}
	return b.String()
}

func renderConvert(res *app.ConvertResult) string {
	var b strings.Builder
	for _, f := range res.Files {
		status := f.Status
		switch f.Status {
		case app.ConversionDone:
			status = okStyle.Render(status)
		case app.ConversionFailed:
			status = warnStyle.Render(status + ": " + f.Error)
		}
		line(&b, "pdf", f.PDF+"  "+status)
	}
	return b.String()
}

func renderMarkdown(v interface{}) string {
	var b strings.Builder
	switch res := v.(type) {
	case *app.RunResult:
		fmt.Fprintf(&b, "# %s\n\n", res.Title)
		b.WriteString("| item | value |\n|---|---|\n")
		fmt.Fprintf(&b, "| report | %s |\n", res.Output)
		fmt.Fprintf(&b, "| inputs | %d files, %d rows |\n", len(res.Files), res.RowsRead)
		fmt.Fprintf(&b, "| duplicates dropped | %d |\n", res.Duplicates)
		fmt.Fprintf(&b, "| records | %d |\n", res.Records)
		fmt.Fprintf(&b, "| pages | %d |\n", res.Pages)
		fmt.Fprintf(&b, "| pdf | %s |\n", res.Conversion)
		if s := res.Scores; s != nil && s.Count > 0 {
			fmt.Fprintf(&b, "| mean score | %.2f |\n", s.Mean)
		}
		if len(res.Anomalies) > 0 {
			b.WriteString("\n## Empty cells\n\n| cell | field | key |\n|---|---|---|\n")
			for _, a := range res.Anomalies {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", a.Cell, a.Field, a.Key)
			}
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(&b, "\n> %s\n", w)
		}
	case *app.ConvertResult:
		b.WriteString("| workbook | pdf | status |\n|---|---|---|\n")
		for _, f := range res.Files {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", f.Source, f.PDF, f.Status)
		}
	default:
		fmt.Fprintf(&b, "%v\n", v)
	}
	return b.String()
}

func markdownToHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage, Title: "dormscore"})
	return markdown.Render(doc, renderer)
}
