package compose

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/TobiSchelling/bizpulse/internal/report"
)

// Keys rendered as dedicated bullet sections at the end of a briefing.
var listSections = []string{"key_insights", "action_items", "quality_factors", "recommendations"}

// Markdown renders a report document as a markdown briefing.
func Markdown(title string, doc report.Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	doc, err = report.Parse(data)
	if err != nil {
		return "", err
	}

	header := "# " + title
	if ts := doc.Timestamp(); ts != "" {
		header += fmt.Sprintf("\n\n_Generated %s_", ts)
	}
	if msg, ok := doc.ErrorMessage(); ok {
		return header + "\n\n> **Error:** " + msg, nil
	}

	var overview, sections []string
	var deferred []report.Field
	for _, f := range doc.Fields() {
		if f.Key == report.KeyTimestamp {
			continue
		}
		if isListSection(f.Key) {
			deferred = append(deferred, f)
			continue
		}
		switch v := f.Value.(type) {
		case report.Document:
			sections = append(sections, documentSection(f.Key, v, 2))
		case []any:
			sections = append(sections, listSection(f.Key, v, 2))
		default:
			overview = append(overview, fmt.Sprintf("- **%s:** %s", Humanize(f.Key), scalar(v)))
		}
	}
	if len(overview) > 0 {
		sections = append([]string{"## Overview\n\n" + strings.Join(overview, "\n")}, sections...)
	}
	for _, f := range deferred {
		if items, ok := f.Value.([]any); ok {
			sections = append(sections, listSection(f.Key, items, 2))
		}
	}

	if len(sections) == 0 {
		return header, nil
	}
	return header + "\n\n" + strings.Join(sections, "\n\n---\n\n"), nil
}

func isListSection(key string) bool {
	for _, k := range listSections {
		if k == key {
			return true
		}
	}
	return false
}

func documentSection(key string, doc report.Document, level int) string {
	var lines []string
	var nested []string
	for _, f := range doc.Fields() {
		switch v := f.Value.(type) {
		case report.Document:
			if level < 4 {
				nested = append(nested, documentSection(f.Key, v, level+1))
			} else {
				lines = append(lines, fmt.Sprintf("- **%s:** %s", Humanize(f.Key), inline(v)))
			}
		case []any:
			nested = append(nested, listSection(f.Key, v, level+1))
		default:
			lines = append(lines, fmt.Sprintf("- **%s:** %s", Humanize(f.Key), scalar(v)))
		}
	}

	out := heading(level, Humanize(key))
	if len(lines) > 0 {
		out += "\n\n" + strings.Join(lines, "\n")
	}
	if len(nested) > 0 {
		out += "\n\n" + strings.Join(nested, "\n\n")
	}
	return out
}

func listSection(key string, items []any, level int) string {
	out := heading(level, Humanize(key))
	if len(items) == 0 {
		return out + "\n\n_None._"
	}
	var lines []string
	for _, item := range items {
		if d, ok := item.(report.Document); ok {
			lines = append(lines, "- "+inline(d))
			continue
		}
		lines = append(lines, "- "+scalar(item))
	}
	return out + "\n\n" + strings.Join(lines, "\n")
}

// inline renders a document on one line, leading with its title if present.
func inline(doc report.Document) string {
	var parts []string
	lead := ""
	for _, f := range doc.Fields() {
		if f.Key == "title" {
			lead = fmt.Sprintf("**%s**", scalar(f.Value))
			continue
		}
		switch v := f.Value.(type) {
		case report.Document:
			parts = append(parts, fmt.Sprintf("%s: {%s}", f.Key, inline(v)))
		case []any:
			parts = append(parts, fmt.Sprintf("%s: %d items", f.Key, len(v)))
		default:
			parts = append(parts, fmt.Sprintf("%s: %s", f.Key, scalar(v)))
		}
	}
	if lead == "" {
		return strings.Join(parts, "; ")
	}
	if len(parts) == 0 {
		return lead
	}
	return lead + " - " + strings.Join(parts, "; ")
}

func heading(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

func scalar(v any) string {
	switch x := v.(type) {
	case nil:
		return "n/a"
	case string:
		if x == "" {
			return "n/a"
		}
		return x
	case json.Number:
		return formatNumber(x)
	case bool:
		if x {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprint(x)
	}
}

// formatNumber trims floats to two decimals and leaves integers untouched.
func formatNumber(n json.Number) string {
	if _, err := n.Int64(); err == nil {
		return n.String()
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

// Humanize turns a snake_case key into a title ("key_insights" -> "Key Insights").
func Humanize(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
