package ui

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Header prints a section header.
func Header(w io.Writer, s string) {
	fmt.Fprintln(w, Title.Render(s))
	fmt.Fprintln(w, Muted.Render(strings.Repeat("─", len([]rune(s))+2)))
}

// Ok prints a success message.
func Ok(w io.Writer, msg string) {
	fmt.Fprintln(w, Success.Render(IconOk+msg))
}

// Warn prints a warning message.
func Warn(w io.Writer, msg string) {
	fmt.Fprintln(w, Warning.Render(IconWarn+msg))
}

// Err prints an error message.
func Err(w io.Writer, msg string) {
	fmt.Fprintln(w, Error.Render(IconError+msg))
}

// Info prints a muted informational line.
func Info(w io.Writer, msg string) {
	fmt.Fprintln(w, Muted.Render("  "+msg))
}

// Kv prints a key-value pair, padded.
func Kv(w io.Writer, key, value string) {
	k := KeyStyle.Render(fmt.Sprintf("  %-14s", key))
	fmt.Fprintf(w, "%s %s\n", k, ValueStyle.Render(value))
}

// Badge renders a priority badge.
func Badge(priority string) string {
	style, ok := priorityStyles[priority]
	if !ok {
		style = priorityStyles["lowest"]
	}
	return style.Render(priority)
}

// FocusCard renders the focus task in a box.
func FocusCard(text, priority string, score float64) string {
	body := FocusText.Render(IconFocus+text) + "\n" +
		Badge(priority) + " " + Muted.Render(fmt.Sprintf("score %.3f", score))
	return FocusBox.Render(body)
}

// When formats a time relative to now, for list columns.
func When(t, now time.Time) string {
	d := t.Sub(now)
	switch {
	case d > -time.Minute && d < time.Minute:
		return "now"
	case d > 0 && d < time.Hour:
		return fmt.Sprintf("in %dm", int(d.Minutes()))
	case d < 0 && d > -time.Hour:
		return fmt.Sprintf("%dm ago", int(-d.Minutes()))
	case d > 0 && d < 24*time.Hour:
		return fmt.Sprintf("in %dh", int(d.Hours()))
	case d < 0 && d > -24*time.Hour:
		return fmt.Sprintf("%dh ago", int(-d.Hours()))
	default:
		return t.Local().Format("2006-01-02")
	}
}

// ShortID trims an id for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
