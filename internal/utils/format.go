package utils

import (
	"fmt"
	"os"
	"time"
)

// PrintErr prints a message to stderr, keeping stdout for JSON output
func PrintErr(message string) {
	if message != "" {
		fmt.Fprintln(os.Stderr, message)
	}
}

// FormatProgress renders a progress milestone for terminal output
func FormatProgress(percent int, message string) string {
	return fmt.Sprintf("[%3d%%] %s", percent, message)
}

// FormatDuration formats duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
