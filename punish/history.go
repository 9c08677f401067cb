package punish

import (
	"fmt"
	"strings"
	"time"
)

// Audit history is an append-only text log on the subject summary, one line
// per lifecycle event. Every line embeds a "#<recordId>" marker so deletion
// can identify exactly the lines belonging to an erased record.

func formatHistoryDate(at time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(at.Month()), at.Day(), at.Year())
}

// IssueLine formats the history entry appended when a punishment is issued.
func IssueLine(at time.Time, label, reason string, recordID int64) string {
	return fmt.Sprintf("• %s - %s #%d - %s", formatHistoryDate(at), label, recordID, reason)
}

// UpdateLine formats the history entry appended on an in-place edit.
func UpdateLine(at time.Time, recordID int64, changes []string) string {
	return fmt.Sprintf("• %s - Updated #%d - %s", formatHistoryDate(at), recordID, strings.Join(changes, ", "))
}

// RemoveLine formats the history entry appended when a punishment is removed.
func RemoveLine(at time.Time, recordID int64, reason string) string {
	return fmt.Sprintf("• %s - Removed #%d - %s", formatHistoryDate(at), recordID, reason)
}

// AppendHistory adds a line to the log. History is never reordered.
func AppendHistory(history, line string) string {
	if history == "" {
		return line
	}
	return history + "\n" + line
}

// StripRecordLines drops every history line carrying the record's marker,
// leaving all other lines intact and in their original order. Matching is by
// exact token: "#12" never matches inside "#123".
func StripRecordLines(history string, recordID int64) string {
	if history == "" {
		return ""
	}
	marker := fmt.Sprintf("#%d", recordID)
	var kept []string
	for _, line := range strings.Split(history, "\n") {
		if !lineHasMarker(line, marker) {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func lineHasMarker(line, marker string) bool {
	for _, token := range strings.Fields(line) {
		if strings.Trim(token, "()[].,;:") == marker {
			return true
		}
	}
	return false
}
