// Package ui provides helpers for formatting human-readable console output.
//
// ConsoleCommandEventLogger translates shell command lifecycle events into
// concise log lines, while Narrator prints the stage-by-stage progress of a
// release so that a failure can be traced to the step that raised it.
package ui
