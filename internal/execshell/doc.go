// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap logging and lifecycle
// notifications, converts non-zero exit codes into CommandFailedError, and
// exposes helpers for git, the CocoaPods CLI, and interactive programs such as
// text editors. OSCommandRunner is the os/exec backed default.
package execshell
