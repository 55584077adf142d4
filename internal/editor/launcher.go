// Package editor opens files in the user's text editor and blocks until it exits.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/temirov/podrelease/internal/execshell"
)

const (
	// DefaultEditorCommand is used when neither configuration nor the environment names an editor.
	DefaultEditorCommand = "vi"

	visualEnvironmentVariableConstant = "VISUAL"
	editorEnvironmentVariableConstant = "EDITOR"
	executorMissingMessageConstant    = "editor executor not configured"
	commandRequiredMessageConstant    = "editor command must be provided"
	filePathRequiredMessageConstant   = "file path must be provided"
	parseFailureTemplateConstant      = "cannot parse editor command %q: %w"
	editFailureTemplateConstant       = "editor %s exited with an error: %w"
)

var (
	// ErrExecutorNotConfigured indicates the launcher was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)
	// ErrCommandRequired indicates the editor command line was empty.
	ErrCommandRequired = errors.New(commandRequiredMessageConstant)
	// ErrFilePathRequired indicates Edit was called without a file.
	ErrFilePathRequired = errors.New(filePathRequiredMessageConstant)
)

// InteractiveExecutor runs a program attached to the terminal.
type InteractiveExecutor interface {
	ExecuteInteractive(executionContext context.Context, name execshell.CommandName, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// ResolveCommand picks the editor command line: the configured value, then $VISUAL, then $EDITOR, then vi.
func ResolveCommand(configuredCommand string, lookup EnvironmentLookup) string {
	if trimmed := strings.TrimSpace(configuredCommand); len(trimmed) > 0 {
		return trimmed
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, variableName := range []string{visualEnvironmentVariableConstant, editorEnvironmentVariableConstant} {
		if value, found := lookup(variableName); found && len(strings.TrimSpace(value)) > 0 {
			return strings.TrimSpace(value)
		}
	}
	return DefaultEditorCommand
}

// Launcher runs an editor command line such as "code --wait" on a file.
type Launcher struct {
	executor InteractiveExecutor
	program  string
	options  []string
}

// NewLauncher splits commandLine with shell quoting rules and binds it to executor.
func NewLauncher(executor InteractiveExecutor, commandLine string) (*Launcher, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	fields, parseError := shell.Fields(commandLine, nil)
	if parseError != nil {
		return nil, fmt.Errorf(parseFailureTemplateConstant, commandLine, parseError)
	}
	if len(fields) == 0 {
		return nil, ErrCommandRequired
	}
	return &Launcher{executor: executor, program: fields[0], options: fields[1:]}, nil
}

// Program returns the editor executable.
func (launcher *Launcher) Program() string {
	return launcher.program
}

// Edit opens filePath and returns once the editor exits.
func (launcher *Launcher) Edit(executionContext context.Context, filePath string) error {
	if len(strings.TrimSpace(filePath)) == 0 {
		return ErrFilePathRequired
	}
	arguments := make([]string, 0, len(launcher.options)+1)
	arguments = append(arguments, launcher.options...)
	arguments = append(arguments, filePath)

	_, editError := launcher.executor.ExecuteInteractive(executionContext, execshell.CommandName(launcher.program), execshell.CommandDetails{Arguments: arguments})
	if editError != nil {
		return fmt.Errorf(editFailureTemplateConstant, launcher.program, editError)
	}
	return nil
}
