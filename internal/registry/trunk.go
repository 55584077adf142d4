// Package registry talks to the CocoaPods trunk through the pod command line.
package registry

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/temirov/podrelease/internal/execshell"
)

const (
	podExecutorMissingMessageConstant   = "pod executor not configured"
	packageNameRequiredMessageConstant  = "package name must be provided"
	manifestPathRequiredMessageConstant = "manifest path must be provided"
	sessionFailureTemplateConstant      = "failed to read trunk session: %w"
	publishFailureTemplateConstant      = "failed to push %s to trunk: %w"
	podTrunkSubcommandConstant          = "trunk"
	podTrunkMeSubcommandConstant        = "me"
	podTrunkPushSubcommandConstant      = "push"
	podsSectionHeaderConstant           = "- Pods:"
	listItemPrefixConstant              = "- "
	outputLineSeparatorConstant         = "\n"
)

var (
	// ErrPodExecutorNotConfigured indicates the pod executor dependency was missing.
	ErrPodExecutorNotConfigured = errors.New(podExecutorMissingMessageConstant)
	// ErrPackageNameRequired indicates an ownership query without a package name.
	ErrPackageNameRequired = errors.New(packageNameRequiredMessageConstant)
	// ErrManifestPathRequired indicates a publish request without a manifest.
	ErrManifestPathRequired = errors.New(manifestPathRequiredMessageConstant)
)

// PodExecutor runs the pod command line.
type PodExecutor interface {
	ExecutePod(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ExecutableLocator resolves an executable name on PATH.
type ExecutableLocator func(name string) (string, error)

// TrunkClient checks trunk ownership and publishes podspecs.
type TrunkClient struct {
	executor         PodExecutor
	locateExecutable ExecutableLocator
	workingDirectory string
}

// NewTrunkClient constructs a TrunkClient. A nil locator falls back to exec.LookPath.
func NewTrunkClient(executor PodExecutor, locator ExecutableLocator, workingDirectory string) (*TrunkClient, error) {
	if executor == nil {
		return nil, ErrPodExecutorNotConfigured
	}
	if locator == nil {
		locator = exec.LookPath
	}
	return &TrunkClient{executor: executor, locateExecutable: locator, workingDirectory: workingDirectory}, nil
}

// ToolName returns the executable the client depends on.
func (client *TrunkClient) ToolName() string {
	return string(execshell.CommandPod)
}

// IsInstalled reports whether pod is available on PATH.
func (client *TrunkClient) IsInstalled() bool {
	_, locateError := client.locateExecutable(client.ToolName())
	return locateError == nil
}

// OwnsPackage reports whether the signed-in trunk user is an owner of packageName.
func (client *TrunkClient) OwnsPackage(executionContext context.Context, packageName string) (bool, error) {
	trimmedName := strings.TrimSpace(packageName)
	if len(trimmedName) == 0 {
		return false, ErrPackageNameRequired
	}
	result, executionError := client.executor.ExecutePod(executionContext, execshell.CommandDetails{
		Arguments:        []string{podTrunkSubcommandConstant, podTrunkMeSubcommandConstant},
		WorkingDirectory: client.workingDirectory,
	})
	if executionError != nil {
		return false, fmt.Errorf(sessionFailureTemplateConstant, executionError)
	}
	for _, ownedPackage := range ParseOwnedPackages(result.StandardOutput) {
		if ownedPackage == trimmedName {
			return true, nil
		}
	}
	return false, nil
}

// Publish pushes manifestPath to trunk with any extra arguments appended.
// Output is streamed to the terminal because validation can take minutes.
func (client *TrunkClient) Publish(executionContext context.Context, manifestPath string, extraArguments []string) error {
	if len(strings.TrimSpace(manifestPath)) == 0 {
		return ErrManifestPathRequired
	}
	arguments := append([]string{podTrunkSubcommandConstant, podTrunkPushSubcommandConstant, manifestPath}, extraArguments...)
	_, executionError := client.executor.ExecutePod(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: client.workingDirectory,
		AttachTerminal:   true,
	})
	if executionError != nil {
		return fmt.Errorf(publishFailureTemplateConstant, manifestPath, executionError)
	}
	return nil
}

// ParseOwnedPackages extracts the entries nested under "- Pods:" in `pod trunk me` output.
func ParseOwnedPackages(sessionOutput string) []string {
	ownedPackages := make([]string, 0)
	sectionIndentation := -1
	for _, line := range strings.Split(sessionOutput, outputLineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		indentation := len(line) - len(strings.TrimLeft(line, " \t"))

		if sectionIndentation < 0 {
			if trimmedLine == podsSectionHeaderConstant {
				sectionIndentation = indentation
			}
			continue
		}
		if indentation <= sectionIndentation || !strings.HasPrefix(trimmedLine, listItemPrefixConstant) {
			break
		}
		ownedPackages = append(ownedPackages, strings.TrimSpace(strings.TrimPrefix(trimmedLine, listItemPrefixConstant)))
	}
	return ownedPackages
}
