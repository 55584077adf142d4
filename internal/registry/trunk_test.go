package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/podrelease/internal/execshell"
	"github.com/temirov/podrelease/internal/registry"
)

const (
	testPackageNameConstant   = "Demo"
	testManifestPathConstant  = "Demo.podspec"
	testSessionOutputConstant = `- Name:     Jane Maintainer
  - Email:    jane@example.com
  - Since:    January 3rd, 2020 10:00
  - Pods:
    - Demo
    - DemoExtensions
  - Sessions:
    - January 3rd, 2020 10:00 - May 1st, 2030 10:00. IP: 127.0.0.1
`
)

type recordingPodExecutor struct {
	result           execshell.ExecutionResult
	err              error
	recordedCommands []execshell.CommandDetails
}

func (executor *recordingPodExecutor) ExecutePod(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedCommands = append(executor.recordedCommands, details)
	return executor.result, executor.err
}

func TestNewTrunkClientRequiresExecutor(testInstance *testing.T) {
	_, creationError := registry.NewTrunkClient(nil, nil, "")
	require.ErrorIs(testInstance, creationError, registry.ErrPodExecutorNotConfigured)
}

func TestTrunkClientIsInstalled(testInstance *testing.T) {
	testCases := []struct {
		name            string
		locatorError    error
		expectInstalled bool
	}{
		{name: "present", expectInstalled: true},
		{name: "missing", locatorError: errors.New("executable file not found in $PATH")},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var requestedName string
			client, creationError := registry.NewTrunkClient(&recordingPodExecutor{}, func(name string) (string, error) {
				requestedName = name
				return "/usr/local/bin/pod", testCase.locatorError
			}, "")
			require.NoError(testInstance, creationError)

			require.Equal(testInstance, testCase.expectInstalled, client.IsInstalled())
			require.Equal(testInstance, "pod", requestedName)
		})
	}
}

func TestParseOwnedPackages(testInstance *testing.T) {
	require.Equal(testInstance, []string{testPackageNameConstant, "DemoExtensions"}, registry.ParseOwnedPackages(testSessionOutputConstant))
	require.Empty(testInstance, registry.ParseOwnedPackages("- Name: Jane\n- Sessions:\n  - today\n"))
}

func TestTrunkClientOwnsPackage(testInstance *testing.T) {
	testCases := []struct {
		name        string
		packageName string
		expectOwned bool
	}{
		{name: "owned", packageName: testPackageNameConstant, expectOwned: true},
		{name: "exact_match_only", packageName: "Dem"},
		{name: "not_owned", packageName: "Other"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor := &recordingPodExecutor{result: execshell.ExecutionResult{StandardOutput: testSessionOutputConstant}}
			client, creationError := registry.NewTrunkClient(executor, nil, "")
			require.NoError(testInstance, creationError)

			owned, ownershipError := client.OwnsPackage(context.Background(), testCase.packageName)
			require.NoError(testInstance, ownershipError)
			require.Equal(testInstance, testCase.expectOwned, owned)
			require.Equal(testInstance, []string{"trunk", "me"}, executor.recordedCommands[0].Arguments)
		})
	}
}

func TestTrunkClientOwnsPackageReportsSessionFailure(testInstance *testing.T) {
	sessionFailure := execshell.CommandFailedError{Result: execshell.ExecutionResult{ExitCode: 1, StandardError: "You need to register a session first."}}
	client, creationError := registry.NewTrunkClient(&recordingPodExecutor{err: sessionFailure}, nil, "")
	require.NoError(testInstance, creationError)

	_, ownershipError := client.OwnsPackage(context.Background(), testPackageNameConstant)
	require.Error(testInstance, ownershipError)
	require.ErrorAs(testInstance, ownershipError, &execshell.CommandFailedError{})

	_, ownershipError = client.OwnsPackage(context.Background(), " ")
	require.ErrorIs(testInstance, ownershipError, registry.ErrPackageNameRequired)
}

func TestTrunkClientPublish(testInstance *testing.T) {
	executor := &recordingPodExecutor{}
	client, creationError := registry.NewTrunkClient(executor, nil, "/workspace/Demo")
	require.NoError(testInstance, creationError)

	publishError := client.Publish(context.Background(), testManifestPathConstant, []string{"--allow-warnings"})
	require.NoError(testInstance, publishError)
	require.Len(testInstance, executor.recordedCommands, 1)
	require.Equal(testInstance, []string{"trunk", "push", testManifestPathConstant, "--allow-warnings"}, executor.recordedCommands[0].Arguments)
	require.Equal(testInstance, "/workspace/Demo", executor.recordedCommands[0].WorkingDirectory)
	require.True(testInstance, executor.recordedCommands[0].AttachTerminal)

	require.ErrorIs(testInstance, client.Publish(context.Background(), "", nil), registry.ErrManifestPathRequired)
}
