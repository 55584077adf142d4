package gitrepo_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/podrelease/internal/gitrepo"
)

func TestParseRemoteURL(testInstance *testing.T) {
	testCases := []struct {
		name           string
		input          string
		expectedRemote gitrepo.RemoteURL
		expectError    bool
	}{
		{
			name:           "scp_style",
			input:          "git@github.com:example/Demo.git",
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "example", Repository: "Demo"},
		},
		{
			name:           "ssh_scheme",
			input:          "ssh://git@github.com/example/Demo.git",
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "example", Repository: "Demo"},
		},
		{
			name:           "https",
			input:          "https://github.com/example/Demo",
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "example", Repository: "Demo"},
		},
		{
			name:           "https_with_credentials",
			input:          "https://token@github.com/example/Demo.git",
			expectedRemote: gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolHTTPS, Host: "github.com", Owner: "example", Repository: "Demo"},
		},
		{name: "empty", input: " ", expectError: true},
		{name: "unsupported_scheme", input: "file:///srv/Demo.git", expectError: true},
		{name: "missing_repository", input: "https://github.com/example", expectError: true},
		{name: "nested_path", input: "git@github.com:group/sub/Demo.git", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			remote, parseError := gitrepo.ParseRemoteURL(testCase.input)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				require.IsType(testInstance, gitrepo.RemoteURLParseError{}, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedRemote, remote)
		})
	}
}

func TestRemoteURLWebURL(testInstance *testing.T) {
	remote := gitrepo.RemoteURL{Protocol: gitrepo.RemoteProtocolSSH, Host: "github.com", Owner: "example", Repository: "Demo"}
	require.Equal(testInstance, "https://github.com/example/Demo", remote.WebURL())
}
