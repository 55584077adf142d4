package version_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/podrelease/internal/releaseerrors"
	"github.com/temirov/podrelease/internal/version"
)

const (
	testNotesPathConstant = "notes.md"
)

func TestParseArgumentsRequiresTwoArguments(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
	}{
		{name: "none", arguments: nil},
		{name: "version_only", arguments: []string{"1.2.3"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, parseError := version.ParseArguments(testCase.arguments, false, false)
			require.ErrorIs(testInstance, parseError, releaseerrors.ErrUsage)
			require.Equal(testInstance, releaseerrors.ExitCodeUsage, releaseerrors.ExitCode(parseError))
		})
	}
}

func TestParseArgumentsBuildsRequest(testInstance *testing.T) {
	request, parseError := version.ParseArguments([]string{"1.2.3-beta.1", testNotesPathConstant}, true, false)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, version.ReleaseRequest{Version: "1.2.3-beta.1", ReleaseNotesPath: testNotesPathConstant, ForceTag: true}, request)
	require.Equal(testInstance, "v1.2.3-beta.1", request.Tag())
}

func TestValidateTag(testInstance *testing.T) {
	testCases := []struct {
		name        string
		version     string
		expectValid bool
	}{
		{name: "plain", version: "1.2.3", expectValid: true},
		{name: "multi_digit", version: "10.20.30", expectValid: true},
		{name: "prerelease", version: "1.2.3-rc", expectValid: true},
		{name: "prerelease_index", version: "1.2.3-beta.1", expectValid: true},
		{name: "underscore_identifier", version: "1.2.3-rc_1", expectValid: true},
		{name: "doubled_prefix", version: "v1.0.0", expectValid: false},
		{name: "doubled_prefix_malformed", version: "vfoo", expectValid: false},
		{name: "missing_patch", version: "1.2", expectValid: false},
		{name: "multi_digit_index", version: "1.2.3-beta.10", expectValid: false},
		{name: "trailing_text", version: "1.2.3 ", expectValid: false},
		{name: "letters", version: "one.two.three", expectValid: false},
		{name: "empty", version: "", expectValid: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			validationError := version.ValidateTag(version.Tag(testCase.version))
			if testCase.expectValid {
				require.NoError(testInstance, validationError)
				return
			}
			require.ErrorIs(testInstance, validationError, releaseerrors.ErrMalformedVersion)
		})
	}
}

func TestValidateTagExplainsDoubledPrefix(testInstance *testing.T) {
	validationError := version.ValidateTag(version.Tag("v1.0.0"))
	require.ErrorIs(testInstance, validationError, releaseerrors.ErrMalformedVersion)
	require.Contains(testInstance, validationError.Error(), "drop the leading")
}

func TestLatestTagUsesSemanticOrdering(testInstance *testing.T) {
	testCases := []struct {
		name          string
		tags          []string
		expectedTag   string
		expectedFound bool
	}{
		{name: "numeric_not_lexical", tags: []string{"v1.9.0", "v1.10.0", "v1.2.0"}, expectedTag: "v1.10.0", expectedFound: true},
		{name: "release_beats_prerelease", tags: []string{"v2.0.0-rc.1", "v2.0.0"}, expectedTag: "v2.0.0", expectedFound: true},
		{name: "ignores_foreign_tags", tags: []string{"latest", "v3.0", "build-7", "v0.1.0"}, expectedTag: "v0.1.0", expectedFound: true},
		{name: "no_release_tags", tags: []string{"latest"}, expectedTag: "", expectedFound: false},
		{name: "empty", tags: nil, expectedTag: "", expectedFound: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			latestTag, found := version.LatestTag(testCase.tags)
			require.Equal(testInstance, testCase.expectedFound, found)
			require.Equal(testInstance, testCase.expectedTag, latestTag)
		})
	}
}
