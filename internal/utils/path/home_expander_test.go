package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/podrelease/internal/utils/path"
)

const (
	testHomeDirectoryConstant = "/home/maintainer"
)

func TestHomeExpanderExpand(testInstance *testing.T) {
	testCases := []struct {
		name         string
		candidate    string
		expectedPath string
	}{
		{name: "bare_tilde", candidate: "~", expectedPath: testHomeDirectoryConstant},
		{name: "tilde_path", candidate: "~/pods/Demo.podspec", expectedPath: filepath.Join(testHomeDirectoryConstant, "pods", "Demo.podspec")},
		{name: "other_user", candidate: "~someone/Demo.podspec", expectedPath: "~someone/Demo.podspec"},
		{name: "relative", candidate: "Demo.podspec", expectedPath: "Demo.podspec"},
		{name: "empty", candidate: "", expectedPath: ""},
	}

	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return testHomeDirectoryConstant, nil
	})
	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedPath, expander.Expand(testCase.candidate))
		})
	}
}

func TestHomeExpanderKeepsPathWhenHomeUnavailable(testInstance *testing.T) {
	expander := pathutils.NewHomeExpanderWithProvider(func() (string, error) {
		return "", errors.New("no home")
	})
	require.Equal(testInstance, "~/Demo.podspec", expander.Expand("~/Demo.podspec"))
}
