package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// DefaultManifestGlob selects podspec files in the repository root.
	DefaultManifestGlob = "*.podspec"

	podspecExtensionConstant     = ".podspec"
	podspecJSONExtensionConstant = ".podspec.json"
	manifestNotFoundTemplate     = "no file matching %s in %s"
	manifestAmbiguousTemplate    = "several files match %s in %s: %s"
	globFailureTemplate          = "invalid manifest pattern %s: %w"
	manifestListSeparator        = ", "
)

var (
	// ErrManifestNotFound indicates discovery found no manifest.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrManifestAmbiguous indicates discovery found more than one manifest.
	ErrManifestAmbiguous = errors.New("manifest is ambiguous")
)

// Discover returns the single file in directory matching pattern.
func Discover(directory string, pattern string) (string, error) {
	if len(pattern) == 0 {
		pattern = DefaultManifestGlob
	}
	matches, globError := filepath.Glob(filepath.Join(directory, pattern))
	if globError != nil {
		return "", fmt.Errorf(globFailureTemplate, pattern, globError)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: "+manifestNotFoundTemplate, ErrManifestNotFound, pattern, directory)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", fmt.Errorf("%w: "+manifestAmbiguousTemplate, ErrManifestAmbiguous, pattern, directory, strings.Join(matches, manifestListSeparator))
	}
}

// PackageName derives the package name from a podspec path, e.g. Demo.podspec is Demo.
func PackageName(manifestPath string) string {
	baseName := filepath.Base(manifestPath)
	for _, extension := range []string{podspecJSONExtensionConstant, podspecExtensionConstant} {
		if strings.HasSuffix(baseName, extension) {
			return strings.TrimSuffix(baseName, extension)
		}
	}
	return strings.TrimSuffix(baseName, filepath.Ext(baseName))
}
