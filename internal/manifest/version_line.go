package manifest

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// DefaultVersionLinePattern matches the version assignment of a CocoaPods podspec,
	// for example `spec.version = '1.2.3'` or `s.version      = "1.2.3"`.
	DefaultVersionLinePattern = `(?m)^\s*\w+\.version\s*=\s*['"](?P<version>[^'"]+)['"]`

	versionGroupNameConstant           = "version"
	patternCompileFailureTemplate      = "invalid version line pattern %q: %w"
	versionGroupMissingTemplate        = "version line pattern %q has no (?P<version>...) group"
	versionLineNotFoundMessageConstant = "no version line found"
)

// ErrVersionLineNotFound indicates the manifest contains no line matching the pattern.
var ErrVersionLineNotFound = errors.New(versionLineNotFoundMessageConstant)

// VersionLine locates and rewrites the version declaration of a manifest.
type VersionLine struct {
	pattern    *regexp.Regexp
	groupIndex int
}

// NewVersionLine compiles pattern, which must contain a named "version" group.
// An empty pattern selects DefaultVersionLinePattern.
func NewVersionLine(pattern string) (*VersionLine, error) {
	if len(pattern) == 0 {
		pattern = DefaultVersionLinePattern
	}
	compiledPattern, compileError := regexp.Compile(pattern)
	if compileError != nil {
		return nil, fmt.Errorf(patternCompileFailureTemplate, pattern, compileError)
	}
	groupIndex := compiledPattern.SubexpIndex(versionGroupNameConstant)
	if groupIndex < 0 {
		return nil, fmt.Errorf(versionGroupMissingTemplate, pattern)
	}
	return &VersionLine{pattern: compiledPattern, groupIndex: groupIndex}, nil
}

// Read returns the version declared by the first matching line.
func (versionLine *VersionLine) Read(content []byte) (string, error) {
	start, end, found := versionLine.locate(content)
	if !found {
		return "", ErrVersionLineNotFound
	}
	return string(content[start:end]), nil
}

// Replace substitutes version into the first matching line and leaves every other byte untouched.
func (versionLine *VersionLine) Replace(content []byte, version string) ([]byte, error) {
	start, end, found := versionLine.locate(content)
	if !found {
		return nil, ErrVersionLineNotFound
	}
	replaced := make([]byte, 0, len(content)-(end-start)+len(version))
	replaced = append(replaced, content[:start]...)
	replaced = append(replaced, version...)
	replaced = append(replaced, content[end:]...)
	return replaced, nil
}

func (versionLine *VersionLine) locate(content []byte) (int, int, bool) {
	matchIndexes := versionLine.pattern.FindSubmatchIndex(content)
	if matchIndexes == nil {
		return 0, 0, false
	}
	start := matchIndexes[2*versionLine.groupIndex]
	end := matchIndexes[2*versionLine.groupIndex+1]
	if start < 0 {
		return 0, 0, false
	}
	return start, end, true
}
