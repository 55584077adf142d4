// Package version parses release arguments and validates version tags.
package version

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/temirov/podrelease/internal/releaseerrors"
)

const (
	// TagPrefix is prepended to the requested version to form the tag name.
	TagPrefix = "v"
	// TagPatternExpression is the grammar every release tag must match.
	TagPatternExpression = `^v\d+\.\d+\.\d+(-\w+(\.\d)?)?$`

	requiredArgumentCountConstant        = 2
	doubledPrefixConstant                = TagPrefix + TagPrefix
	usageMessageTemplateConstant         = "expected <version> and <release_notes_path>, received %d argument(s)"
	doubledPrefixMessageTemplateConstant = "tag %s starts with %q; drop the leading %q from the version, it is added automatically"
	malformedTagMessageTemplateConstant  = "tag %s does not match v<major>.<minor>.<patch>[-<identifier>[.<digit>]]"
)

var tagPattern = regexp.MustCompile(TagPatternExpression)

// ReleaseRequest is the validated input of a release run.
type ReleaseRequest struct {
	Version          string
	ReleaseNotesPath string
	ForceTag         bool
	PublishOnly      bool
}

// Tag returns the version tag of the request.
func (request ReleaseRequest) Tag() string {
	return Tag(request.Version)
}

// ParseArguments builds a ReleaseRequest from positional arguments and flag values.
// Fewer than two arguments is a usage error; the version format is validated before returning.
func ParseArguments(arguments []string, forceTag bool, publishOnly bool) (ReleaseRequest, error) {
	if len(arguments) < requiredArgumentCountConstant {
		return ReleaseRequest{}, releaseerrors.New(releaseerrors.KindUsage, usageMessageTemplateConstant, len(arguments))
	}

	request := ReleaseRequest{
		Version:          strings.TrimSpace(arguments[0]),
		ReleaseNotesPath: strings.TrimSpace(arguments[1]),
		ForceTag:         forceTag,
		PublishOnly:      publishOnly,
	}
	if validationError := ValidateTag(request.Tag()); validationError != nil {
		return ReleaseRequest{}, validationError
	}
	return request, nil
}

// Tag derives the tag name for version.
func Tag(version string) string {
	return TagPrefix + version
}

// ValidateTag rejects doubled prefixes and tags outside the release grammar.
func ValidateTag(tag string) error {
	if strings.HasPrefix(tag, doubledPrefixConstant) {
		return releaseerrors.New(releaseerrors.KindMalformedVersion, doubledPrefixMessageTemplateConstant, tag, doubledPrefixConstant, TagPrefix)
	}
	if !tagPattern.MatchString(tag) {
		return releaseerrors.New(releaseerrors.KindMalformedVersion, malformedTagMessageTemplateConstant, tag)
	}
	return nil
}

// IsVersionTag reports whether tag follows the release grammar.
func IsVersionTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// LatestTag returns the highest release tag by semantic version precedence.
// Tags outside the release grammar are ignored.
func LatestTag(tags []string) (string, bool) {
	var latestVersion *semver.Version
	latestTag := ""
	for _, candidate := range tags {
		trimmedCandidate := strings.TrimSpace(candidate)
		if !IsVersionTag(trimmedCandidate) {
			continue
		}
		parsedVersion, parseError := semver.NewVersion(trimmedCandidate)
		if parseError != nil {
			continue
		}
		if latestVersion == nil || parsedVersion.GreaterThan(latestVersion) {
			latestVersion = parsedVersion
			latestTag = trimmedCandidate
		}
	}
	return latestTag, latestVersion != nil
}
