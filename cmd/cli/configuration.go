package cli

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/temirov/podrelease/internal/manifest"
	pathutils "github.com/temirov/podrelease/internal/utils/path"
)

const (
	defaultRemoteNameConstant = "origin"
	podspecExtensionConstant  = ".podspec"
)

// ApplicationConfiguration describes the persisted configuration of podrelease.
type ApplicationConfiguration struct {
	Common  ApplicationCommonConfiguration `mapstructure:"common"`
	Release ReleaseConfiguration           `mapstructure:"release"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ReleaseConfiguration controls where and how a release is published.
type ReleaseConfiguration struct {
	ManifestPath       string   `mapstructure:"manifest_path"`
	PackageName        string   `mapstructure:"package_name"`
	Remote             string   `mapstructure:"remote"`
	BackupSuffix       string   `mapstructure:"backup_suffix"`
	VersionLinePattern string   `mapstructure:"version_line_pattern"`
	Editor             string   `mapstructure:"editor"`
	PublishArguments   []string `mapstructure:"publish_arguments"`
	OpenBrowser        bool     `mapstructure:"open_browser"`
}

// Sanitize trims values, expands "~" in the manifest path, and fills omitted defaults.
func (configuration ReleaseConfiguration) Sanitize(expander *pathutils.HomeExpander) ReleaseConfiguration {
	sanitized := configuration
	sanitized.ManifestPath = strings.TrimSpace(sanitized.ManifestPath)
	if expander != nil && len(sanitized.ManifestPath) > 0 {
		sanitized.ManifestPath = expander.Expand(sanitized.ManifestPath)
	}
	sanitized.PackageName = strings.TrimSpace(sanitized.PackageName)
	sanitized.Remote = strings.TrimSpace(sanitized.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteNameConstant
	}
	sanitized.BackupSuffix = strings.TrimSpace(sanitized.BackupSuffix)
	if len(sanitized.BackupSuffix) == 0 {
		sanitized.BackupSuffix = manifest.DefaultBackupSuffix
	}
	sanitized.Editor = strings.TrimSpace(sanitized.Editor)

	publishArguments := make([]string, 0, len(sanitized.PublishArguments))
	for _, argument := range sanitized.PublishArguments {
		if trimmedArgument := strings.TrimSpace(argument); len(trimmedArgument) > 0 {
			publishArguments = append(publishArguments, trimmedArgument)
		}
	}
	sanitized.PublishArguments = publishArguments
	return sanitized
}

// resolveManifestPath returns the configured manifest or the single podspec in workingDirectory.
// Without a podspec the expected <package>.podspec path is returned so the missing manifest is reported by name.
func resolveManifestPath(configuration ReleaseConfiguration, workingDirectory string) (string, error) {
	if len(configuration.ManifestPath) > 0 {
		if filepath.IsAbs(configuration.ManifestPath) {
			return configuration.ManifestPath, nil
		}
		return filepath.Join(workingDirectory, configuration.ManifestPath), nil
	}

	discoveredPath, discoveryError := manifest.Discover(workingDirectory, manifest.DefaultManifestGlob)
	if discoveryError == nil {
		return discoveredPath, nil
	}
	if !errors.Is(discoveryError, manifest.ErrManifestNotFound) {
		return "", discoveryError
	}

	packageName := configuration.PackageName
	if len(packageName) == 0 {
		packageName = filepath.Base(workingDirectory)
	}
	return filepath.Join(workingDirectory, packageName+podspecExtensionConstant), nil
}

// resolvePackageName prefers the configured name and falls back to the manifest file name.
func resolvePackageName(configuration ReleaseConfiguration, manifestPath string) string {
	if len(configuration.PackageName) > 0 {
		return configuration.PackageName
	}
	return manifest.PackageName(manifestPath)
}
