package releases

import (
	"context"

	"github.com/temirov/podrelease/internal/gitrepo"
	"github.com/temirov/podrelease/internal/manifest"
	"github.com/temirov/podrelease/internal/notes"
)

// VersionControl exposes the git operations a release performs.
type VersionControl interface {
	Remote() string
	LookupTag(executionContext context.Context, tag string) (gitrepo.TagLookup, error)
	SigningKey(executionContext context.Context) (string, bool, error)
	Fetch(executionContext context.Context) error
	SyncStatus(executionContext context.Context) (gitrepo.SyncStatus, error)
	CreateTag(executionContext context.Context, options gitrepo.TagOptions) error
	PushTag(executionContext context.Context, tag string, force bool) error
	PushBranch(executionContext context.Context) error
	RemoteURL(executionContext context.Context) (string, error)
}

// PackageRegistry exposes the packaging tool and the registry behind it.
type PackageRegistry interface {
	ToolName() string
	IsInstalled() bool
	OwnsPackage(executionContext context.Context, packageName string) (bool, error)
	Publish(executionContext context.Context, manifestPath string, extraArguments []string) error
}

// NotesResolver produces the release notes file for a tag.
type NotesResolver interface {
	Resolve(executionContext context.Context, tag string, notesPath string) (notes.Notes, error)
}

// ManifestUpdater sets the version declared by the package manifest.
type ManifestUpdater interface {
	Path() string
	Exists() (bool, error)
	RecoverStale() (bool, error)
	Update(executionContext context.Context, version string) (manifest.UpdateResult, error)
}

// URLOpener opens a URL without waiting for the result.
type URLOpener interface {
	Open(executionContext context.Context, targetURL string) error
}

// Reporter narrates release progress to the user.
type Reporter interface {
	Stage(format string, arguments ...any)
	Detail(format string, arguments ...any)
	Warning(format string, arguments ...any)
	Success(format string, arguments ...any)
}

type silentReporter struct{}

func (silentReporter) Stage(string, ...any)   {}
func (silentReporter) Detail(string, ...any)  {}
func (silentReporter) Warning(string, ...any) {}
func (silentReporter) Success(string, ...any) {}
