package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/podrelease/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	remoteNameRequiredMessageConstant           = "remote name must be provided"
	tagNameRequiredMessageConstant              = "tag name must be provided"
	tagMessageFileRequiredMessageConstant       = "tag message file must be provided"
	commitPathsRequiredMessageConstant          = "at least one path must be committed"
	upstreamNotConfiguredMessageConstant        = "current branch has no upstream tracking branch"
	tagLookupFailureTemplateConstant            = "failed to look up tag %s: %w"
	remoteTagLookupFailureTemplateConstant      = "failed to look up tag %s on %s: %w"
	tagListFailureTemplateConstant              = "failed to list tags: %w"
	signingKeyFailureTemplateConstant           = "failed to read signing key: %w"
	fetchFailureTemplateConstant                = "failed to fetch %s: %w"
	revisionFailureTemplateConstant             = "failed to resolve %s: %w"
	commitLogFailureTemplateConstant            = "failed to read commit log for %s: %w"
	commitFailureTemplateConstant               = "failed to commit %s: %w"
	tagCreateFailureTemplateConstant            = "failed to create tag %s: %w"
	tagPushFailureTemplateConstant              = "failed to push tag %s to %s: %w"
	branchPushFailureTemplateConstant           = "failed to push HEAD to %s: %w"
	remoteURLFailureTemplateConstant            = "failed to read url of remote %s: %w"
	revisionRangeTemplateConstant               = "%s..HEAD"
	tagReferenceTemplateConstant                = "refs/tags/%s"
	gitFetchSubcommandConstant                  = "fetch"
	gitQuietFlagConstant                        = "--quiet"
	gitTagSubcommandConstant                    = "tag"
	gitListFlagConstant                         = "--list"
	gitLsRemoteSubcommandConstant               = "ls-remote"
	gitTagsFlagConstant                         = "--tags"
	gitSignFlagConstant                         = "--sign"
	gitAnnotateFlagConstant                     = "--annotate"
	gitCleanupStripFlagConstant                 = "--cleanup=strip"
	gitFileFlagConstant                         = "--file"
	gitForceFlagConstant                        = "--force"
	gitConfigSubcommandConstant                 = "config"
	gitGetFlagConstant                          = "--get"
	gitSigningKeySettingConstant                = "user.signingkey"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitVerifyFlagConstant                       = "--verify"
	gitHeadReferenceConstant                    = "HEAD"
	gitUpstreamReferenceConstant                = "@{u}"
	gitLogSubcommandConstant                    = "log"
	gitLogFormatFlagConstant                    = "--pretty=format:%h %s"
	gitCommitSubcommandConstant                 = "commit"
	gitSignCommitFlagConstant                   = "-S"
	gitMessageFlagConstant                      = "-m"
	gitPathSeparatorArgumentConstant            = "--"
	gitPushSubcommandConstant                   = "push"
	gitRemoteSubcommandConstant                 = "remote"
	gitGetURLSubcommandConstant                 = "get-url"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	missingSettingExitCodeConstant              = 1
	outputLineSeparatorConstant                 = "\n"
)

var (
	// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)
	// ErrRemoteNameRequired indicates the repository was constructed without a remote.
	ErrRemoteNameRequired = errors.New(remoteNameRequiredMessageConstant)
	// ErrTagNameRequired indicates an empty tag name was supplied.
	ErrTagNameRequired = errors.New(tagNameRequiredMessageConstant)
	// ErrTagMessageFileRequired indicates a tag was requested without a message file.
	ErrTagMessageFileRequired = errors.New(tagMessageFileRequiredMessageConstant)
	// ErrCommitPathsRequired indicates a commit was requested without paths.
	ErrCommitPathsRequired = errors.New(commitPathsRequiredMessageConstant)
	// ErrUpstreamNotConfigured indicates the current branch does not track a remote branch.
	ErrUpstreamNotConfigured = errors.New(upstreamNotConfiguredMessageConstant)
)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// TagLookup is the outcome of an exact tag query.
type TagLookup int

// Tag lookup outcomes.
const (
	TagNotFound TagLookup = iota
	TagFound
)

// SyncStatus compares the local HEAD with its upstream revision.
type SyncStatus struct {
	LocalRevision    string
	UpstreamRevision string
}

// InSync reports whether both revisions are identical.
func (status SyncStatus) InSync() bool {
	return len(status.LocalRevision) > 0 && status.LocalRevision == status.UpstreamRevision
}

// TagOptions configures a signed annotated tag.
type TagOptions struct {
	Name        string
	MessageFile string
	Force       bool
}

// Repository performs release operations on a git working tree.
type Repository struct {
	executor         GitExecutor
	workingDirectory string
	remote           string
}

// NewRepository constructs a Repository for workingDirectory publishing to remote.
func NewRepository(executor GitExecutor, workingDirectory string, remote string) (*Repository, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return nil, ErrRemoteNameRequired
	}
	return &Repository{executor: executor, workingDirectory: workingDirectory, remote: trimmedRemote}, nil
}

// Remote returns the name of the remote releases are pushed to.
func (repository *Repository) Remote() string {
	return repository.remote
}

// LookupTag checks whether tag exists by exact name, locally or on the release remote.
// The remote is queried only when the tag is not present locally.
func (repository *Repository) LookupTag(executionContext context.Context, tag string) (TagLookup, error) {
	if len(strings.TrimSpace(tag)) == 0 {
		return TagNotFound, ErrTagNameRequired
	}
	result, executionError := repository.run(executionContext, gitTagSubcommandConstant, gitListFlagConstant, tag)
	if executionError != nil {
		return TagNotFound, fmt.Errorf(tagLookupFailureTemplateConstant, tag, executionError)
	}
	for _, line := range splitOutputLines(result.StandardOutput) {
		if line == tag {
			return TagFound, nil
		}
	}

	tagReference := fmt.Sprintf(tagReferenceTemplateConstant, tag)
	remoteResult, remoteError := repository.run(executionContext, gitLsRemoteSubcommandConstant, gitTagsFlagConstant, repository.remote, tagReference)
	if remoteError != nil {
		return TagNotFound, fmt.Errorf(remoteTagLookupFailureTemplateConstant, tag, repository.remote, remoteError)
	}
	for _, line := range splitOutputLines(remoteResult.StandardOutput) {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == tagReference {
			return TagFound, nil
		}
	}
	return TagNotFound, nil
}

// ListTags returns every local tag name.
func (repository *Repository) ListTags(executionContext context.Context) ([]string, error) {
	result, executionError := repository.run(executionContext, gitTagSubcommandConstant, gitListFlagConstant)
	if executionError != nil {
		return nil, fmt.Errorf(tagListFailureTemplateConstant, executionError)
	}
	return splitOutputLines(result.StandardOutput), nil
}

// SigningKey returns the configured user.signingkey. The boolean is false when no key is configured.
func (repository *Repository) SigningKey(executionContext context.Context) (string, bool, error) {
	result, executionError := repository.run(executionContext, gitConfigSubcommandConstant, gitGetFlagConstant, gitSigningKeySettingConstant)
	if executionError != nil {
		if exitCode, failed := execshell.ExitCode(executionError); failed && exitCode == missingSettingExitCodeConstant {
			return "", false, nil
		}
		return "", false, fmt.Errorf(signingKeyFailureTemplateConstant, executionError)
	}
	signingKey := strings.TrimSpace(result.StandardOutput)
	return signingKey, len(signingKey) > 0, nil
}

// Fetch updates remote tracking references from the release remote.
func (repository *Repository) Fetch(executionContext context.Context) error {
	if _, executionError := repository.run(executionContext, gitFetchSubcommandConstant, gitQuietFlagConstant, repository.remote); executionError != nil {
		return fmt.Errorf(fetchFailureTemplateConstant, repository.remote, executionError)
	}
	return nil
}

// SyncStatus resolves HEAD and its upstream. Call Fetch first for an up to date answer.
func (repository *Repository) SyncStatus(executionContext context.Context) (SyncStatus, error) {
	localRevision, localError := repository.resolveRevision(executionContext, gitHeadReferenceConstant)
	if localError != nil {
		return SyncStatus{}, localError
	}
	upstreamRevision, upstreamError := repository.resolveRevision(executionContext, gitUpstreamReferenceConstant)
	if upstreamError != nil {
		if _, failed := execshell.ExitCode(upstreamError); failed {
			return SyncStatus{LocalRevision: localRevision}, ErrUpstreamNotConfigured
		}
		return SyncStatus{}, upstreamError
	}
	return SyncStatus{LocalRevision: localRevision, UpstreamRevision: upstreamRevision}, nil
}

func (repository *Repository) resolveRevision(executionContext context.Context, reference string) (string, error) {
	result, executionError := repository.run(executionContext, gitRevParseSubcommandConstant, gitVerifyFlagConstant, reference)
	if executionError != nil {
		return "", fmt.Errorf(revisionFailureTemplateConstant, reference, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

// CommitLog returns one "<short hash> <subject>" line per commit after since.
// An empty since covers all history reachable from HEAD.
func (repository *Repository) CommitLog(executionContext context.Context, since string) ([]string, error) {
	revisionRange := gitHeadReferenceConstant
	if trimmedSince := strings.TrimSpace(since); len(trimmedSince) > 0 {
		revisionRange = fmt.Sprintf(revisionRangeTemplateConstant, trimmedSince)
	}
	result, executionError := repository.run(executionContext, gitLogSubcommandConstant, gitLogFormatFlagConstant, revisionRange)
	if executionError != nil {
		return nil, fmt.Errorf(commitLogFailureTemplateConstant, revisionRange, executionError)
	}
	return splitOutputLines(result.StandardOutput), nil
}

// Commit records a signed commit of the working tree content of paths only.
// Nothing is staged beforehand: a failed commit leaves the index as it was.
func (repository *Repository) Commit(executionContext context.Context, message string, paths ...string) error {
	if len(paths) == 0 {
		return ErrCommitPathsRequired
	}

	commitArguments := append([]string{gitCommitSubcommandConstant, gitSignCommitFlagConstant, gitMessageFlagConstant, message, gitPathSeparatorArgumentConstant}, paths...)
	if _, commitError := repository.runAttached(executionContext, commitArguments...); commitError != nil {
		return fmt.Errorf(commitFailureTemplateConstant, strings.Join(paths, ", "), commitError)
	}
	return nil
}

// CreateTag creates a signed annotated tag whose message is read from options.MessageFile.
// Comment lines in the message file are stripped.
func (repository *Repository) CreateTag(executionContext context.Context, options TagOptions) error {
	if len(strings.TrimSpace(options.Name)) == 0 {
		return ErrTagNameRequired
	}
	if len(strings.TrimSpace(options.MessageFile)) == 0 {
		return ErrTagMessageFileRequired
	}

	arguments := []string{gitTagSubcommandConstant, gitSignFlagConstant, gitAnnotateFlagConstant, gitCleanupStripFlagConstant, gitFileFlagConstant, options.MessageFile}
	if options.Force {
		arguments = append(arguments, gitForceFlagConstant)
	}
	arguments = append(arguments, options.Name)

	if _, executionError := repository.runAttached(executionContext, arguments...); executionError != nil {
		return fmt.Errorf(tagCreateFailureTemplateConstant, options.Name, executionError)
	}
	return nil
}

// PushTag pushes a single tag reference, replacing the remote tag when force is set.
func (repository *Repository) PushTag(executionContext context.Context, tag string, force bool) error {
	if len(strings.TrimSpace(tag)) == 0 {
		return ErrTagNameRequired
	}
	arguments := []string{gitPushSubcommandConstant}
	if force {
		arguments = append(arguments, gitForceFlagConstant)
	}
	arguments = append(arguments, repository.remote, fmt.Sprintf(tagReferenceTemplateConstant, tag))

	if _, executionError := repository.run(executionContext, arguments...); executionError != nil {
		return fmt.Errorf(tagPushFailureTemplateConstant, tag, repository.remote, executionError)
	}
	return nil
}

// PushBranch pushes the current branch to the release remote.
func (repository *Repository) PushBranch(executionContext context.Context) error {
	if _, executionError := repository.run(executionContext, gitPushSubcommandConstant, repository.remote, gitHeadReferenceConstant); executionError != nil {
		return fmt.Errorf(branchPushFailureTemplateConstant, repository.remote, executionError)
	}
	return nil
}

// RemoteURL returns the configured URL of the release remote.
func (repository *Repository) RemoteURL(executionContext context.Context) (string, error) {
	result, executionError := repository.run(executionContext, gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, repository.remote)
	if executionError != nil {
		return "", fmt.Errorf(remoteURLFailureTemplateConstant, repository.remote, executionError)
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

func (repository *Repository) run(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository.workingDirectory,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
}

// runAttached keeps the terminal available so a GPG agent can prompt for a passphrase.
func (repository *Repository) runAttached(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        arguments,
		WorkingDirectory: repository.workingDirectory,
		AttachTerminal:   true,
	})
}

func splitOutputLines(output string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(output, outputLineSeparatorConstant) {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		lines = append(lines, trimmedLine)
	}
	return lines
}
