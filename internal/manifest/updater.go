package manifest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/podrelease/internal/releaseerrors"
)

const (
	commitMessageTemplateConstant       = "Bump version to %s"
	committerMissingMessageConstant     = "manifest committer not configured"
	manifestPathRequiredMessageConstant = "manifest path must be provided"
	readVersionFailureTemplateConstant  = "cannot read the version of %s"
	updateFailureTemplateConstant       = "cannot update %s to version %s"
	rollbackFailureTemplateConstant     = "%w (restoring %s also failed: %v)"
)

var (
	// ErrCommitterNotConfigured indicates the updater was constructed without a committer.
	ErrCommitterNotConfigured = errors.New(committerMissingMessageConstant)
	// ErrManifestPathRequired indicates the updater was constructed without a manifest path.
	ErrManifestPathRequired = errors.New(manifestPathRequiredMessageConstant)
)

// Committer records a commit restricted to the given paths.
type Committer interface {
	Commit(executionContext context.Context, message string, paths ...string) error
}

// UpdaterOptions configures an Updater.
type UpdaterOptions struct {
	Path         string
	BackupSuffix string
	VersionLine  *VersionLine
}

// UpdateResult reports what Update changed.
// CleanupError is set when the version commit succeeded but the backup could not be removed;
// the backup must then be deleted by hand before the next release restores it.
type UpdateResult struct {
	PreviousVersion string
	Committed       bool
	BackupPath      string
	CleanupError    error
}

// Updater sets the manifest version and commits the change.
type Updater struct {
	path         string
	backupSuffix string
	versionLine  *VersionLine
	committer    Committer
}

// NewUpdater constructs an Updater. A nil VersionLine selects DefaultVersionLinePattern.
func NewUpdater(options UpdaterOptions, committer Committer) (*Updater, error) {
	if committer == nil {
		return nil, ErrCommitterNotConfigured
	}
	if len(strings.TrimSpace(options.Path)) == 0 {
		return nil, ErrManifestPathRequired
	}
	versionLine := options.VersionLine
	if versionLine == nil {
		defaultVersionLine, patternError := NewVersionLine(DefaultVersionLinePattern)
		if patternError != nil {
			return nil, patternError
		}
		versionLine = defaultVersionLine
	}
	return &Updater{path: options.Path, backupSuffix: options.BackupSuffix, versionLine: versionLine, committer: committer}, nil
}

// Path returns the manifest location.
func (updater *Updater) Path() string {
	return updater.path
}

// Exists reports whether the manifest is present.
func (updater *Updater) Exists() (bool, error) {
	return fileExists(updater.path)
}

// RecoverStale restores a backup left by an interrupted run.
func (updater *Updater) RecoverStale() (bool, error) {
	return updater.newTransaction().RecoverStale()
}

// Update sets the manifest version to version and commits it.
// A manifest already at version is left alone and nothing is committed.
// Any failure after the backup restores the manifest byte for byte.
func (updater *Updater) Update(executionContext context.Context, version string) (UpdateResult, error) {
	content, _, readError := readFile(updater.path)
	if readError != nil {
		return UpdateResult{}, releaseerrors.Wrap(releaseerrors.KindManifestUpdate, readError, readVersionFailureTemplateConstant, updater.path)
	}
	currentVersion, versionError := updater.versionLine.Read(content)
	if versionError != nil {
		return UpdateResult{}, releaseerrors.Wrap(releaseerrors.KindManifestUpdate, versionError, readVersionFailureTemplateConstant, updater.path)
	}
	if currentVersion == version {
		return UpdateResult{PreviousVersion: currentVersion, Committed: false}, nil
	}

	transaction := updater.newTransaction()
	if applyError := updater.applyAndCommit(executionContext, transaction, version); applyError != nil {
		if rollbackError := transaction.Rollback(); rollbackError != nil {
			applyError = fmt.Errorf(rollbackFailureTemplateConstant, applyError, updater.path, rollbackError)
		}
		return UpdateResult{}, releaseerrors.Wrap(releaseerrors.KindManifestUpdate, applyError, updateFailureTemplateConstant, updater.path, version)
	}

	result := UpdateResult{PreviousVersion: currentVersion, Committed: true}
	if cleanupError := transaction.Commit(); cleanupError != nil {
		result.BackupPath = transaction.BackupPath()
		result.CleanupError = cleanupError
	}
	return result, nil
}

// applyAndCommit edits the manifest and records the version commit.
// The backup is kept; Update discards it only after the commit exists.
func (updater *Updater) applyAndCommit(executionContext context.Context, transaction *Transaction, version string) error {
	if snapshotError := transaction.Snapshot(); snapshotError != nil {
		return snapshotError
	}
	editError := transaction.Apply(func(content []byte) ([]byte, error) {
		return updater.versionLine.Replace(content, version)
	})
	if editError != nil {
		return editError
	}
	return updater.committer.Commit(executionContext, CommitMessage(version), updater.path)
}

func (updater *Updater) newTransaction() *Transaction {
	return NewTransaction(updater.path, updater.backupSuffix)
}

// CommitMessage returns the message of the version bump commit.
func CommitMessage(version string) string {
	return fmt.Sprintf(commitMessageTemplateConstant, version)
}
