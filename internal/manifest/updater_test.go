package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/podrelease/internal/releaseerrors"
)

type recordingCommitter struct {
	messages      []string
	paths         [][]string
	commitError   error
	observedBytes []string
	afterCommit   func()
}

func (committer *recordingCommitter) Commit(_ context.Context, message string, paths ...string) error {
	committer.messages = append(committer.messages, message)
	committer.paths = append(committer.paths, paths)
	for _, path := range paths {
		content, _ := os.ReadFile(path)
		committer.observedBytes = append(committer.observedBytes, string(content))
	}
	if committer.afterCommit != nil {
		committer.afterCommit()
	}
	return committer.commitError
}

func TestUpdaterUpdatesAndCommits(t *testing.T) {
	manifestPath := writeTestManifest(t, testManifestContentConstant)
	committer := &recordingCommitter{}
	updater, constructionError := NewUpdater(UpdaterOptions{Path: manifestPath}, committer)
	require.NoError(t, constructionError)

	result, updateError := updater.Update(context.Background(), "1.1.0")
	require.NoError(t, updateError)
	require.True(t, result.Committed)
	require.Equal(t, "1.0.0", result.PreviousVersion)

	require.Equal(t, []string{"Bump version to 1.1.0"}, committer.messages)
	require.Equal(t, [][]string{{manifestPath}}, committer.paths)
	require.Contains(t, committer.observedBytes[0], "spec.version = '1.1.0'")
	require.NoFileExists(t, manifestPath+DefaultBackupSuffix)
}

func TestUpdaterSkipsWhenVersionMatches(t *testing.T) {
	manifestPath := writeTestManifest(t, testManifestContentConstant)
	committer := &recordingCommitter{}
	updater, constructionError := NewUpdater(UpdaterOptions{Path: manifestPath}, committer)
	require.NoError(t, constructionError)

	result, updateError := updater.Update(context.Background(), "1.0.0")
	require.NoError(t, updateError)
	require.False(t, result.Committed)
	require.Empty(t, committer.messages)
}

func TestUpdaterRestoresManifestWhenCommitFails(t *testing.T) {
	manifestPath := writeTestManifest(t, testManifestContentConstant)
	commitFailure := errors.New("gpg failed to sign the data")
	committer := &recordingCommitter{commitError: commitFailure}
	updater, constructionError := NewUpdater(UpdaterOptions{Path: manifestPath, BackupSuffix: ".orig"}, committer)
	require.NoError(t, constructionError)

	_, updateError := updater.Update(context.Background(), "1.1.0")
	require.Error(t, updateError)
	require.ErrorIs(t, updateError, releaseerrors.ErrManifestUpdate)
	require.ErrorIs(t, updateError, commitFailure)

	content, readError := os.ReadFile(manifestPath)
	require.NoError(t, readError)
	require.Equal(t, testManifestContentConstant, string(content))
	require.NoFileExists(t, manifestPath+DefaultBackupSuffix)
}

func TestUpdaterKeepsCommittedVersionWhenBackupRemovalFails(t *testing.T) {
	manifestPath := writeTestManifest(t, testManifestContentConstant)
	backupPath := manifestPath + DefaultBackupSuffix
	committer := &recordingCommitter{afterCommit: func() {
		require.NoError(t, os.Remove(backupPath))
		require.NoError(t, os.MkdirAll(filepath.Join(backupPath, "locked"), 0o755))
	}}
	updater, constructionError := NewUpdater(UpdaterOptions{Path: manifestPath}, committer)
	require.NoError(t, constructionError)

	result, updateError := updater.Update(context.Background(), "1.1.0")
	require.NoError(t, updateError)
	require.True(t, result.Committed)
	require.Equal(t, backupPath, result.BackupPath)
	require.Error(t, result.CleanupError)

	content, readError := os.ReadFile(manifestPath)
	require.NoError(t, readError)
	require.Contains(t, string(content), "spec.version = '1.1.0'")
}

func TestUpdaterFailsWithoutVersionLine(t *testing.T) {
	manifestPath := writeTestManifest(t, "Pod::Spec.new do |spec|\nend\n")
	committer := &recordingCommitter{}
	updater, constructionError := NewUpdater(UpdaterOptions{Path: manifestPath}, committer)
	require.NoError(t, constructionError)

	_, updateError := updater.Update(context.Background(), "1.1.0")
	require.ErrorIs(t, updateError, releaseerrors.ErrManifestUpdate)
	require.ErrorIs(t, updateError, ErrVersionLineNotFound)
	require.Empty(t, committer.messages)
}

func TestUpdaterExistsAndRecoverStale(t *testing.T) {
	directory := t.TempDir()
	manifestPath := filepath.Join(directory, testManifestFileNameConstant)
	updater, constructionError := NewUpdater(UpdaterOptions{Path: manifestPath}, &recordingCommitter{})
	require.NoError(t, constructionError)

	exists, existsError := updater.Exists()
	require.NoError(t, existsError)
	require.False(t, exists)

	require.NoError(t, os.WriteFile(manifestPath+DefaultBackupSuffix, []byte(testManifestContentConstant), 0o644))
	recovered, recoverError := updater.RecoverStale()
	require.NoError(t, recoverError)
	require.True(t, recovered)

	exists, existsError = updater.Exists()
	require.NoError(t, existsError)
	require.True(t, exists)
}

func TestNewUpdaterValidatesInputs(t *testing.T) {
	_, committerError := NewUpdater(UpdaterOptions{Path: "Demo.podspec"}, nil)
	require.ErrorIs(t, committerError, ErrCommitterNotConfigured)

	_, pathError := NewUpdater(UpdaterOptions{Path: "  "}, &recordingCommitter{})
	require.ErrorIs(t, pathError, ErrManifestPathRequired)
}

func TestDiscoverAndPackageName(t *testing.T) {
	directory := t.TempDir()

	_, missingError := Discover(directory, "")
	require.ErrorIs(t, missingError, ErrManifestNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(directory, "Demo.podspec"), []byte(testManifestContentConstant), 0o644))
	discovered, discoverError := Discover(directory, DefaultManifestGlob)
	require.NoError(t, discoverError)
	require.Equal(t, filepath.Join(directory, "Demo.podspec"), discovered)

	require.NoError(t, os.WriteFile(filepath.Join(directory, "Other.podspec"), []byte(testManifestContentConstant), 0o644))
	_, ambiguousError := Discover(directory, "")
	require.ErrorIs(t, ambiguousError, ErrManifestAmbiguous)

	require.Equal(t, "Demo", PackageName("/work/Demo.podspec"))
	require.Equal(t, "Demo", PackageName("Demo.podspec.json"))
	require.Equal(t, "Demo", PackageName("Demo"))
}
