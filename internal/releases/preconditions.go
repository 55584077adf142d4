package releases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/podrelease/internal/gitrepo"
	"github.com/temirov/podrelease/internal/releaseerrors"
)

const (
	toolingMissingTemplateConstant      = "%s is not installed or not on PATH"
	tagLookupFailureTemplateConstant    = "cannot check whether tag %s exists: %w"
	duplicateTagTemplateConstant        = "tag %s already exists; pass --force to replace it"
	missingTagTemplateConstant          = "tag %s does not exist; --publish-only resumes a release whose tag was already pushed"
	replacingTagWarningTemplateConstant = "Tag %s already exists and will be replaced"
	staleBackupWarningTemplateConstant  = "Restored %s from a backup left by an interrupted release"
	staleBackupFailureTemplateConstant  = "cannot restore %s from its backup"
	manifestInspectTemplateConstant     = "cannot inspect manifest %s"
	manifestMissingTemplateConstant     = "manifest %s does not exist"
	signingKeyFailureTemplateConstant   = "cannot read the git signing key: %w"
	signingKeyMissingMessageConstant    = "no signing key configured; set one with `git config user.signingkey <key id>` (unsigned releases are not supported)"
	ownershipFailureTemplateConstant    = "cannot verify ownership of %s; sign in with `pod trunk register`"
	ownershipMissingTemplateConstant    = "the current trunk session does not own %s"
	fetchFailureTemplateConstant        = "cannot fetch %s to compare branches"
	upstreamMissingTemplateConstant     = "the current branch does not track a branch on %s; push it with --set-upstream first"
	syncFailureTemplateConstant         = "cannot compare HEAD with its upstream"
	outOfSyncTemplateConstant           = "HEAD %s differs from upstream %s; pull or push before releasing"
	signingKeyDetailTemplate            = "Signing with key %s"
	ownershipDetailTemplate             = "Trunk session owns %s"
	syncDetailTemplate                  = "HEAD matches %s at %s"
	toolDetailTemplate                  = "Found %s"
	staleBackupLogMessageConstant       = "restored stale manifest backup"
	outOfSyncLogMessageConstant         = "branch differs from upstream"
	revisionFieldNameConstant           = "revision"
	upstreamRevisionFieldNameConstant   = "upstream_revision"
)

// checkTooling verifies the packaging tool is on PATH.
func (service *Service) checkTooling() error {
	toolName := service.registry.ToolName()
	if !service.registry.IsInstalled() {
		return releaseerrors.New(releaseerrors.KindToolingMissing, toolingMissingTemplateConstant, toolName)
	}
	service.reporter.Detail(toolDetailTemplate, toolName)
	return nil
}

// checkTag enforces tag uniqueness. In publish-only mode the tag must already exist.
func (service *Service) checkTag(executionContext context.Context, tag string, force bool, publishOnly bool) error {
	lookup, lookupError := service.versionControl.LookupTag(executionContext, tag)
	if lookupError != nil {
		return fmt.Errorf(tagLookupFailureTemplateConstant, tag, lookupError)
	}
	switch {
	case publishOnly && lookup != gitrepo.TagFound:
		return releaseerrors.New(releaseerrors.KindTagMissing, missingTagTemplateConstant, tag)
	case publishOnly:
		return nil
	case lookup == gitrepo.TagFound && !force:
		return releaseerrors.New(releaseerrors.KindDuplicateTag, duplicateTagTemplateConstant, tag)
	case lookup == gitrepo.TagFound:
		service.reporter.Warning(replacingTagWarningTemplateConstant, tag)
	}
	return nil
}

// checkManifest restores a stale backup, then requires the manifest to exist.
func (service *Service) checkManifest() error {
	manifestPath := service.manifest.Path()
	recovered, recoverError := service.manifest.RecoverStale()
	if recoverError != nil {
		return releaseerrors.Wrap(releaseerrors.KindManifestUpdate, recoverError, staleBackupFailureTemplateConstant, manifestPath)
	}
	if recovered {
		service.reporter.Warning(staleBackupWarningTemplateConstant, manifestPath)
		service.logger.Warn(staleBackupLogMessageConstant, zap.String(manifestFieldNameConstant, manifestPath))
	}

	exists, existsError := service.manifest.Exists()
	if existsError != nil {
		return releaseerrors.Wrap(releaseerrors.KindManifestMissing, existsError, manifestInspectTemplateConstant, manifestPath)
	}
	if !exists {
		return releaseerrors.New(releaseerrors.KindManifestMissing, manifestMissingTemplateConstant, manifestPath)
	}
	return nil
}

// checkSigningKey requires a configured signing identity.
func (service *Service) checkSigningKey(executionContext context.Context) error {
	signingKey, configured, keyError := service.versionControl.SigningKey(executionContext)
	if keyError != nil {
		return fmt.Errorf(signingKeyFailureTemplateConstant, keyError)
	}
	if !configured {
		return releaseerrors.New(releaseerrors.KindSigningKeyMissing, signingKeyMissingMessageConstant)
	}
	service.reporter.Detail(signingKeyDetailTemplate, signingKey)
	return nil
}

// checkOwnership requires the registry session to own packageName.
func (service *Service) checkOwnership(executionContext context.Context, packageName string) error {
	owned, ownershipError := service.registry.OwnsPackage(executionContext, packageName)
	if ownershipError != nil {
		return releaseerrors.Wrap(releaseerrors.KindOwnership, ownershipError, ownershipFailureTemplateConstant, packageName)
	}
	if !owned {
		return releaseerrors.New(releaseerrors.KindOwnership, ownershipMissingTemplateConstant, packageName)
	}
	service.reporter.Detail(ownershipDetailTemplate, packageName)
	return nil
}

// checkSync fetches the remote and requires HEAD to equal its upstream.
func (service *Service) checkSync(executionContext context.Context) error {
	remote := service.versionControl.Remote()
	if fetchError := service.versionControl.Fetch(executionContext); fetchError != nil {
		return releaseerrors.Wrap(releaseerrors.KindOutOfSync, fetchError, fetchFailureTemplateConstant, remote)
	}
	status, statusError := service.versionControl.SyncStatus(executionContext)
	if errors.Is(statusError, gitrepo.ErrUpstreamNotConfigured) {
		return releaseerrors.Wrap(releaseerrors.KindOutOfSync, statusError, upstreamMissingTemplateConstant, remote)
	}
	if statusError != nil {
		return releaseerrors.Wrap(releaseerrors.KindOutOfSync, statusError, syncFailureTemplateConstant)
	}
	if !status.InSync() {
		service.logger.Debug(outOfSyncLogMessageConstant, zap.String(revisionFieldNameConstant, status.LocalRevision), zap.String(upstreamRevisionFieldNameConstant, status.UpstreamRevision))
		return releaseerrors.New(releaseerrors.KindOutOfSync, outOfSyncTemplateConstant, status.LocalRevision, status.UpstreamRevision)
	}
	service.reporter.Detail(syncDetailTemplate, remote, status.LocalRevision)
	return nil
}
