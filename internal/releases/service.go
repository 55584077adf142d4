package releases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/podrelease/internal/gitrepo"
	"github.com/temirov/podrelease/internal/notes"
	"github.com/temirov/podrelease/internal/releaseerrors"
	"github.com/temirov/podrelease/internal/version"
)

const (
	versionControlMissingMessageConstant = "version control not configured"
	registryMissingMessageConstant       = "package registry not configured"
	notesResolverMissingMessageConstant  = "release notes resolver not configured"
	manifestMissingMessageConstant       = "manifest updater not configured"
	packageNameRequiredMessageConstant   = "package name must be provided"
	tagFieldNameConstant                 = "tag"
	manifestFieldNameConstant            = "manifest"
	packageFieldNameConstant             = "package"
	notesFieldNameConstant               = "release_notes"
	committedFieldNameConstant           = "manifest_committed"
	publishOnlyFieldNameConstant         = "publish_only"
	urlFieldNameConstant                 = "url"
	releaseStartedLogMessageConstant     = "release started"
	releaseCompletedLogMessageConstant   = "release completed"
	announcementLogMessageConstant       = "release announcement unavailable"
	validationStageTemplateConstant      = "Validating release %s of %s"
	preconditionsStageConstant           = "Checking release preconditions"
	notesStageConstant                   = "Resolving release notes"
	manifestStageTemplateConstant        = "Setting %s to version %s"
	tagStageTemplateConstant             = "Tagging and pushing %s to %s"
	publishStageTemplateConstant         = "Publishing %s to the registry"
	finalizeStageConstant                = "Finishing up"
	draftedNotesDetailTemplate           = "Drafted release notes in %s"
	existingNotesDetailTemplate          = "Using release notes from %s"
	manifestUnchangedDetailTemplate      = "%s already declares version %s"
	manifestCommittedDetailTemplate      = "Committed version %s"
	branchPushedDetailTemplate           = "Pushed HEAD to %s"
	branchSkippedDetailConstant          = "No version commit; branch push skipped"
	tagPushedDetailTemplate              = "Pushed %s"
	announcementDetailTemplate           = "Draft the release announcement at %s"
	announcementWarningTemplate          = "Cannot build the release announcement link: %v"
	browserWarningTemplate               = "Cannot open the browser: %v"
	backupCleanupWarningTemplate         = "Committed the version but cannot remove %s (%v); delete it before the next release"
	backupCleanupLogMessageConstant      = "manifest backup left after commit"
	backupFieldNameConstant              = "backup"
	successTemplateConstant              = "Released %s %s"
	tagCreateFailureTemplateConstant     = "cannot create tag %s"
	tagPushFailureTemplateConstant       = "cannot push tag %s"
	branchPushFailureTemplateConstant    = "tag %s was pushed but the version commit was not; push HEAD to %s manually"
	publishFailureTemplateConstant       = "tag %s was pushed but publishing %s failed; after fixing the cause run `%s`"
	resumeCommandTemplateConstant        = "podrelease %s %s --publish-only"
)

var (
	errVersionControlMissing = errors.New(versionControlMissingMessageConstant)
	errRegistryMissing       = errors.New(registryMissingMessageConstant)
	errNotesResolverMissing  = errors.New(notesResolverMissingMessageConstant)
	errManifestMissing       = errors.New(manifestMissingMessageConstant)
)

// ServiceDependencies describes the collaborators of a release.
type ServiceDependencies struct {
	Logger         *zap.Logger
	VersionControl VersionControl
	Registry       PackageRegistry
	Notes          NotesResolver
	Manifest       ManifestUpdater
	Browser        URLOpener
	Reporter       Reporter
}

// Options configures how a release publishes.
type Options struct {
	PackageName      string
	PublishArguments []string
	OpenBrowser      bool
}

// Result captures the observable outcome of a release.
type Result struct {
	Tag               string
	ReleaseNotesPath  string
	ManifestCommitted bool
	BranchPushed      bool
	Published         bool
	AnnouncementURL   string
}

// Service runs the release workflow.
type Service struct {
	logger         *zap.Logger
	versionControl VersionControl
	registry       PackageRegistry
	notes          NotesResolver
	manifest       ManifestUpdater
	browser        URLOpener
	reporter       Reporter
}

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.VersionControl == nil {
		return nil, errVersionControlMissing
	}
	if dependencies.Registry == nil {
		return nil, errRegistryMissing
	}
	if dependencies.Notes == nil {
		return nil, errNotesResolverMissing
	}
	if dependencies.Manifest == nil {
		return nil, errManifestMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var reporter Reporter = silentReporter{}
	if dependencies.Reporter != nil {
		reporter = dependencies.Reporter
	}

	return &Service{
		logger:         logger,
		versionControl: dependencies.VersionControl,
		registry:       dependencies.Registry,
		notes:          dependencies.Notes,
		manifest:       dependencies.Manifest,
		browser:        dependencies.Browser,
		reporter:       reporter,
	}, nil
}

// Release validates request, checks every precondition, and then commits,
// tags, pushes, and publishes. The first failure stops the run.
// With request.PublishOnly only the registry publish and the finalizer run,
// against a tag that must already exist.
func (service *Service) Release(executionContext context.Context, request version.ReleaseRequest, options Options) (Result, error) {
	tag := request.Tag()
	if validationError := version.ValidateTag(tag); validationError != nil {
		return Result{}, validationError
	}
	if len(strings.TrimSpace(options.PackageName)) == 0 {
		return Result{}, releaseerrors.New(releaseerrors.KindUsage, packageNameRequiredMessageConstant)
	}

	service.logger.Info(releaseStartedLogMessageConstant,
		zap.String(tagFieldNameConstant, tag),
		zap.String(packageFieldNameConstant, options.PackageName),
		zap.String(manifestFieldNameConstant, service.manifest.Path()),
		zap.Bool(publishOnlyFieldNameConstant, request.PublishOnly),
	)
	service.reporter.Stage(validationStageTemplateConstant, tag, options.PackageName)

	if request.PublishOnly {
		return service.resumePublish(executionContext, request, options)
	}

	service.reporter.Stage(preconditionsStageConstant)
	if preconditionError := service.checkPreconditions(executionContext, request, options); preconditionError != nil {
		return Result{}, preconditionError
	}

	result := Result{Tag: tag}

	service.reporter.Stage(notesStageConstant)
	releaseNotes, notesError := service.notes.Resolve(executionContext, tag, request.ReleaseNotesPath)
	if notesError != nil {
		return result, notesError
	}
	result.ReleaseNotesPath = releaseNotes.Path
	if releaseNotes.Drafted {
		service.reporter.Detail(draftedNotesDetailTemplate, releaseNotes.Path)
	} else {
		service.reporter.Detail(existingNotesDetailTemplate, releaseNotes.Path)
	}

	service.reporter.Stage(manifestStageTemplateConstant, service.manifest.Path(), request.Version)
	updateResult, updateError := service.manifest.Update(executionContext, request.Version)
	if updateError != nil {
		return result, updateError
	}
	result.ManifestCommitted = updateResult.Committed
	if updateResult.CleanupError != nil {
		service.logger.Warn(backupCleanupLogMessageConstant, zap.String(backupFieldNameConstant, updateResult.BackupPath), zap.Error(updateResult.CleanupError))
		service.reporter.Warning(backupCleanupWarningTemplate, updateResult.BackupPath, updateResult.CleanupError)
	}
	if updateResult.Committed {
		service.reporter.Detail(manifestCommittedDetailTemplate, request.Version)
	} else {
		service.reporter.Detail(manifestUnchangedDetailTemplate, service.manifest.Path(), request.Version)
	}

	if publishError := service.publishToVersionControl(executionContext, request, releaseNotes, &result); publishError != nil {
		return result, publishError
	}
	if publishError := service.publishToRegistry(executionContext, request, options, &result); publishError != nil {
		return result, publishError
	}

	service.finalize(executionContext, tag, releaseNotes.Summary(), options, &result)
	return result, nil
}

func (service *Service) checkPreconditions(executionContext context.Context, request version.ReleaseRequest, options Options) error {
	if toolingError := service.checkTooling(); toolingError != nil {
		return toolingError
	}
	if tagError := service.checkTag(executionContext, request.Tag(), request.ForceTag, false); tagError != nil {
		return tagError
	}
	if manifestError := service.checkManifest(); manifestError != nil {
		return manifestError
	}
	if signingError := service.checkSigningKey(executionContext); signingError != nil {
		return signingError
	}
	if ownershipError := service.checkOwnership(executionContext, options.PackageName); ownershipError != nil {
		return ownershipError
	}
	return service.checkSync(executionContext)
}

func (service *Service) resumePublish(executionContext context.Context, request version.ReleaseRequest, options Options) (Result, error) {
	tag := request.Tag()
	service.reporter.Stage(preconditionsStageConstant)
	if toolingError := service.checkTooling(); toolingError != nil {
		return Result{}, toolingError
	}
	if tagError := service.checkTag(executionContext, tag, request.ForceTag, true); tagError != nil {
		return Result{}, tagError
	}
	if manifestError := service.checkManifest(); manifestError != nil {
		return Result{}, manifestError
	}
	if ownershipError := service.checkOwnership(executionContext, options.PackageName); ownershipError != nil {
		return Result{}, ownershipError
	}

	result := Result{Tag: tag, ReleaseNotesPath: request.ReleaseNotesPath}
	if publishError := service.publishToRegistry(executionContext, request, options, &result); publishError != nil {
		return result, publishError
	}
	service.finalize(executionContext, tag, "", options, &result)
	return result, nil
}

func (service *Service) publishToVersionControl(executionContext context.Context, request version.ReleaseRequest, releaseNotes notes.Notes, result *Result) error {
	tag := request.Tag()
	remote := service.versionControl.Remote()
	service.reporter.Stage(tagStageTemplateConstant, tag, remote)

	tagOptions := gitrepo.TagOptions{Name: tag, MessageFile: releaseNotes.Path, Force: request.ForceTag}
	if tagError := service.versionControl.CreateTag(executionContext, tagOptions); tagError != nil {
		return releaseerrors.Wrap(releaseerrors.KindPublish, tagError, tagCreateFailureTemplateConstant, tag)
	}
	if pushError := service.versionControl.PushTag(executionContext, tag, request.ForceTag); pushError != nil {
		return releaseerrors.Wrap(releaseerrors.KindPublish, pushError, tagPushFailureTemplateConstant, tag)
	}
	service.reporter.Detail(tagPushedDetailTemplate, tag)

	if !result.ManifestCommitted {
		service.reporter.Detail(branchSkippedDetailConstant)
		return nil
	}
	if pushError := service.versionControl.PushBranch(executionContext); pushError != nil {
		return releaseerrors.Wrap(releaseerrors.KindPublish, pushError, branchPushFailureTemplateConstant, tag, remote)
	}
	result.BranchPushed = true
	service.reporter.Detail(branchPushedDetailTemplate, remote)
	return nil
}

func (service *Service) publishToRegistry(executionContext context.Context, request version.ReleaseRequest, options Options, result *Result) error {
	manifestPath := service.manifest.Path()
	service.reporter.Stage(publishStageTemplateConstant, manifestPath)
	if publishError := service.registry.Publish(executionContext, manifestPath, options.PublishArguments); publishError != nil {
		resumeCommand := fmt.Sprintf(resumeCommandTemplateConstant, request.Version, request.ReleaseNotesPath)
		return releaseerrors.Wrap(releaseerrors.KindPublish, publishError, publishFailureTemplateConstant, request.Tag(), manifestPath, resumeCommand)
	}
	result.Published = true
	return nil
}

// finalize points the user at the release announcement. Nothing here fails the release.
func (service *Service) finalize(executionContext context.Context, tag string, body string, options Options, result *Result) {
	service.reporter.Stage(finalizeStageConstant)

	announcementURL, announcementError := service.announcementURL(executionContext, tag, body)
	if announcementError != nil {
		service.logger.Warn(announcementLogMessageConstant, zap.Error(announcementError))
		service.reporter.Warning(announcementWarningTemplate, announcementError)
	} else {
		result.AnnouncementURL = announcementURL
		service.reporter.Detail(announcementDetailTemplate, announcementURL)
		if options.OpenBrowser && service.browser != nil {
			if openError := service.browser.Open(executionContext, announcementURL); openError != nil {
				service.reporter.Warning(browserWarningTemplate, openError)
			}
		}
	}

	service.logger.Info(releaseCompletedLogMessageConstant,
		zap.String(tagFieldNameConstant, tag),
		zap.String(notesFieldNameConstant, result.ReleaseNotesPath),
		zap.Bool(committedFieldNameConstant, result.ManifestCommitted),
		zap.String(urlFieldNameConstant, result.AnnouncementURL),
	)
	service.reporter.Success(successTemplateConstant, options.PackageName, tag)
}

func (service *Service) announcementURL(executionContext context.Context, tag string, body string) (string, error) {
	remoteURL, remoteError := service.versionControl.RemoteURL(executionContext)
	if remoteError != nil {
		return "", remoteError
	}
	return AnnouncementURL(remoteURL, tag, body)
}
