package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/podrelease/internal/browser"
	"github.com/temirov/podrelease/internal/editor"
	"github.com/temirov/podrelease/internal/execshell"
	"github.com/temirov/podrelease/internal/gitrepo"
	"github.com/temirov/podrelease/internal/manifest"
	"github.com/temirov/podrelease/internal/notes"
	"github.com/temirov/podrelease/internal/registry"
	"github.com/temirov/podrelease/internal/releaseerrors"
	"github.com/temirov/podrelease/internal/releases"
	"github.com/temirov/podrelease/internal/ui"
	"github.com/temirov/podrelease/internal/utils"
	flagutils "github.com/temirov/podrelease/internal/utils/flags"
	pathutils "github.com/temirov/podrelease/internal/utils/path"
	"github.com/temirov/podrelease/internal/version"
)

const (
	applicationNameConstant                 = "podrelease"
	applicationUsageConstant                = applicationNameConstant + " <version> <release_notes_path>"
	applicationShortDescriptionConstant     = "Cut a signed release of a CocoaPods library"
	applicationLongDescriptionConstant      = "podrelease validates the version, checks the tooling, tag, manifest, signing key, trunk ownership, and branch sync, then bumps the podspec version, pushes a signed tag annotated with the release notes, and publishes the podspec to CocoaPods trunk. A missing release notes file is drafted from the commit log and opened in your editor."
	applicationExampleConstant              = "podrelease 1.2.0 notes/1.2.0.md\npodrelease 1.2.0 notes/1.2.0.md --force\npodrelease 1.2.0 notes/1.2.0.md --publish-only"
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	forceFlagNameConstant                   = "force"
	forceFlagShorthandConstant              = "f"
	forceFlagUsageConstant                  = "Replace an existing tag of the same name and force-push it."
	publishOnlyFlagNameConstant             = "publish-only"
	publishOnlyFlagUsageConstant            = "Only publish to trunk; resumes a release whose tag was already pushed."
	openBrowserFlagNameConstant             = "open-browser"
	openBrowserFlagUsageConstant            = "Open the pre-filled release announcement page when done."
	environmentPrefixConstant               = "PODRELEASE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	maximumArgumentCountConstant            = 2
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	manifestFieldConstant                   = "manifest"
	workingDirectoryFieldConstant           = "working_directory"
	releaseConfiguredMessageConstant        = "release configured"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationMessageConstant           = "unable to create logger"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	workingDirectoryErrorTemplateConstant   = "unable to determine the working directory: %w"
	tooManyArgumentsTemplateConstant        = "expected <version> and <release_notes_path>, received %d arguments"
	manifestResolutionTemplateConstant      = "cannot choose a manifest; set release.manifest_path"
	versionPatternTemplateConstant          = "invalid release.version_line_pattern"
	editorCommandTemplateConstant           = "invalid editor command %q"
	invalidFlagsTemplateConstant            = "invalid flags"
)

// applicationVersion is replaced at build time with -ldflags "-X github.com/temirov/podrelease/cmd/cli.applicationVersion=<version>".
var applicationVersion = "dev"

// ApplicationDependencies replaces process-level collaborators. Zero values select the operating system defaults.
type ApplicationDependencies struct {
	Output            io.Writer
	CommandRunner     execshell.CommandRunner
	ExecutableLocator registry.ExecutableLocator
	BrowserHandler    browser.URLHandler
	EnvironmentLookup editor.EnvironmentLookup
	WorkingDirectory  string
}

// Application wires the Cobra root command, configuration loader, structured logger, and release service.
type Application struct {
	rootCommand           *cobra.Command
	dependencies          ApplicationDependencies
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	forceTagFlagValue     bool
	publishOnlyFlagValue  bool
	openBrowserFlagValue  bool
}

// NewApplication assembles a CLI application bound to the operating system.
func NewApplication() *Application {
	return NewApplicationWithDependencies(ApplicationDependencies{})
}

// NewApplicationWithDependencies assembles a CLI application using the provided collaborators.
func NewApplicationWithDependencies(dependencies ApplicationDependencies) *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration)

	application := &Application{
		dependencies:        dependencies,
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUsageConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Example:       applicationExampleConstant,
		Version:       applicationVersion,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRelease(command, arguments)
		},
	}
	cobraCommand.SetFlagErrorFunc(func(command *cobra.Command, flagError error) error {
		_ = command.Help()
		return releaseerrors.Wrap(releaseerrors.KindUsage, flagError, invalidFlagsTemplateConstant)
	})
	if dependencies.Output != nil {
		cobraCommand.SetOut(dependencies.Output)
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.Flags().BoolVarP(&application.forceTagFlagValue, forceFlagNameConstant, forceFlagShorthandConstant, false, forceFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.publishOnlyFlagValue, publishOnlyFlagNameConstant, false, publishOnlyFlagUsageConstant)
	flagutils.AddToggleFlag(cobraCommand.Flags(), &application.openBrowserFlagValue, openBrowserFlagNameConstant, true, openBrowserFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the root command and ensures the logger is flushed.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the release command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.ParseLogLevel(application.configuration.Common.LogLevel),
		utils.ParseLogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return releaseerrors.Wrap(releaseerrors.KindUsage, loggerCreationError, loggerCreationMessageConstant)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	return utils.ParseLogFormat(application.configuration.Common.LogFormat) == utils.LogFormatConsole
}

func (application *Application) runRelease(command *cobra.Command, arguments []string) error {
	if len(arguments) > maximumArgumentCountConstant {
		_ = command.Help()
		return releaseerrors.New(releaseerrors.KindUsage, tooManyArgumentsTemplateConstant, len(arguments))
	}
	request, parseError := version.ParseArguments(arguments, application.forceTagFlagValue, application.publishOnlyFlagValue)
	if parseError != nil {
		if errors.Is(parseError, releaseerrors.ErrUsage) {
			_ = command.Help()
		}
		return parseError
	}

	workingDirectory, workingDirectoryError := application.workingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	if !filepath.IsAbs(request.ReleaseNotesPath) {
		request.ReleaseNotesPath = filepath.Join(workingDirectory, request.ReleaseNotesPath)
	}

	releaseConfiguration := application.configuration.Release.Sanitize(pathutils.NewHomeExpander())
	if command.Flags().Changed(openBrowserFlagNameConstant) {
		releaseConfiguration.OpenBrowser = application.openBrowserFlagValue
	}

	manifestPath, manifestError := resolveManifestPath(releaseConfiguration, workingDirectory)
	if manifestError != nil {
		return releaseerrors.Wrap(releaseerrors.KindUsage, manifestError, manifestResolutionTemplateConstant)
	}
	application.logger.Debug(releaseConfiguredMessageConstant, zap.String(manifestFieldConstant, manifestPath), zap.String(workingDirectoryFieldConstant, workingDirectory))

	service, serviceError := application.buildService(workingDirectory, manifestPath, releaseConfiguration, command.OutOrStdout())
	if serviceError != nil {
		return serviceError
	}

	_, releaseError := service.Release(command.Context(), request, releases.Options{
		PackageName:      resolvePackageName(releaseConfiguration, manifestPath),
		PublishArguments: releaseConfiguration.PublishArguments,
		OpenBrowser:      releaseConfiguration.OpenBrowser,
	})
	return releaseError
}

func (application *Application) buildService(workingDirectory string, manifestPath string, configuration ReleaseConfiguration, output io.Writer) (*releases.Service, error) {
	var observer execshell.CommandEventObserver
	if application.humanReadableLoggingEnabled() {
		observer = ui.NewConsoleCommandEventLogger(application.logger)
	}
	commandRunner := application.dependencies.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(application.logger, commandRunner, observer)
	if executorError != nil {
		return nil, executorError
	}

	repository, repositoryError := gitrepo.NewRepository(shellExecutor, workingDirectory, configuration.Remote)
	if repositoryError != nil {
		return nil, repositoryError
	}
	trunkClient, trunkError := registry.NewTrunkClient(shellExecutor, application.dependencies.ExecutableLocator, workingDirectory)
	if trunkError != nil {
		return nil, trunkError
	}

	editorCommand := editor.ResolveCommand(configuration.Editor, application.dependencies.EnvironmentLookup)
	launcher, launcherError := editor.NewLauncher(shellExecutor, editorCommand)
	if launcherError != nil {
		return nil, releaseerrors.Wrap(releaseerrors.KindUsage, launcherError, editorCommandTemplateConstant, editorCommand)
	}
	notesResolver, notesError := notes.NewResolver(repository, launcher)
	if notesError != nil {
		return nil, notesError
	}

	versionLine, patternError := manifest.NewVersionLine(configuration.VersionLinePattern)
	if patternError != nil {
		return nil, releaseerrors.Wrap(releaseerrors.KindUsage, patternError, versionPatternTemplateConstant)
	}
	manifestUpdater, updaterError := manifest.NewUpdater(manifest.UpdaterOptions{
		Path:         manifestPath,
		BackupSuffix: configuration.BackupSuffix,
		VersionLine:  versionLine,
	}, repository)
	if updaterError != nil {
		return nil, updaterError
	}

	return releases.NewService(releases.ServiceDependencies{
		Logger:         application.logger,
		VersionControl: repository,
		Registry:       trunkClient,
		Notes:          notesResolver,
		Manifest:       manifestUpdater,
		Browser:        browser.NewOpener(application.dependencies.BrowserHandler),
		Reporter:       ui.NewNarrator(output),
	})
}

func (application *Application) workingDirectory() (string, error) {
	if len(application.dependencies.WorkingDirectory) > 0 {
		return application.dependencies.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorTemplateConstant, workingDirectoryError)
	}
	return workingDirectory, nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
