package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitFetchSubcommandNameConstant     = "fetch"
	gitPushSubcommandNameConstant      = "push"
	gitTagSubcommandNameConstant       = "tag"
	gitCommitSubcommandNameConstant    = "commit"
	gitLsRemoteSubcommandNameConstant  = "ls-remote"
	gitLogSubcommandNameConstant       = "log"
	gitRevParseSubcommandNameConstant  = "rev-parse"
	gitConfigSubcommandNameConstant    = "config"
	gitListFlagConstant                = "--list"
	gitForceFlagConstant               = "--force"
	gitMessageFlagConstant             = "-m"
	podTrunkSubcommandNameConstant     = "trunk"
	podTrunkMeSubcommandNameConstant   = "me"
	podTrunkPushSubcommandNameConstant = "push"
)

const (
	gitFetchStartTemplateConstant                = "Fetching %s in %s"
	gitFetchSuccessTemplateConstant              = "Fetched %s in %s"
	gitFetchFailureTemplateConstant              = "Failed to fetch %s in %s (exit code %d%s)"
	gitFetchExecutionFailureTemplateConstant     = "Unable to fetch %s in %s: %s"
	gitPushStartTemplateConstant                 = "Pushing %s to %s from %s"
	gitForcePushStartTemplateConstant            = "Force pushing %s to %s from %s"
	gitPushSuccessTemplateConstant               = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant               = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant      = "Unable to push %s to %s from %s: %s"
	gitTagLookupStartTemplateConstant            = "Looking up tags matching %s in %s"
	gitTagLookupSuccessTemplateConstant          = "Looked up tags matching %s in %s"
	gitTagLookupFailureTemplateConstant          = "Failed to look up tags matching %s in %s (exit code %d%s)"
	gitTagLookupExecutionFailureTemplateConstant = "Unable to look up tags matching %s in %s: %s"
	gitTagCreateStartTemplateConstant            = "Creating signed tag %s in %s"
	gitTagForceCreateStartTemplateConstant       = "Replacing signed tag %s in %s"
	gitTagCreateSuccessTemplateConstant          = "Created signed tag %s in %s"
	gitTagCreateFailureTemplateConstant          = "Failed to create tag %s in %s (exit code %d%s)"
	gitTagCreateExecutionFailureTemplateConstant = "Unable to create tag %s in %s: %s"
	gitCommitStartTemplateConstant               = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant             = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant             = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant    = "Unable to create commit in %s with message %q: %s"
	gitLsRemoteStartTemplateConstant             = "Looking up %s on %s from %s"
	gitLsRemoteSuccessTemplateConstant           = "Looked up %s on %s from %s"
	gitLsRemoteFailureTemplateConstant           = "Failed to look up %s on %s from %s (exit code %d%s)"
	gitLsRemoteExecutionFailureTemplateConstant  = "Unable to look up %s on %s from %s: %s"
	gitLogStartTemplateConstant                  = "Reading commit history %s in %s"
	gitLogSuccessTemplateConstant                = "Read commit history %s in %s"
	gitLogFailureTemplateConstant                = "Failed to read commit history %s in %s (exit code %d%s)"
	gitLogExecutionFailureTemplateConstant       = "Unable to read commit history %s in %s: %s"
	gitRevParseStartTemplateConstant             = "Resolving %s in %s"
	gitRevParseSuccessTemplateConstant           = "%s in %s resolved to %s"
	gitRevParseFailureTemplateConstant           = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevParseExecutionFailureTemplateConstant  = "Unable to resolve %s in %s: %s"
	gitConfigStartTemplateConstant               = "Reading git setting %s in %s"
	gitConfigSuccessTemplateConstant             = "Read git setting %s in %s"
	gitConfigFailureTemplateConstant             = "Git setting %s is not available in %s (exit code %d%s)"
	gitConfigExecutionFailureTemplateConstant    = "Unable to read git setting %s in %s: %s"
	podTrunkMeStartTemplateConstant              = "Checking CocoaPods trunk session"
	podTrunkMeSuccessTemplateConstant            = "Retrieved CocoaPods trunk session"
	podTrunkMeFailureTemplateConstant            = "Failed to check CocoaPods trunk session (exit code %d%s)"
	podTrunkMeExecutionFailureTemplateConstant   = "Unable to check CocoaPods trunk session: %s"
	podTrunkPushStartTemplateConstant            = "Publishing %s to CocoaPods trunk"
	podTrunkPushSuccessTemplateConstant          = "Published %s to CocoaPods trunk"
	podTrunkPushFailureTemplateConstant          = "Failed to publish %s to CocoaPods trunk (exit code %d%s)"
	podTrunkPushExecutionFailureTemplateConstant = "Unable to publish %s to CocoaPods trunk: %s"
)

// stageTemplates groups the message templates for one command family.
// Start and success templates take the subject arguments; failure templates
// additionally take the exit code and standard error suffix; execution
// failure templates take the failure description.
type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandPod:
		return formatter.describePodMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	subcommand := strings.TrimSpace(arguments[0])
	switch subcommand {
	case gitFetchSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
		return formatter.render(stageTemplates{
			start:            gitFetchStartTemplateConstant,
			success:          gitFetchSuccessTemplateConstant,
			failure:          gitFetchFailureTemplateConstant,
			executionFailure: gitFetchExecutionFailureTemplateConstant,
		}, result, failure, stage, remoteName, workingDirectory)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitTagSubcommandNameConstant:
		return formatter.describeGitTagMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		commitMessage := findFlagValue(arguments, gitMessageFlagConstant)
		return formatter.render(stageTemplates{
			start:            gitCommitStartTemplateConstant,
			success:          gitCommitSuccessTemplateConstant,
			failure:          gitCommitFailureTemplateConstant,
			executionFailure: gitCommitExecutionFailureTemplateConstant,
		}, result, failure, stage, workingDirectory, commitMessage)
	case gitLsRemoteSubcommandNameConstant:
		remoteName := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[1:]))
		reference := formatter.ensureValue(formatter.lastArgument(arguments))
		return formatter.render(stageTemplates{
			start:            gitLsRemoteStartTemplateConstant,
			success:          gitLsRemoteSuccessTemplateConstant,
			failure:          gitLsRemoteFailureTemplateConstant,
			executionFailure: gitLsRemoteExecutionFailureTemplateConstant,
		}, result, failure, stage, reference, remoteName, workingDirectory)
	case gitLogSubcommandNameConstant:
		revisionRange := formatter.ensureValue(formatter.lastArgument(arguments))
		return formatter.render(stageTemplates{
			start:            gitLogStartTemplateConstant,
			success:          gitLogSuccessTemplateConstant,
			failure:          gitLogFailureTemplateConstant,
			executionFailure: gitLogExecutionFailureTemplateConstant,
		}, result, failure, stage, revisionRange, workingDirectory)
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitConfigSubcommandNameConstant:
		settingName := formatter.ensureValue(formatter.lastArgument(arguments))
		return formatter.render(stageTemplates{
			start:            gitConfigStartTemplateConstant,
			success:          gitConfigSuccessTemplateConstant,
			failure:          gitConfigFailureTemplateConstant,
			executionFailure: gitConfigExecutionFailureTemplateConstant,
		}, result, failure, stage, settingName, workingDirectory)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	nonFlagArguments := formatter.collectNonFlagArguments(arguments[1:])
	remoteName := fallbackUnknownValueLabelConstant
	references := fallbackUnknownValueLabelConstant
	if len(nonFlagArguments) > 0 {
		remoteName = nonFlagArguments[0]
	}
	if len(nonFlagArguments) > 1 {
		references = strings.Join(nonFlagArguments[1:], commandArgumentsJoinSeparatorConstant)
	}

	templates := stageTemplates{
		start:            gitPushStartTemplateConstant,
		success:          gitPushSuccessTemplateConstant,
		failure:          gitPushFailureTemplateConstant,
		executionFailure: gitPushExecutionFailureTemplateConstant,
	}
	if containsArgument(arguments, gitForceFlagConstant) {
		templates.start = gitForcePushStartTemplateConstant
	}
	return formatter.render(templates, result, failure, stage, references, remoteName, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitTagMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	tagName := formatter.ensureValue(formatter.lastArgument(arguments))

	if containsArgument(arguments, gitListFlagConstant) {
		return formatter.render(stageTemplates{
			start:            gitTagLookupStartTemplateConstant,
			success:          gitTagLookupSuccessTemplateConstant,
			failure:          gitTagLookupFailureTemplateConstant,
			executionFailure: gitTagLookupExecutionFailureTemplateConstant,
		}, result, failure, stage, tagName, workingDirectory)
	}

	templates := stageTemplates{
		start:            gitTagCreateStartTemplateConstant,
		success:          gitTagCreateSuccessTemplateConstant,
		failure:          gitTagCreateFailureTemplateConstant,
		executionFailure: gitTagCreateExecutionFailureTemplateConstant,
	}
	if containsArgument(arguments, gitForceFlagConstant) {
		templates.start = gitTagForceCreateStartTemplateConstant
	}
	return formatter.render(templates, result, failure, stage, tagName, workingDirectory)
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	reference := formatter.ensureValue(formatter.lastArgument(command.Details.Arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevParseStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRevParseSuccessTemplateConstant, reference, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
	case messageStageFailure:
		return fmt.Sprintf(gitRevParseFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRevParseExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describePodMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != podTrunkSubcommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	switch strings.TrimSpace(arguments[1]) {
	case podTrunkMeSubcommandNameConstant:
		return formatter.render(stageTemplates{
			start:            podTrunkMeStartTemplateConstant,
			success:          podTrunkMeSuccessTemplateConstant,
			failure:          podTrunkMeFailureTemplateConstant,
			executionFailure: podTrunkMeExecutionFailureTemplateConstant,
		}, result, failure, stage)
	case podTrunkPushSubcommandNameConstant:
		manifestPath := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments[2:]))
		return formatter.render(stageTemplates{
			start:            podTrunkPushStartTemplateConstant,
			success:          podTrunkPushSuccessTemplateConstant,
			failure:          podTrunkPushFailureTemplateConstant,
			executionFailure: podTrunkPushExecutionFailureTemplateConstant,
		}, result, failure, stage, manifestPath)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) render(templates stageTemplates, result ExecutionResult, failure error, stage messageStage, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureArguments...)
	default:
		executionArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, executionArguments...)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func (formatter CommandMessageFormatter) lastArgument(arguments []string) string {
	if len(arguments) == 0 {
		return emptyStringConstant
	}
	return arguments[len(arguments)-1]
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	nonFlagArguments := formatter.collectNonFlagArguments(arguments)
	if len(nonFlagArguments) == 0 {
		return emptyStringConstant
	}
	return nonFlagArguments[0]
}

func (formatter CommandMessageFormatter) collectNonFlagArguments(arguments []string) []string {
	collected := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		trimmedArgument := strings.TrimSpace(argument)
		if len(trimmedArgument) == 0 || strings.HasPrefix(trimmedArgument, flagPrefixConstant) {
			continue
		}
		collected = append(collected, trimmedArgument)
	}
	return collected
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if strings.TrimSpace(arguments[argumentIndex]) == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
