package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	stagePrefixConstant        = "-> "
	detailPrefixConstant       = " > "
	warningMarkerConstant      = "[WARNING]"
	errorMarkerConstant        = "[ERROR]"
	markedLineTemplateConstant = "%s %s"
	lineTemplateConstant       = "%s%s\n"
	stageColorConstant         = lipgloss.Color("#3B82F6")
	detailColorConstant        = lipgloss.Color("#9CA3AF")
	warningColorConstant       = lipgloss.Color("#F59E0B")
	errorColorConstant         = lipgloss.Color("#EF4444")
	successColorConstant       = lipgloss.Color("#10B981")
)

// Narrator prints release progress to a writer.
// Stages are prefixed with "-> " and details with " > ".
type Narrator struct {
	output       io.Writer
	stageStyle   lipgloss.Style
	detailStyle  lipgloss.Style
	warningStyle lipgloss.Style
	successStyle lipgloss.Style
}

// NewNarrator constructs a Narrator whose styling adapts to the color support of output.
func NewNarrator(output io.Writer) *Narrator {
	if output == nil {
		output = io.Discard
	}
	renderer := lipgloss.NewRenderer(output)
	return &Narrator{
		output:       output,
		stageStyle:   renderer.NewStyle().Bold(true).Foreground(stageColorConstant),
		detailStyle:  renderer.NewStyle().Foreground(detailColorConstant),
		warningStyle: renderer.NewStyle().Bold(true).Foreground(warningColorConstant),
		successStyle: renderer.NewStyle().Bold(true).Foreground(successColorConstant),
	}
}

// Stage announces the start of a release step.
func (narrator *Narrator) Stage(format string, arguments ...any) {
	narrator.printLine(narrator.stageStyle.Render(stagePrefixConstant), fmt.Sprintf(format, arguments...))
}

// Detail reports a fact discovered within the current step.
func (narrator *Narrator) Detail(format string, arguments ...any) {
	narrator.printLine(narrator.detailStyle.Render(detailPrefixConstant), fmt.Sprintf(format, arguments...))
}

// Warning reports a condition that does not stop the release.
func (narrator *Narrator) Warning(format string, arguments ...any) {
	message := fmt.Sprintf(markedLineTemplateConstant, narrator.warningStyle.Render(warningMarkerConstant), fmt.Sprintf(format, arguments...))
	narrator.printLine(narrator.detailStyle.Render(detailPrefixConstant), message)
}

// Success announces the successful end of the release.
func (narrator *Narrator) Success(format string, arguments ...any) {
	narrator.printLine(narrator.successStyle.Render(stagePrefixConstant), fmt.Sprintf(format, arguments...))
}

func (narrator *Narrator) printLine(prefix string, message string) {
	fmt.Fprintf(narrator.output, lineTemplateConstant, prefix, message)
}

// FailureMessage renders err behind the [ERROR] marker, styled for the color support of output.
func FailureMessage(output io.Writer, err error) string {
	if err == nil {
		return ""
	}
	if output == nil {
		output = io.Discard
	}
	errorMarkerStyle := lipgloss.NewRenderer(output).NewStyle().Bold(true).Foreground(errorColorConstant)
	return fmt.Sprintf(markedLineTemplateConstant, errorMarkerStyle.Render(errorMarkerConstant), err.Error())
}
