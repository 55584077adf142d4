package notes

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/podrelease/internal/releaseerrors"
	"github.com/temirov/podrelease/internal/version"
)

const (
	historyMissingMessageConstant       = "release notes history source not configured"
	editorMissingMessageConstant        = "release notes editor not configured"
	notesPathRequiredTemplate           = "release notes path must be provided"
	notesPathIsDirectoryTemplate        = "release notes path %s is a directory"
	unchangedScaffoldTemplateConstant   = "release notes in %s were left unchanged; describe the release and save the file"
	blankNotesTemplateConstant          = "release notes in %s contain only comments"
	readNotesFailureTemplateConstant    = "failed to read release notes %s: %w"
	writeDraftFailureTemplateConstant   = "failed to write release notes draft %s: %w"
	historyFailureTemplateConstant      = "failed to collect commit history for %s: %w"
	editFailureTemplateConstant         = "failed to edit release notes %s: %w"
	draftDirectoryPermissionsConstant   = 0o755
	draftFilePermissionsConstant        = 0o644
	draftRemovalFailureTemplateConstant = "%w (removing draft %s also failed: %v)"
)

var (
	// ErrHistoryNotConfigured indicates the resolver was constructed without a history source.
	ErrHistoryNotConfigured = errors.New(historyMissingMessageConstant)
	// ErrEditorNotConfigured indicates the resolver was constructed without an editor.
	ErrEditorNotConfigured = errors.New(editorMissingMessageConstant)
)

// History exposes the tags and commits the draft is built from.
type History interface {
	ListTags(executionContext context.Context) ([]string, error)
	CommitLog(executionContext context.Context, since string) ([]string, error)
}

// Editor opens a file and blocks until the user is done with it.
type Editor interface {
	Edit(executionContext context.Context, filePath string) error
}

// Notes is the resolved release notes file.
type Notes struct {
	Path        string
	Content     string
	Drafted     bool
	PreviousTag string
}

// Summary returns the notes without comment lines, as they appear in the tag message.
func (notes Notes) Summary() string {
	return StripComments(notes.Content)
}

// Resolver returns existing release notes or drafts new ones in the editor.
type Resolver struct {
	history History
	editor  Editor
}

// NewResolver constructs a Resolver.
func NewResolver(history History, editor Editor) (*Resolver, error) {
	if history == nil {
		return nil, ErrHistoryNotConfigured
	}
	if editor == nil {
		return nil, ErrEditorNotConfigured
	}
	return &Resolver{history: history, editor: editor}, nil
}

// Resolve uses notesPath verbatim when it exists. Otherwise it writes a scaffold
// for tag there, opens the editor, and fails with an EmptyReleaseNotes error
// when the scaffold comes back unchanged. Rejected drafts are removed.
func (resolver *Resolver) Resolve(executionContext context.Context, tag string, notesPath string) (Notes, error) {
	if len(strings.TrimSpace(notesPath)) == 0 {
		return Notes{}, releaseerrors.New(releaseerrors.KindUsage, notesPathRequiredTemplate)
	}

	existingContent, exists, readError := readExistingNotes(notesPath)
	if readError != nil {
		return Notes{}, readError
	}
	if exists {
		return Notes{Path: notesPath, Content: existingContent}, nil
	}

	previousTag, commitLog, historyError := resolver.collectHistory(executionContext)
	if historyError != nil {
		return Notes{}, fmt.Errorf(historyFailureTemplateConstant, tag, historyError)
	}
	scaffold := BuildScaffold(tag, commitLog)
	if writeError := writeDraft(notesPath, scaffold); writeError != nil {
		return Notes{}, writeError
	}

	editedContent, draftError := resolver.editDraft(executionContext, notesPath, scaffold)
	if draftError != nil {
		if removeError := os.Remove(notesPath); removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
			draftError = fmt.Errorf(draftRemovalFailureTemplateConstant, draftError, notesPath, removeError)
		}
		return Notes{}, draftError
	}
	return Notes{Path: notesPath, Content: editedContent, Drafted: true, PreviousTag: previousTag}, nil
}

func (resolver *Resolver) collectHistory(executionContext context.Context) (string, []string, error) {
	tags, listError := resolver.history.ListTags(executionContext)
	if listError != nil {
		return "", nil, listError
	}
	previousTag, _ := version.LatestTag(tags)
	commitLog, logError := resolver.history.CommitLog(executionContext, previousTag)
	if logError != nil {
		return "", nil, logError
	}
	return previousTag, commitLog, nil
}

func (resolver *Resolver) editDraft(executionContext context.Context, notesPath string, scaffold string) (string, error) {
	if editError := resolver.editor.Edit(executionContext, notesPath); editError != nil {
		return "", fmt.Errorf(editFailureTemplateConstant, notesPath, editError)
	}
	editedBytes, readError := os.ReadFile(notesPath)
	if readError != nil {
		return "", fmt.Errorf(readNotesFailureTemplateConstant, notesPath, readError)
	}
	editedContent := string(editedBytes)
	if editedContent == scaffold {
		return "", releaseerrors.New(releaseerrors.KindEmptyReleaseNotes, unchangedScaffoldTemplateConstant, notesPath)
	}
	if len(StripComments(editedContent)) == 0 {
		return "", releaseerrors.New(releaseerrors.KindEmptyReleaseNotes, blankNotesTemplateConstant, notesPath)
	}
	return editedContent, nil
}

func readExistingNotes(notesPath string) (string, bool, error) {
	fileInfo, statError := os.Stat(notesPath)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf(readNotesFailureTemplateConstant, notesPath, statError)
	}
	if fileInfo.IsDir() {
		return "", false, releaseerrors.New(releaseerrors.KindUsage, notesPathIsDirectoryTemplate, notesPath)
	}
	content, readError := os.ReadFile(notesPath)
	if readError != nil {
		return "", false, fmt.Errorf(readNotesFailureTemplateConstant, notesPath, readError)
	}
	return string(content), true, nil
}

func writeDraft(notesPath string, scaffold string) error {
	if directoryError := os.MkdirAll(filepath.Dir(notesPath), draftDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(writeDraftFailureTemplateConstant, notesPath, directoryError)
	}
	if writeError := os.WriteFile(notesPath, []byte(scaffold), draftFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(writeDraftFailureTemplateConstant, notesPath, writeError)
	}
	return nil
}
