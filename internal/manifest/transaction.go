package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultBackupSuffix is appended to the manifest path to name its backup.
	DefaultBackupSuffix = ".orig"

	temporaryFilePatternTemplateConstant = ".%s.tmp-*"
	snapshotRequiredMessageConstant      = "manifest snapshot must be taken before editing"
	transactionClosedMessageConstant     = "manifest transaction already committed or rolled back"
	readFailureTemplateConstant          = "failed to read %s: %w"
	statFailureTemplateConstant          = "failed to inspect %s: %w"
	backupFailureTemplateConstant        = "failed to back up %s: %w"
	editFailureTemplateConstant          = "failed to edit %s: %w"
	writeFailureTemplateConstant         = "failed to write %s: %w"
	restoreFailureTemplateConstant       = "failed to restore %s from %s: %w"
	discardBackupFailureTemplateConstant = "failed to remove backup %s: %w"
)

var (
	// ErrSnapshotRequired indicates Apply was called before Snapshot.
	ErrSnapshotRequired = errors.New(snapshotRequiredMessageConstant)
	// ErrTransactionClosed indicates the transaction already finished.
	ErrTransactionClosed = errors.New(transactionClosedMessageConstant)
)

// Edit transforms manifest content.
type Edit func(content []byte) ([]byte, error)

// TransactionState tracks the lifecycle of a manifest edit.
type TransactionState int

// Transaction states.
const (
	StateClean TransactionState = iota
	StateBackedUp
	StateEdited
	StateCommitted
	StateRestored
)

// Transaction edits one file so that it either keeps the edit or ends byte-identical
// to its content at Snapshot. Every file replacement is a rename of a fully
// written sibling, so an interrupted run leaves either the old or the new file
// plus a backup that RecoverStale can restore.
type Transaction struct {
	path       string
	backupPath string
	state      TransactionState
}

// NewTransaction constructs a Transaction for path with its backup at path+backupSuffix.
func NewTransaction(path string, backupSuffix string) *Transaction {
	if len(backupSuffix) == 0 {
		backupSuffix = DefaultBackupSuffix
	}
	return &Transaction{path: path, backupPath: path + backupSuffix}
}

// Path returns the managed file.
func (transaction *Transaction) Path() string {
	return transaction.path
}

// BackupPath returns the location of the backup copy.
func (transaction *Transaction) BackupPath() string {
	return transaction.backupPath
}

// State returns the current lifecycle state.
func (transaction *Transaction) State() TransactionState {
	return transaction.state
}

// RecoverStale restores a backup left behind by an interrupted run.
// It reports whether a backup was found and restored.
func (transaction *Transaction) RecoverStale() (bool, error) {
	backupExists, statError := fileExists(transaction.backupPath)
	if statError != nil {
		return false, statError
	}
	if !backupExists {
		return false, nil
	}
	if renameError := os.Rename(transaction.backupPath, transaction.path); renameError != nil {
		return false, fmt.Errorf(restoreFailureTemplateConstant, transaction.path, transaction.backupPath, renameError)
	}
	return true, nil
}

// Snapshot writes a backup copy of the current file.
func (transaction *Transaction) Snapshot() error {
	if transaction.state != StateClean {
		return ErrTransactionClosed
	}
	content, mode, readError := readFile(transaction.path)
	if readError != nil {
		return readError
	}
	if writeError := writeFileAtomically(transaction.backupPath, content, mode); writeError != nil {
		return fmt.Errorf(backupFailureTemplateConstant, transaction.path, writeError)
	}
	transaction.state = StateBackedUp
	return nil
}

// Apply replaces the file with the result of edit.
func (transaction *Transaction) Apply(edit Edit) error {
	switch transaction.state {
	case StateClean:
		return ErrSnapshotRequired
	case StateCommitted, StateRestored:
		return ErrTransactionClosed
	}
	content, mode, readError := readFile(transaction.path)
	if readError != nil {
		return readError
	}
	editedContent, editError := edit(content)
	if editError != nil {
		return fmt.Errorf(editFailureTemplateConstant, transaction.path, editError)
	}
	if writeError := writeFileAtomically(transaction.path, editedContent, mode); writeError != nil {
		return writeError
	}
	transaction.state = StateEdited
	return nil
}

// Commit keeps the edit and discards the backup.
func (transaction *Transaction) Commit() error {
	switch transaction.state {
	case StateCommitted, StateRestored:
		return ErrTransactionClosed
	}
	if removeError := os.Remove(transaction.backupPath); removeError != nil && !errors.Is(removeError, os.ErrNotExist) {
		return fmt.Errorf(discardBackupFailureTemplateConstant, transaction.backupPath, removeError)
	}
	transaction.state = StateCommitted
	return nil
}

// Rollback moves the backup over the file. It is a no-op when no backup was taken.
func (transaction *Transaction) Rollback() error {
	switch transaction.state {
	case StateCommitted, StateRestored:
		return ErrTransactionClosed
	case StateClean:
		transaction.state = StateRestored
		return nil
	}
	if _, recoverError := transaction.RecoverStale(); recoverError != nil {
		return recoverError
	}
	transaction.state = StateRestored
	return nil
}

func readFile(path string) ([]byte, os.FileMode, error) {
	fileInfo, statError := os.Stat(path)
	if statError != nil {
		return nil, 0, fmt.Errorf(statFailureTemplateConstant, path, statError)
	}
	content, readError := os.ReadFile(path)
	if readError != nil {
		return nil, 0, fmt.Errorf(readFailureTemplateConstant, path, readError)
	}
	return content, fileInfo.Mode().Perm(), nil
}

func fileExists(path string) (bool, error) {
	_, statError := os.Stat(path)
	if statError == nil {
		return true, nil
	}
	if errors.Is(statError, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(statFailureTemplateConstant, path, statError)
}

func writeFileAtomically(path string, content []byte, mode os.FileMode) error {
	temporaryFile, createError := os.CreateTemp(filepath.Dir(path), fmt.Sprintf(temporaryFilePatternTemplateConstant, filepath.Base(path)))
	if createError != nil {
		return fmt.Errorf(writeFailureTemplateConstant, path, createError)
	}
	temporaryPath := temporaryFile.Name()

	writeError := writeAndClose(temporaryFile, content, mode)
	if writeError == nil {
		writeError = os.Rename(temporaryPath, path)
	}
	if writeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(writeFailureTemplateConstant, path, writeError)
	}
	return nil
}

func writeAndClose(file *os.File, content []byte, mode os.FileMode) error {
	if _, writeError := file.Write(content); writeError != nil {
		_ = file.Close()
		return writeError
	}
	if syncError := file.Sync(); syncError != nil {
		_ = file.Close()
		return syncError
	}
	if chmodError := file.Chmod(mode); chmodError != nil {
		_ = file.Close()
		return chmodError
	}
	return file.Close()
}
