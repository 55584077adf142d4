// Package manifest edits the version line of a podspec as a transaction.
//
// Transaction snapshots the file to a sibling backup, applies an edit, and
// either commits (drops the backup) or rolls back (renames the backup over
// the file). Updater combines a Transaction, a VersionLine pattern, and a git
// Committer into the idempotent "bump version and commit" step of a release.
package manifest
