// Package notes resolves the release notes a tag is annotated with.
//
// An existing file is used as is. A missing one is drafted from the commit log
// since the latest version tag, handed to the user's editor, and rejected when
// it comes back unchanged.
package notes
