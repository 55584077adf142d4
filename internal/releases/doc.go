// Package releases runs the signed release of a CocoaPods library.
//
// Service checks its preconditions in a fixed order (packaging tool, tag
// uniqueness, manifest, signing key, trunk ownership, branch sync) before it
// touches anything. It then resolves release notes, bumps and commits the
// manifest version, pushes a signed tag and the branch, publishes to trunk,
// and finally links the user to a pre-filled release announcement.
package releases
