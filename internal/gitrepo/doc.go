// Package gitrepo drives the git command line for a release.
//
// Repository answers the questions a release asks of version control (does
// the tag exist, is a signing key configured, is the branch in sync with its
// upstream, what changed since the last tag) as typed results, and performs
// the signed commit, tag, and push operations. ParseRemoteURL turns a remote
// into host, owner, and repository for building web links.
package gitrepo
