package models

import "time"

// Versions of a shared note, named after its write permission
const (
	VersionOwner    = "owner"
	VersionSignedIn = "signed_in"
	VersionGuest    = "guest"
)

// Versions lists every version a note can be shared as
var Versions = []string{VersionOwner, VersionSignedIn, VersionGuest}

// Front matter keys written by push and pull
const (
	FrontMatterIDPrefix         = "hackmd-id-"
	FrontMatterLinkPrefix       = "hackmd-link-"
	FrontMatterRemotePermission = "remote_permission"
	FrontMatterPullTime         = "pull_time"
)

// IDKey returns the front matter key holding the note id of a version
func IDKey(version string) string {
	return FrontMatterIDPrefix + version
}

// LinkKey returns the front matter key holding the public link of a version
func LinkKey(version string) string {
	return FrontMatterLinkPrefix + version
}

// IsVersion reports whether v names a known version
func IsVersion(v string) bool {
	for _, known := range Versions {
		if v == known {
			return true
		}
	}
	return false
}

// Note represents a note stored on the remote note service
type Note struct {
	ID                string
	Title             string
	Content           string
	Link              string
	ReadPermission    string
	WritePermission   string
	CommentPermission string
	LastChangedAt     time.Time
}

// Permissions used when creating a note
type Permissions struct {
	Read    string
	Write   string
	Comment string
}
