package models

import "time"

// Actions performed by the runner
const (
	ActionPush        = "push"
	ActionPull        = "pull"
	ActionPullForce   = "pull-force"
	ActionPullNewFile = "pull-new-file"
	ActionDiff        = "diff"
	ActionStatus      = "status"
)

// SyncResult describes the outcome of one action, used for the summary
type SyncResult struct {
	Action    string
	Version   string
	File      string
	NoteID    string
	Link      string
	Created   bool
	Copied    bool
	Written   string // path of the file written, empty when nothing was written
	Conflicts int
	Timestamp time.Time

	// Diff preview, set by the diff action
	Diff             string
	AddedLineCount   int
	DeletedLineCount int

	// Per-version state, set by the status action
	Versions []VersionStatus
	// LocalConflicts and LocalMalformed count markers left in the local file
	LocalConflicts int
	LocalMalformed int

	// Push guard outcome, set by the push action
	PolicySummary  string
	PolicyMessages []string
}

// VersionStatus is the state of one linked version of a note
type VersionStatus struct {
	Version  string
	NoteID   string
	Linked   bool
	InSync   bool
	Error    string
	Added    int
	Deleted  int
	RemoteAt time.Time
}
