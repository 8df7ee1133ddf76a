package runner

import "github.com/gh-nvat/notesync/src/pkg/models"

type RunnerInterface interface {
	// Initialize checks that every collaborator is set
	Initialize() error

	// Push uploads the local body, creating the note on first push
	Push() (*models.SyncResult, error)

	// Pull merges the remote note into the local file with conflict markers
	Pull() (*models.SyncResult, error)

	// PullForce replaces the local body with the remote note
	PullForce() (*models.SyncResult, error)

	// PullNewFile writes the remote note next to the local file
	PullNewFile() (*models.SyncResult, error)

	// Diff previews the changes between the local body and the remote note
	Diff() (*models.SyncResult, error)

	// Status reports every linked version of the note
	Status() (*models.SyncResult, error)

	// Process runs one action by name
	Process(action string) (*models.SyncResult, error)
}
