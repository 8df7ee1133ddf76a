package runner

import "github.com/gh-nvat/notesync/src/pkg/models"

type Options struct {
	// File is the local note the action works on
	File string
	// Version selects which shared copy of the note to use
	Version string

	// Push options
	SkipChecks bool
	NoCopy     bool
}

// version returns the selected version, owner when unset
func (o *Options) version() string {
	if o.Version == "" {
		return models.VersionOwner
	}
	return o.Version
}
