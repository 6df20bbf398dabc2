package app

import (
	"github.com/b/tabdeck/pkg/store"
	"github.com/b/tabdeck/pkg/tools"
)

// Effect is a side effect requested by the reducer and performed by the
// executor. The set of variants is closed.
type Effect interface {
	isEffect()
}

type (
	// RunTool runs an external tool for a job; completion comes back as
	// CommandFinished or CommandFailed.
	RunTool struct {
		JobID int
		Tool  string
		Args  []string
		Dir   string
	}
	// RefreshVCS reads the working tree status of Dir. Force bypasses the
	// status cache.
	RefreshVCS struct {
		Dir   string
		Force bool
	}
	DetectTools  struct{ Specs []tools.Spec }
	SaveDocument struct{ Doc store.Document }
	CopyText     struct{ Text string }
)

func (RunTool) isEffect()      {}
func (RefreshVCS) isEffect()   {}
func (DetectTools) isEffect()  {}
func (SaveDocument) isEffect() {}
func (CopyText) isEffect()     {}
