// Package runtime drives the dashboard: it owns application state, feeds
// every message through the reducer and layout, dispatches effects and
// renders the result.
package runtime

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/clipboard"
	"github.com/b/tabdeck/pkg/config"
	"github.com/b/tabdeck/pkg/control"
	"github.com/b/tabdeck/pkg/mask"
	"github.com/b/tabdeck/pkg/paths"
	"github.com/b/tabdeck/pkg/validate"
)

// Context holds the process-wide services. It is built once at startup and
// passed to whatever needs it.
type Context struct {
	Config     *config.Config
	Root       string
	Clipboard  clipboard.Clipboard
	Masker     *mask.Masker
	Validator  *validate.Validator
	Logger     *zap.Logger
	SocketPath string
	StatePath  string
}

// NewContext resolves paths and builds the shared services for a project
// root. A nil logger is replaced by a no-op logger.
func NewContext(cfg *config.Config, root string, v *validate.Validator, log *zap.Logger) (*Context, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if v == nil {
		v = validate.New()
	}
	m, err := mask.New(cfg.Mask)
	if err != nil {
		return nil, fmt.Errorf("mask rules: %w", err)
	}
	if _, err := paths.EnsureStateDir(); err != nil {
		return nil, err
	}
	return &Context{
		Config:     cfg,
		Root:       root,
		Clipboard:  clipboard.Default(),
		Masker:     m,
		Validator:  v,
		Logger:     log,
		SocketPath: paths.SocketPath(root),
		StatePath:  paths.ProjectStatePath(root),
	}, nil
}

// Publisher holds the latest state snapshot for readers outside the loop.
type Publisher struct {
	p atomic.Pointer[control.Snapshot]
}

func (p *Publisher) Store(st app.State) {
	snap := control.SnapshotOf(st)
	p.p.Store(&snap)
}

// Load returns the last stored snapshot, or the zero snapshot.
func (p *Publisher) Load() control.Snapshot {
	if s := p.p.Load(); s != nil {
		return *s
	}
	return control.Snapshot{}
}
