package runtime

import (
	"github.com/b/tabdeck/pkg/app"
	"github.com/b/tabdeck/pkg/dashboard"
	"github.com/b/tabdeck/pkg/layout"
)

// Step runs one loop iteration after input mapping: act (if any) is reduced,
// the layout is recomputed for the new state and its StateUpdate is applied
// once. The returned result describes the returned state. act may be nil,
// which still relayouts.
func Step(st app.State, act app.Action, opts dashboard.Options) (app.State, layout.Result, []app.Effect) {
	var effs []app.Effect
	if act != nil {
		st, effs = app.Process(st, act)
	}
	calc := layout.Calculate(dashboard.Build(st, opts), dashboard.Area(st), st.UI.Layout)
	if !calc.Update.Empty() {
		st.UI.Layout = calc.Update.Apply(st.UI.Layout)
	}
	return st, calc.Result, effs
}
