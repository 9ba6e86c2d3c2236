package main

import (
	"fmt"
	"strings"

	"github.com/weftui/weft/pkg/engine"
	"github.com/weftui/weft/pkg/view"
)

// registerDemoPresenters wires the dashboard shown by the demo command.
func registerDemoPresenters(reg *engine.Registry) {
	reg.Register("dashboard", func(props any, ctx *engine.Ctx) *view.Node {
		clock, _ := ctx.Read("clock")
		tasks, _ := ctx.Read("tasks")
		return view.El("column", view.Props{"role": "dashboard"},
			view.El("header", view.Props{"title": "weft demo"},
				view.Text(asString(clock))),
			view.Call("counter-badge", nil),
			view.Call("task-list", asStrings(tasks)),
		)
	})

	reg.Register("counter-badge", func(props any, ctx *engine.Ctx) *view.Node {
		count, err := ctx.Read("counter")
		if err != nil {
			return nil
		}
		return view.El("badge", view.Props{"count": fmt.Sprint(count)})
	})

	reg.Register("task-list", func(props any, ctx *engine.Ctx) *view.Node {
		names, _ := props.([]string)
		items := make([]any, len(names))
		for i, n := range names {
			items[i] = n
		}
		return view.El("list", nil,
			view.For(items,
				func(item any) any { return item },
				func(item any) *view.Node {
					return view.El("task", view.Props{"label": item.(string)},
						view.Text(item.(string)))
				}))
	})
}

// asString renders a source value for display, tolerating the string
// encoding used by the Redis provider.
func asString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// asStrings accepts either a []string from the in-memory registry or a
// whitespace-separated string from the Redis provider.
func asStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case string:
		return strings.Fields(t)
	default:
		return nil
	}
}
