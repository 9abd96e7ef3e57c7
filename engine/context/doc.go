/*
Package context holds the state of an interpreter run.

A context owns a stack of groups. Each group is a scope layer with bindings
for registers, code tables, control sequence meanings and typesetting
attributes. Lookups walk the stack from the innermost group outwards. Local
assignments bind in the innermost group. Global assignments write to every
group currently holding a binding, and to the outermost group.

Besides groups, a context carries the stack of open conditionals, a stack of
writing directions, the magnification and tables of observers which get
notified about changes of the interaction mode, of control sequence meanings
and of count registers.

A context is owned by a single interpreter run and is not safe for
concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package context

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tytex.context'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.context")
}
