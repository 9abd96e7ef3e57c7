/*
Package interpreter implements the execution loop of the engine.

The interpreter pulls tokens from a stack of token streams, expands macros
and conditionals, and executes the meaning of control sequences. Meanings
are stored in a context (package context) and implement interface Code.
Characters are forwarded to a typesetter (package typesetter).

Conditionals are processed by the interpreter itself: a code implementing
IfCode only evaluates its predicate, the interpreter maintains the stack of
open conditionals and skips over branches not taken. Skipping does not
execute anything; it only counts nested conditionals.

Errors are reported to an ErrorHandler. Recoverable errors count towards a
configurable maximum; exceeding it stops the run. Fatal errors stop the run
immediately, without consulting the handler.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package interpreter

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tytex.interpreter'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.interpreter")
}
