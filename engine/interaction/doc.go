/*
Package interaction implements an error handler which talks to the user.

In error-stop mode the handler stops at every recoverable error and reads a
response from the terminal, just like TeX does:

	<return>  continue
	H         show the help text of the error
	I<text>   insert text, e.g. a corrected control sequence
	1…9       delete the next tokens of the input
	S, R, Q   switch to scroll mode, non-stop mode or batch mode
	X         end the run

Lines are read with github.com/peterh/liner if standard input is a
terminal. In all other cases, and in the less interactive modes, the
handler prints errors and continues.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package interaction

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tytex.interaction'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.interaction")
}
