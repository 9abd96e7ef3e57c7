/*
Package lexer converts text input into a stream of tokens.

Category codes are looked up at the moment a character is read, so changes
to catcodes take effect immediately for the rest of the input, as in TeX.
Input is processed line by line: trailing spaces are removed and an end of
line character is appended to every line. A lexer keeps one of three
states, as TeX does:

	N  beginning of a line: spaces are skipped, end of line yields \par
	M  middle of a line: a space yields a space token
	S  skipping blanks: spaces and end of line yield nothing

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexer

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tytex.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.lexer")
}
