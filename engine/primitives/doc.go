/*
Package primitives implements the built-in control sequences of the engine.

Primitives are declared in a YAML file, primitives.yaml, which is embedded
into the package. Every entry names a control sequence, a class and optional
parameters for the class:

	- name: tolerance
	  class: parameter
	  params: { kind: count, default: "200" }

A class is a constructor for a code. Different names may share a class;
e.g. \lccode and \uccode are both of class "charcode", with different
tables. Install defines all primitives for an interpreter. Errors in the
declarations are fatal.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package primitives

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tytex.primitives'.
func tracer() tracing.Trace {
	return tracing.Select("tytex.primitives")
}
