package primitives

import (
	_ "embed"
	"fmt"
	"sort"
	"strconv"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/engine/context"
	"github.com/npillmayer/tytex/engine/interpreter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/npillmayer/tytex/engine/typesetter"
	"gopkg.in/yaml.v3"
)

//go:embed primitives.yaml
var primitivesYAML []byte

// Declaration declares a primitive: a control sequence name, the class
// of its code and parameters for the class.
type Declaration struct {
	Name   string            `yaml:"name"`
	Class  string            `yaml:"class"`
	Params map[string]string `yaml:"params"`
}

type declarations struct {
	Primitives []Declaration `yaml:"primitives"`
}

// Parse reads primitive declarations from YAML.
func Parse(data []byte) ([]Declaration, error) {
	var decls declarations
	if err := yaml.Unmarshal(data, &decls); err != nil {
		return nil, configError("cannot parse primitive declarations: %v", err)
	}
	for i, d := range decls.Primitives {
		if d.Name == "" || d.Class == "" {
			return nil, configError("primitive declaration #%d needs a name and a class", i+1)
		}
	}
	return decls.Primitives, nil
}

// Declarations returns the built-in primitive declarations.
func Declarations() []Declaration {
	decls, err := Parse(primitivesYAML)
	if err != nil {
		panic(err) // embedded file is broken
	}
	return decls
}

// Install defines the built-in primitives for an interpreter.
func Install(intp *interpreter.Interpreter) error {
	return InstallDeclarations(intp, Declarations())
}

// InstallDeclarations defines primitives for an interpreter. Unknown
// classes and invalid parameters result in a fatal configuration error.
// Parameters declared with a default value are initialized globally.
func InstallDeclarations(intp *interpreter.Interpreter, decls []Declaration) error {
	ctx := intp.Context()
	for _, d := range decls {
		construct, ok := classes[d.Class]
		if !ok {
			return configError("primitive %s: unknown class %q", d.Name, d.Class)
		}
		code, err := construct(d.Name, params(d.Params))
		if err != nil {
			return configError("primitive %s: %v", d.Name, err)
		}
		intp.Define(d.Name, code)
		if def, ok := d.Params["default"]; ok {
			if err := setDefault(ctx, d, def); err != nil {
				return configError("primitive %s: %v", d.Name, err)
			}
		}
	}
	tracer().Infof("installed %d primitives", len(decls))
	return nil
}

// Classes returns the names of all classes of primitives.
func Classes() []string {
	names := make([]string, 0, len(classes))
	for name := range classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func configError(format string, args ...interface{}) error {
	return interpreter.NewError(interpreter.ErrConfig, token.Locator{}, fmt.Sprintf(format, args...))
}

func setDefault(ctx *context.Context, d Declaration, value string) error {
	switch d.Params["kind"] {
	case "count":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		ctx.SetCount(d.Name, n, true)
	case "dimen":
		dim, err := dimen.ParseDimen(value)
		if err != nil {
			return err
		}
		ctx.SetDimen(d.Name, dim, true)
	case "glue":
		dim, err := dimen.ParseDimen(value)
		if err != nil {
			return err
		}
		ctx.SetGlue(d.Name, dimen.FixedGlue(dim), true)
	default:
		return fmt.Errorf("no default allowed for kind %q", d.Params["kind"])
	}
	return nil
}

// --- Classes ----------------------------------------------------------------

// params are the parameters of a class.
type params map[string]string

func (p params) flag(key string) (bool, error) {
	v, ok := p[key]
	if !ok {
		return false, nil
	}
	return strconv.ParseBool(v)
}

func (p params) oneOf(key string, values ...string) (string, error) {
	v := p[key]
	for _, allowed := range values {
		if v == allowed {
			return v, nil
		}
	}
	return "", fmt.Errorf("parameter %s must be one of %v, is %q", key, values, v)
}

func (p params) registerKind() (interpreter.RegisterKind, error) {
	kind, err := p.oneOf("kind", "count", "dimen", "glue", "toks")
	if err != nil {
		return 0, err
	}
	return map[string]interpreter.RegisterKind{
		"count": interpreter.CountRegister,
		"dimen": interpreter.DimenRegister,
		"glue":  interpreter.GlueRegister,
		"toks":  interpreter.ToksRegister,
	}[kind], nil
}

// constructor creates the code for a primitive.
type constructor func(name string, p params) (context.Code, error)

var classes map[string]constructor

func init() {
	classes = map[string]constructor{
		"prefix":       newPrefix,
		"def":          newDef,
		"let":          newLet,
		"register":     newRegisterClass,
		"registerdef":  newRegisterDef,
		"parameter":    newParameter,
		"mag":          newMag,
		"arithmetic":   newArithmetic,
		"boxregister":  newBoxRegister,
		"setbox":       newSetbox,
		"makebox":      newMakebox,
		"charcode":     newCharcode,
		"casechange":   newCaseChange,
		"expandafter":  simple(expandafter),
		"the":          simple(the),
		"number":       simple(number),
		"romannumeral": simple(romannumeral),
		"string":       simple(stringify),
		"meaning":      simple(meaning),
		"csname":       simple(csname),
		"endcsname":    newEndcsname,
		"ifconst":      newIfConst,
		"ifnum":        newIfNum,
		"ifdim":        newIfDim,
		"ifodd":        newIfOdd,
		"ifx":          newIfx,
		"ifchar":       newIfChar,
		"ifmode":       newIfMode,
		"ifcase":       newIfCase,
		"unless":       newUnless,
		"terminator":   newTerminator,
		"begingroup":   command(begingroup),
		"endgroup":     command(endgroup),
		"aftergroup":   command(aftergroup),
		"relax":        command(relax),
		"end":          command(end),
		"par":          command(par),
		"kern":         command(kern),
		"glue":         newGlueCommand,
		"penalty":      command(penalty),
		"char":         command(char),
		"font":         newFontDef,
		"nullfont":     newNullFont,
		"direction":    newDirection,
		"interaction":  newInteraction,
		"message":      command(message),
		"namespace":    assignment(namespace),
		"ignorespaces": command(ignorespaces),
		"input":        command(input),
	}
}

// --- Building blocks --------------------------------------------------------

// execFunc executes a primitive.
type execFunc func(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource, ts typesetter.Typesetter) error

// primitive is a code implemented by a function.
type primitive struct {
	name string
	exec execFunc
}

var _ interpreter.Code = &primitive{}

func (prim *primitive) Name() string { return prim.name }

func (prim *primitive) Execute(p interpreter.Prefixes, ctx *context.Context, src interpreter.TokenSource,
	ts typesetter.Typesetter) error {
	return prim.exec(p, ctx, src, ts)
}

// assigner is a primitive accepting prefixes.
type assigner struct {
	primitive
	accepts interpreter.Prefixes
}

var _ interpreter.Assignment = &assigner{}

func (a *assigner) AcceptedPrefixes() interpreter.Prefixes { return a.accepts }

// expandFunc expands a primitive.
type expandFunc func(ctx *context.Context, src interpreter.TokenSource) (token.List, error)

// expander is an expandable primitive implemented by a function.
type expander struct {
	name   string
	expand expandFunc
}

var _ interpreter.Expandable = &expander{}

func (e *expander) Name() string { return e.name }

func (e *expander) Expand(ctx *context.Context, src interpreter.TokenSource) (token.List, error) {
	return e.expand(ctx, src)
}

// command creates the constructor of a class without parameters.
func command(exec execFunc) constructor {
	return func(name string, _ params) (context.Code, error) {
		return &primitive{name: name, exec: exec}, nil
	}
}

// assignment creates the constructor of a class without parameters, which
// accepts \global.
func assignment(exec execFunc) constructor {
	return func(name string, _ params) (context.Code, error) {
		return &assigner{primitive: primitive{name: name, exec: exec}, accepts: interpreter.Global}, nil
	}
}

// simple creates the constructor of an expandable class without
// parameters.
func simple(expand expandFunc) constructor {
	return func(name string, _ params) (context.Code, error) {
		return &expander{name: name, expand: expand}, nil
	}
}

// otherTokens converts a string to character tokens of category other,
// except for spaces.
func otherTokens(ctx *context.Context, s string) token.List {
	l := make(token.List, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			l = append(l, ctx.Tokens().Space())
		} else {
			l = append(l, ctx.Tokens().Other(r))
		}
	}
	return l
}

// isGlobal is true if an assignment has to be global.
func isGlobal(p interpreter.Prefixes) bool {
	return p&interpreter.Global != 0
}
