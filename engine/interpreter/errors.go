package interpreter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/npillmayer/tytex/core"
	"github.com/npillmayer/tytex/engine/token"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrorKind classifies the errors of a run.
type ErrorKind int16

// Recoverable errors. The run continues after reporting them.
const (
	ErrUndefinedCS ErrorKind = iota
	ErrExtraRightBrace
	ErrGroupMismatch
	ErrExtraOr
	ErrExtraElse
	ErrExtraFi
	ErrMissingNumber
	ErrNumberTooBig
	ErrDimensionTooLarge
	ErrIllegalUnit
	ErrMissingToken
	ErrIllegalMag
	ErrIllegalRegister
	ErrMisplaced
	ErrCantUsePrefix
	ErrFontNotFound
	ErrUnbalancedEnd
	ErrRunawayArgument
	ErrUseDoesntMatch
	ErrInvalidChar
	ErrDisplayMathEnd
	ErrMissingCS
	ErrArithmetic
	ErrMissingEndcsname
	ErrCantUseAfterThe
	ErrBadCharCode
	ErrFileNotFound
)

// Fatal errors. The run stops without consulting the error handler.
const (
	ErrEOFInSkip ErrorKind = iota + 100
	ErrErrorLimit
	ErrIncompatibleMag
	ErrNoTypesetter
	ErrNoStreamFactory
	ErrConfig
	ErrAborted
	ErrInternal
)

// Fatal is true for kinds of errors which end a run.
func (k ErrorKind) Fatal() bool {
	return k >= ErrEOFInSkip
}

type errorText struct {
	msg  string
	help string
	code int
}

// Message formats are keys into the message catalog, see messages.go.
var errorTexts = map[ErrorKind]errorText{
	ErrUndefinedCS: {"Undefined control sequence %s",
		"The control sequence %s has never been defined. If you have misspelled it, just continue, and I'll forget about whatever was undefined.",
		core.EUSERINPUT},
	ErrExtraRightBrace: {"Too many }'s",
		"You've closed more groups than you opened. Such booboos are generally harmless, so keep going.",
		core.EUSERINPUT},
	ErrGroupMismatch: {"Extra %s, or forgotten %s",
		"I've deleted a group-closing symbol because it seems to be spurious.",
		core.EUSERINPUT},
	ErrExtraOr:   {`Extra \or`, `I'm ignoring this; it doesn't match any \if.`, core.EUSERINPUT},
	ErrExtraElse: {`Extra \else`, `I'm ignoring this; it doesn't match any \if.`, core.EUSERINPUT},
	ErrExtraFi:   {`Extra \fi`, `I'm ignoring this; it doesn't match any \if.`, core.EUSERINPUT},
	ErrMissingNumber: {"Missing number, treated as zero",
		"A number should have been here; I inserted `0'.",
		core.EMISSING},
	ErrNumberTooBig: {"Number too big",
		"I can only go up to 2147483647, so I'm using that number instead of yours.",
		core.EINVALID},
	ErrDimensionTooLarge: {"Dimension too large",
		"I can't work with sizes bigger than about 19 feet. Continue and I'll use the largest value I can.",
		core.EINVALID},
	ErrIllegalUnit: {"Illegal unit of measure (pt inserted)",
		"Dimensions can be in units of em, ex, in, pt, pc, cm, mm, dd, cc, bp, or sp; but yours is a new one! I'll assume that you meant to say pt, for printer's points.",
		core.EINVALID},
	ErrMissingToken: {"Missing %s inserted",
		"I expected to see %s here, so I've put one in.",
		core.EMISSING},
	ErrIllegalMag: {"Illegal magnification (%s), must be between 1 and %s",
		"The magnification ratio is unchanged.",
		core.EINVALID},
	ErrIllegalRegister: {"Bad register code (%s)",
		"A register number must be between 0 and 32767. I changed this one to zero.",
		core.EINVALID},
	ErrMisplaced: {"Misplaced %s",
		"I can't figure out why you would want to use this here. I'm ignoring it.",
		core.EUSERINPUT},
	ErrCantUsePrefix: {"You can't use a prefix with `%s'",
		`I'll pretend you didn't say \long or \outer or \global here.`,
		core.EUSERINPUT},
	ErrFontNotFound: {"Font %s=%s not loadable: font file not found",
		"I wasn't able to read the font; I'll use a fallback font instead.",
		core.ERESOURCE},
	ErrUnbalancedEnd: {`(\end occurred inside a group at level %s)`,
		"Some group was not closed before the end of the input.",
		core.EUSERINPUT},
	ErrRunawayArgument: {"Paragraph ended before %s was complete",
		"I suspect you've forgotten a `}', causing me to apply this control sequence to too much text.",
		core.EUSERINPUT},
	ErrUseDoesntMatch: {"Use of %s doesn't match its definition",
		"The arguments of a macro must follow the delimiters of its parameter text.",
		core.EUSERINPUT},
	ErrInvalidChar: {"Text line contains an invalid character %U",
		"A funny symbol that I can't read has just been input. Continue, and I'll forget that it ever happened.",
		core.EINVALID},
	ErrDisplayMathEnd: {"Display math should end with $$",
		"The `$' that I just saw supposedly matches a previous `$$'. So I shall assume that you typed `$$' both times.",
		core.EUSERINPUT},
	ErrMissingCS: {"Missing control sequence inserted",
		`Please don't say \def cs{...}, say \def\cs{...}.`,
		core.EMISSING},
	ErrArithmetic: {"Arithmetic overflow",
		"I can't carry out that multiplication or division, since the result is out of range. The register is unchanged.",
		core.EINVALID},
	ErrMissingEndcsname: {`Missing \endcsname inserted`,
		`The control sequence marked <to be read again> should not appear between \csname and \endcsname.`,
		core.EMISSING},
	ErrCantUseAfterThe: {`You can't use %s after \the`,
		"I'm forgetting what you said and using zero instead.",
		core.EUSERINPUT},
	ErrBadCharCode: {"Invalid code (%s), should be in the range 0..%s",
		"I'm going to use 0 instead of that illegal code value.",
		core.EINVALID},
	ErrFileNotFound: {"I can't find file `%s'",
		"The input file could not be opened; it is ignored.",
		core.EMISSING},
	//
	ErrEOFInSkip: {"Incomplete %s; all text was ignored after line %s",
		"A forbidden end of input occurred while skipping conditional text.",
		core.EFATAL},
	ErrErrorLimit: {"That makes %s errors; please try again.",
		"The run has been stopped because of too many errors.",
		core.EFATAL},
	ErrIncompatibleMag: {"Incompatible magnification (%s); the previous value will be retained (%s)",
		"I can handle only one magnification ratio per job.",
		core.EFATAL},
	ErrNoTypesetter:    {"No typesetter configured", "", core.ECONFIG},
	ErrNoStreamFactory: {"No token stream factory configured", "", core.ECONFIG},
	ErrConfig:          {"Configuration error: %s", "", core.ECONFIG},
	ErrAborted:         {"Interaction aborted", "", core.EINTERACTIV},
	ErrInternal:        {"This can't happen (%s)", "", core.EINTERNAL},
}

// Error is an error of a run. Errors carry the position in the input where
// they occurred.
type Error struct {
	Kind    ErrorKind
	Locator token.Locator
	Args    []interface{}
	Fatal   bool
	Hint    string       // optional, e.g. a similar control sequence
	Lang    language.Tag // language of UserMessage and Help
	cause   error
}

var _ core.AppError = &Error{}

// NewError creates an error of a kind. The arguments are those of the
// message format of the kind.
func NewError(kind ErrorKind, loc token.Locator, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Locator: loc,
		Args:    args,
		Fatal:   kind.Fatal(),
		Lang:    language.English,
	}
}

// Wrap sets the underlying cause of an error.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) text() errorText {
	if t, ok := errorTexts[e.Kind]; ok {
		return t
	}
	return errorText{msg: "Unknown error", code: core.EINTERNAL}
}

func (e *Error) Error() string {
	msg := format(fmt.Sprintf, e.text().msg, e.Args)
	if e.Locator.Line > 0 {
		return e.Locator.String() + ": " + msg
	}
	return msg
}

// ErrorCode is part of interface core.AppError.
func (e *Error) ErrorCode() int {
	return e.text().code
}

// UserMessage returns the localized message of the error. It is part of
// interface core.AppError.
func (e *Error) UserMessage() string {
	return format(localized(e.Lang), e.text().msg, e.Args)
}

// Help returns a localized explanation of the error. The user message of
// an underlying core.AppError from outside the interpreter is appended.
func (e *Error) Help() string {
	sprintf := localized(e.Lang)
	help := format(sprintf, e.text().help, e.Args)
	var app core.AppError
	if _, nested := AsError(e.cause); !nested && errors.As(e.cause, &app) {
		help = strings.TrimSpace(help + " (" + core.UserMessage(e.cause) + ")")
	}
	if e.Hint != "" {
		help = strings.TrimSpace(help + " " + sprintf("Did you mean %s?", e.Hint))
	}
	return help
}

func localized(lang language.Tag) func(string, ...interface{}) string {
	p := message.NewPrinter(lang)
	return func(f string, args ...interface{}) string {
		return p.Sprintf(f, args...)
	}
}

// format applies a message format. Formats without verbs ignore the
// arguments. Integers are written as plain digits, as localized printers
// would group them.
func format(sprintf func(string, ...interface{}) string, f string, args []interface{}) string {
	if f == "" {
		return ""
	}
	if !strings.Contains(f, "%") {
		return sprintf(f)
	}
	plain := make([]interface{}, len(args))
	for i, arg := range args {
		switch n := arg.(type) {
		case int:
			plain[i] = strconv.Itoa(n)
		case int64:
			plain[i] = strconv.FormatInt(n, 10)
		default:
			plain[i] = arg
		}
	}
	return sprintf(f, plain...)
}

// AsError returns err as an *Error, if it is or wraps one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsFatal is true for errors which end a run: fatal errors of this package
// and all errors not created by this package.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := AsError(err); ok {
		return e.Fatal
	}
	return true
}
