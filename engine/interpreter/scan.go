package interpreter

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/tytex/core/dimen"
	"github.com/npillmayer/tytex/engine/token"
)

// Largest integer and largest register number, as in TeX.
const (
	MaxInt      = 1<<31 - 1
	MaxRegister = 32767
)

// Scanners report recoverable errors themselves and continue with a
// default value, as TeX does. They return an error only if the run cannot
// continue.

// eof turns io.EOF into nil.
func eof(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isOther(tok token.Token, r rune) bool {
	return tok.Cat == token.Other && tok.Char() == r
}

// ScanNonBlank returns the next token which is not a space, with expansion.
func (intp *Interpreter) ScanNonBlank() (token.Token, error) {
	for {
		tok, err := intp.NextExpanded()
		if err != nil || tok.Cat != token.Space {
			return tok, err
		}
	}
}

// scanOptionalSpace consumes one space token, if present.
func (intp *Interpreter) scanOptionalSpace() error {
	tok, err := intp.NextExpanded()
	if err != nil {
		return eof(err)
	}
	if tok.Cat != token.Space {
		intp.PushBack(tok)
	}
	return nil
}

// ScanKeyword checks if the next tokens spell a keyword, ignoring case.
// Leading spaces are skipped. If the keyword is not present, all tokens
// except the skipped spaces are pushed back.
func (intp *Interpreter) ScanKeyword(kw string) (bool, error) {
	var matched token.List
	letters := []rune(kw)
	for i := 0; i < len(letters); {
		tok, err := intp.NextExpanded()
		if err != nil {
			intp.PushTokens(matched)
			return false, eof(err)
		}
		if !tok.IsCode() && (tok.Char() == letters[i] || tok.Char() == unicode.ToUpper(letters[i])) {
			matched = append(matched, tok)
			i++
			continue
		}
		if tok.Cat == token.Space && len(matched) == 0 {
			continue
		}
		intp.PushBack(tok)
		intp.PushTokens(matched)
		return false, nil
	}
	return true, nil
}

// ScanOptionalEquals skips spaces and an optional '='.
func (intp *Interpreter) ScanOptionalEquals() error {
	tok, err := intp.ScanNonBlank()
	if err != nil {
		return eof(err)
	}
	if !isOther(tok, '=') {
		intp.PushBack(tok)
	}
	return nil
}

// scanSigns skips spaces and signs and returns the first other token.
func (intp *Interpreter) scanSigns() (neg bool, tok token.Token, err error) {
	for {
		tok, err = intp.ScanNonBlank()
		if err != nil {
			return
		}
		if isOther(tok, '-') {
			neg = !neg
		} else if !isOther(tok, '+') {
			return
		}
	}
}

// scanInternalInteger returns the value of a code denoting a quantity,
// coerced to an integer.
func (intp *Interpreter) scanInternalInteger(tok token.Token) (int64, bool, error) {
	if !tok.IsCode() {
		return 0, false, nil
	}
	code, ok := intp.ctx.Code(tok)
	if !ok {
		return 0, false, nil
	}
	switch c := code.(type) {
	case CountConvertible:
		n, err := c.CountValue(intp.ctx, intp)
		return n, true, err
	case DimenConvertible:
		d, err := c.DimenValue(intp.ctx, intp)
		return int64(d), true, err
	case GlueConvertible:
		g, err := c.GlueValue(intp.ctx, intp)
		return int64(g.Natural), true, err
	}
	return 0, false, nil
}

// ScanNumber scans an integer: an optionally signed decimal, octal (')
// or hexadecimal (") constant, a character code (`) or an internal
// quantity.
func (intp *Interpreter) ScanNumber() (int64, error) {
	neg, tok, err := intp.scanSigns()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, intp.report(NewError(ErrMissingNumber, intp.Locator()))
		}
		return 0, err
	}
	n, err := intp.scanUnsigned(tok)
	if neg {
		n = -n
	}
	return n, err
}

func (intp *Interpreter) scanUnsigned(tok token.Token) (int64, error) {
	if n, ok, err := intp.scanInternalInteger(tok); ok || err != nil {
		return n, err
	}
	switch {
	case isOther(tok, '`'):
		t, err := intp.Next()
		if err != nil {
			return 0, eof(err)
		}
		n := int64(t.Char())
		if t.IsCS() && !t.IsSingleLetterCS() {
			intp.PushBack(t)
			n = 0
			if err := intp.report(NewError(ErrMissingNumber, intp.Locator())); err != nil {
				return 0, err
			}
		}
		return n, intp.scanOptionalSpace()
	case isOther(tok, '\''):
		return intp.scanDigits(8, token.Token{})
	case isOther(tok, '"'):
		return intp.scanDigits(16, token.Token{})
	case tok.Cat == token.Other && tok.Char() >= '0' && tok.Char() <= '9':
		return intp.scanDigits(10, tok)
	}
	intp.PushBack(tok)
	return 0, intp.report(NewError(ErrMissingNumber, intp.Locator()))
}

func digitValue(tok token.Token, radix int64) (int64, bool) {
	if tok.IsCode() {
		return 0, false
	}
	r := tok.Char()
	var d int64
	switch {
	case tok.Cat == token.Other && r >= '0' && r <= '9':
		d = int64(r - '0')
	case radix == 16 && r >= 'A' && r <= 'F' && (tok.Cat == token.Other || tok.Cat == token.Letter):
		d = int64(r-'A') + 10
	default:
		return 0, false
	}
	return d, d < radix
}

// scanDigits reads digits in a radix. first is the first digit, if it has
// already been read.
func (intp *Interpreter) scanDigits(radix int64, first token.Token) (int64, error) {
	var n int64
	var digits int
	tooBig := false
	tok := first
	if first.Name == "" {
		var err error
		if tok, err = intp.NextExpanded(); err != nil {
			if errors.Is(err, io.EOF) {
				return 0, intp.report(NewError(ErrMissingNumber, intp.Locator()))
			}
			return 0, err
		}
	}
	for {
		d, ok := digitValue(tok, radix)
		if !ok {
			break
		}
		digits++
		n = n*radix + d
		if n > MaxInt {
			tooBig = true
			n = MaxInt
		}
		var err error
		if tok, err = intp.NextExpanded(); err != nil {
			if !errors.Is(err, io.EOF) {
				return 0, err
			}
			tok = token.Token{}
			break
		}
	}
	if tok.Name != "" && tok.Cat != token.Space {
		intp.PushBack(tok)
	}
	if digits == 0 {
		return 0, intp.report(NewError(ErrMissingNumber, intp.Locator()))
	}
	if tooBig {
		return MaxInt, intp.report(NewError(ErrNumberTooBig, intp.Locator()))
	}
	return n, nil
}

// ScanRegisterName scans a register number and returns it as the name of
// the register.
func (intp *Interpreter) ScanRegisterName() (string, error) {
	n, err := intp.ScanNumber()
	if err != nil {
		return "0", err
	}
	if n < 0 || n > MaxRegister {
		if err := intp.report(NewError(ErrIllegalRegister, intp.Locator(), n)); err != nil {
			return "0", err
		}
		n = 0
	}
	return strconv.FormatInt(n, 10), nil
}

// ScanDimen scans a dimension.
func (intp *Interpreter) ScanDimen() (dimen.Dimen, error) {
	neg, tok, err := intp.scanSigns()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, intp.report(NewError(ErrMissingNumber, intp.Locator()))
		}
		return 0, err
	}
	d, _, err := intp.scanDimenFrom(neg, tok, false)
	return d, err
}

// scanDimenFrom scans a dimension after the signs. With inf set, the units
// fil, fill and filll are allowed.
func (intp *Interpreter) scanDimenFrom(neg bool, tok token.Token, inf bool) (dimen.Dimen, dimen.Order, error) {
	var whole, frac int64
	if tok.IsCode() {
		if code, ok := intp.ctx.Code(tok); ok {
			switch c := code.(type) {
			case DimenConvertible:
				d, err := c.DimenValue(intp.ctx, intp)
				return sign(neg, d), dimen.Finite, err
			case GlueConvertible:
				g, err := c.GlueValue(intp.ctx, intp)
				return sign(neg, g.Natural), dimen.Finite, err
			}
		}
		n, ok, err := intp.scanInternalInteger(tok)
		if err != nil {
			return 0, dimen.Finite, err
		}
		if !ok {
			intp.PushBack(tok)
			if err := intp.report(NewError(ErrMissingNumber, intp.Locator())); err != nil {
				return 0, dimen.Finite, err
			}
		}
		whole = n
	} else if isOther(tok, '.') || isOther(tok, ',') {
		f, err := intp.scanFraction()
		if err != nil {
			return 0, dimen.Finite, err
		}
		frac = f
	} else {
		n, err := intp.scanUnsigned(tok)
		if err != nil {
			return 0, dimen.Finite, err
		}
		whole = n
		if decimal := tok.Cat == token.Other && unicode.IsDigit(tok.Char()); decimal {
			t, err := intp.NextExpanded()
			switch {
			case err == nil && (isOther(t, '.') || isOther(t, ',')):
				if frac, err = intp.scanFraction(); err != nil {
					return 0, dimen.Finite, err
				}
			case err == nil:
				intp.PushBack(t)
			case !errors.Is(err, io.EOF):
				return 0, dimen.Finite, err
			}
		}
	}
	if whole < 0 {
		neg = !neg
		whole = -whole
	}
	d, order, err := intp.scanUnit(whole, frac, inf)
	if err != nil {
		return 0, dimen.Finite, err
	}
	if d > dimen.MaxDimen {
		d = dimen.MaxDimen
		if err := intp.report(NewError(ErrDimensionTooLarge, intp.Locator())); err != nil {
			return 0, order, err
		}
	}
	return sign(neg, d), order, nil
}

func sign(neg bool, d dimen.Dimen) dimen.Dimen {
	if neg {
		return -d
	}
	return d
}

// scanFraction reads the decimal digits after a decimal point.
func (intp *Interpreter) scanFraction() (int64, error) {
	var digits strings.Builder
	for {
		tok, err := intp.NextExpanded()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		if tok.Cat != token.Other || tok.Char() < '0' || tok.Char() > '9' {
			if tok.Cat != token.Space {
				intp.PushBack(tok)
			}
			break
		}
		digits.WriteRune(tok.Char())
	}
	return dimen.RoundDecimals(digits.String()), nil
}

// scanUnit scans the unit of a dimension with value whole + frac/65536.
func (intp *Interpreter) scanUnit(whole, frac int64, inf bool) (dimen.Dimen, dimen.Order, error) {
	if inf {
		if ok, err := intp.ScanKeyword("fil"); err != nil {
			return 0, dimen.Finite, err
		} else if ok {
			order := dimen.Fil
			for order < dimen.Filll {
				more, err := intp.ScanKeyword("l")
				if err != nil {
					return 0, order, err
				}
				if !more {
					break
				}
				order++
			}
			return dimen.UnitPT.Scale(whole, frac), order, intp.scanOptionalSpace()
		}
	}
	// units given by internal quantities, em and ex
	tok, err := intp.ScanNonBlank()
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, dimen.Finite, err
	}
	if err == nil {
		if tok.IsCode() {
			if code, ok := intp.ctx.Code(tok); ok {
				var unit dimen.Dimen
				var isUnit bool
				switch c := code.(type) {
				case DimenConvertible:
					unit, err = c.DimenValue(intp.ctx, intp)
					isUnit = true
				case GlueConvertible:
					var g dimen.Glue
					g, err = c.GlueValue(intp.ctx, intp)
					unit, isUnit = g.Natural, true
				}
				if err != nil {
					return 0, dimen.Finite, err
				}
				if isUnit {
					return dimen.Dimen(whole)*unit + dimen.Dimen(frac*int64(unit)/65536), dimen.Finite, nil
				}
			}
		}
		intp.PushBack(tok)
	}
	f := intp.ctx.TypesettingContext().Font
	for _, rel := range []struct {
		kw   string
		size func() dimen.Dimen
	}{
		{"em", func() dimen.Dimen { return f.Size() }},
		{"ex", func() dimen.Dimen { return f.Height('x') }},
	} {
		ok, err := intp.ScanKeyword(rel.kw)
		if err != nil {
			return 0, dimen.Finite, err
		}
		if ok {
			unit := rel.size()
			d := dimen.Dimen(whole)*unit + dimen.Dimen(frac*int64(unit)/65536)
			return d, dimen.Finite, intp.scanOptionalSpace()
		}
	}
	mag := int64(1000)
	if ok, err := intp.ScanKeyword("true"); err != nil {
		return 0, dimen.Finite, err
	} else if ok {
		mag = intp.ctx.Magnification()
		if err := intp.ctx.SetMagnification(mag, true); err != nil {
			return 0, dimen.Finite, intp.magnificationError(err, mag)
		}
	}
	for _, name := range []string{"pt", "in", "pc", "cm", "mm", "bp", "dd", "cc", "sp"} {
		ok, err := intp.ScanKeyword(name)
		if err != nil {
			return 0, dimen.Finite, err
		}
		if ok {
			u, _ := dimen.PhysicalUnit(name)
			d := u.Scale(whole, frac)
			if mag != 1000 {
				d = d * 1000 / dimen.Dimen(mag)
			}
			return d, dimen.Finite, intp.scanOptionalSpace()
		}
	}
	if err := intp.report(NewError(ErrIllegalUnit, intp.Locator())); err != nil {
		return 0, dimen.Finite, err
	}
	return dimen.UnitPT.Scale(whole, frac), dimen.Finite, nil
}

// ScanGlue scans a glue specification: a dimension, optionally followed by
// "plus" and "minus" components, or an internal glue.
func (intp *Interpreter) ScanGlue() (dimen.Glue, error) {
	neg, tok, err := intp.scanSigns()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dimen.ZeroGlue, intp.report(NewError(ErrMissingNumber, intp.Locator()))
		}
		return dimen.ZeroGlue, err
	}
	if tok.IsCode() {
		if code, ok := intp.ctx.Code(tok); ok {
			if c, ok := code.(GlueConvertible); ok {
				g, err := c.GlueValue(intp.ctx, intp)
				if neg {
					g = g.Multiply(-1)
				}
				return g, err
			}
		}
	}
	var g dimen.Glue
	if g.Natural, _, err = intp.scanDimenFrom(neg, tok, false); err != nil {
		return g, err
	}
	if ok, err := intp.ScanKeyword("plus"); err != nil {
		return g, err
	} else if ok {
		if g.Stretch, err = intp.scanGlueComponent(); err != nil {
			return g, err
		}
	}
	if ok, err := intp.ScanKeyword("minus"); err != nil {
		return g, err
	} else if ok {
		if g.Shrink, err = intp.scanGlueComponent(); err != nil {
			return g, err
		}
	}
	return g, nil
}

func (intp *Interpreter) scanGlueComponent() (dimen.GlueComponent, error) {
	neg, tok, err := intp.scanSigns()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dimen.GlueComponent{}, intp.report(NewError(ErrMissingNumber, intp.Locator()))
		}
		return dimen.GlueComponent{}, err
	}
	d, order, err := intp.scanDimenFrom(neg, tok, true)
	return dimen.GlueComponent{Value: d, Order: order}, err
}

// ScanBalancedText scans a token list enclosed in braces. The braces are
// not part of the result. With expand set, expandable tokens are expanded.
// A missing left brace is reported and assumed.
func (intp *Interpreter) ScanBalancedText(expand bool) (token.List, error) {
	tok, err := intp.ScanNonBlank()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err != nil || tok.Cat != token.LeftBrace {
		if err == nil {
			intp.PushBack(tok)
		}
		if err := intp.report(NewError(ErrMissingToken, intp.Locator(), "{")); err != nil {
			return nil, err
		}
	}
	return intp.scanUntilRightBrace(expand)
}

func (intp *Interpreter) scanUntilRightBrace(expand bool) (token.List, error) {
	var l token.List
	level := 0
	next := intp.Next
	if expand {
		next = intp.NextExpanded
	}
	for {
		tok, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return l, intp.report(NewError(ErrMissingToken, intp.Locator(), "}"))
			}
			return l, err
		}
		switch tok.Cat {
		case token.LeftBrace:
			level++
		case token.RightBrace:
			if level == 0 {
				return l, nil
			}
			level--
		}
		l = append(l, tok)
	}
}

// ScanControlSequence scans a control sequence or active character without
// expansion. If none is present, the error is reported and a placeholder is
// returned.
func (intp *Interpreter) ScanControlSequence() (token.Token, error) {
	for {
		tok, err := intp.Next()
		if err != nil && !errors.Is(err, io.EOF) {
			return tok, err
		}
		if err == nil && tok.Cat == token.Space {
			continue
		}
		if err == nil && tok.IsCode() {
			return tok, nil
		}
		if err == nil {
			intp.PushBack(tok)
		}
		placeholder := intp.ctx.Tokens().CS("inaccessible ", "")
		return placeholder, intp.report(NewError(ErrMissingCS, intp.Locator()))
	}
}

// ScanName scans a file or font name: a sequence of character tokens up to
// the next space or control sequence, with expansion.
func (intp *Interpreter) ScanName() (string, error) {
	tok, err := intp.ScanNonBlank()
	var name strings.Builder
	for err == nil {
		if tok.IsCode() || tok.Cat == token.LeftBrace || tok.Cat == token.RightBrace {
			intp.PushBack(tok)
			break
		}
		if tok.Cat == token.Space {
			break
		}
		name.WriteString(tok.Name)
		tok, err = intp.NextExpanded()
	}
	return name.String(), eof(err)
}
