package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/tytex/engine/token"
)

// Environment is what a lexer needs to know about the interpreter state.
// It is usually implemented by the interpreter's context.
type Environment interface {
	Catcode(r rune) token.Catcode
	Namespace() string
}

// Stream is a source of tokens. Get returns io.EOF after the last token.
type Stream interface {
	Get() (token.Token, error)
	Locator() token.Locator
}

// InvalidCharError is returned for characters with catcode Invalid.
// The stream stays usable after such an error.
type InvalidCharError struct {
	Char    rune
	Locator token.Locator
}

func (e *InvalidCharError) Error() string {
	return fmt.Sprintf("%s: text line contains an invalid character %U", e.Locator, e.Char)
}

// EndLineChar is the character appended to every input line.
const EndLineChar = '\r'

type state int8

const (
	stateN state = iota
	stateM
	stateS
)

// Tokenizer is a Stream reading characters from an io.Reader.
type Tokenizer struct {
	env    Environment
	tokens *token.Factory
	input  *bufio.Reader
	closer io.Closer
	name   string
	line   []rune
	pos    int
	lineno int
	state  state
	eof    bool
}

var _ Stream = &Tokenizer{}

// NewTokenizer creates a tokenizer for an input reader. name is used for
// locators in error messages.
func NewTokenizer(r io.Reader, name string, env Environment, tokens *token.Factory) *Tokenizer {
	if tokens == nil {
		tokens = token.NewFactory()
	}
	return &Tokenizer{
		env:    env,
		tokens: tokens,
		input:  bufio.NewReader(r),
		name:   name,
		pos:    0,
		state:  stateN,
	}
}

// Locator returns the position of the character to be read next.
func (tz *Tokenizer) Locator() token.Locator {
	return token.Locator{Source: tz.name, Line: tz.lineno, Column: tz.pos + 1}
}

// Close closes the underlying input if it is a file.
func (tz *Tokenizer) Close() error {
	if tz.closer != nil {
		err := tz.closer.Close()
		tz.closer = nil
		return err
	}
	return nil
}

// nextLine reads the next input line, strips trailing spaces and appends
// the end of line character.
func (tz *Tokenizer) nextLine() bool {
	if tz.eof {
		return false
	}
	s, err := tz.input.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			tracer().Errorf("error reading %s: %v", tz.name, err)
		}
		tz.eof = true
		tz.Close()
		if s == "" {
			return false
		}
	}
	s = strings.TrimRight(s, "\r\n")
	s = strings.TrimRight(s, " ")
	tz.line = append([]rune(s), EndLineChar)
	tz.pos = 0
	tz.lineno++
	tz.state = stateN
	return true
}

func (tz *Tokenizer) catcode(r rune) token.Catcode {
	return tz.env.Catcode(r)
}

// peek returns the next character of the current line, handling ^^
// notation. n is the number of runes the character occupies in the line.
func (tz *Tokenizer) peek(at int) (r rune, n int, ok bool) {
	if at >= len(tz.line) {
		return 0, 0, false
	}
	r = tz.line[at]
	if tz.catcode(r) == token.SupMark && at+2 < len(tz.line) && tz.line[at+1] == r {
		c := tz.line[at+2]
		if at+3 < len(tz.line) && isHexDigit(c) && isHexDigit(tz.line[at+3]) {
			return hexValue(c)<<4 | hexValue(tz.line[at+3]), 4, true
		}
		if c < 128 {
			if c < 64 {
				return c + 64, 3, true
			}
			return c - 64, 3, true
		}
	}
	return r, 1, true
}

// Get returns the next token. It is part of interface Stream.
func (tz *Tokenizer) Get() (token.Token, error) {
	for {
		if tz.pos >= len(tz.line) {
			if !tz.nextLine() {
				return token.Token{}, io.EOF
			}
		}
		r, n, _ := tz.peek(tz.pos)
		loc := tz.Locator()
		tz.pos += n
		cat := tz.catcode(r)
		switch cat {
		case token.Escape:
			return tz.controlSequence(), nil
		case token.Active:
			tz.state = stateM
			return tz.tokens.Active(r, tz.env.Namespace()), nil
		case token.CR:
			st := tz.state
			tz.pos = len(tz.line) // drop the rest of the line
			switch st {
			case stateN:
				return tz.tokens.CS("par", tz.env.Namespace()), nil
			case stateM:
				return tz.tokens.Space(), nil
			}
		case token.Space:
			if tz.state == stateM {
				tz.state = stateS
				return tz.tokens.Space(), nil
			}
		case token.Ignore:
		case token.Comment:
			tz.pos = len(tz.line)
		case token.Invalid:
			tracer().Errorf("invalid character %U at %s", r, loc)
			return token.Token{}, &InvalidCharError{Char: r, Locator: loc}
		default:
			tz.state = stateM
			return tz.tokens.Char(cat, r), nil
		}
	}
}

// controlSequence reads the name of a control sequence after the escape
// character has been consumed.
func (tz *Tokenizer) controlSequence() token.Token {
	ns := tz.env.Namespace()
	r, n, ok := tz.peek(tz.pos)
	if !ok {
		tz.state = stateM
		return tz.tokens.CS("", ns)
	}
	cat := tz.catcode(r)
	if cat != token.Letter {
		tz.pos += n
		if cat == token.Space {
			tz.state = stateS
		} else {
			tz.state = stateM
		}
		return tz.tokens.CS(string(r), ns)
	}
	var name strings.Builder
	for {
		r, n, ok = tz.peek(tz.pos)
		if !ok || tz.catcode(r) != token.Letter {
			break
		}
		name.WriteRune(r)
		tz.pos += n
	}
	tz.state = stateS
	return tz.tokens.CS(name.String(), ns)
}

func isHexDigit(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'f'
}

func hexValue(r rune) rune {
	if r <= '9' {
		return r - '0'
	}
	return r - 'a' + 10
}

// --- Factory ---------------------------------------------------------------

// Factory creates token streams. It is the interpreter's token stream
// factory.
type Factory struct {
	// BaseDir is the base directory for files. Relative file names are
	// interpreted relative to this directory.
	BaseDir string
	env     Environment
	tokens  *token.Factory
}

// NewFactory creates a token stream factory for an environment.
func NewFactory(env Environment, tokens *token.Factory) *Factory {
	return &Factory{env: env, tokens: tokens}
}

// FromString creates a stream reading from a string.
func (f *Factory) FromString(s string, name string) Stream {
	return NewTokenizer(strings.NewReader(s), name, f.env, f.tokens)
}

// FromReader creates a stream reading from an io.Reader.
func (f *Factory) FromReader(r io.Reader, name string) Stream {
	return NewTokenizer(r, name, f.env, f.tokens)
}

// FromFile creates a stream reading a file. If the file name has no
// extension, ".tex" is tried as well.
func (f *Factory) FromFile(fileName string) (Stream, error) {
	if f.BaseDir != "" && !filepath.IsAbs(fileName) {
		fileName = filepath.Join(f.BaseDir, fileName)
	}
	fd, err := os.Open(fileName)
	if err != nil && filepath.Ext(fileName) == "" {
		fd, err = os.Open(fileName + ".tex")
		if err == nil {
			fileName += ".tex"
		}
	}
	if err != nil {
		return nil, err
	}
	tz := NewTokenizer(fd, filepath.Base(fileName), f.env, f.tokens)
	tz.closer = fd
	return tz, nil
}

// Tokens returns the token factory used by streams of this factory.
func (f *Factory) Tokens() *token.Factory {
	return f.tokens
}
