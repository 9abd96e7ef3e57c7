package interpreter

import (
	"errors"
	"io"

	"github.com/npillmayer/tytex/engine/lexer"
	"github.com/npillmayer/tytex/engine/token"
)

// StreamFactory creates token streams for strings, readers and files.
// It is usually a *lexer.Factory bound to the context of the run.
type StreamFactory interface {
	FromString(s string, name string) lexer.Stream
	FromReader(r io.Reader, name string) lexer.Stream
	FromFile(fileName string) (lexer.Stream, error)
}

var _ StreamFactory = &lexer.Factory{}

// tokenStream is a stream over a list of tokens, e.g. the replacement text
// of a macro.
type tokenStream struct {
	tokens token.List
	pos    int
	loc    token.Locator
}

func (ts *tokenStream) Get() (token.Token, error) {
	if ts.pos >= len(ts.tokens) {
		return token.Token{}, io.EOF
	}
	tok := ts.tokens[ts.pos]
	ts.pos++
	return tok, nil
}

func (ts *tokenStream) Locator() token.Locator {
	return ts.loc
}

func (ts *tokenStream) exhausted() bool {
	return ts.pos >= len(ts.tokens)
}

// PushStream pushes a stream onto the input stack. Tokens are read from
// the most recently pushed stream until it is exhausted.
func (intp *Interpreter) PushStream(s lexer.Stream) {
	intp.input.Push(s)
}

// PushTokens inserts a list of tokens to be read next. The list is not
// modified.
func (intp *Interpreter) PushTokens(l token.List) {
	if len(l) == 0 {
		return
	}
	intp.input.Push(&tokenStream{tokens: l, loc: intp.Locator()})
}

// PushBack inserts a single token to be read next.
func (intp *Interpreter) PushBack(tok token.Token) {
	intp.PushTokens(token.List{tok})
}

// PushString inserts the tokens of a string, tokenized with the current
// catcodes.
func (intp *Interpreter) PushString(s string, name string) {
	if intp.streams == nil {
		return
	}
	intp.PushStream(intp.streams.FromString(s, name))
}

// PushFile inserts the tokens of a file.
func (intp *Interpreter) PushFile(fileName string) error {
	if intp.streams == nil {
		return NewError(ErrNoStreamFactory, intp.Locator())
	}
	s, err := intp.streams.FromFile(fileName)
	if err != nil {
		return NewError(ErrFileNotFound, intp.Locator(), fileName).Wrap(err)
	}
	intp.PushStream(s)
	return nil
}

// Locator returns the position of the innermost stream reading from a
// source, i.e. not from a token list.
func (intp *Interpreter) Locator() token.Locator {
	for _, v := range intp.input.Values() {
		if _, ok := v.(*tokenStream); !ok {
			return v.(lexer.Stream).Locator()
		}
	}
	if v, ok := intp.input.Peek(); ok {
		return v.(lexer.Stream).Locator()
	}
	return token.Locator{}
}

// Next returns the next token from the input stack without expansion. At
// the end of all input it returns io.EOF. Other errors are fatal.
func (intp *Interpreter) Next() (token.Token, error) {
	for {
		v, ok := intp.input.Peek()
		if !ok {
			return token.Token{}, io.EOF
		}
		s := v.(lexer.Stream)
		tok, err := s.Get()
		if err == nil {
			if ts, ok := s.(*tokenStream); ok && ts.exhausted() {
				intp.input.Pop()
			}
			return tok, nil
		}
		if errors.Is(err, io.EOF) {
			intp.input.Pop()
			if c, ok := s.(io.Closer); ok {
				c.Close()
			}
			continue
		}
		var ice *lexer.InvalidCharError
		if errors.As(err, &ice) {
			if err := intp.report(NewError(ErrInvalidChar, ice.Locator, ice.Char)); err != nil {
				return token.Token{}, err
			}
			continue
		}
		return token.Token{}, NewError(ErrInternal, s.Locator(), err.Error()).Wrap(err)
	}
}

// inputDepth returns the number of streams on the input stack.
func (intp *Interpreter) inputDepth() int {
	return intp.input.Size()
}
