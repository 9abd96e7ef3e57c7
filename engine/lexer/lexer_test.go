package lexer

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tytex/engine/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	cats map[rune]token.Catcode
	ns   string
}

func newTestEnv() *testEnv {
	return &testEnv{cats: map[rune]token.Catcode{
		'\\': token.Escape, '{': token.LeftBrace, '}': token.RightBrace,
		'$': token.MathShift, '#': token.MacroParam, '^': token.SupMark,
		'~': token.Active, '%': token.Comment, ' ': token.Space,
		'\r': token.CR, 0x7f: token.Invalid,
	}}
}

func (env *testEnv) Catcode(r rune) token.Catcode {
	if c, ok := env.cats[r]; ok {
		return c
	}
	if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
		return token.Letter
	}
	return token.Other
}

func (env *testEnv) Namespace() string {
	return env.ns
}

func readAll(t *testing.T, s Stream) token.List {
	var l token.List
	for {
		tok, err := s.Get()
		if errors.Is(err, io.EOF) {
			return l
		}
		require.NoError(t, err)
		l = append(l, tok)
	}
}

func TestControlSequences(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	f := token.NewFactory()
	lx := NewFactory(newTestEnv(), f)
	l := readAll(t, lx.FromString(`\iftrue a\else b\fi\end`, "test"))
	expected := token.List{
		f.CS("iftrue", ""), f.Letter('a'), f.CS("else", ""),
		f.Letter('b'), f.CS("fi", ""), f.CS("end", ""),
	}
	assert.Equal(t, expected, l)
	//
	l = readAll(t, lx.FromString(`\$\ x`, "test"))
	assert.Equal(t, token.List{f.CS("$", ""), f.CS(" ", ""), f.Letter('x'), f.Space()}, l)
}

func TestSpacesAndParagraphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	f := token.NewFactory()
	lx := NewFactory(newTestEnv(), f)
	l := readAll(t, lx.FromString("  a   b  \n\nc % comment\nd", "test"))
	expected := token.List{
		f.Letter('a'), f.Space(), f.Letter('b'), f.Space(),
		f.CS("par", ""),
		f.Letter('c'), f.Space(), f.Letter('d'), f.Space(),
	}
	assert.Equal(t, expected, l)
}

func TestCatcodeChangeTakesEffect(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	env := newTestEnv()
	f := token.NewFactory()
	s := NewFactory(env, f).FromString("@a@", "test")
	tok, _ := s.Get()
	assert.Equal(t, f.Other('@'), tok)
	env.cats['@'] = token.Letter
	tok, _ = s.Get()
	assert.Equal(t, f.Letter('a'), tok)
	tok, _ = s.Get()
	assert.Equal(t, f.Letter('@'), tok)
}

func TestNamespacesAndActive(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	env := newTestEnv()
	env.ns = "my"
	f := token.NewFactory()
	l := readAll(t, NewFactory(env, f).FromString(`\x~`, "test"))
	require.Len(t, l, 3)
	assert.Equal(t, "my", l[0].Namespace)
	assert.Equal(t, token.Active, l[1].Cat)
	assert.Equal(t, "my", l[1].Namespace)
	assert.Equal(t, f.Space(), l[2], "end of line is a space")
}

func TestSuperscriptNotation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	f := token.NewFactory()
	l := readAll(t, NewFactory(newTestEnv(), f).FromString(`^^41^^5a`, "test"))
	assert.Equal(t, token.List{f.Letter('A'), f.Letter('Z'), f.Space()}, l)
}

func TestInvalidCharacter(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	f := token.NewFactory()
	s := NewFactory(newTestEnv(), f).FromString("a\x7fb", "test")
	tok, err := s.Get()
	assert.NoError(t, err)
	assert.Equal(t, f.Letter('a'), tok)
	_, err = s.Get()
	var ice *InvalidCharError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, 1, ice.Locator.Line)
	tok, err = s.Get()
	assert.NoError(t, err)
	assert.Equal(t, f.Letter('b'), tok)
}

func TestFromFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.lexer")
	defer teardown()
	//
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "input.tex"), []byte(`\relax`), 0644)
	require.NoError(t, err)
	lx := NewFactory(newTestEnv(), nil)
	lx.BaseDir = dir
	s, err := lx.FromFile("input")
	require.NoError(t, err)
	assert.Equal(t, "input.tex", s.Locator().Source)
	l := readAll(t, s)
	assert.Equal(t, token.List{{Cat: token.Escape, Name: "relax"}}, l)
	_, err = lx.FromFile("missing")
	assert.Error(t, err)
}
