package token

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
)

func TestTokenEquality(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.token")
	defer teardown()
	//
	f := NewFactory()
	assert.Equal(t, f.CS("relax", ""), Token{Cat: Escape, Name: "relax"})
	assert.NotEqual(t, f.CS("relax", ""), f.CS("relax", "ns"), "namespace is part of identity")
	assert.NotEqual(t, f.Letter('a'), f.Other('a'), "catcode is part of identity")
	assert.Equal(t, f.Letter('a'), f.Letter('a'))
	m := map[Token]int{f.CS("x", ""): 1}
	assert.Equal(t, 1, m[Token{Cat: Escape, Name: "x"}])
}

func TestTokenKinds(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.token")
	defer teardown()
	//
	f := NewFactory()
	cs := f.CS("a", "")
	assert.True(t, cs.IsCS())
	assert.True(t, cs.IsSingleLetterCS())
	assert.True(t, f.Active('~', "").IsCode())
	assert.False(t, f.Letter('x').IsCode())
	assert.Equal(t, 'x', f.Letter('x').Char())
	assert.Equal(t, Other, f.Char(Escape, '\\').Cat)
	assert.Equal(t, "", f.Letter('x').InNamespace("ns").Namespace, "characters are not namespaced")
	assert.Equal(t, "letter", Letter.String())
	assert.False(t, Catcode(16).Valid())
}

func TestListString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tytex.token")
	defer teardown()
	//
	f := NewFactory()
	l := List{f.CS("def", ""), f.CS("x", ""), f.LeftBrace(), f.Letter('a'), f.CS("%", ""), f.RightBrace()}
	assert.Equal(t, `\def \x {a\%}`, l.String())
	assert.True(t, l.Equals(l.Copy()))
	assert.Equal(t, List{f.Other('1'), f.Space(), f.Other('2')}, f.FromString("1 2"))
}
