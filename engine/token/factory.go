package token

// Factory creates tokens. It interns the names of control sequences and
// caches single character tokens, so that repeated tokens share their
// string data.
type Factory struct {
	names map[string]string
	chars map[charKey]Token
}

type charKey struct {
	cat Catcode
	r   rune
}

// NewFactory creates a token factory.
func NewFactory() *Factory {
	return &Factory{
		names: make(map[string]string),
		chars: make(map[charKey]Token),
	}
}

// CS creates a control sequence token in a namespace.
func (f *Factory) CS(name string, namespace string) Token {
	if n, ok := f.names[name]; ok {
		name = n
	} else {
		f.names[name] = name
	}
	return Token{Cat: Escape, Name: name, Namespace: namespace}
}

// Char creates a character token with a given catcode. Escape is not a
// valid catcode for a character token and is mapped to Other.
func (f *Factory) Char(cat Catcode, r rune) Token {
	if cat == Escape {
		cat = Other
	}
	key := charKey{cat, r}
	if t, ok := f.chars[key]; ok {
		return t
	}
	t := Token{Cat: cat, Name: string(r)}
	f.chars[key] = t
	return t
}

// Active creates an active character token in a namespace.
func (f *Factory) Active(r rune, namespace string) Token {
	return f.Char(Active, r).InNamespace(namespace)
}

// Letter creates a letter token.
func (f *Factory) Letter(r rune) Token {
	return f.Char(Letter, r)
}

// Other creates a token of catcode Other.
func (f *Factory) Other(r rune) Token {
	return f.Char(Other, r)
}

// Space creates a space token.
func (f *Factory) Space() Token {
	return f.Char(Space, ' ')
}

// LeftBrace creates a begin-group token '{'.
func (f *Factory) LeftBrace() Token {
	return f.Char(LeftBrace, '{')
}

// RightBrace creates an end-group token '}'.
func (f *Factory) RightBrace() Token {
	return f.Char(RightBrace, '}')
}

// FromString converts a string into a list of character tokens, as TeX does
// for the results of \string, \the or \number: spaces get catcode Space,
// everything else catcode Other.
func (f *Factory) FromString(s string) List {
	l := make(List, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			l = append(l, f.Space())
		} else {
			l = append(l, f.Other(r))
		}
	}
	return l
}
