package grapheme

import "github.com/hnimtadd/termtext/terminal/unicodetrie"

const variationSelector16 = 0xfe0f

// plainNarrow is the state of a printable ASCII character that follows a
// plain cell.
var plainNarrow = NewJoinState(0, 1, false)

// Graphemes segments by grapheme cluster rules using the property trie.
type Graphemes struct {
	trie          *unicodetrie.Trie
	ambiguousWide bool
}

func NewGraphemes(trie *unicodetrie.Trie, opts Options) *Graphemes {
	return &Graphemes{trie: trie, ambiguousWide: opts.AmbiguousWide}
}

func (g *Graphemes) Version() string {
	return VersionGraphemes15
}

// Info looks up the table value of cp.
func (g *Graphemes) Info(cp rune) CodepointInfo {
	return CodepointInfo(g.trie.Get(cp))
}

func (g *Graphemes) CharProperties(cp rune, preceding JoinState) JoinState {
	if cp >= 32 && cp < 127 && preceding.Kind() == 0 {
		return plainNarrow
	}

	info := g.Info(cp)
	class := info.Class()

	w := info.WidthClass()
	if w >= WidthWide {
		if w == WidthWide || g.ambiguousWide || cp == variationSelector16 {
			w = 2
		} else {
			w = 1
		}
	} else {
		w = 1
	}

	if preceding == 0 {
		return NewJoinState(int32(class)-16, w, false)
	}

	oldWidth := preceding.Width()
	switch shouldJoin(preceding.Class(), class) {
	case joinRegionalPair:
		return NewJoinState(int32(ClassSawRegionalPair), 2, true)
	case joinYes:
		return NewJoinState(int32(class)+16, max(oldWidth, w), true)
	default:
		return NewJoinState(int32(class)-16, w, false)
	}
}

func (g *Graphemes) Wcwidth(cp rune) int {
	info := g.Info(cp)
	switch info.Class() {
	case ClassExtend, ClassPrepend:
		return 0
	}
	w := info.WidthClass()
	if w == WidthWide || (w == WidthAmbiguous && g.ambiguousWide) {
		return 2
	}
	return 1
}

type joinResult int

const (
	joinNo joinResult = iota
	joinYes
	joinRegionalPair
)

// shouldJoin reports whether a code point of class after continues a cluster
// whose last code point has class before. The first matching rule wins.
func shouldJoin(before, after Class) joinResult {
	switch before {
	case ClassL:
		switch after {
		case ClassL, ClassV, ClassLV, ClassLVT:
			return joinYes
		}
	case ClassLV, ClassV:
		switch after {
		case ClassV, ClassT:
			return joinYes
		}
	case ClassLVT, ClassT:
		if after == ClassT {
			return joinYes
		}
	}

	switch {
	case after == ClassExtend || after == ClassZWJ:
		return joinYes
	case before == ClassPrepend:
		return joinYes
	case after == ClassSpacingMark:
		return joinYes
	case before == ClassZWJ && after == ClassExtendedPictographic:
		return joinYes
	case before == ClassRegionalIndicator && after == ClassRegionalIndicator:
		return joinRegionalPair
	}
	return joinNo
}
