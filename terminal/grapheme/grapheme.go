// Package grapheme decides how code points combine into grid cells. A
// Provider folds code points one at a time: given the state left by the
// previous code point it reports whether the new one joins that cell and
// which width the cell ends up with.
package grapheme

import (
	"fmt"
	"strings"

	"github.com/hnimtadd/termtext/logger"
)

// Class is the grapheme cluster break property of a code point.
type Class uint8

const (
	ClassOther Class = iota
	ClassPrepend
	ClassExtend
	ClassRegionalIndicator
	ClassSpacingMark
	ClassL
	ClassV
	ClassT
	ClassLV
	ClassLVT
	ClassZWJ
	ClassExtendedPictographic

	// ClassSawRegionalPair never comes out of the table. It marks a cell that
	// already holds two regional indicators, so a third one starts a new
	// cluster.
	ClassSawRegionalPair Class = 32
)

var classNames = [...]string{
	"Other", "Prepend", "Extend", "RegionalIndicator", "SpacingMark",
	"L", "V", "T", "LV", "LVT", "ZWJ", "ExtendedPictographic",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	if c == ClassSawRegionalPair {
		return "SawRegionalPair"
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// Width classes stored in bits 4-5 of a CodepointInfo.
const (
	WidthZero      = 0
	WidthNarrow    = 1
	WidthWide      = 2
	WidthAmbiguous = 3 // wide only when ambiguous characters are wide
)

// CodepointInfo is the packed table value of a code point: the break class
// in the low 4 bits and the width class in the next 2.
type CodepointInfo uint32

func (i CodepointInfo) Class() Class {
	return Class(i & 0xf)
}

func (i CodepointInfo) WidthClass() int {
	return int(i>>4) & 3
}

// JoinState is threaded from cell to cell while printing. It packs
//
//	kind<<3 | width<<1 | joined
//
// where kind is class+16 for a code point that joined the previous cell,
// class-16 for one that started a new cell, or ClassSawRegionalPair. Only the
// low 24 bits of kind are kept. The zero value means "nothing precedes".
type JoinState uint32

func NewJoinState(kind int32, width int, joined bool) JoinState {
	s := (uint32(kind)&0xffffff)<<3 | uint32(width&3)<<1
	if joined {
		s |= 1
	}
	return JoinState(s)
}

// Kind is the 24 bit kind field.
func (s JoinState) Kind() uint32 {
	return uint32(s) >> 3
}

// Class is the break class of the last code point folded into the cell.
func (s JoinState) Class() Class {
	return Class(s.Kind() & 0xf)
}

// Width is the resolved width of the cell.
func (s JoinState) Width() int {
	return int(s>>1) & 3
}

// Joined reports whether the code point joined the preceding cell.
func (s JoinState) Joined() bool {
	return s&1 == 1
}

// Provider is one of a closed set of segmentation strategies.
type Provider interface {
	Version() string
	CharProperties(cp rune, preceding JoinState) JoinState
	Wcwidth(cp rune) int
}

const (
	// VersionWidth15 is width only: zero width code points join the cell in
	// front of them and nothing else does.
	VersionWidth15 = "15"
	// VersionGraphemes15 follows the Unicode 15 grapheme cluster rules.
	VersionGraphemes15 = "15-graphemes"

	DefaultVersion = VersionGraphemes15
)

type Options struct {
	// AmbiguousWide renders East Asian ambiguous characters two cells wide.
	AmbiguousWide bool
	Logger        logger.Logger
}

// Versions lists the accepted provider versions.
func Versions() []string {
	return []string{VersionWidth15, VersionGraphemes15}
}

// Select returns the provider for version.
func Select(version string, opts Options) (Provider, error) {
	log := logger.OrNop(opts.Logger)
	switch version {
	case VersionWidth15:
		log.Debug("selected unicode provider", "version", version, "ambiguousWide", opts.AmbiguousWide)
		return NewWidthProvider(opts), nil
	case VersionGraphemes15, "":
		trie, err := Table()
		if err != nil {
			return nil, err
		}
		log.Debug("selected unicode provider",
			"version", VersionGraphemes15,
			"ambiguousWide", opts.AmbiguousWide,
			"highStart", trie.HighStart(),
			"entries", trie.Len(),
		)
		return NewGraphemes(trie, opts), nil
	default:
		return nil, fmt.Errorf("unknown unicode version %q, expected one of %s",
			version, strings.Join(Versions(), ", "))
	}
}

// MustDefault returns the grapheme provider and panics if the embedded table
// cannot be loaded.
func MustDefault() Provider {
	p, err := Select(DefaultVersion, Options{})
	if err != nil {
		panic(err)
	}
	return p
}
