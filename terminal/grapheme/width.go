package grapheme

import "github.com/mattn/go-runewidth"

// WidthProvider only looks at display widths. A zero width code point joins
// the cell in front of it as long as that cell has a width.
type WidthProvider struct {
	cond *runewidth.Condition
}

func NewWidthProvider(opts Options) *WidthProvider {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = opts.AmbiguousWide
	return &WidthProvider{cond: cond}
}

func (p *WidthProvider) Version() string {
	return VersionWidth15
}

func (p *WidthProvider) Wcwidth(cp rune) int {
	return p.cond.RuneWidth(cp)
}

func (p *WidthProvider) CharProperties(cp rune, preceding JoinState) JoinState {
	width := p.Wcwidth(cp)
	join := width == 0 && preceding != 0
	if join {
		oldWidth := preceding.Width()
		if oldWidth == 0 {
			join = false
		} else if oldWidth > width {
			width = oldWidth
		}
	}
	return NewJoinState(0, width, join)
}
