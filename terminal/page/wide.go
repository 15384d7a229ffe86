package page

type Wide int

const (
	// Not a wide character, cell width 1
	WideNarrow Wide = iota

	// WideWide character, cell width 2
	WideWide

	// Spacer after wide character. Do not render
	WideSpacerTail

	// Spacer before wide character. Do not render.
	//
	// This is Spacer at the end of a soft-wrapped line to indicate that a
	// wide character is continued on the next line..
	WideSpacerHead
)

func (w Wide) String() string {
	switch w {
	case WideNarrow:
		return "narrow"
	case WideWide:
		return "wide"
	case WideSpacerTail:
		return "spacer_tail"
	case WideSpacerHead:
		return "spacer_head"
	default:
		return "unknown"
	}
}
