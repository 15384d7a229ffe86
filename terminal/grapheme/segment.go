package grapheme

import "unicode/utf8"

// Cluster is the text that ends up in one cell.
type Cluster struct {
	Text  string
	Width int
}

// Segment folds s into cells the way a terminal would print it with p.
// Invalid UTF-8 is folded as U+FFFD.
func Segment(p Provider, s string) []Cluster {
	var (
		clusters []Cluster
		state    JoinState
		start    int
	)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		end := i + size
		state = p.CharProperties(r, state)
		if state.Joined() && len(clusters) > 0 {
			last := &clusters[len(clusters)-1]
			last.Text = s[start:end]
			last.Width = state.Width()
		} else {
			start = i
			clusters = append(clusters, Cluster{Text: s[i:end], Width: state.Width()})
		}
		i = end
	}
	return clusters
}

// StringWidth is the number of cells s occupies when printed with p.
func StringWidth(p Provider, s string) int {
	width := 0
	for _, c := range Segment(p, s) {
		width += c.Width
	}
	return width
}
