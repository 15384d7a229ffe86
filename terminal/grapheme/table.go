package grapheme

import (
	_ "embed"
	"sync"

	"github.com/hnimtadd/termtext/terminal/unicodetrie"
)

//go:generate go run gen_table.go

// Unicode 15.0 properties, written by gen_table.go.
//
//go:embed unicode15.trie
var unicode15Asset []byte

var loadTable = sync.OnceValues(func() (*unicodetrie.Trie, error) {
	return unicodetrie.New(unicode15Asset)
})

// Table returns the decoded Unicode 15 property trie. It is decoded once and
// shared, lookups are safe from multiple goroutines.
func Table() (*unicodetrie.Trie, error) {
	return loadTable()
}
