//go:build generate

// This program generates unicode15.trie, the packed grapheme break and width
// table read by this package, from the Unicode Character Database.
//
//go:generate go run gen_table.go

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"github.com/klauspost/compress/flate"

	"github.com/hnimtadd/termtext/terminal/unicodetrie"
)

const (
	graphemeBreakURL = `https://www.unicode.org/Public/15.0.0/ucd/auxiliary/GraphemeBreakProperty.txt`
	emojiDataURL     = `https://www.unicode.org/Public/15.0.0/ucd/emoji/emoji-data.txt`
	eastAsianURL     = `https://www.unicode.org/Public/15.0.0/ucd/EastAsianWidth.txt`

	output = "unicode15.trie"
)

// A property line: a code point or range, a property value, and a comment.
var propertyPattern = regexp.MustCompile(`^([0-9A-F]{4,6})(\.\.([0-9A-F]{4,6}))?\s*;\s*(\w+)\s*(#.*)?$`)

// Break classes, in the order of grapheme.Class.
var classes = map[string]uint32{
	"Prepend":            1,
	"Extend":             2,
	"Regional_Indicator": 3,
	"SpacingMark":        4,
	"L":                  5,
	"V":                  6,
	"T":                  7,
	"LV":                 8,
	"LVT":                9,
	"ZWJ":                10,
}

const classExtendedPictographic = 11

const (
	widthZero      = 0
	widthNarrow    = 1
	widthWide      = 2
	widthAmbiguous = 3
)

func main() {
	log.SetPrefix("gen_table: ")
	log.SetFlags(0)

	gcb, err := parse(graphemeBreakURL)
	if err != nil {
		log.Fatal(err)
	}
	emoji, err := parse(emojiDataURL)
	if err != nil {
		log.Fatal(err)
	}
	eaw, err := parse(eastAsianURL)
	if err != nil {
		log.Fatal(err)
	}

	b := unicodetrie.NewBuilder(0, 0)
	for cp := rune(0); cp <= 0x10ffff; cp++ {
		b.Set(cp, value(cp, gcb[cp].single(), emoji[cp], eaw[cp].single()))
	}

	asset, err := b.Serialize(compress)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Writing %d bytes to %s", len(asset), output)
	if err := os.WriteFile(output, asset, 0644); err != nil {
		log.Fatal(err)
	}
}

// value packs the break class into the low nibble and the width class into
// bits 4-5.
func value(cp rune, gcb string, emoji property, eaw string) uint32 {
	class := classes[gcb]
	if emoji["Extended_Pictographic"] && class == 0 {
		class = classExtendedPictographic
	}

	var width uint32
	switch {
	case cp == 0xfe0f:
		// VARIATION SELECTOR-16 requests emoji presentation.
		width = widthWide
	case gcb == "Control" || gcb == "CR" || gcb == "LF" || gcb == "Extend" || gcb == "ZWJ":
		width = widthZero
	case gcb == "Regional_Indicator":
		width = widthNarrow
	case class == classExtendedPictographic:
		width = widthNarrow
		if emoji["Emoji_Presentation"] {
			width = widthWide
		}
	case eaw == "W" || eaw == "F":
		width = widthWide
	case eaw == "A":
		width = widthAmbiguous
	default:
		width = widthNarrow
	}
	return class | width<<4
}

// properties maps a code point to its property values in one UCD file.
type properties map[rune]property

type property map[string]bool

// parse downloads a UCD file and collects the property values per code
// point. Files with a single value per code point are read through
// property.single.
func parse(url string) (properties, error) {
	log.Printf("Parsing %s", url)
	res, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", url, res.Status)
	}

	props := properties{}
	scanner := bufio.NewScanner(res.Body)
	num := 0
	for scanner.Scan() {
		num++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		fields := propertyPattern.FindSubmatch(line)
		if fields == nil {
			return nil, fmt.Errorf("%s line %d: unexpected format", url, num)
		}
		from, err := strconv.ParseUint(string(fields[1]), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", url, num, err)
		}
		to := from
		if len(fields[3]) > 0 {
			if to, err = strconv.ParseUint(string(fields[3]), 16, 32); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", url, num, err)
			}
		}
		for cp := rune(from); cp <= rune(to); cp++ {
			if props[cp] == nil {
				props[cp] = property{}
			}
			props[cp][string(fields[4])] = true
		}
	}
	return props, scanner.Err()
}

// single returns the only value of p, or "".
func (p property) single() string {
	for v := range p {
		return v
	}
	return ""
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
