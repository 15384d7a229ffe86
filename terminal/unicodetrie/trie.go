// Package unicodetrie implements lookups into a compact, read-only
// code point property table. The serialized layout (header, double DEFLATE
// payload and index shifts below) is shared with the table generator in
// terminal/grapheme and must change together with it.
package unicodetrie

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hnimtadd/termtext/terminal/inflate"
)

var ErrCorruptAsset = errors.New("unicodetrie: corrupt asset")

const (
	// Shift size for getting the index-1 table offset.
	Shift1 = 6 + 5

	// Shift size for getting the index-2 table offset.
	Shift2 = 5

	// Difference between the two shift sizes, for getting an index-1 offset
	// from an index-2 offset. 6=11-5
	Shift1To2 = Shift1 - Shift2

	// Number of index-1 entries for the BMP. 32=0x20
	// This part of the index-1 table is omitted from the serialized form.
	OmittedBMPIndex1Length = 0x10000 >> Shift1

	// Number of entries in an index-2 block. 64=0x40
	Index2BlockLength = 1 << Shift1To2

	// Mask for getting the lower bits for the in-index-2-block offset.
	Index2Mask = Index2BlockLength - 1

	// Shift size for shifting left the index array values.
	// Increases possible data size with 16-bit index values at the cost
	// of compactability.
	// This requires data blocks to be aligned by DataGranularity.
	IndexShift = 2

	// Number of entries in a data block. 32=0x20
	DataBlockLength = 1 << Shift2

	// Mask for getting the lower bits for the in-data-block offset.
	DataMask = DataBlockLength - 1

	// The part of the index-2 table for U+D800..U+DBFF stores values for
	// lead surrogate code units not code points.
	// Values for lead surrogate code points are indexed with this portion
	// of the table. 2048=0x800=0x10000>>5
	LSCPIndex2Offset = 0x10000 >> Shift2
	LSCPIndex2Length = 0x400 >> Shift2

	// Count the lengths of both BMP pieces. 2080=0x820
	Index2BMPLength = LSCPIndex2Offset + LSCPIndex2Length

	// The 2-byte UTF-8 version of the index-2 table follows at offset
	// 2080=0x820. Length 32=0x20 for lead bytes C0..DF, regardless of
	// Shift2.
	UTF82BIndex2Offset = Index2BMPLength
	UTF82BIndex2Length = 0x800 >> 6

	// The index-1 table, only used for supplementary code points, at offset
	// 2112=0x840. Variable length, for code points up to highStart, where
	// the last single-value range starts.
	Index1Offset = UTF82BIndex2Offset + UTF82BIndex2Length

	// Data blocks are aligned to this granularity.
	DataGranularity = 1 << IndexShift

	// HeaderSize is the size of the serialized header: highStart,
	// errorValue and the uncompressed data length, little-endian uint32s.
	HeaderSize = 12
)

// Trie maps every code point to a 32 bit value.
type Trie struct {
	highStart  uint32
	errorValue uint32
	data       []uint32
}

// New decodes a serialized trie. The payload after the header is inflated
// twice, the result must be exactly as long as the header announces.
func New(asset []byte) (*Trie, error) {
	if len(asset) < HeaderSize {
		return nil, fmt.Errorf("%w: header needs %d bytes, got %d",
			ErrCorruptAsset, HeaderSize, len(asset))
	}
	highStart := binary.LittleEndian.Uint32(asset[0:])
	errorValue := binary.LittleEndian.Uint32(asset[4:])
	uncompressedLength := int(binary.LittleEndian.Uint32(asset[8:]))

	once, err := inflate.Inflate(asset[HeaderSize:], uncompressedLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptAsset, err)
	}
	raw, err := inflate.Inflate(once, uncompressedLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptAsset, err)
	}
	if len(raw) != uncompressedLength {
		return nil, fmt.Errorf("%w: expected %d bytes of data, got %d",
			ErrCorruptAsset, uncompressedLength, len(raw))
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: data length %d is not a multiple of 4",
			ErrCorruptAsset, len(raw))
	}

	// The table is always stored little-endian, decoding it explicitly
	// makes the result independent of the host byte order.
	data := make([]uint32, len(raw)/4)
	for i := range data {
		data[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	if len(data) < Index1Offset+DataGranularity {
		return nil, fmt.Errorf("%w: data has only %d entries", ErrCorruptAsset, len(data))
	}

	return &Trie{
		highStart:  highStart,
		errorValue: errorValue,
		data:       data,
	}, nil
}

// Get returns the value stored for the code point.
func (t *Trie) Get(cp rune) uint32 {
	switch {
	case cp < 0 || cp > 0x10ffff:
		return t.errorValue

	case cp < 0xd800 || (cp > 0xdbff && cp <= 0xffff):
		// Ordinary BMP code point, excluding leading surrogates.
		// BMP uses a single level lookup. BMP index starts at offset 0 in
		// the index. data is stored in the index array itself.
		index := (t.data[cp>>Shift2] << IndexShift) + uint32(cp&DataMask)
		return t.data[index]

	case cp <= 0xffff:
		// Lead surrogate code point. A separate index section is stored
		// for lead surrogate code units and code points.
		// The main index has the code unit data.
		// For this function, we need the code point data.
		index := t.data[LSCPIndex2Offset+((cp-0xd800)>>Shift2)]
		index = (index << IndexShift) + uint32(cp&DataMask)
		return t.data[index]

	case uint32(cp) < t.highStart:
		// Supplemental code point, use two-level lookup.
		index := t.data[(Index1Offset-OmittedBMPIndex1Length)+(cp>>Shift1)]
		index = t.data[index+uint32((cp>>Shift2)&Index2Mask)]
		index = (index << IndexShift) + uint32(cp&DataMask)
		return t.data[index]

	default:
		return t.data[len(t.data)-DataGranularity]
	}
}

// HighStart is the first code point of the trailing range that maps to a
// single value.
func (t *Trie) HighStart() uint32 {
	return t.highStart
}

// Len is the number of 32 bit entries in the decoded table.
func (t *Trie) Len() int {
	return len(t.data)
}
