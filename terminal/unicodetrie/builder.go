package unicodetrie

import (
	"encoding/binary"
	"fmt"
)

const maxCodePoint = 0x10ffff

// Builder collects one value per code point and lays them out in the format
// read by New. It is used by the table generator and by tests.
type Builder struct {
	values     []uint32
	errorValue uint32
}

func NewBuilder(initialValue, errorValue uint32) *Builder {
	values := make([]uint32, maxCodePoint+1)
	if initialValue != 0 {
		for i := range values {
			values[i] = initialValue
		}
	}
	return &Builder{values: values, errorValue: errorValue}
}

func (b *Builder) Set(cp rune, value uint32) {
	b.values[cp] = value
}

// SetRange sets all code points in [start, end].
func (b *Builder) SetRange(start, end rune, value uint32) {
	for cp := start; cp <= end; cp++ {
		b.values[cp] = value
	}
}

func (b *Builder) Get(cp rune) uint32 {
	if cp < 0 || cp > maxCodePoint {
		return b.errorValue
	}
	return b.values[cp]
}

// Build returns the highStart and the flat index and data array.
func (b *Builder) Build() (uint32, []uint32) {
	highValue := b.values[maxCodePoint]
	last := maxCodePoint
	for last >= 0 && b.values[last] == highValue {
		last--
	}
	highStart := uint32(last+1+(1<<Shift1)-1) &^ (1<<Shift1 - 1)
	highStart = max(highStart, 0x10000)

	var (
		blocks  = map[[DataBlockLength]uint32]int{}
		ordered [][DataBlockLength]uint32
	)
	blockID := func(start int) int {
		var block [DataBlockLength]uint32
		copy(block[:], b.values[start:start+DataBlockLength])
		id, ok := blocks[block]
		if !ok {
			id = len(ordered)
			blocks[block] = id
			ordered = append(ordered, block)
		}
		return id
	}

	bmp := make([]int, 0x10000>>Shift2)
	for i := range bmp {
		bmp[i] = blockID(i << Shift2)
	}

	var (
		index2Blocks  = map[[Index2BlockLength]int]int{}
		index2Ordered [][Index2BlockLength]int
		index1        []int
	)
	for i := OmittedBMPIndex1Length; i < int(highStart>>Shift1); i++ {
		var block [Index2BlockLength]int
		for j := range block {
			block[j] = blockID(i<<Shift1 + j<<Shift2)
		}
		id, ok := index2Blocks[block]
		if !ok {
			id = len(index2Ordered)
			index2Blocks[block] = id
			index2Ordered = append(index2Ordered, block)
		}
		index1 = append(index1, id)
	}

	index2Start := Index1Offset + len(index1)
	dataStart := index2Start + Index2BlockLength*len(index2Ordered)
	dataStart = (dataStart + DataGranularity - 1) &^ (DataGranularity - 1)
	dataOffset := func(id int) uint32 {
		return uint32(dataStart+id*DataBlockLength) >> IndexShift
	}

	data := make([]uint32, dataStart, dataStart+len(ordered)*DataBlockLength+DataGranularity)
	for i := range LSCPIndex2Offset {
		data[i] = dataOffset(bmp[i])
	}
	for i := range LSCPIndex2Length {
		data[LSCPIndex2Offset+i] = dataOffset(bmp[0xd800>>Shift2+i])
	}
	for i := range UTF82BIndex2Length {
		data[UTF82BIndex2Offset+i] = dataOffset(bmp[(i<<6)>>Shift2])
	}
	for i, id := range index1 {
		data[Index1Offset+i] = uint32(index2Start + id*Index2BlockLength)
	}
	for i, block := range index2Ordered {
		for j, id := range block {
			data[index2Start+i*Index2BlockLength+j] = dataOffset(id)
		}
	}
	for _, block := range ordered {
		data = append(data, block[:]...)
	}
	for range DataGranularity {
		data = append(data, highValue)
	}
	return highStart, data
}

// Serialize writes the header followed by the data compressed twice with
// compress, which must produce raw DEFLATE.
func (b *Builder) Serialize(compress func([]byte) ([]byte, error)) ([]byte, error) {
	highStart, data := b.Build()

	raw := make([]byte, len(data)*4)
	for i, v := range data {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	once, err := compress(raw)
	if err != nil {
		return nil, fmt.Errorf("compress table: %w", err)
	}
	twice, err := compress(once)
	if err != nil {
		return nil, fmt.Errorf("compress table: %w", err)
	}

	out := make([]byte, HeaderSize, HeaderSize+len(twice))
	binary.LittleEndian.PutUint32(out[0:], highStart)
	binary.LittleEndian.PutUint32(out[4:], b.errorValue)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(raw)))
	return append(out, twice...), nil
}
