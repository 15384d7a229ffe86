// Package inflate is a small, non-streaming decoder for raw DEFLATE streams
// (RFC 1951). It exists to restore the embedded unicode property table at
// startup and is not meant as a general purpose decompressor.
package inflate

import "errors"

var (
	ErrUnexpectedEOF        = errors.New("inflate: unexpected end of input")
	ErrInvalidBlockType     = errors.New("inflate: invalid block type")
	ErrStoredLengthMismatch = errors.New("inflate: stored block length does not match its complement")
	ErrInvalidSymbol        = errors.New("inflate: invalid symbol")
	ErrInvalidDistance      = errors.New("inflate: distance too far back")
	ErrInvalidCodeLengths   = errors.New("inflate: invalid code lengths")
)

const (
	maxBits   = 15  // maximum bits in a code
	maxLCodes = 286 // maximum number of literal/length codes
	maxDCodes = 30  // maximum number of distance codes
	fixLCodes = 288 // number of fixed literal/length codes
)

// Base values and extra bits for length codes 257..285.
var (
	lengthBase = [29]uint16{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
		35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
	}
	lengthExtra = [29]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
	}
)

// Base values and extra bits for distance codes 0..29.
var (
	distBase = [30]uint16{
		1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
		257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
		8193, 12289, 16385, 24577,
	}
	distExtra = [30]uint8{
		0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
		7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
	}
)

// Order in which code length code lengths are transmitted.
var codeLengthOrder = [19]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// huffman is a canonical huffman code described by the number of symbols of
// each code length and the symbols ordered by code.
type huffman struct {
	count  [maxBits + 1]uint16
	symbol []uint16
}

// newHuffman builds the decoding tables for the given code lengths. The
// returned value is zero for a complete code, negative for an
// over-subscribed code and positive for an incomplete one.
func newHuffman(lengths []uint8) (*huffman, int) {
	h := &huffman{symbol: make([]uint16, len(lengths))}
	for _, l := range lengths {
		h.count[l]++
	}
	// No codes at all is complete, decoding will fail on first use.
	if int(h.count[0]) == len(lengths) {
		return h, 0
	}

	left := 1
	for l := 1; l <= maxBits; l++ {
		left <<= 1
		left -= int(h.count[l])
		if left < 0 {
			return h, left
		}
	}

	// offsets of the first symbol of each length in the symbol table
	var offs [maxBits + 1]uint16
	for l := 1; l < maxBits; l++ {
		offs[l+1] = offs[l] + h.count[l]
	}
	for sym, l := range lengths {
		if l != 0 {
			h.symbol[offs[l]] = uint16(sym)
			offs[l]++
		}
	}
	return h, left
}

var fixedLength, fixedDistance = func() (*huffman, *huffman) {
	var lengths [fixLCodes]uint8
	sym := 0
	for ; sym < 144; sym++ {
		lengths[sym] = 8
	}
	for ; sym < 256; sym++ {
		lengths[sym] = 9
	}
	for ; sym < 280; sym++ {
		lengths[sym] = 7
	}
	for ; sym < fixLCodes; sym++ {
		lengths[sym] = 8
	}
	lencode, _ := newHuffman(lengths[:])

	var dists [maxDCodes]uint8
	for i := range dists {
		dists[i] = 5
	}
	distcode, _ := newHuffman(dists[:])
	return lencode, distcode
}()

type decoder struct {
	in  []byte
	pos int

	// bit buffer, bits are consumed LSB first
	bitBuf uint32
	bitCnt uint

	out []byte
}

// Inflate decodes a raw DEFLATE stream. sizeHint is the expected size of the
// output and is only used to preallocate. On error no output is returned.
func Inflate(src []byte, sizeHint int) ([]byte, error) {
	d := &decoder{
		in:  src,
		out: make([]byte, 0, max(sizeHint, 0)),
	}
	for {
		last, err := d.bits(1)
		if err != nil {
			return nil, err
		}
		typ, err := d.bits(2)
		if err != nil {
			return nil, err
		}
		switch typ {
		case 0:
			err = d.stored()
		case 1:
			err = d.codes(fixedLength, fixedDistance)
		case 2:
			err = d.dynamic()
		default:
			err = ErrInvalidBlockType
		}
		if err != nil {
			return nil, err
		}
		if last == 1 {
			return d.out, nil
		}
	}
}

// bits returns the next need bits of the input.
func (d *decoder) bits(need uint) (int, error) {
	val := d.bitBuf
	for d.bitCnt < need {
		if d.pos >= len(d.in) {
			return 0, ErrUnexpectedEOF
		}
		val |= uint32(d.in[d.pos]) << d.bitCnt
		d.pos++
		d.bitCnt += 8
	}
	d.bitBuf = val >> need
	d.bitCnt -= need
	return int(val & (1<<need - 1)), nil
}

func (d *decoder) stored() error {
	// stored blocks start on a byte boundary
	d.bitBuf = 0
	d.bitCnt = 0

	if d.pos+4 > len(d.in) {
		return ErrUnexpectedEOF
	}
	n := int(d.in[d.pos]) | int(d.in[d.pos+1])<<8
	cmp := int(d.in[d.pos+2]) | int(d.in[d.pos+3])<<8
	d.pos += 4
	if n != ^cmp&0xffff {
		return ErrStoredLengthMismatch
	}
	if d.pos+n > len(d.in) {
		return ErrUnexpectedEOF
	}
	d.out = append(d.out, d.in[d.pos:d.pos+n]...)
	d.pos += n
	return nil
}

// decode reads one symbol, walking the code one bit at a time.
func (d *decoder) decode(h *huffman) (int, error) {
	code, first, index := 0, 0, 0
	for l := 1; l <= maxBits; l++ {
		b, err := d.bits(1)
		if err != nil {
			return 0, err
		}
		code |= b
		count := int(h.count[l])
		if code-count < first {
			return int(h.symbol[index+(code-first)]), nil
		}
		index += count
		first += count
		first <<= 1
		code <<= 1
	}
	return 0, ErrInvalidSymbol
}

func (d *decoder) codes(lencode, distcode *huffman) error {
	for {
		sym, err := d.decode(lencode)
		if err != nil {
			return err
		}
		if sym < 256 {
			d.out = append(d.out, byte(sym))
			continue
		}
		if sym == 256 {
			return nil
		}

		sym -= 257
		if sym >= len(lengthBase) {
			return ErrInvalidSymbol
		}
		extra, err := d.bits(uint(lengthExtra[sym]))
		if err != nil {
			return err
		}
		length := int(lengthBase[sym]) + extra

		sym, err = d.decode(distcode)
		if err != nil {
			return err
		}
		if sym >= len(distBase) {
			return ErrInvalidSymbol
		}
		extra, err = d.bits(uint(distExtra[sym]))
		if err != nil {
			return err
		}
		dist := int(distBase[sym]) + extra
		if dist > len(d.out) {
			return ErrInvalidDistance
		}

		// byte by byte, the copy may overlap the bytes it produces
		start := len(d.out) - dist
		for i := range length {
			d.out = append(d.out, d.out[start+i])
		}
	}
}

func (d *decoder) dynamic() error {
	nlen, err := d.bits(5)
	if err != nil {
		return err
	}
	nlen += 257
	ndist, err := d.bits(5)
	if err != nil {
		return err
	}
	ndist++
	ncode, err := d.bits(4)
	if err != nil {
		return err
	}
	ncode += 4
	if nlen > maxLCodes || ndist > maxDCodes {
		return ErrInvalidCodeLengths
	}

	var lengths [maxLCodes + maxDCodes]uint8
	for i := range ncode {
		v, err := d.bits(3)
		if err != nil {
			return err
		}
		lengths[codeLengthOrder[i]] = uint8(v)
	}
	lencode, left := newHuffman(lengths[:19])
	if left != 0 {
		return ErrInvalidCodeLengths
	}

	for index := 0; index < nlen+ndist; {
		sym, err := d.decode(lencode)
		if err != nil {
			return err
		}
		if sym < 16 {
			lengths[index] = uint8(sym)
			index++
			continue
		}

		var (
			length uint8
			repeat int
		)
		switch sym {
		case 16:
			if index == 0 {
				return ErrInvalidCodeLengths
			}
			length = lengths[index-1]
			repeat, err = d.bits(2)
			repeat += 3
		case 17:
			repeat, err = d.bits(3)
			repeat += 3
		default:
			repeat, err = d.bits(7)
			repeat += 11
		}
		if err != nil {
			return err
		}
		if index+repeat > nlen+ndist {
			return ErrInvalidCodeLengths
		}
		for ; repeat > 0; repeat-- {
			lengths[index] = length
			index++
		}
	}

	// end of block code must be present
	if lengths[256] == 0 {
		return ErrInvalidCodeLengths
	}

	// incomplete codes are only allowed for a single code
	lencode, left = newHuffman(lengths[:nlen])
	if left < 0 || (left > 0 && nlen-int(lencode.count[0]) != 1) {
		return ErrInvalidCodeLengths
	}
	distcode, left := newHuffman(lengths[nlen : nlen+ndist])
	if left < 0 || (left > 0 && ndist-int(distcode.count[0]) != 1) {
		return ErrInvalidCodeLengths
	}
	return d.codes(lencode, distcode)
}
