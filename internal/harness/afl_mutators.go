package harness

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"math/big"
)

// AFL-inspired interesting values for fuzzing.
var (
	interesting8 = []int8{
		-128, // INT8_MIN
		-1,   // 0xFF
		0,    // Zero
		1,    // One
		16,   // Common boundary
		32,   // Space, common boundary
		64,   // Common boundary
		100,  // Common test value
		127,  // INT8_MAX
	}

	interesting16 = []int16{
		-32768, // INT16_MIN
		-129,   // Just below INT8_MIN
		128,    // Just above INT8_MAX
		255,    // UINT8_MAX
		256,    // UINT8_MAX + 1
		512,    // Common boundary
		1000,   // Common test value
		1024,   // Common boundary (2^10)
		4096,   // Common boundary (2^12)
		32767,  // INT16_MAX
	}

	interesting32 = []int32{
		-2147483648, // INT32_MIN
		-100663046,  // Large negative
		-32769,      // Just below INT16_MIN
		32768,       // Just above INT16_MAX
		65535,       // UINT16_MAX
		65536,       // UINT16_MAX + 1
		100663045,   // Large positive
		2147483647,  // INT32_MAX
	}
)

func secureRandomInt(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func secureRandomBytes(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// BitFlipMutator flips a run of consecutive bits at a random position.
type BitFlipMutator struct {
	flipBits int // 1, 2, or 4
}

// NewBitFlipMutator constructs a mutator flipping flipBits consecutive bits.
func NewBitFlipMutator(flipBits int) *BitFlipMutator {
	if flipBits != 1 && flipBits != 2 && flipBits != 4 {
		flipBits = 1
	}
	return &BitFlipMutator{flipBits: flipBits}
}

func (m *BitFlipMutator) Name() string {
	switch m.flipBits {
	case 2:
		return "bitflip/2"
	case 4:
		return "bitflip/4"
	default:
		return "bitflip/1"
	}
}

func (m *BitFlipMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return input, nil
	}
	result := make([]byte, len(input))
	copy(result, input)

	totalBits := len(input) * 8
	pos := secureRandomInt(totalBits - m.flipBits + 1)
	for i := 0; i < m.flipBits; i++ {
		bitPos := pos + i
		result[bitPos/8] ^= 1 << uint(7-bitPos%8)
	}
	return result, nil
}

// MutateAt flips bits at a specific bit offset, for deterministic tests.
func (m *BitFlipMutator) MutateAt(input []byte, bitPosition int) ([]byte, error) {
	if len(input) == 0 {
		return input, nil
	}
	totalBits := len(input) * 8
	if bitPosition < 0 || bitPosition+m.flipBits > totalBits {
		return nil, errors.New("harness: bit position out of range")
	}
	result := make([]byte, len(input))
	copy(result, input)
	for i := 0; i < m.flipBits; i++ {
		bitPos := bitPosition + i
		result[bitPos/8] ^= 1 << uint(7-bitPos%8)
	}
	return result, nil
}

// ByteFlipMutator XORs a run of consecutive bytes with 0xFF.
type ByteFlipMutator struct {
	flipBytes int // 1, 2, or 4
}

func NewByteFlipMutator(flipBytes int) *ByteFlipMutator {
	if flipBytes != 1 && flipBytes != 2 && flipBytes != 4 {
		flipBytes = 1
	}
	return &ByteFlipMutator{flipBytes: flipBytes}
}

func (m *ByteFlipMutator) Name() string {
	switch m.flipBytes {
	case 2:
		return "byteflip/2"
	case 4:
		return "byteflip/4"
	default:
		return "byteflip/1"
	}
}

func (m *ByteFlipMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) < m.flipBytes {
		return input, nil
	}
	result := make([]byte, len(input))
	copy(result, input)
	pos := secureRandomInt(len(input) - m.flipBytes + 1)
	for i := 0; i < m.flipBytes; i++ {
		result[pos+i] ^= 0xFF
	}
	return result, nil
}

// ArithmeticMutator adds a small random delta to an integer of the given width.
type ArithmeticMutator struct {
	width    int // 1, 2, or 4
	maxDelta int
}

func NewArithmeticMutator(width, maxDelta int) *ArithmeticMutator {
	if width != 1 && width != 2 && width != 4 {
		width = 1
	}
	if maxDelta <= 0 {
		maxDelta = 35 // AFL's ARITH_MAX
	}
	return &ArithmeticMutator{width: width, maxDelta: maxDelta}
}

func (m *ArithmeticMutator) Name() string {
	switch m.width {
	case 2:
		return "arith/16"
	case 4:
		return "arith/32"
	default:
		return "arith/8"
	}
}

func (m *ArithmeticMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) < m.width {
		return input, nil
	}
	result := make([]byte, len(input))
	copy(result, input)

	pos := secureRandomInt(len(input) - m.width + 1)
	delta := secureRandomInt(m.maxDelta*2+1) - m.maxDelta
	if delta == 0 {
		delta = 1
	}

	switch m.width {
	case 1:
		result[pos] = byte(int(result[pos]) + delta)
	case 2:
		val := binary.BigEndian.Uint16(result[pos:])
		binary.BigEndian.PutUint16(result[pos:], uint16(int(val)+delta))
	case 4:
		val := binary.BigEndian.Uint32(result[pos:])
		binary.BigEndian.PutUint32(result[pos:], uint32(int64(val)+int64(delta)))
	}
	return result, nil
}

// InterestingValueMutator overwrites a value with a known boundary constant.
type InterestingValueMutator struct {
	width int // 1, 2, or 4
}

func NewInterestingValueMutator(width int) *InterestingValueMutator {
	if width != 1 && width != 2 && width != 4 {
		width = 1
	}
	return &InterestingValueMutator{width: width}
}

func (m *InterestingValueMutator) Name() string {
	switch m.width {
	case 2:
		return "interest/16"
	case 4:
		return "interest/32"
	default:
		return "interest/8"
	}
}

func (m *InterestingValueMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) < m.width {
		return input, nil
	}
	result := make([]byte, len(input))
	copy(result, input)
	pos := secureRandomInt(len(input) - m.width + 1)

	switch m.width {
	case 1:
		result[pos] = byte(interesting8[secureRandomInt(len(interesting8))])
	case 2:
		val := uint16(interesting16[secureRandomInt(len(interesting16))])
		if secureRandomInt(2) == 0 {
			binary.BigEndian.PutUint16(result[pos:], val)
		} else {
			binary.LittleEndian.PutUint16(result[pos:], val)
		}
	case 4:
		val := uint32(interesting32[secureRandomInt(len(interesting32))])
		if secureRandomInt(2) == 0 {
			binary.BigEndian.PutUint32(result[pos:], val)
		} else {
			binary.LittleEndian.PutUint32(result[pos:], val)
		}
	}
	return result, nil
}

// ByteSwapMutator swaps two or four adjacent bytes, probing endianness handling.
type ByteSwapMutator struct {
	swapCount int // 2 or 4
}

func NewByteSwapMutator(swapCount int) *ByteSwapMutator {
	if swapCount != 2 && swapCount != 4 {
		swapCount = 2
	}
	return &ByteSwapMutator{swapCount: swapCount}
}

func (m *ByteSwapMutator) Name() string {
	if m.swapCount == 4 {
		return "byteswap/4"
	}
	return "byteswap/2"
}

func (m *ByteSwapMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) < m.swapCount {
		return input, nil
	}
	result := make([]byte, len(input))
	copy(result, input)
	pos := secureRandomInt(len(input) - m.swapCount + 1)
	switch m.swapCount {
	case 2:
		result[pos], result[pos+1] = result[pos+1], result[pos]
	case 4:
		result[pos], result[pos+3] = result[pos+3], result[pos]
		result[pos+1], result[pos+2] = result[pos+2], result[pos+1]
	}
	return result, nil
}

// RandomByteMutator overwrites a handful of bytes with fresh random values.
type RandomByteMutator struct {
	count int
}

func NewRandomByteMutator(count int) *RandomByteMutator {
	if count <= 0 {
		count = 1
	}
	return &RandomByteMutator{count: count}
}

func (m *RandomByteMutator) Name() string { return "random_byte" }

func (m *RandomByteMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return input, nil
	}
	result := make([]byte, len(input))
	copy(result, input)
	count := m.count
	if count > len(input) {
		count = len(input)
	}
	for i := 0; i < count; i++ {
		pos := secureRandomInt(len(input))
		result[pos] = byte(secureRandomInt(256))
	}
	return result, nil
}

// DeleteMutator removes a random run of bytes.
type DeleteMutator struct {
	maxDelete int
}

func NewDeleteMutator(maxDelete int) *DeleteMutator {
	if maxDelete <= 0 {
		maxDelete = 16
	}
	return &DeleteMutator{maxDelete: maxDelete}
}

func (m *DeleteMutator) Name() string { return "delete" }

func (m *DeleteMutator) Mutate(input []byte) ([]byte, error) {
	if len(input) <= 1 {
		return input, nil
	}
	maxDel := m.maxDelete
	if maxDel >= len(input) {
		maxDel = len(input) - 1
	}
	delCount := secureRandomInt(maxDel) + 1
	pos := secureRandomInt(len(input) - delCount + 1)

	result := make([]byte, len(input)-delCount)
	copy(result[:pos], input[:pos])
	copy(result[pos:], input[pos+delCount:])
	return result, nil
}

// InsertMutator inserts a run of fresh random bytes at a random position.
type InsertMutator struct {
	maxInsert int
}

func NewInsertMutator(maxInsert int) *InsertMutator {
	if maxInsert <= 0 {
		maxInsert = 16
	}
	return &InsertMutator{maxInsert: maxInsert}
}

func (m *InsertMutator) Name() string { return "insert" }

func (m *InsertMutator) Mutate(input []byte) ([]byte, error) {
	insCount := secureRandomInt(m.maxInsert) + 1
	pos := secureRandomInt(len(input) + 1)
	insertBytes := secureRandomBytes(insCount)

	result := make([]byte, len(input)+insCount)
	copy(result[:pos], input[:pos])
	copy(result[pos:pos+insCount], insertBytes)
	if pos < len(input) {
		copy(result[pos+insCount:], input[pos:])
	}
	return result, nil
}

// DefaultMutators returns one instance of every AFL-style mutator, the
// same roster the demo driver cycles through.
func DefaultMutators() []Mutator {
	return []Mutator{
		NewBitFlipMutator(1),
		NewBitFlipMutator(2),
		NewBitFlipMutator(4),
		NewByteFlipMutator(1),
		NewByteFlipMutator(2),
		NewByteFlipMutator(4),
		NewArithmeticMutator(1, 35),
		NewArithmeticMutator(2, 35),
		NewArithmeticMutator(4, 35),
		NewInterestingValueMutator(1),
		NewInterestingValueMutator(2),
		NewInterestingValueMutator(4),
		NewByteSwapMutator(2),
		NewByteSwapMutator(4),
		NewRandomByteMutator(1),
		NewDeleteMutator(16),
		NewInsertMutator(16),
	}
}

// GetInteresting8 returns the interesting 8-bit boundary values.
func GetInteresting8() []int8 { return interesting8 }

// GetInteresting16 returns the interesting 16-bit boundary values.
func GetInteresting16() []int16 { return interesting16 }

// GetInteresting32 returns the interesting 32-bit boundary values.
func GetInteresting32() []int32 { return interesting32 }
