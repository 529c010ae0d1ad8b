package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Find RDS blocks in a raw demodulated bit stream, keep
 *		block synchronization, and correct short error bursts.
 *
 * Description:	Each 26-bit block is 16 payload bits plus a 10-bit
 *		checkword XORed with a block-position offset word. The
 *		syndrome of a clean block therefore identifies its
 *		position in the group. While unsynchronized we slide one
 *		bit at a time and look for offsets recurring at multiples
 *		of the block length; once locked, we step a whole block
 *		at a time and try burst-error correction against the
 *		expected offset.
 *
 *		References: IEC 62106:2015 annex B, EN 50067:1998
 *		sections B.2.2 and C.1.2.
 *
 *------------------------------------------------------------------*/

const (
	blockLength     = 26
	blockBitmask    = (1 << blockLength) - 1
	checkwordLength = 10

	// Sync is lost when more than 45 of the last 50 blocks are bad.
	blockErrorWindow    = 50
	blockErrorSyncLimit = 45

	numBLERAverageGroups = 12
)

// IEC 62106:2015 section B.3.1 Table B.1
var offsetWords = map[offset]uint32{
	offsetA:      0b0011111100,
	offsetB:      0b0110011000,
	offsetC:      0b0101101000,
	offsetCprime: 0b1101010000,
	offsetD:      0b0110110100,
}

// The 26x10 parity-check matrix of the shortened cyclic (26,16) code,
// rows from the most significant bit down.
var parityCheckMatrix = [blockLength]uint32{
	0b1000000000,
	0b0100000000,
	0b0010000000,
	0b0001000000,
	0b0000100000,
	0b0000010000,
	0b0000001000,
	0b0000000100,
	0b0000000010,
	0b0000000001,
	0b1011011100,
	0b0101101110,
	0b0010110111,
	0b1010000111,
	0b1110011111,
	0b1100010011,
	0b1101010101,
	0b1101110110,
	0b0110111011,
	0b1000000001,
	0b1111011100,
	0b0111101110,
	0b0011110111,
	0b1010100111,
	0b1110001111,
	0b1100011011,
}

// calculateSyndrome multiplies a 26-bit vector by the parity-check matrix
// over GF(2): XOR together the rows whose coefficient bit is set.
func calculateSyndrome(vec uint32) uint16 {
	var result uint32
	for k := 0; k < blockLength; k++ {
		result ^= parityCheckMatrix[blockLength-1-k] * ((vec >> k) & 0b1)
	}
	return uint16(result)
}

// IEC 62106:2015 section B.3.1 Table B.1
func offsetForSyndrome(syndrome uint16) offset {
	switch syndrome {
	case 0b1111011000:
		return offsetA
	case 0b1111010100:
		return offsetB
	case 0b1001011100:
		return offsetC
	case 0b1111001100:
		return offsetCprime
	case 0b1001011000:
		return offsetD
	default:
		return offsetInvalid
	}
}

func getNextOffsetFor(o offset) offset {
	switch o {
	case offsetA:
		return offsetB
	case offsetB:
		return offsetC
	case offsetC, offsetCprime:
		return offsetD
	default:
		return offsetA
	}
}

type syndromeKey struct {
	syndrome uint16
	offset   offset
}

// Syndromes of all correctable error patterns: bursts of one or two bits
// at every shift, for every offset word.
//
// Kopitz & Marks 1999, p. 224: error correction "should be restricted by
// attempting to correct bursts of errors spanning one or two bits."
var errorLookupTable = makeErrorLookupTable()

func makeErrorLookupTable() map[syndromeKey]uint32 {
	table := make(map[syndromeKey]uint32)

	for off, word := range offsetWords {
		for _, errorBits := range []uint32{0b1, 0b11} {
			for shift := 0; shift < blockLength; shift++ {
				errorVector := (errorBits << shift) & blockBitmask
				syndrome := calculateSyndrome(errorVector ^ word)
				table[syndromeKey{syndrome, off}] = errorVector
			}
		}
	}
	return table
}

// correctBurstErrors tries to restore a block that did not match its
// expected offset. On success the returned bits differ from the input in
// at most two adjacent positions.
func correctBurstErrors(b block, expectedOffset offset) (corrected uint32, succeeded bool) {
	syndrome := calculateSyndrome(b.raw)
	corrected = b.raw

	if errVector, ok := errorLookupTable[syndromeKey{syndrome, expectedOffset}]; ok {
		corrected ^= errVector
		succeeded = true
	}
	return corrected, succeeded
}

type syncPulse struct {
	offset   offset
	bitcount int
}

// A syncPulseBuffer holds the last four positions where a valid offset
// appeared in the unsynchronized stream.
type syncPulseBuffer struct {
	pulses [4]syncPulse
}

func newSyncPulseBuffer() *syncPulseBuffer {
	b := &syncPulseBuffer{}
	for i := range b.pulses {
		b.pulses[i] = syncPulse{offset: offsetInvalid, bitcount: -1}
	}
	return b
}

func (b *syncPulseBuffer) push(o offset, bitcount int) {
	copy(b.pulses[:], b.pulses[1:])
	b.pulses[len(b.pulses)-1] = syncPulse{offset: o, bitcount: bitcount}
}

// isSequenceFound reports whether the newest pulse lines up with an
// earlier one: separated by a whole number of blocks (at most six) and
// with block numbers consistent with that distance.
func (b *syncPulseBuffer) isSequenceFound() bool {
	newest := b.pulses[len(b.pulses)-1]

	for _, prev := range b.pulses[:len(b.pulses)-1] {
		syncDistance := newest.bitcount - prev.bitcount

		if syncDistance%blockLength == 0 &&
			syncDistance/blockLength <= 6 &&
			prev.offset != offsetInvalid &&
			(int(blockNumberForOffset(prev.offset))+syncDistance/blockLength)%4 ==
				int(blockNumberForOffset(newest.offset)) {
			return true
		}
	}
	return false
}

// A blockStream turns a bit stream into groups.
type blockStream struct {
	options *Options

	bitcount              int
	numBitsUntilNextBlock int
	inputRegister         uint32
	expectedOffset        offset
	isInSync              bool
	numBitsSinceSyncLost  int

	blockErrorSum *runningSum
	blerAverage   *runningAverage
	syncBuffer    *syncPulseBuffer

	currentGroup  group
	readyGroup    group
	hasGroupReady bool
}

func newBlockStream(options *Options) *blockStream {
	return &blockStream{
		options:               options,
		numBitsUntilNextBlock: 1,
		expectedOffset:        offsetA,
		blockErrorSum:         newRunningSum(blockErrorWindow),
		blerAverage:           newRunningAverage(numBLERAverageGroups),
		syncBuffer:            newSyncPulseBuffer(),
	}
}

func (s *blockStream) pushBit(bit bool) {
	s.inputRegister <<= 1
	if bit {
		s.inputRegister |= 1
	}
	s.numBitsUntilNextBlock--
	s.bitcount++

	if s.numBitsUntilNextBlock == 0 {
		s.findBlockInInputRegister()

		if s.isInSync {
			s.numBitsUntilNextBlock = blockLength
		} else {
			s.numBitsUntilNextBlock = 1
		}
	}
}

func (s *blockStream) findBlockInInputRegister() {
	b := block{raw: s.inputRegister & blockBitmask}
	b.offset = offsetForSyndrome(calculateSyndrome(b.raw))

	s.acquireSync(b)

	if !s.isInSync {
		return
	}

	if s.expectedOffset == offsetC && b.offset == offsetCprime {
		s.expectedOffset = offsetCprime
	}

	b.hadErrors = b.offset != s.expectedOffset
	s.blockErrorSum.push(boolToInt(b.hadErrors))

	b.data = uint16(b.raw >> checkwordLength)

	if b.hadErrors {
		if corrected, ok := correctBurstErrors(b, s.expectedOffset); ok {
			b.raw = corrected
			b.data = uint16(corrected >> checkwordLength)
			b.offset = s.expectedOffset
		} else {
			s.handleUncorrectableError()
		}
	}

	if b.offset == s.expectedOffset {
		b.isReceived = true
		s.currentGroup.setBlock(blockNumberForOffset(s.expectedOffset), b)
	}

	s.expectedOffset = getNextOffsetFor(s.expectedOffset)

	if s.expectedOffset == offsetA {
		s.handleNewlyReceivedGroup()
	}
}

func (s *blockStream) acquireSync(b block) {
	if s.isInSync {
		return
	}

	s.numBitsSinceSyncLost++

	if b.offset == offsetInvalid {
		return
	}

	s.syncBuffer.push(b.offset, s.bitcount)

	if s.syncBuffer.isSequenceFound() {
		s.isInSync = true
		s.expectedOffset = b.offset
		s.currentGroup = group{}
		s.numBitsSinceSyncLost = 0
	}
}

// EN 50067:1998, section C.1.2
func (s *blockStream) handleUncorrectableError() {
	if s.isInSync && s.blockErrorSum.sum() > blockErrorSyncLimit {
		s.isInSync = false
		s.blockErrorSum.clear()
	}
}

func (s *blockStream) handleNewlyReceivedGroup() {
	s.blerAverage.push(float32(s.currentGroup.getNumErrors()) / 4 * 100)
	if s.options == nil || s.options.BLER {
		s.currentGroup.setAverageBLER(s.blerAverage.average())
	}

	s.readyGroup = s.currentGroup
	s.hasGroupReady = true
	s.currentGroup = group{}
}

func (s *blockStream) popGroup() group {
	s.hasGroupReady = false
	return s.readyGroup
}

func (s *blockStream) flushCurrentGroup() group {
	return s.currentGroup
}

func (s *blockStream) getNumBitsSinceSyncLost() int {
	return s.numBitsSinceSyncLost
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
