package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Character accumulator for the text fields carried in RDS
 *		groups (Programme Service name, RadioText, PTY name, TDC
 *		pages and the TMC service provider name).
 *
 * Description:	Characters arrive two or four at a time, in segments
 *		addressed by the group, and any segment can be lost to
 *		noise. A position counts as "sequential" only when it
 *		continues an unbroken run from position zero, so a
 *		string is never reported complete with holes in it.
 *
 *		A 0x0D terminator shortens the expected length; the
 *		decoded text up to the terminator is snapshotted so that
 *		later overwrites do not disturb the last good copy.
 *
 *------------------------------------------------------------------*/

const stringTerminator = 0x0D

type rdsChar struct {
	code         uint8
	isSequential bool
}

type rdsString struct {
	chars             []rdsChar
	lastCompleteChars []rdsChar

	prevPos            int
	lastCompleteString string
	seenTerminators    bool
}

func newRDSString(length int) *rdsString {
	return &rdsString{
		chars:   make([]rdsChar, length),
		prevPos: -1,
	}
}

// set stores one or more character codes starting at pos. Multiple codes
// model a segment, where adjacent characters always arrive together.
func (s *rdsString) set(pos int, codes ...uint8) {
	for i, code := range codes {
		s.setOne(pos+i, code)
	}
}

func (s *rdsString) setOne(pos int, code uint8) {
	if pos < 0 || pos >= len(s.chars) {
		return
	}

	s.chars[pos] = rdsChar{
		code:         code,
		isSequential: pos == 0 || (pos == s.prevPos+1 && s.chars[s.prevPos].isSequential),
	}
	s.prevPos = pos

	if code == stringTerminator {
		s.seenTerminators = true
	}

	if s.isComplete() {
		s.snapshot()
	}
}

func (s *rdsString) snapshot() {
	n := s.expectedLength()
	s.lastCompleteChars = append(s.lastCompleteChars[:0], s.chars[:n]...)

	var decoded string
	for _, c := range s.chars[:n] {
		decoded += decodeRDSChar(c.code)
	}
	s.lastCompleteString = decoded
}

// receivedLength is the length of the unbroken run of characters received
// from position zero.
func (s *rdsString) receivedLength() int {
	for i, c := range s.chars {
		if !c.isSequential {
			return i
		}
	}
	return len(s.chars)
}

// expectedLength is the full capacity, or the position of a terminator if
// one sits inside the received run.
func (s *rdsString) expectedLength() int {
	for i := 0; i < s.receivedLength(); i++ {
		if s.chars[i].code == stringTerminator {
			return i
		}
	}
	return len(s.chars)
}

func (s *rdsString) isComplete() bool {
	received := s.receivedLength()
	expected := s.expectedLength()
	if expected < len(s.chars) {
		// Terminated string: everything before the terminator is in.
		return received > expected
	}
	return received == expected
}

func (s *rdsString) hasPreviouslyReceivedTerminators() bool {
	return s.seenTerminators
}

// str renders the current buffer contents. Positions not yet received, and
// control codes, render as blanks so partial output stays aligned.
func (s *rdsString) str() string {
	var out string
	for _, c := range s.chars {
		if c.code < 0x20 {
			out += " "
		} else {
			out += decodeRDSChar(c.code)
		}
	}
	return out
}

func (s *rdsString) getLastCompleteString() string {
	return s.lastCompleteString
}

func (s *rdsString) getLastCompleteStringRange(start, length int) string {
	if start+length > len(s.lastCompleteChars) {
		return ""
	}
	var out string
	for _, c := range s.lastCompleteChars[start : start+length] {
		out += decodeRDSChar(c.code)
	}
	return out
}

func (s *rdsString) hasChars(start, length int) bool {
	return start+length <= len(s.lastCompleteChars)
}

func (s *rdsString) getChars() []rdsChar {
	return s.chars
}

// resize changes the capacity in place, keeping received characters.
// RadioText needs this: version A messages are 64 characters, version B
// messages 32, and both can arrive from the same transmitter.
func (s *rdsString) resize(length int) {
	if length == len(s.chars) {
		return
	}
	resized := make([]rdsChar, length)
	copy(resized, s.chars)
	s.chars = resized
	if s.prevPos >= length {
		s.prevPos = -1
	}
}

// clear wipes the working buffer but keeps the last complete snapshot and
// the terminator history, which the RadioText length heuristic needs.
func (s *rdsString) clear() {
	for i := range s.chars {
		s.chars[i] = rdsChar{}
	}
	s.prevPos = -1
}

/*
 * A/B toggle handling, shared by RadioText, PTY name and RadioText+.
 * The transmitter flips a single bit to request a buffer wipe; we latch
 * the previous value and report changes.
 */

type segmentedString struct {
	text   *rdsString
	lastAB bool
	hasAB  bool

	// RadioText only: candidate for the random-length message heuristic.
	previousPotentiallyCompleteMessage string
}

func newSegmentedString(length int) *segmentedString {
	return &segmentedString{text: newRDSString(length)}
}

func (s *segmentedString) isABChanged(ab bool) bool {
	changed := s.hasAB && ab != s.lastAB
	s.lastAB = ab
	s.hasAB = true
	return changed
}

func (s *segmentedString) update(pos int, codes ...uint8) {
	s.text.set(pos, codes...)
}
