package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	The RDS group: four 16-bit blocks plus their reception
 *		metadata, and the group type code that steers dispatch.
 *
 *------------------------------------------------------------------*/

import (
	"strconv"
	"strings"
	"time"
)

type offset int

const (
	offsetA offset = iota
	offsetB
	offsetC
	offsetCprime
	offsetD
	offsetInvalid
)

type blockNumber int

const (
	block1 blockNumber = iota
	block2
	block3
	block4
)

// Each offset word is tied to one block position in the group; C' stands
// in for C in version B groups.
func blockNumberForOffset(o offset) blockNumber {
	switch o {
	case offsetB:
		return block2
	case offsetC, offsetCprime:
		return block3
	case offsetD:
		return block4
	default:
		return block1
	}
}

type groupVersion int

const (
	versionA groupVersion = iota
	versionB
)

// A groupType is the 5-bit type code from block 2: a number 0..15 and an
// A/B version. It keys ODA registrations.
type groupType struct {
	number  int
	version groupVersion
}

func groupTypeFromCode(typeCode uint16) groupType {
	t := groupType{number: int(typeCode>>1) & 0xF}
	if typeCode&0x1 != 0 {
		t.version = versionB
	}
	return t
}

func (t groupType) String() string {
	v := "A"
	if t.version == versionB {
		v = "B"
	}
	return strconv.Itoa(t.number) + v
}

func (t groupType) less(other groupType) bool {
	if t.number != other.number {
		return t.number < other.number
	}
	return t.version < other.version
}

// A block is one 26-bit unit from the synchronizer.
type block struct {
	raw        uint32
	data       uint16
	offset     offset
	isReceived bool
	hadErrors  bool
}

// A group is one decode cycle's worth of blocks. Blocks may be missing;
// the decoders extract what they can.
type group struct {
	blocks [4]block

	gType   groupType
	hasType bool

	hasCprime bool
	noOffsets bool

	bler    float32
	hasBLER bool

	timeReceived time.Time
	hasTime      bool
}

func (g *group) getBlock(num blockNumber) uint16 {
	return g.blocks[num].data
}

func (g *group) has(num blockNumber) bool {
	return g.blocks[num].isReceived
}

func (g *group) isEmpty() bool {
	return !(g.has(block1) || g.has(block2) || g.has(block3) || g.has(block4))
}

func (g *group) hasPI() bool {
	return g.has(block1) ||
		(g.has(block3) && g.blocks[block3].offset == offsetCprime)
}

// getPI returns the programme identification; check hasPI first. Version B
// groups repeat the PI in block 3 under offset C'.
func (g *group) getPI() uint16 {
	if g.has(block1) {
		return g.blocks[block1].data
	}
	if g.has(block3) && g.blocks[block3].offset == offsetCprime {
		return g.blocks[block3].data
	}
	return 0x0000
}

func (g *group) getNumErrors() int {
	var n int
	for _, b := range g.blocks {
		if b.hadErrors || !b.isReceived {
			n++
		}
	}
	return n
}

// disableOffsets marks the group as already synchronized, so version B
// type detection does not depend on having seen the C' offset. Used for
// hex input, which carries no offset information.
func (g *group) disableOffsets() {
	g.noOffsets = true
}

func (g *group) setBlock(num blockNumber, b block) {
	g.blocks[num] = b

	if b.offset == offsetCprime {
		g.hasCprime = true
	}

	switch num {
	case block2:
		g.gType = groupTypeFromCode(bits(b.data, 11, 5))
		if g.gType.version == versionA {
			g.hasType = true
		} else {
			g.hasType = g.hasCprime || g.noOffsets
		}

	case block4:
		// A lone C' + D tail can still identify a 15B group.
		if g.hasCprime && !g.hasType {
			potential := groupTypeFromCode(bits(b.data, 11, 5))
			if potential.number == 15 && potential.version == versionB {
				g.gType = potential
				g.hasType = true
			}
		}
	}

	if b.offset == offsetCprime && g.has(block2) {
		g.hasType = g.gType.version == versionB
	}
}

func (g *group) setTime(t time.Time) {
	g.timeReceived = t
	g.hasTime = true
}

func (g *group) setAverageBLER(bler float32) {
	g.bler = bler
	g.hasBLER = true
}

// hexString renders the group RDS Spy style, missing blocks as "----".
func (g *group) hexString() string {
	parts := make([]string, 0, 4)
	for _, b := range g.blocks {
		if b.isReceived {
			parts = append(parts, hexString(uint32(b.data), 4))
		} else {
			parts = append(parts, "----")
		}
	}
	return strings.Join(parts, " ")
}
