package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	One decoded carrier: bits in, records out.
 *
 * Description:	A channel owns a block synchronizer and the stations
 *		heard on the carrier. Because a PI code arrives in
 *		every group, a single corrupted block 1 could spawn a
 *		ghost station; a changed PI therefore has to repeat
 *		once before the channel switches stations.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type piStatus int

const (
	piNoChange piStatus = iota
	piChangeConfirmed
	piSpuriousChange
)

// A cachedPI remembers the last two received PI codes and the last
// confirmed one.
type cachedPI struct {
	prev1, prev2 uint16
	has1, has2   bool

	confirmed    uint16
	hasConfirmed bool
}

func (c *cachedPI) update(pi uint16) piStatus {
	c.prev2, c.has2 = c.prev1, c.has1
	c.prev1, c.has1 = pi, true

	if c.has2 && c.prev1 == c.prev2 {
		if !c.hasConfirmed || c.confirmed != pi {
			c.confirmed = pi
			c.hasConfirmed = true
			return piChangeConfirmed
		}
		return piNoChange
	}

	if c.hasConfirmed && pi == c.confirmed {
		return piNoChange
	}
	return piSpuriousChange
}

// A Channel decodes one carrier's worth of input.
type Channel struct {
	options *Options
	which   int
	writer  RecordWriter
	metrics *Metrics

	blockStream *blockStream
	stations    map[uint16]*station
	pi          cachedPI
}

func NewChannel(options *Options, whichChannel int, writer RecordWriter) *Channel {
	return &Channel{
		options:     options,
		which:       whichChannel,
		writer:      writer,
		blockStream: newBlockStream(options),
		stations:    make(map[uint16]*station),
	}
}

// SetMetrics attaches an optional metrics collector.
func (c *Channel) SetMetrics(m *Metrics) {
	c.metrics = m
}

// ProcessBit pushes one demodulated bit through the synchronizer and
// emits any group it completes.
func (c *Channel) ProcessBit(bit bool) error {
	c.blockStream.pushBit(bit)
	if c.blockStream.hasGroupReady {
		g := c.blockStream.popGroup()
		return c.processGroup(&g)
	}
	return nil
}

// PushGroup feeds a pre-synchronized group, as read from hex input.
func (c *Channel) PushGroup(g *group) error {
	return c.processGroup(g)
}

// Flush emits the group under construction. Call at end of input so a
// final partial group is not lost.
func (c *Channel) Flush() error {
	g := c.blockStream.flushCurrentGroup()
	if g.isEmpty() {
		return nil
	}
	return c.processGroup(&g)
}

func (c *Channel) processGroup(g *group) error {
	if c.options.Timestamp && !g.hasTime {
		g.setTime(time.Now())
	}

	if c.metrics != nil {
		c.metrics.observeGroup(g.getNumErrors(), g.bler, g.hasBLER, c.blockStream.isInSync)
	}

	if g.hasPI() {
		switch c.pi.update(g.getPI()) {
		case piChangeConfirmed:
			if _, ok := c.stations[c.pi.confirmed]; !ok {
				c.stations[c.pi.confirmed] = newStation(c.pi.confirmed, c.options, c.which)
			}
		case piSpuriousChange:
			return nil
		}
	}

	if !c.pi.hasConfirmed {
		return nil
	}

	rec := c.stations[c.pi.confirmed].updateGroup(g)
	if rec == nil {
		return nil
	}
	return c.writer.WriteRecord(rec)
}

// ParseHexGroup reads one group in RDS Spy format: four blocks of four
// hex digits, missing blocks given as dashes.
func ParseHexGroup(line string) (*group, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 4 {
		return nil, fmt.Errorf("expected 4 blocks, got %d", len(fields))
	}

	blockOffsets := [4]offset{offsetA, offsetB, offsetC, offsetD}

	var g group
	g.disableOffsets()

	for i, field := range fields {
		if strings.HasPrefix(field, "-") {
			continue
		}
		data, err := strconv.ParseUint(field, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		g.setBlock(blockNumber(i), block{
			data:       uint16(data),
			offset:     blockOffsets[i],
			isReceived: true,
		})
	}
	return &g, nil
}
