package redbone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestGroup(b1, b2, b3, b4 uint16) *group {
	var g group
	g.setBlock(block1, block{data: b1, offset: offsetA, isReceived: true})
	g.setBlock(block2, block{data: b2, offset: offsetB, isReceived: true})
	g.setBlock(block3, block{data: b3, offset: offsetC, isReceived: true})
	g.setBlock(block4, block{data: b4, offset: offsetD, isReceived: true})
	return &g
}

// makeTestGroupB builds a version B group, block 3 carrying the PI
// under offset C'.
func makeTestGroupB(b1, b2, b3, b4 uint16) *group {
	var g group
	g.setBlock(block1, block{data: b1, offset: offsetA, isReceived: true})
	g.setBlock(block2, block{data: b2, offset: offsetB, isReceived: true})
	g.setBlock(block3, block{data: b3, offset: offsetCprime, isReceived: true})
	g.setBlock(block4, block{data: b4, offset: offsetD, isReceived: true})
	return &g
}

func requireNested(t *testing.T, r *Record, key string) *Record {
	t.Helper()
	value, ok := r.Get(key)
	require.True(t, ok, "missing field %q", key)
	sub, ok := value.(*Record)
	require.True(t, ok, "field %q is not a nested record", key)
	return sub
}

func requireField(t *testing.T, r *Record, key string) interface{} {
	t.Helper()
	value, ok := r.Get(key)
	require.True(t, ok, "missing field %q", key)
	return value
}

func TestStationProgrammeService(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// Four type 0A groups, one PS segment each. TP set, PTY 9, music.
	var segments = []uint16{0x5261, 0x6469, 0x6F20, 0x3939}

	var rec *Record
	for seg, chars := range segments {
		rec = s.updateGroup(makeTestGroup(0x6201, 0x0528|uint16(seg), 0xCDCD, chars))
		require.NotNil(t, rec)
	}

	assert.Equal(t, "0x6201", requireField(t, rec, "pi"))
	assert.Equal(t, "0A", requireField(t, rec, "group"))
	assert.Equal(t, true, requireField(t, rec, "tp"))
	assert.Equal(t, "Varied", requireField(t, rec, "prog_type"))
	assert.Equal(t, false, requireField(t, rec, "ta"))
	assert.Equal(t, true, requireField(t, rec, "is_music"))
	assert.Equal(t, "Radio 99", requireField(t, rec, "ps"))

	// Segment 3 carries the d0 decoder identification bit.
	assert.Equal(t, false, requireField(t, requireNested(t, rec, "di"), "stereo"))
}

func TestStationPartialPS(t *testing.T) {
	var options = NewOptions()
	options.ShowPartial = true
	var s = newStation(0x6201, options, 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0x0529, 0xCDCD, 0x6469))
	require.NotNil(t, rec)
	assert.Equal(t, "  di    ", requireField(t, rec, "partial_ps"))
}

func TestStationRadioText(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// Position 0 carries "ABCD"; position 1 starts with the 0x0D
	// terminator, which completes the message.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x2000, 0x4142, 0x4344))
	require.NotNil(t, rec)
	_, ok := rec.Get("radiotext")
	assert.False(t, ok)

	rec = s.updateGroup(makeTestGroup(0x6201, 0x2001, 0x0D20, 0x2020))
	require.NotNil(t, rec)
	assert.Equal(t, "ABCD", requireField(t, rec, "radiotext"))
}

func TestStationPartialRadioText(t *testing.T) {
	var options = NewOptions()
	options.ShowPartial = true
	var s = newStation(0x6201, options, 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0x2000, 0x4142, 0x4344))
	require.NotNil(t, rec)
	partial, ok := requireField(t, rec, "partial_radiotext").(string)
	require.True(t, ok)
	assert.Equal(t, "ABCD", rtrim(partial))
}

func TestStationRepeatedRandomLengthRadioText(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// No terminator and no padding to 64 characters: the message is
	// only trusted once the same text starts over unchanged.
	var send = func() {
		s.updateGroup(makeTestGroup(0x6201, 0x2000, 0x4865, 0x6C6C))
		s.updateGroup(makeTestGroup(0x6201, 0x2001, 0x6F21, 0x2020))
	}
	send()

	var rec = s.updateGroup(makeTestGroup(0x6201, 0x2000, 0x4865, 0x6C6C))
	require.NotNil(t, rec)
	_, ok := rec.Get("radiotext")
	assert.False(t, ok)

	s.updateGroup(makeTestGroup(0x6201, 0x2001, 0x6F21, 0x2020))
	rec = s.updateGroup(makeTestGroup(0x6201, 0x2000, 0x4865, 0x6C6C))
	require.NotNil(t, rec)
	assert.Equal(t, "Hello!", requireField(t, rec, "radiotext"))
}

func TestStationClockTime(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// MJD 58765, 17:30 UTC, local offset +2 h.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x4001, 0xCB1B, 0x1784))
	require.NotNil(t, rec)
	assert.Equal(t, "2019-10-09T19:30:00+02:00", requireField(t, rec, "clock_time"))

	// Zero offset renders as UTC.
	rec = s.updateGroup(makeTestGroup(0x6201, 0x4001, 0xCB1B, 0x1780))
	require.NotNil(t, rec)
	assert.Equal(t, "2019-10-09T17:30:00Z", requireField(t, rec, "clock_time"))
}

func TestStationClockTimeInvalid(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// Minute field 63 is out of range.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x4001, 0xCB1B, 0x1FC0))
	require.NotNil(t, rec)
	_, ok := rec.Get("clock_time")
	assert.False(t, ok)
	_, ok = rec.Get("debug")
	assert.True(t, ok)
}

func TestStationPTYName(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0xA000, 0x466F, 0x6F74))
	require.NotNil(t, rec)
	_, ok := rec.Get("pty_name")
	assert.False(t, ok)

	rec = s.updateGroup(makeTestGroup(0x6201, 0xA001, 0x6261, 0x6C6C))
	require.NotNil(t, rec)
	assert.Equal(t, "Football", requireField(t, rec, "pty_name"))
}

func TestStationSlowLabelling(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// Variant 0: extended country code, plus a programme item number.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x1000, 0x00E1, 0x2B1E))
	require.NotNil(t, rec)
	assert.Equal(t, "fi", requireField(t, rec, "country"))
	assert.Equal(t, false, requireField(t, rec, "has_linkage"))
	assert.Equal(t, 0x2B1E, requireField(t, rec, "prog_item_number"))

	var started = requireNested(t, rec, "prog_item_started")
	assert.Equal(t, 5, requireField(t, started, "day"))
	assert.Equal(t, "12:30", requireField(t, started, "time"))

	// Variant 3: programme language.
	rec = s.updateGroup(makeTestGroup(0x6201, 0x1000, 0x3009, 0x0000))
	require.NotNil(t, rec)
	assert.Equal(t, "English", requireField(t, rec, "language"))

	// Variant 1: TMC identification.
	rec = s.updateGroup(makeTestGroup(0x6201, 0x1000, 0x1123, 0x0000))
	require.NotNil(t, rec)
	assert.Equal(t, 0x123, requireField(t, rec, "tmc_id"))
}

func TestStationAltFrequenciesMethodA(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	s.updateGroup(makeTestGroup(0x6201, 0x0528, 0xE204, 0x5261))
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x0529, 0x62CD, 0x6469))
	require.NotNil(t, rec)
	assert.Equal(t, []interface{}{87800, 97200}, requireField(t, rec, "alt_frequencies_a"))
}

func TestStationAltFrequenciesMethodB(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// Seven codes: tuned, then pairs anchored on the tuned frequency.
	// Ascending pairs carry the same programme, descending ones a
	// regional variant.
	var rec *Record
	for _, b3 := range []uint16{0xE714, 0x141E, 0x0A14, 0x2814} {
		rec = s.updateGroup(makeTestGroup(0x6201, 0x0528, b3, 0x5261))
		require.NotNil(t, rec)
	}

	var methodB = requireNested(t, rec, "alt_frequencies_b")
	assert.Equal(t, 89400, requireField(t, methodB, "tuned_frequency"))
	assert.Equal(t, []interface{}{90400, 88400}, requireField(t, methodB, "same_programme"))
	assert.Equal(t, []interface{}{91400}, requireField(t, methodB, "regional_variants"))
}

func TestStationODARegistrationAndRadioTextPlus(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// Complete a RadioText message first; RT+ tags reference it.
	s.updateGroup(makeTestGroup(0x6201, 0x2000, 0x4142, 0x4344))
	s.updateGroup(makeTestGroup(0x6201, 0x2001, 0x0D20, 0x2020))

	// 3A: assign RT+ to group 12A.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x3018, 0x0000, 0x4BD7))
	require.NotNil(t, rec)
	var oda = requireNested(t, rec, "open_data_app")
	assert.Equal(t, "12A", requireField(t, oda, "oda_group"))
	assert.Equal(t, "RadioText+ (RT+)", requireField(t, oda, "app_name"))

	// 12A: one tag, content type 4 (item.artist), characters 0..3.
	rec = s.updateGroup(makeTestGroup(0x6201, 0xC000, 0x8006, 0x0000))
	require.NotNil(t, rec)
	var rtPlus = requireNested(t, rec, "radiotext_plus")
	assert.Equal(t, false, requireField(t, rtPlus, "item_running"))
	assert.Equal(t, 0, requireField(t, rtPlus, "item_toggle"))

	tags, ok := requireField(t, rtPlus, "tags").([]interface{})
	require.True(t, ok)
	require.Len(t, tags, 1)
	tag, ok := tags[0].(*Record)
	require.True(t, ok)
	assert.Equal(t, "item.artist", requireField(t, tag, "content-type"))
	assert.Equal(t, "ABCD", requireField(t, tag, "data"))
}

func TestStationUnknownODA(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// An 11A group with no 3A registration behind it.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0xB015, 0x1234, 0x5678))
	require.NotNil(t, rec)
	var unknown = requireNested(t, rec, "unknown_oda")
	assert.Equal(t, "15 1234 5678", requireField(t, unknown, "raw_data"))
}

func TestStationEONProgrammeService(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var chars = []uint16{0x5261, 0x6469, 0x6F20, 0x3838}
	var rec *Record
	for variant, pair := range chars {
		rec = s.updateGroup(makeTestGroup(0x6201, 0xE000|uint16(variant), pair, 0x6202))
		require.NotNil(t, rec)
	}

	var other = requireNested(t, rec, "other_network")
	assert.Equal(t, "0x6202", requireField(t, other, "pi"))
	assert.Equal(t, false, requireField(t, other, "tp"))
	assert.Equal(t, "Radio 88", requireField(t, other, "ps"))
}

func TestStationEONFrequency(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0xE005, 0x0062, 0x6202))
	require.NotNil(t, rec)
	var other = requireNested(t, rec, "other_network")
	assert.Equal(t, 97200, requireField(t, other, "kilohertz"))
}

func TestStationTransparentData(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0x5000, 0x4142, 0x4344))
	require.NotNil(t, rec)
	var tdc = requireNested(t, rec, "transparent_data")
	assert.Equal(t, 0, requireField(t, tdc, "address"))
	assert.Equal(t, "41 42 43 44", requireField(t, tdc, "raw"))
	assert.Equal(t, "ABCD", requireField(t, tdc, "as_text"))
}

func TestStationInHouse(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0x6015, 0x1234, 0x5678))
	require.NotNil(t, rec)
	assert.Equal(t, []interface{}{21, 0x1234, 0x5678},
		requireField(t, rec, "in_house_data"))
}

func TestStationFastSwitching15B(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var rec = s.updateGroup(makeTestGroupB(0x6201, 0xF818, 0x6201, 0xF818))
	require.NotNil(t, rec)
	assert.Equal(t, "15B", requireField(t, rec, "group"))
	assert.Equal(t, true, requireField(t, rec, "ta"))
	assert.Equal(t, true, requireField(t, rec, "is_music"))
}

func TestStationCallsign(t *testing.T) {
	var options = NewOptions()
	options.RBDS = true

	var s = newStation(0x93ED, options, 0)
	var rec = s.updateGroup(makeTestGroup(0x93ED, 0x0528, 0xCDCD, 0x5261))
	require.NotNil(t, rec)
	assert.Equal(t, "WXYZ", requireField(t, rec, "callsign"))

	// PI codes starting 0x1 may have been assigned before the hash
	// scheme, so the derivation is marked uncertain.
	s = newStation(0x1CF5, options, 0)
	rec = s.updateGroup(makeTestGroup(0x1CF5, 0x0528, 0xCDCD, 0x5261))
	require.NotNil(t, rec)
	assert.Equal(t, "KEXP", requireField(t, rec, "callsign_uncertain"))
}

func TestStationRBDSProgrammeType(t *testing.T) {
	var options = NewOptions()
	options.RBDS = true
	var s = newStation(0x93ED, options, 0)

	var rec = s.updateGroup(makeTestGroup(0x93ED, 0x0528, 0xCDCD, 0x5261))
	require.NotNil(t, rec)
	assert.Equal(t, "Top 40", requireField(t, rec, "prog_type"))
}

func TestStationToleratesOneMissedPI(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	var rec = s.updateGroup(makeTestGroup(0x6201, 0x0528, 0xCDCD, 0x5261))
	require.NotNil(t, rec)

	var noPI = func() *group {
		var g group
		g.setBlock(block2, block{data: 0x0529, offset: offsetB, isReceived: true})
		g.setBlock(block3, block{data: 0xCDCD, offset: offsetC, isReceived: true})
		g.setBlock(block4, block{data: 0x6469, offset: offsetD, isReceived: true})
		return &g
	}

	// One missed PI passes through; a second consecutive miss does not.
	assert.NotNil(t, s.updateGroup(noPI()))
	assert.Nil(t, s.updateGroup(noPI()))
}

func TestStationTMCThroughGroups(t *testing.T) {
	var s = newStation(0x6201, NewOptions(), 0)

	// 3A assigns ALERT-C to 8A and carries the system information.
	var rec = s.updateGroup(makeTestGroup(0x6201, 0x3010, 0x0264, 0xCD46))
	require.NotNil(t, rec)
	var systemInfo = requireNested(t, requireNested(t, rec, "tmc"), "system_info")
	assert.Equal(t, false, requireField(t, systemInfo, "is_encrypted"))
	assert.Equal(t, "0x09", requireField(t, systemInfo, "location_table"))
	assert.Equal(t, true, requireField(t, systemInfo, "is_on_alt_freqs"))
	assert.Equal(t, []interface{}{"national"}, requireField(t, systemInfo, "scope"))

	// A single-group user message in 8A.
	rec = s.updateGroup(makeTestGroup(0x6201, 0x800A, 0x95C6, 0x0C23))
	require.NotNil(t, rec)
	var message = requireNested(t, requireNested(t, rec, "tmc"), "message")
	var event = requireNested(t, message, "event")
	assert.Equal(t, []interface{}{1478}, requireField(t, event, "codes"))
	assert.Equal(t, "0xC23", requireField(t, message, "location"))
	assert.Equal(t, "positive", requireField(t, message, "direction"))
	assert.Equal(t, 2, requireField(t, message, "extent"))
	assert.Equal(t, true, requireField(t, message, "diversion_advised"))
}
