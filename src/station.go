package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Per-station decoder state and group dispatch.
 *
 * Description:	A station is a single broadcast carrier identified by
 *		its PI code. Each received group updates the station's
 *		accumulated state (programme service name, RadioText,
 *		alternative frequencies, EON tables, open data
 *		registrations) and produces one output record.
 *
 *		Group types 0, 1, 2, 3A, 4A, 10A, 14 and 15B always
 *		carry their primary application. Types 5, 6, 7A, 8A
 *		(TMC) and 9A do so only until a 3A group reassigns them
 *		to an open data application; the remaining types carry
 *		ODA only.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math"
	"time"

	"github.com/lestrrat-go/strftime"
)

// Programme Item Number (IEC 62106:2015, section 6.1.5.2)
func decodePIN(pin uint16, rec *Record) bool {
	day := bits(pin, 11, 5)
	hour := bits(pin, 6, 5)
	minute := bits(pin, 0, 6)

	if day >= 1 && hour <= 24 && minute <= 59 {
		rec.Set("prog_item_number", int(pin))
		started := rec.Nested("prog_item_started")
		started.Set("day", int(day))
		started.Set("time", hoursMinutesString(int(hour), int(minute)))
		return true
	}
	return false
}

// A pager collects the radio paging parameters signalled in type 1A
// groups. IEC 62106:2015 annex M.
type pager struct {
	pagingCode uint16
	interval   uint16
	opc        uint16
	pac        uint16
	ecc        uint16
	ccf        uint16
}

func (p *pager) decode1ABlock4(block4 uint16) {
	subType := bits(block4, 10, 1)
	if subType == 0 {
		p.pac = bits(block4, 4, 6)
		p.opc = bits(block4, 0, 4)
		return
	}

	switch bits(block4, 8, 2) {
	case 0:
		p.ecc = bits(block4, 0, 6)
	case 3:
		p.ccf = bits(block4, 0, 4)
	}
}

type rtPlusTag struct {
	contentType uint16
	start       int
	length      int
}

type station struct {
	pi           uint16
	hasPI        bool
	options      *Options
	whichChannel int

	lastGroupHadPI bool

	ps        *segmentedString
	radiotext *segmentedString
	ptyname   *segmentedString
	fullTDC   *rdsString

	altFreqs    altFreqList
	eonPSNames  map[uint16]*rdsString
	eonAltFreqs map[uint16]*altFreqList

	pin        uint16
	ecc        uint16
	cc         uint16
	tmcID      uint16
	hasCountry bool
	linkageLA  bool
	clockTime  string
	pager      pager

	odaAppForGroup map[groupType]uint16

	hasRadioTextPlus  bool
	rtPlusCB          uint16
	rtPlusSCB         uint16
	rtPlusTemplate    uint16
	rtPlusToggle      bool
	rtPlusItemRunning bool

	tmc *tmcService
}

func newStation(pi uint16, options *Options, whichChannel int) *station {
	return &station{
		pi:             pi,
		hasPI:          true,
		options:        options,
		whichChannel:   whichChannel,
		ps:             newSegmentedString(8),
		radiotext:      newSegmentedString(64),
		ptyname:        newSegmentedString(8),
		fullTDC:        newRDSString(32 * 4),
		eonPSNames:     make(map[uint16]*rdsString),
		eonAltFreqs:    make(map[uint16]*altFreqList),
		odaAppForGroup: make(map[groupType]uint16),
		tmc:            newTMCService(options),
	}
}

// updateGroup folds one group into the station state and returns the
// record to emit, or nil when the group should be dropped.
func (s *station) updateGroup(g *group) *Record {
	if !s.hasPI {
		return nil
	}

	// Allow one group with a missed PI; drop the stream after that.
	if g.hasPI() {
		s.lastGroupHadPI = true
	} else if s.lastGroupHadPI {
		s.lastGroupHadPI = false
	} else {
		return nil
	}

	if g.isEmpty() {
		return nil
	}

	rec := NewRecord()
	rec.Set("pi", prefixedHexString(uint32(s.pi), 4))

	if s.options.Timestamp && g.hasTime {
		if formatted, err := strftime.Format(s.options.TimeFormat, g.timeReceived); err == nil {
			rec.Set("rx_time", formatted)
		}
	}

	if s.options.RBDS {
		if callsign := callsignFromPI(s.pi); callsign != "" {
			if s.pi&0xF000 == 0x1000 {
				rec.Set("callsign_uncertain", callsign)
			} else {
				rec.Set("callsign", callsign)
			}
		}
	}

	if g.hasBLER {
		rec.Set("bler", int(g.bler+0.5))
	}

	if s.options.NumChannels > 1 {
		rec.Set("channel", s.whichChannel)
	}

	if s.options.ShowRaw {
		rec.Set("raw_data", g.hexString())
	}

	s.decodeBasics(g, rec)

	if g.hasType {
		t := g.gType
		switch {
		case t.number == 0:
			s.decodeType0(g, rec)
		case t.number == 1:
			s.decodeType1(g, rec)
		case t.number == 2:
			s.decodeType2(g, rec)
		case t.number == 3 && t.version == versionA:
			s.decodeType3A(g, rec)
		case t.number == 4 && t.version == versionA:
			s.decodeType4A(g, rec)
		case t.number == 10 && t.version == versionA:
			s.decodeType10A(g, rec)
		case t.number == 14:
			s.decodeType14(g, rec)
		case t.number == 15 && t.version == versionB:
			s.decodeType15B(g, rec)

		default:
			if _, assigned := s.odaAppForGroup[t]; assigned {
				s.decodeODAGroup(g, rec)
				break
			}
			// Primary applications of groups that may also be
			// reassigned for ODA.
			switch {
			case t.number == 5:
				s.decodeType5(g, rec)
			case t.number == 6:
				s.decodeType6(g, rec)
			case t.number == 7 && t.version == versionA:
				s.decodeType7A(g, rec)
			case t.number == 8 && t.version == versionA:
				if g.has(block2) && g.has(block3) && g.has(block4) {
					s.tmc.receiveUserGroup(bits(g.getBlock(block2), 0, 5),
						g.getBlock(block3), g.getBlock(block4), rec)
				}
			case t.number == 9 && t.version == versionA:
				s.decodeType9A(g, rec)
			default:
				s.decodeODAGroup(g, rec)
			}
		}
	}

	return rec
}

func (s *station) decodeBasics(g *group, rec *Record) {
	switch {
	case g.has(block2):
		pty := bits(g.getBlock(block2), 5, 5)

		if g.hasType {
			rec.Set("group", g.gType.String())
		}
		rec.Set("tp", bits(g.getBlock(block2), 10, 1) != 0)
		rec.Set("prog_type", ptyNameString(pty, s.options.RBDS))

	case g.gType.number == 15 && g.gType.version == versionB && g.has(block4):
		pty := bits(g.getBlock(block4), 5, 5)

		rec.Set("group", g.gType.String())
		rec.Set("tp", bits(g.getBlock(block4), 10, 1) != 0)
		rec.Set("prog_type", ptyNameString(pty, s.options.RBDS))
	}
}

// Group 0: Basic tuning and switching information
func (s *station) decodeType0(g *group, rec *Record) {
	segmentAddress := bits(g.getBlock(block2), 0, 2)
	rec.Nested("di").Set(diCodeString(segmentAddress), bits(g.getBlock(block2), 2, 1) != 0)
	rec.Set("ta", bits(g.getBlock(block2), 4, 1) != 0)
	rec.Set("is_music", bits(g.getBlock(block2), 3, 1) != 0)

	if !g.has(block3) {
		// Keep a fresh Method B list from mixing with a stale one.
		if s.altFreqs.isMethodB() {
			s.altFreqs.clear()
		}
		return
	}

	if g.gType.version == versionA {
		s.altFreqs.insert(bits(g.getBlock(block3), 8, 8))
		s.altFreqs.insert(bits(g.getBlock(block3), 0, 8))

		if s.altFreqs.isComplete() {
			s.decodeAltFrequencies(rec)
			s.altFreqs.clear()
		} else if s.options.ShowPartial {
			for _, f := range s.altFreqs.getRawList() {
				rec.Append("partial_alt_frequencies", f)
			}
		}
	}

	if !g.has(block4) {
		return
	}

	s.ps.update(int(segmentAddress)*2,
		uint8(bits(g.getBlock(block4), 8, 8)),
		uint8(bits(g.getBlock(block4), 0, 8)))

	if s.ps.text.isComplete() {
		rec.Set("ps", s.ps.text.getLastCompleteString())
	} else if s.options.ShowPartial {
		rec.Set("partial_ps", s.ps.text.str())
	}
}

// decodeAltFrequencies renders a completed AF list. Method B pairs each
// alternative with the tuned frequency; descending order inside a pair
// marks a regional variant.
func (s *station) decodeAltFrequencies(rec *Record) {
	rawFrequencies := s.altFreqs.getRawList()

	if !s.altFreqs.isMethodB() {
		for _, frequency := range rawFrequencies {
			rec.Append("alt_frequencies_a", frequency)
		}
		return
	}

	tunedFrequency := rawFrequencies[0]

	uniqueAltFrequencies := make(map[int]bool)
	uniqueRegionalVariants := make(map[int]bool)
	var altFrequencies, regionalVariants []int

	for i := 1; i+1 < len(rawFrequencies); i += 2 {
		freq1 := rawFrequencies[i]
		freq2 := rawFrequencies[i+1]

		nonTuned := freq1
		if freq1 == tunedFrequency {
			nonTuned = freq2
		}

		if freq1 < freq2 {
			altFrequencies = append(altFrequencies, nonTuned)
			uniqueAltFrequencies[nonTuned] = true
		} else {
			regionalVariants = append(regionalVariants, nonTuned)
			uniqueRegionalVariants[nonTuned] = true
		}
	}

	// In noise we can miss enough 0A groups that some frequencies
	// appear twice; such a list is unreliable and is dropped.
	expectedNumAFs := len(rawFrequencies) / 2
	numUnique := len(uniqueAltFrequencies) + len(uniqueRegionalVariants)
	if numUnique != expectedNumAFs {
		return
	}

	methodB := rec.Nested("alt_frequencies_b")
	methodB.Set("tuned_frequency", tunedFrequency)
	for _, frequency := range altFrequencies {
		methodB.Append("same_programme", frequency)
	}
	for _, frequency := range regionalVariants {
		methodB.Append("regional_variants", frequency)
	}
}

// Group 1: Programme Item Number and slow labelling codes
func (s *station) decodeType1(g *group, rec *Record) {
	if !g.has(block3) || !g.has(block4) {
		return
	}

	s.pin = g.getBlock(block4)

	if s.pin != 0x0000 && !decodePIN(s.pin, rec) {
		rec.Debug("invalid PIN")
	}

	if g.gType.version != versionA {
		return
	}

	s.pager.pagingCode = bits(g.getBlock(block2), 2, 3)
	if s.pager.pagingCode != 0 {
		s.pager.interval = bits(g.getBlock(block2), 0, 2)
	}
	s.linkageLA = bits(g.getBlock(block3), 15, 1) != 0
	rec.Set("has_linkage", s.linkageLA)

	slowLabelVariant := bits(g.getBlock(block3), 12, 3)

	switch slowLabelVariant {
	case 0:
		if s.pager.pagingCode != 0 {
			s.pager.opc = bits(g.getBlock(block3), 8, 4)

			// No PIN (IEC 62106:2015, section M.3.2.5.3)
			if g.has(block4) && bits(g.getBlock(block4), 11, 5) == 0 {
				s.pager.decode1ABlock4(g.getBlock(block4))
			}
		}

		s.ecc = bits(g.getBlock(block3), 0, 8)
		s.cc = bits(s.pi, 12, 4)

		if s.ecc != 0x00 {
			s.hasCountry = true
			rec.Set("country", countryString(s.cc, s.ecc))
		}

	case 1:
		s.tmcID = bits(g.getBlock(block3), 0, 12)
		rec.Set("tmc_id", int(s.tmcID))

	case 2:
		if s.pager.pagingCode != 0 {
			s.pager.pac = bits(g.getBlock(block3), 0, 6)
			s.pager.opc = bits(g.getBlock(block3), 8, 4)

			if g.has(block4) && bits(g.getBlock(block4), 11, 5) == 0 {
				s.pager.decode1ABlock4(g.getBlock(block4))
			}
		}

	case 3:
		rec.Set("language", languageString(bits(g.getBlock(block3), 0, 8)))

	case 7:
		rec.Set("ews", int(bits(g.getBlock(block3), 0, 12)))

	default:
		rec.Debug("TODO: SLC variant %d", slowLabelVariant)
	}
}

// Group 2: RadioText
//
// Three practices mark the end of the message in the wild: a 0x0D
// terminator, padding to the full 64 characters with blanks, or nothing
// at all. The last one can only be recognized by seeing the same
// random-length text twice.
func (s *station) decodeType2(g *group, rec *Record) {
	if !g.has(block3) || !g.has(block4) {
		return
	}

	charsPerPosition := 2
	if g.gType.version == versionA {
		charsPerPosition = 4
	}
	radiotextPosition := int(bits(g.getBlock(block2), 0, 4)) * charsPerPosition

	isABChanged := s.radiotext.isABChanged(bits(g.getBlock(block2), 4, 1) != 0)

	var potentiallyCompleteMessage string
	hasPotentiallyCompleteMessage := radiotextPosition == 0 &&
		s.radiotext.text.receivedLength() > 1 &&
		!s.radiotext.text.isComplete() &&
		!s.radiotext.text.hasPreviouslyReceivedTerminators()

	if hasPotentiallyCompleteMessage {
		potentiallyCompleteMessage = rtrim(s.radiotext.text.str())

		// Perhaps the terminator was lost in noise, or the message
		// got interrupted by an A/B change. Wait for a repeat.
		if potentiallyCompleteMessage != s.radiotext.previousPotentiallyCompleteMessage {
			hasPotentiallyCompleteMessage = false
		}
		s.radiotext.previousPotentiallyCompleteMessage = potentiallyCompleteMessage
	}

	// The transmitter requests a buffer wipe before changed contents.
	// Sometimes overused in the wild.
	if isABChanged {
		s.radiotext.text.clear()
	}

	if g.gType.version == versionA {
		s.radiotext.text.resize(64)
		if g.has(block3) {
			s.radiotext.update(radiotextPosition,
				uint8(bits(g.getBlock(block3), 8, 8)),
				uint8(bits(g.getBlock(block3), 0, 8)))
		}
	} else {
		s.radiotext.text.resize(32)
	}

	if g.has(block4) {
		block4Position := radiotextPosition
		if g.gType.version == versionA {
			block4Position += 2
		}
		s.radiotext.update(block4Position,
			uint8(bits(g.getBlock(block4), 8, 8)),
			uint8(bits(g.getBlock(block4), 0, 8)))
	}

	switch {
	case s.radiotext.text.isComplete():
		rec.Set("radiotext", rtrim(s.radiotext.text.getLastCompleteString()))
	case hasPotentiallyCompleteMessage:
		rec.Set("radiotext", rtrim(potentiallyCompleteMessage))
	case s.options.ShowPartial && len(rtrim(s.radiotext.text.str())) > 0:
		rec.Set("partial_radiotext", s.radiotext.text.str())
	}
}

// Group 3A: Application identification for Open Data
func (s *station) decodeType3A(g *group, rec *Record) {
	if !g.has(block3) || !g.has(block4) {
		return
	}
	if g.gType.version != versionA {
		return
	}

	odaGroupType := groupTypeFromCode(bits(g.getBlock(block2), 0, 5))
	odaMessage := g.getBlock(block3)
	odaAppID := g.getBlock(block4)

	s.odaAppForGroup[odaGroupType] = odaAppID

	openDataApp := rec.Nested("open_data_app")
	openDataApp.Set("oda_group", odaGroupType.String())
	openDataApp.Set("app_name", odaAppNameString(odaAppID))

	switch odaAppID {
	case odaAppTMC, odaAppTMCTest:
		s.tmc.receiveSystemGroup(odaMessage, rec)

	case odaAppRTPlus:
		s.hasRadioTextPlus = true
		s.rtPlusCB = bits(odaMessage, 12, 1)
		s.rtPlusSCB = bits(odaMessage, 8, 4)
		s.rtPlusTemplate = bits(odaMessage, 0, 8)

	case odaAppDAB:
		// Message bits are not used for DAB cross-referencing.

	default:
		rec.Debug("TODO: Unimplemented ODA app %d", odaAppID)
		openDataApp.Set("message", int(odaMessage))
	}
}

const (
	odaAppTMC     = 0xCD46
	odaAppTMCTest = 0xCD47
	odaAppRTPlus  = 0x4BD7
	odaAppDAB     = 0x0093
)

// Group 4A: Clock-time and date
func (s *station) decodeType4A(g *group, rec *Record) {
	if !g.has(block3) || !g.has(block4) {
		return
	}

	modifiedJulianDate := bitsWide(g.getBlock(block2), g.getBlock(block3), 1, 17)

	yearUTC := int((float64(modifiedJulianDate) - 15078.2) / 365.25)
	monthUTC := int((float64(modifiedJulianDate) - 14956.1 -
		math.Trunc(float64(yearUTC)*365.25)) / 30.6001)
	dayUTC := int(float64(modifiedJulianDate) - 14956 -
		math.Trunc(float64(yearUTC)*365.25) - math.Trunc(float64(monthUTC)*30.6001))
	if monthUTC == 14 || monthUTC == 15 {
		yearUTC++
		monthUTC -= 12
	}
	yearUTC += 1900
	monthUTC--

	hourUTC := int(bitsWide(g.getBlock(block3), g.getBlock(block4), 12, 5))
	minuteUTC := int(bits(g.getBlock(block4), 6, 6))

	localOffset := float64(bits(g.getBlock(block4), 0, 5)) / 2.0
	if bits(g.getBlock(block4), 5, 1) != 0 {
		localOffset = -localOffset
	}

	if hourUTC > 23 || minuteUTC > 59 || math.Abs(math.Trunc(localOffset)) > 14.0 {
		rec.Debug("invalid date/time")
		return
	}

	utc := time.Date(yearUTC, time.Month(monthUTC), dayUTC, hourUTC, minuteUTC, 0, 0, time.UTC)
	local := utc.Add(time.Duration(localOffset * float64(time.Hour)))

	localOffsetHour := int(math.Abs(math.Trunc(localOffset)))
	localOffsetMin := int((localOffset - math.Trunc(localOffset)) * 60.0)

	if localOffsetHour == 0 && localOffsetMin == 0 {
		s.clockTime = fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00Z",
			local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute())
	} else {
		sign := "-"
		if localOffset > 0 {
			sign = "+"
		}
		s.clockTime = fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:00%s%02d:%02d",
			local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(),
			sign, localOffsetHour, abs(localOffsetMin))
	}
	rec.Set("clock_time", s.clockTime)
}

// Group 5: Transparent data channels
func (s *station) decodeType5(g *group, rec *Record) {
	address := bits(g.getBlock(block2), 0, 5)
	transparentData := rec.Nested("transparent_data")
	transparentData.Set("address", int(address))

	if g.gType.version == versionA {
		data := []uint8{
			uint8(bits(g.getBlock(block3), 8, 8)),
			uint8(bits(g.getBlock(block3), 0, 8)),
			uint8(bits(g.getBlock(block4), 8, 8)),
			uint8(bits(g.getBlock(block4), 0, 8)),
		}

		transparentData.Set("raw",
			hexString(uint32(data[0]), 2)+" "+hexString(uint32(data[1]), 2)+" "+
				hexString(uint32(data[2]), 2)+" "+hexString(uint32(data[3]), 2))

		decodedText := newRDSString(4)
		decodedText.set(0, data[0], data[1])
		decodedText.set(2, data[2], data[3])

		s.fullTDC.set(int(address)*4, data[0], data[1])
		s.fullTDC.set(int(address)*4+2, data[2], data[3])
		if s.fullTDC.isComplete() {
			transparentData.Set("full_text", s.fullTDC.str())

			var fullRaw string
			for _, c := range s.fullTDC.getChars() {
				fullRaw += hexString(uint32(c.code), 2) + " "
			}
			transparentData.Set("full_raw", fullRaw)
		}

		transparentData.Set("as_text", decodedText.str())
	} else {
		data := []uint8{
			uint8(bits(g.getBlock(block4), 8, 8)),
			uint8(bits(g.getBlock(block4), 0, 8)),
		}

		transparentData.Set("raw",
			hexString(uint32(data[0]), 2)+" "+hexString(uint32(data[1]), 2))

		decodedText := newRDSString(2)
		decodedText.set(0, data[0], data[1])
		transparentData.Set("as_text", decodedText.str())
	}
}

// Group 6: In-house applications
func (s *station) decodeType6(g *group, rec *Record) {
	rec.Append("in_house_data", int(bits(g.getBlock(block2), 0, 5)))

	if g.gType.version == versionA {
		if g.has(block3) {
			rec.Append("in_house_data", int(g.getBlock(block3)))
			if g.has(block4) {
				rec.Append("in_house_data", int(g.getBlock(block4)))
			}
		}
	} else if g.has(block4) {
		rec.Append("in_house_data", int(g.getBlock(block4)))
	}
}

// Group 7A: Radio Paging
func (s *station) decodeType7A(g *group, rec *Record) {
	rec.Debug("TODO: 7A")
}

// Group 9A: Emergency warning systems
func (s *station) decodeType9A(g *group, rec *Record) {
	rec.Debug("TODO: 9A")
}

// Group 10A: Programme Type Name
func (s *station) decodeType10A(g *group, rec *Record) {
	if !g.has(block3) || !g.has(block4) {
		return
	}

	segmentAddress := bits(g.getBlock(block2), 0, 1)

	if s.ptyname.isABChanged(bits(g.getBlock(block2), 4, 1) != 0) {
		s.ptyname.text.clear()
	}

	s.ptyname.update(int(segmentAddress)*4,
		uint8(bits(g.getBlock(block3), 8, 8)),
		uint8(bits(g.getBlock(block3), 0, 8)),
		uint8(bits(g.getBlock(block4), 8, 8)),
		uint8(bits(g.getBlock(block4), 0, 8)))

	if s.ptyname.text.isComplete() {
		rec.Set("pty_name", s.ptyname.text.getLastCompleteString())
	}
}

// Group 14: Enhanced Other Networks information
func (s *station) decodeType14(g *group, rec *Record) {
	if !g.has(block4) {
		return
	}

	onPI := g.getBlock(block4)
	otherNetwork := rec.Nested("other_network")
	otherNetwork.Set("pi", prefixedHexString(uint32(onPI), 4))
	otherNetwork.Set("tp", bits(g.getBlock(block2), 4, 1) != 0)

	if g.gType.version == versionB {
		otherNetwork.Set("ta", bits(g.getBlock(block2), 3, 1) != 0)
		return
	}

	if !g.has(block3) {
		return
	}

	eonVariant := bits(g.getBlock(block2), 0, 4)
	switch eonVariant {
	case 0, 1, 2, 3:
		if _, ok := s.eonPSNames[onPI]; !ok {
			s.eonPSNames[onPI] = newRDSString(8)
		}

		s.eonPSNames[onPI].set(2*int(eonVariant), uint8(bits(g.getBlock(block3), 8, 8)))
		s.eonPSNames[onPI].set(2*int(eonVariant)+1, uint8(bits(g.getBlock(block3), 0, 8)))

		if s.eonPSNames[onPI].isComplete() {
			otherNetwork.Set("ps", s.eonPSNames[onPI].getLastCompleteString())
		}

	case 4:
		if _, ok := s.eonAltFreqs[onPI]; !ok {
			s.eonAltFreqs[onPI] = &altFreqList{}
		}
		s.eonAltFreqs[onPI].insert(bits(g.getBlock(block3), 8, 8))
		s.eonAltFreqs[onPI].insert(bits(g.getBlock(block3), 0, 8))

		if s.eonAltFreqs[onPI].isComplete() {
			for _, freq := range s.eonAltFreqs[onPI].getRawList() {
				otherNetwork.Append("alt_frequencies", freq)
			}
			s.eonAltFreqs[onPI].clear()
		}

	case 5, 6, 7, 8, 9:
		freqOther := carrierFrequency{code: bits(g.getBlock(block3), 0, 8)}
		if freqOther.isValid() {
			otherNetwork.Set("kilohertz", freqOther.kHz())
		}

	// 10, 11 unallocated

	case 12:
		hasLinkage := bits(g.getBlock(block3), 15, 1) != 0
		lsn := bits(g.getBlock(block3), 0, 12)
		otherNetwork.Set("has_linkage", hasLinkage)
		if hasLinkage && lsn != 0 {
			otherNetwork.Set("linkage_set", int(lsn))
		}

	case 13:
		pty := bits(g.getBlock(block3), 11, 5)
		otherNetwork.Set("prog_type", ptyNameString(pty, s.options.RBDS))
		otherNetwork.Set("ta", bits(g.getBlock(block3), 0, 1) != 0)

	case 14:
		if pin := g.getBlock(block3); pin != 0x0000 {
			decodePIN(pin, otherNetwork)
		}

	case 15:
		otherNetwork.Set("broadcaster_data", hexString(uint32(g.getBlock(block3)), 4))

	default:
		rec.Debug("TODO: EON variant %d", eonVariant)
	}
}

// Group 15B: Fast basic tuning and switching information
func (s *station) decodeType15B(g *group, rec *Record) {
	blockNum := block2
	if !g.has(block2) {
		blockNum = block4
	}

	rec.Set("ta", bits(g.getBlock(blockNum), 4, 1) != 0)
	rec.Set("is_music", bits(g.getBlock(blockNum), 3, 1) != 0)
}

// Open Data Application
func (s *station) decodeODAGroup(g *group, rec *Record) {
	appID, assigned := s.odaAppForGroup[g.gType]
	if !assigned {
		rec.Nested("unknown_oda").Set("raw_data", odaRawString(g))
		return
	}

	switch appID {
	case odaAppTMC, odaAppTMCTest:
		if g.has(block2) && g.has(block3) && g.has(block4) {
			s.tmc.receiveUserGroup(bits(g.getBlock(block2), 0, 5),
				g.getBlock(block3), g.getBlock(block4), rec)
		}
	case odaAppRTPlus:
		s.parseRadioTextPlus(g, rec)
	case odaAppDAB:
		s.parseDAB(g, rec)
	default:
		unknownODA := rec.Nested("unknown_oda")
		unknownODA.Set("app_name", odaAppNameString(appID))
		unknownODA.Set("raw_data", odaRawString(g))
	}
}

func odaRawString(g *group) string {
	out := hexString(uint32(g.getBlock(block2))&0b11111, 2) + " "
	if g.has(block3) {
		out += hexString(uint32(g.getBlock(block3)), 4)
	} else {
		out += "----"
	}
	out += " "
	if g.has(block4) {
		out += hexString(uint32(g.getBlock(block4)), 4)
	} else {
		out += "----"
	}
	return out
}

func (s *station) parseRadioTextPlus(g *group, rec *Record) {
	itemToggle := bits(g.getBlock(block2), 4, 1) != 0
	itemRunning := bits(g.getBlock(block2), 3, 1) != 0

	if itemToggle != s.rtPlusToggle || itemRunning != s.rtPlusItemRunning {
		s.radiotext.text.clear()
		s.rtPlusToggle = itemToggle
		s.rtPlusItemRunning = itemRunning
	}

	radiotextPlus := rec.Nested("radiotext_plus")
	radiotextPlus.Set("item_running", itemRunning)
	radiotextPlus.Set("item_toggle", boolToInt(itemToggle))

	var tags []rtPlusTag
	if g.has(block3) {
		tags = append(tags, rtPlusTag{
			contentType: uint16(bitsWide(g.getBlock(block2), g.getBlock(block3), 13, 6)),
			start:       int(bits(g.getBlock(block3), 7, 6)),
			length:      int(bits(g.getBlock(block3), 1, 6)) + 1,
		})

		if g.has(block4) {
			tags = append(tags, rtPlusTag{
				contentType: uint16(bitsWide(g.getBlock(block3), g.getBlock(block4), 11, 6)),
				start:       int(bits(g.getBlock(block4), 5, 6)),
				length:      int(bits(g.getBlock(block4), 0, 5)) + 1,
			})
		}
	}

	for _, tag := range tags {
		text := rtrim(s.radiotext.text.getLastCompleteStringRange(tag.start, tag.length))

		if s.radiotext.text.hasChars(tag.start, tag.length) && len(text) > 0 &&
			tag.contentType != 0 {
			tagRecord := NewRecord()
			tagRecord.Set("content-type", rtPlusContentTypeString(tag.contentType))
			tagRecord.Set("data", text)
			radiotextPlus.Append("tags", tagRecord)
		}
	}
}

// ETSI EN 301 700 V1.1.1 (2000-03)
func (s *station) parseDAB(g *group, rec *Record) {
	esFlag := bits(g.getBlock(block2), 4, 1) != 0

	if esFlag {
		rec.Debug("TODO: DAB service table")
		return
	}

	mode := bits(g.getBlock(block2), 2, 2)
	modes := [4]string{"unspecified", "I", "II or III", "IV"}

	dab := rec.Nested("dab")
	dab.Set("mode", modes[mode])

	freq := 16 * int(bitsWide(g.getBlock(block2), g.getBlock(block3), 0, 18))
	dab.Set("kilohertz", freq)

	if channelName, ok := dabChannelNames[freq]; ok {
		dab.Set("channel", channelName)
	}

	dab.Set("ensemble_id", prefixedHexString(uint32(g.getBlock(block4)), 4))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
