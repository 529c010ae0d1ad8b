package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Traffic Message Channel (ALERT-C) decoding, carried as an
 *		open data application in type 8A groups.
 *
 * Description:	A 3A group announces the service and carries system
 *		information; user groups then carry either tuning
 *		information, encryption administration, or the traffic
 *		messages themselves. A message is one group (the common
 *		case) or up to five groups chained by a continuity
 *		index, with the optional parts packed as freeform
 *		label/value fields.
 *
 *		References: EN ISO 14819-1, sections 5.5 and 7.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Quantifier types (EN ISO 14819-2, table 30)
const qSmallNumber = 0

// A multi-group message whose parts stop arriving for this long is
// flushed when the next part arrives, and that part starts a new message.
const multiGroupTimeout = 15 * time.Second

// A tmcEvent is one row of the ALERT-C event list.
type tmcEvent struct {
	description               string
	descriptionWithQuantifier string
	nature                    uint16
	quantifierType            uint16
	durationType              uint16
	directionality            uint16
	urgency                   uint16
	updateClass               uint16
	allowsQuantifier          bool
}

// A tmcEventCatalog maps event and supplementary-information codes to
// their descriptions. An empty catalog is usable; messages then carry
// codes only.
type tmcEventCatalog struct {
	events map[uint16]tmcEvent
	suppl  map[uint16]string
}

func newTMCEventCatalog() *tmcEventCatalog {
	return &tmcEventCatalog{
		events: make(map[uint16]tmcEvent),
		suppl:  make(map[uint16]string),
	}
}

// loadTMCEventCatalog reads the semicolon-separated event and
// supplementary-information lists. A missing file is not an error; the
// catalog just stays empty.
func loadTMCEventCatalog(eventPath, supplPath string) (*tmcEventCatalog, error) {
	catalog := newTMCEventCatalog()

	if eventPath != "" {
		if err := catalog.loadEvents(eventPath); err != nil && !os.IsNotExist(err) {
			return catalog, err
		}
	}
	if supplPath != "" {
		if err := catalog.loadSuppl(supplPath); err != nil && !os.IsNotExist(err) {
			return catalog, err
		}
	}
	return catalog, nil
}

func semicolonReader(f *os.File) *csv.Reader {
	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// Row format: code;description;description_with_quantifier;nature;
// quantifier_type;duration_type;directionality;urgency;update_class
func (c *tmcEventCatalog) loadEvents(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := semicolonReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("reading event list %s: %w", path, err)
	}

	for _, row := range rows {
		if len(row) < 9 {
			continue
		}
		code, err := strconv.Atoi(row[0])
		if err != nil {
			continue
		}

		var nums [6]uint16
		ok := true
		for i := range nums {
			n, err := strconv.Atoi(row[3+i])
			if err != nil {
				ok = false
				break
			}
			nums[i] = uint16(n)
		}
		if !ok {
			continue
		}

		c.events[uint16(code)] = tmcEvent{
			description:               row[1],
			descriptionWithQuantifier: row[2],
			nature:                    nums[0],
			quantifierType:            nums[1],
			durationType:              nums[2],
			directionality:            nums[3],
			urgency:                   nums[4],
			updateClass:               nums[5],
			allowsQuantifier:          row[2] != "",
		}
	}
	return nil
}

// Row format: code;description
func (c *tmcEventCatalog) loadSuppl(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := semicolonReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("reading supplementary list %s: %w", path, err)
	}

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		code, err := strconv.Atoi(row[0])
		if err != nil {
			continue
		}
		c.suppl[uint16(code)] = row[1]
	}
	return nil
}

func (c *tmcEventCatalog) event(code uint16) (tmcEvent, bool) {
	ev, ok := c.events[code]
	return ev, ok
}

// A tmcMessagePart is the payload of one group of a multi-group
// message: blocks 3 and 4 of that group, in data[0] and data[1].
type tmcMessagePart struct {
	isReceived bool
	data       [3]uint16
}

type tmcService struct {
	options *Options
	catalog *tmcEventCatalog
	now     func() time.Time

	isInitialized bool
	isEncrypted   bool
	hasEncID      bool
	ltn           uint16
	sid           uint16
	encID         uint16
	ltnbe         uint16

	serviceProvider *rdsString

	multiGroupBuffer  [5]tmcMessagePart
	currentCI         uint16
	lastMultiGroupRx  time.Time
	hasMultiGroupTime bool
}

func newTMCService(options *Options) *tmcService {
	return &tmcService{
		options:         options,
		now:             time.Now,
		serviceProvider: newRDSString(8),
	}
}

// receiveSystemGroup handles the message bits of a 3A group announcing
// an ALERT-C service.
func (t *tmcService) receiveSystemGroup(message uint16, rec *Record) {
	if bits(message, 14, 1) != 0 {
		return
	}

	if t.catalog == nil {
		catalog, err := loadTMCEventCatalog(t.options.TMCEventPath, t.options.TMCSupplPath)
		if err != nil {
			rec.Debug("tmc event catalog: %v", err)
		}
		t.catalog = catalog
	}

	t.isInitialized = true
	t.ltn = bits(message, 6, 6)
	t.isEncrypted = t.ltn == 0

	systemInfo := rec.Nested("tmc").Nested("system_info")
	systemInfo.Set("is_encrypted", t.isEncrypted)
	if !t.isEncrypted {
		systemInfo.Set("location_table", prefixedHexString(uint32(t.ltn), 2))
	}

	systemInfo.Set("is_on_alt_freqs", bits(message, 5, 1) != 0)

	var scope []interface{}
	if bits(message, 3, 1) != 0 {
		scope = append(scope, "inter-road")
	}
	if bits(message, 2, 1) != 0 {
		scope = append(scope, "national")
	}
	if bits(message, 1, 1) != 0 {
		scope = append(scope, "regional")
	}
	if bits(message, 0, 1) != 0 {
		scope = append(scope, "urban")
	}
	systemInfo.Set("scope", scope)
}

// receiveUserGroup handles one type 8A group: x is the five low bits of
// block 2, y and z are blocks 3 and 4.
func (t *tmcService) receiveUserGroup(x, y, z uint16, rec *Record) {
	if !t.isInitialized {
		return
	}

	// Encryption administration group
	if bits(x, 0, 5) == 0x00 {
		t.sid = bits(y, 5, 6)
		t.encID = bits(y, 0, 5)
		t.ltnbe = bits(z, 10, 6)
		t.hasEncID = true

		tmcRecord := rec.Nested("tmc")
		tmcRecord.Set("service_id", prefixedHexString(uint32(t.sid), 2))
		tmcRecord.Set("encryption_id", prefixedHexString(uint32(t.encID), 2))
		tmcRecord.Set("location_table", prefixedHexString(uint32(t.ltnbe), 2))
		return
	}

	// Tuning information
	if bits(x, 4, 1) != 0 {
		variant := bits(x, 0, 4)

		if variant == 4 || variant == 5 {
			pos := 4 * (int(variant) - 4)

			t.serviceProvider.set(pos,
				uint8(bits(y, 8, 8)), uint8(bits(y, 0, 8)),
				uint8(bits(z, 8, 8)), uint8(bits(z, 0, 8)))

			if t.serviceProvider.isComplete() {
				rec.Nested("tmc").Set("service_provider",
					rtrim(t.serviceProvider.getLastCompleteString()))
			}
		} else {
			rec.Debug("TODO: TMC tuning variant %d", variant)
		}
		return
	}

	// User message
	if t.isEncrypted && !t.hasEncID {
		return
	}

	// Single-group message
	if bits(x, 3, 1) != 0 {
		message := newSingleGroupTMCMessage(t.isEncrypted, x, y, z)
		message.write(t.catalog, rec)
		t.currentCI = 0
		return
	}

	// Part of a multi-group message
	ci := bits(x, 0, 3)

	stale := t.hasMultiGroupTime && t.now().Sub(t.lastMultiGroupRx) > multiGroupTimeout
	if ci != t.currentCI || stale {
		message := newMultiGroupTMCMessage(t.isEncrypted, t.multiGroupBuffer, t.catalog)
		message.write(t.catalog, rec)
		for i := range t.multiGroupBuffer {
			t.multiGroupBuffer[i].isReceived = false
		}
		t.currentCI = ci
	}

	var curGroup int
	switch {
	case bits(y, 15, 1) != 0:
		curGroup = 0
	case bits(y, 14, 1) != 0:
		curGroup = 1
	default:
		curGroup = 4 - int(bits(y, 12, 2))
	}

	t.multiGroupBuffer[curGroup] = tmcMessagePart{isReceived: true, data: [3]uint16{y, z}}
	t.lastMultiGroupRx = t.now()
	t.hasMultiGroupTime = true
}

// A tmcMessage is one assembled traffic message.
type tmcMessage struct {
	isEncrypted bool
	isComplete  bool

	duration          uint16
	divertAdvised     bool
	direction         uint16
	extent            uint16
	events            []uint16
	supplementary     []uint16
	quantifiers       map[int]uint16
	location          uint16
	lengthAffected    uint16
	hasLengthAffected bool
	timeStarts        uint16
	hasTimeStarts     bool
	timeUntil         uint16
	hasTimeUntil      bool
}

func newSingleGroupTMCMessage(isEncrypted bool, x, y, z uint16) tmcMessage {
	return tmcMessage{
		isEncrypted:   isEncrypted,
		isComplete:    true,
		duration:      bits(x, 0, 3),
		divertAdvised: bits(y, 15, 1) != 0,
		direction:     bits(y, 14, 1),
		extent:        bits(y, 11, 3),
		events:        []uint16{bits(y, 0, 11)},
		location:      z,
		quantifiers:   make(map[int]uint16),
	}
}

func newMultiGroupTMCMessage(isEncrypted bool, parts [5]tmcMessagePart, catalog *tmcEventCatalog) tmcMessage {
	message := tmcMessage{
		isEncrypted: isEncrypted,
		quantifiers: make(map[int]uint16),
	}

	// Nothing doing without the first group.
	if !parts[0].isReceived {
		return message
	}

	message.isComplete = true
	message.direction = bits(parts[0].data[0], 14, 1)
	message.extent = bits(parts[0].data[0], 11, 3)
	message.events = append(message.events, bits(parts[0].data[0], 0, 11))
	message.location = parts[0].data[1]

	if parts[1].isReceived {
		message.decodeFreeform(parts, catalog)
	}
	return message
}

// Freeform label sizes in bits, indexed by label (EN ISO 14819-1: 5.5).
var tmcFieldSize = [16]int{3, 3, 5, 5, 5, 8, 8, 8, 8, 11, 16, 16, 16, 16, 0, 0}

type tmcBitReader struct {
	bits []uint8
}

func (r *tmcBitReader) pop(n int) uint16 {
	if len(r.bits) < n {
		return 0
	}
	var result uint16
	for _, b := range r.bits[:n] {
		result = result<<1 | uint16(b)
	}
	r.bits = r.bits[n:]
	return result
}

func (t *tmcMessage) decodeFreeform(parts [5]tmcMessagePart, catalog *tmcEventCatalog) {
	secondGSI := bits(parts[1].data[0], 12, 2)

	// Concatenate freeform data from the used parts. The GSI of the
	// second group tells how many trailing parts are in use.
	var reader tmcBitReader
	for i := 1; i < len(parts); i++ {
		if !parts[i].isReceived {
			continue
		}
		if i == 1 || i >= len(parts)-int(secondGSI) {
			for b := 11; b >= 0; b-- {
				reader.bits = append(reader.bits, uint8(parts[i].data[0]>>b)&0x1)
			}
			for b := 15; b >= 0; b-- {
				reader.bits = append(reader.bits, uint8(parts[i].data[1]>>b)&0x1)
			}
		}
	}

	for len(reader.bits) > 4 {
		label := reader.pop(4)
		if len(reader.bits) < tmcFieldSize[label] {
			break
		}
		fieldData := reader.pop(tmcFieldSize[label])

		switch label {
		case 0:
			t.duration = fieldData

		case 2:
			t.lengthAffected = fieldData
			t.hasLengthAffected = true

		case 4:
			t.addQuantifier(fieldData, 5, catalog)

		case 5:
			t.addQuantifier(fieldData, 8, catalog)

		case 6:
			t.supplementary = append(t.supplementary, fieldData)

		case 7:
			t.timeStarts = fieldData
			t.hasTimeStarts = true

		case 8:
			t.timeUntil = fieldData
			t.hasTimeUntil = true
		}
	}
}

func quantifierSize(quantifierType uint16) int {
	switch {
	case quantifierType <= 5:
		return 5
	case quantifierType <= 12:
		return 8
	default:
		return 0
	}
}

// addQuantifier attaches a quantifier to the latest event, unless the
// event already has one or does not allow quantifiers of this width. An
// unknown event never gets a quantifier; without the catalog row its
// quantifier width cannot be checked.
func (t *tmcMessage) addQuantifier(value uint16, size int, catalog *tmcEventCatalog) {
	if len(t.events) == 0 {
		return
	}
	last := len(t.events) - 1
	if _, taken := t.quantifiers[last]; taken {
		return
	}
	ev, known := catalog.event(t.events[last])
	if !known || !ev.allowsQuantifier || quantifierSize(ev.quantifierType) != size {
		return
	}
	t.quantifiers[last] = value
}

func descriptionWithQuantifier(ev tmcEvent, qValue uint16) string {
	q := "_"
	if ev.quantifierType == qSmallNumber {
		num := int(qValue)
		if num > 28 {
			num += num - 28
		}
		q = strconv.Itoa(num)
	}

	var desc []byte
	for i := 0; i < len(ev.descriptionWithQuantifier); i++ {
		if ev.descriptionWithQuantifier[i] == '_' {
			desc = append(desc, q...)
		} else {
			desc = append(desc, ev.descriptionWithQuantifier[i])
		}
	}
	return string(desc)
}

// timeString renders the start/stop time field (EN ISO 14819-1: 7.7).
func timeString(fieldData uint16) string {
	switch {
	case fieldData <= 95:
		return fmt.Sprintf("%02d:%02d", fieldData/4, 15*(fieldData%4))

	case fieldData <= 200:
		days := (fieldData - 96) / 24
		hour := (fieldData - 96) % 24
		switch days {
		case 0:
			return fmt.Sprintf("at %02d:00", hour)
		case 1:
			return fmt.Sprintf("after 1 day at %02d:00", hour)
		default:
			return fmt.Sprintf("after %d days at %02d:00", days, hour)
		}

	case fieldData <= 231:
		return fmt.Sprintf("day %d of the month", fieldData-200)

	default:
		monthNames := [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun",
			"Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
		mo := (fieldData - 232) / 2
		if mo >= 12 {
			return ""
		}
		if (fieldData-232)%2 != 0 {
			return "end of " + monthNames[mo]
		}
		return "mid-" + monthNames[mo]
	}
}

// write renders the message into the record, or notes an incomplete one.
func (t *tmcMessage) write(catalog *tmcEventCatalog, rec *Record) {
	message := rec.Nested("tmc").Nested("message")

	if !t.isComplete || len(t.events) == 0 {
		message.Set("is_complete", false)
		return
	}

	event := message.Nested("event")
	for _, code := range t.events {
		event.Append("codes", int(code))
	}
	if len(t.supplementary) > 0 {
		for _, code := range t.supplementary {
			event.Append("supplementary", int(code))
		}
	}

	var sentences []string
	for i, code := range t.events {
		ev, known := catalog.event(code)
		if !known {
			continue
		}
		desc := ev.description
		if qValue, hasQ := t.quantifiers[i]; hasQ {
			desc = descriptionWithQuantifier(ev, qValue)
		}
		sentences = append(sentences, ucfirst(desc))
	}
	for _, code := range t.supplementary {
		if desc, ok := catalog.suppl[code]; ok {
			sentences = append(sentences, ucfirst(desc))
		}
	}

	if len(sentences) > 0 {
		var joined string
		for i, sentence := range sentences {
			if i > 0 {
				joined += ". "
			}
			joined += sentence
		}
		event.Set("description", joined+".")
	}

	locationKey := "location"
	if t.isEncrypted {
		locationKey = "encrypted_location"
	}
	message.Set(locationKey, prefixedHexString(uint32(t.location), 2))

	direction := "positive"
	if t.direction != 0 {
		direction = "negative"
	}
	message.Set("direction", direction)
	message.Set("extent", int(t.extent))
	message.Set("diversion_advised", t.divertAdvised)

	if t.hasLengthAffected {
		message.Set("length_affected_km", int(t.lengthAffected))
	}
	if t.hasTimeStarts {
		message.Set("starts", timeString(t.timeStarts))
	}
	if t.hasTimeUntil {
		message.Set("until", timeString(t.timeUntil))
	}
}
