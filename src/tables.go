package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	Static lookup tables: programme types, decoder
 *		identification, countries, languages, ODA application
 *		names, RadioText+ content types and RBDS callsigns.
 *
 * References:	IEC 62106:2015 annexes D, F, J; NRSC-4-B annexes D, F;
 *		RDS Forum R06/040 (registered ODA AIDs).
 *
 *------------------------------------------------------------------*/

var ptyNames = [32]string{
	"No PTY", "News", "Current affairs", "Information",
	"Sport", "Education", "Drama", "Cultures",
	"Science", "Varied", "Pop music", "Rock music",
	"Easy listening", "Light classics M", "Serious classics", "Other music",
	"Weather", "Finance", "Children's progs", "Social affairs",
	"Religion", "Phone-in", "Travel", "Leisure",
	"Jazz music", "Country music", "National music", "Oldies music",
	"Folk music", "Documentary", "Alarm test", "Alarm!",
}

var ptyNamesRBDS = [32]string{
	"No PTY", "News", "Information", "Sports",
	"Talk", "Rock", "Classic rock", "Adult hits",
	"Soft rock", "Top 40", "Country", "Oldies",
	"Soft", "Nostalgia", "Jazz", "Classical",
	"Rhythm and blues", "Soft rhythm and blues", "Language", "Religious music",
	"Religious talk", "Personality", "Public", "College",
	"Spanish talk", "Spanish music", "Hip hop", "Unassigned",
	"Unassigned", "Weather", "Emergency test", "Emergency!",
}

func ptyNameString(pty uint16, rbds bool) string {
	if pty > 31 {
		return ""
	}
	if rbds {
		return ptyNamesRBDS[pty]
	}
	return ptyNames[pty]
}

// DI bit d0 travels with segment address 3, d3 with address 0.
var diCodes = [4]string{"dynamic_pty", "compressed", "artificial_head", "stereo"}

func diCodeString(segment uint16) string {
	if segment > 3 {
		return ""
	}
	return diCodes[segment]
}

// Country codes keyed by extended country code, then by the PI country
// nibble 1..F. Extended country codes outside the European (E0..E4) and
// American (A0..A4) tables resolve to "--", same as an unseen combination.
var countryCodes = map[uint16][15]string{
	0xE0: {"de", "dz", "ad", "il", "it", "be", "ru", "ps", "al", "at", "hu", "mt", "de", "--", "eg"},
	0xE1: {"gr", "cy", "sm", "ch", "jo", "fi", "lu", "bg", "dk", "gi", "iq", "gb", "ly", "ro", "fr"},
	0xE2: {"ma", "cz", "pl", "va", "sk", "sy", "tn", "--", "li", "is", "mc", "lt", "rs", "es", "no"},
	0xE3: {"me", "ie", "tr", "mk", "--", "--", "--", "nl", "lv", "lb", "az", "hr", "kz", "se", "by"},
	0xE4: {"md", "ee", "kg", "--", "--", "ua", "ks", "pt", "si", "am", "--", "ge", "--", "--", "ba"},
	0xA0: {"us", "us", "us", "us", "us", "us", "us", "us", "us", "us", "us", "--", "us", "us", "--"},
	0xA1: {"--", "--", "--", "--", "--", "--", "--", "--", "--", "--", "ca", "ca", "ca", "ca", "gl"},
	0xA2: {"ai", "ag", "ec", "fk", "bb", "bz", "ky", "cr", "cu", "ar", "br", "bm", "an", "gp", "bs"},
	0xA3: {"bo", "co", "jm", "mq", "gf", "py", "ni", "--", "pa", "dm", "do", "cl", "gd", "tc", "gy"},
	0xA4: {"gt", "hn", "aw", "--", "ms", "tt", "pe", "sr", "uy", "kn", "lc", "sv", "ht", "ve", "--"},
}

func countryString(cc uint16, ecc uint16) string {
	countries, ok := countryCodes[ecc]
	if !ok || cc < 1 || cc > 15 {
		return "--"
	}
	return countries[cc-1]
}

var languageNames = map[uint16]string{
	0x00: "Unknown", 0x01: "Albanian", 0x02: "Breton", 0x03: "Catalan",
	0x04: "Croatian", 0x05: "Welsh", 0x06: "Czech", 0x07: "Danish",
	0x08: "German", 0x09: "English", 0x0A: "Spanish", 0x0B: "Esperanto",
	0x0C: "Estonian", 0x0D: "Basque", 0x0E: "Faroese", 0x0F: "French",
	0x10: "Frisian", 0x11: "Irish", 0x12: "Gaelic", 0x13: "Galician",
	0x14: "Icelandic", 0x15: "Italian", 0x16: "Lappish", 0x17: "Latin",
	0x18: "Latvian", 0x19: "Luxembourgian", 0x1A: "Lithuanian", 0x1B: "Hungarian",
	0x1C: "Maltese", 0x1D: "Dutch", 0x1E: "Norwegian", 0x1F: "Occitan",
	0x20: "Polish", 0x21: "Portuguese", 0x22: "Romanian", 0x23: "Romansh",
	0x24: "Serbian", 0x25: "Slovak", 0x26: "Slovene", 0x27: "Finnish",
	0x28: "Swedish", 0x29: "Turkish", 0x2A: "Flemish", 0x2B: "Walloon",
	0x45: "Zulu", 0x46: "Vietnamese", 0x47: "Uzbek", 0x48: "Urdu",
	0x49: "Ukrainian", 0x4A: "Thai", 0x4B: "Telugu", 0x4C: "Tatar",
	0x4D: "Tamil", 0x4E: "Tadzhik", 0x4F: "Swahili", 0x50: "Sranan Tongo",
	0x51: "Somali", 0x52: "Sinhalese", 0x53: "Shona", 0x54: "Serbo-Croat",
	0x55: "Ruthenian", 0x56: "Russian", 0x57: "Quechua", 0x58: "Pushtu",
	0x59: "Punjabi", 0x5A: "Persian", 0x5B: "Papamiento", 0x5C: "Oriya",
	0x5D: "Nepali", 0x5E: "Ndebele", 0x5F: "Marathi", 0x60: "Moldavian",
	0x61: "Malaysian", 0x62: "Malagasay", 0x63: "Macedonian", 0x64: "Laotian",
	0x65: "Korean", 0x66: "Khmer", 0x67: "Kazakh", 0x68: "Kannada",
	0x69: "Japanese", 0x6A: "Indonesian", 0x6B: "Hindi", 0x6C: "Hebrew",
	0x6D: "Hausa", 0x6E: "Gurani", 0x6F: "Gujurati", 0x70: "Greek",
	0x71: "Georgian", 0x72: "Fulani", 0x73: "Dari", 0x74: "Churash",
	0x75: "Chinese", 0x76: "Burmese", 0x77: "Bulgarian", 0x78: "Bengali",
	0x79: "Belorussian", 0x7A: "Bambora", 0x7B: "Azerbaijani", 0x7C: "Assamese",
	0x7D: "Armenian", 0x7E: "Arabic", 0x7F: "Amharic",
}

func languageString(code uint16) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "Unknown"
}

var odaAppNames = map[uint16]string{
	0x0093: "Cross referencing DAB within RDS",
	0x0D45: "RDS-TMC: ALERT-C / EN ISO 14819-1",
	0x4AA1: "RASANT",
	0x4BD7: "RadioText+ (RT+)",
	0x6552: "Enhanced RadioText (eRT)",
	0xC350: "NRSC Song Title and Artist",
	0xC563: "ID Logic",
	0xCD46: "RDS-TMC: ALERT-C / EN ISO 14819-1",
	0xCD47: "RDS-TMC: ALERT-C / EN ISO 14819-1",
}

func odaAppNameString(appID uint16) string {
	if name, ok := odaAppNames[appID]; ok {
		return name
	}
	return "(Unregistered)"
}

var rtPlusContentTypes = [64]string{
	"dummy_class", "item.title", "item.album", "item.tracknumber",
	"item.artist", "item.composition", "item.movement", "item.conductor",
	"item.composer", "item.band", "item.comment", "item.genre",
	"info.news", "info.news.local", "info.stockmarket", "info.sport",
	"info.lottery", "info.horoscope", "info.daily_diversion", "info.health",
	"info.event", "info.scene", "info.cinema", "info.tv",
	"info.date_time", "info.weather", "info.traffic", "info.alarm",
	"info.advertisement", "info.url", "info.other", "stationname.short",
	"stationname.long", "programme.now", "programme.next", "programme.part",
	"programme.host", "programme.editorial_staff", "programme.frequency",
	"programme.homepage", "programme.subchannel", "phone.hotline",
	"phone.studio", "phone.other", "sms.studio", "sms.other",
	"email.hotline", "email.studio", "email.other", "mms.other",
	"chat", "chat.centre", "vote.question", "vote.centre",
	"unknown", "unknown", "unknown", "unknown",
	"place", "appointment", "identifier", "purchase",
	"get_data", "unknown",
}

func rtPlusContentTypeString(contentType uint16) string {
	if contentType > 63 {
		return "unknown"
	}
	return rtPlusContentTypes[contentType]
}

// callsignFromPI derives a North American four-letter callsign from the
// PI code. Outside the plain K/W ranges it returns "".
func callsignFromPI(pi uint16) string {
	if pi < 0x1000 || pi > 0x994F {
		return ""
	}

	var prefix byte
	var base int
	if pi < 0x54A8 {
		prefix = 'K'
		base = int(pi) - 0x1000
	} else {
		prefix = 'W'
		base = int(pi) - 0x54A8
	}

	letters := []byte{
		prefix,
		byte('A' + base/676),
		byte('A' + (base%676)/26),
		byte('A' + base%26),
	}
	return string(letters)
}

// DAB ensemble channel labels by carrier frequency (ETSI EN 301 700).
var dabChannelNames = map[int]string{
	174928: "5A", 176640: "5B", 178352: "5C", 180064: "5D",
	181936: "6A", 183648: "6B", 185360: "6C", 187072: "6D",
	188928: "7A", 190640: "7B", 192352: "7C", 194064: "7D",
	195936: "8A", 197648: "8B", 199360: "8C", 201072: "8D",
	202928: "9A", 204640: "9B", 206352: "9C", 208064: "9D",
	209936: "10A", 211648: "10B", 213360: "10C", 215072: "10D",
	216928: "11A", 218640: "11B", 220352: "11C", 222064: "11D",
	223936: "12A", 225648: "12B", 227360: "12C", 229072: "12D",
	230784: "13A", 232496: "13B", 234208: "13C", 235776: "13D",
	237488: "13E", 239200: "13F",
	1452960: "LA", 1454672: "LB", 1456384: "LC", 1458096: "LD",
	1459808: "LE", 1461520: "LF", 1463232: "LG", 1464944: "LH",
	1466656: "LI", 1468368: "LJ", 1470080: "LK", 1471792: "LL",
	1473504: "LM", 1475216: "LN", 1476928: "LO", 1478640: "LP",
	1480352: "LQ", 1482064: "LR", 1483776: "LS", 1485488: "LT",
	1487200: "LU", 1488912: "LV", 1490624: "LW",
}
