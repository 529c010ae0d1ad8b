package redbone

/*------------------------------------------------------------------
 *
 * Purpose:	The RDS basic character set, IEC 62106:2015 annex E,
 *		mapped to Unicode strings.
 *
 * Description:	The lower half mostly coincides with ASCII but a few
 *		code points differ, and the upper half is an EBU Latin
 *		repertoire of accented letters and symbols. Codes are
 *		decoded one at a time; multi-byte (UCS-2 / UTF-8) text
 *		signalled by other character tables is not carried in
 *		the basic set and is out of scope here.
 *
 *------------------------------------------------------------------*/

var rdsCharmap = [224]string{
	// 0x20
	" ", "!", "\"", "#", "¤", "%", "&", "'",
	"(", ")", "*", "+", ",", "-", ".", "/",
	// 0x30
	"0", "1", "2", "3", "4", "5", "6", "7",
	"8", "9", ":", ";", "<", "=", ">", "?",
	// 0x40
	"@", "A", "B", "C", "D", "E", "F", "G",
	"H", "I", "J", "K", "L", "M", "N", "O",
	// 0x50
	"P", "Q", "R", "S", "T", "U", "V", "W",
	"X", "Y", "Z", "[", "\\", "]", "―", "_",
	// 0x60
	"‖", "a", "b", "c", "d", "e", "f", "g",
	"h", "i", "j", "k", "l", "m", "n", "o",
	// 0x70
	"p", "q", "r", "s", "t", "u", "v", "w",
	"x", "y", "z", "{", "|", "}", "¯", " ",
	// 0x80
	"á", "à", "é", "è", "í", "ì", "ó", "ò",
	"ú", "ù", "Ñ", "Ç", "Ş", "β", "¡", "Ĳ",
	// 0x90
	"â", "ä", "ê", "ë", "î", "ï", "ô", "ö",
	"û", "ü", "ñ", "ç", "ş", "ǧ", "ı", "ĳ",
	// 0xA0
	"ª", "α", "©", "‰", "Ǧ", "ě", "ň", "ő",
	"π", "€", "£", "$", "←", "↑", "→", "↓",
	// 0xB0
	"º", "¹", "²", "³", "±", "İ", "ń", "ű",
	"µ", "¿", "÷", "°", "¼", "½", "¾", "§",
	// 0xC0
	"Á", "À", "É", "È", "Í", "Ì", "Ó", "Ò",
	"Ú", "Ù", "Ř", "Č", "Š", "Ž", "Ð", "Ŀ",
	// 0xD0
	"Â", "Ä", "Ê", "Ë", "Î", "Ï", "Ô", "Ö",
	"Û", "Ü", "ř", "č", "š", "ž", "đ", "ŀ",
	// 0xE0
	"Ã", "Å", "Æ", "Œ", "ŷ", "ý", "Õ", "Ø",
	"Þ", "Ŋ", "Ŕ", "Ć", "Ś", "Ź", "Ŧ", "ð",
	// 0xF0
	"ã", "å", "æ", "œ", "ŵ", "ý", "õ", "ø",
	"þ", "ŋ", "ŕ", "ć", "ś", "ź", "ŧ", " ",
}

// decodeRDSChar maps one code point to a string. Control codes decode
// to a space.
func decodeRDSChar(code uint8) string {
	if code < 0x20 {
		return " "
	}
	return rdsCharmap[code-0x20]
}
