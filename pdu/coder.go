package pdu

import (
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// AlphabetFromDCS selects the text alphabet from the data coding scheme
// octet. Only the general coding group matters here: bits 2-3 pick the
// alphabet, the reserved value falls back to binary.
func AlphabetFromDCS(dcs byte) Alphabet {
	switch (dcs >> 2) & 0x03 {
	case 0x00:
		return AlphabetGSM7
	case 0x01:
		return AlphabetBinary
	case 0x02:
		return AlphabetUCS2
	default:
		return AlphabetBinary
	}
}

// DecodeText interprets user data bytes according to the alphabet. For the
// 7-bit default alphabet septets is the declared septet count; the other
// alphabets ignore it. Binary payloads yield an empty string.
func DecodeText(alphabet Alphabet, data []byte, septets int) string {
	switch alphabet {
	case AlphabetUCS2:
		es, _, _ := transform.Bytes(
			unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(), data)
		return string(es)
	case AlphabetGSM7:
		return decodeGSM7(Unpack7Bit(data, septets))
	default:
		return ""
	}
}

// Unpack7Bit expands packed 7-bit user data into one septet per byte,
// trimmed to the declared septet count.
func Unpack7Bit(data []byte, septets int) []byte {
	result := make([]byte, 0, septets)
	var prev byte
	for i, b := range data {
		shift := uint(i % 7)
		result = append(result, ((b<<shift)|(prev>>(8-shift)))&0x7F)
		if shift == 6 {
			result = append(result, b>>1)
		}
		prev = b
	}
	if len(result) > septets {
		result = result[:septets]
	}
	return result
}

// Pack7Bit packs one-septet-per-byte data into the 7-bit wire form.
func Pack7Bit(septets []byte) []byte {
	packed := make([]byte, 0, len(septets)*7/8+1)
	for i, s := range septets {
		shift := uint(i % 8)
		if shift == 7 {
			continue // fully absorbed into the previous byte
		}
		b := s >> shift
		if i+1 < len(septets) {
			b |= septets[i+1] << (7 - shift)
		}
		packed = append(packed, b)
	}
	return packed
}

const gsm7Escape = 0x1B

// GSM 03.38 default alphabet, indexed by septet value.
var gsm7Alphabet = [128]rune{
	'@', '£', '$', '¥', 'è', 'é', 'ù', 'ì', 'ò', 'Ç', '\n', 'Ø', 'ø', '\r', 'Å', 'å',
	'Δ', '_', 'Φ', 'Γ', 'Λ', 'Ω', 'Π', 'Ψ', 'Σ', 'Θ', 'Ξ', gsm7Escape, 'Æ', 'æ', 'ß', 'É',
	' ', '!', '"', '#', '¤', '%', '&', '\'', '(', ')', '*', '+', ',', '-', '.', '/',
	'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', ':', ';', '<', '=', '>', '?',
	'¡', 'A', 'B', 'C', 'D', 'E', 'F', 'G', 'H', 'I', 'J', 'K', 'L', 'M', 'N', 'O',
	'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X', 'Y', 'Z', 'Ä', 'Ö', 'Ñ', 'Ü', '§',
	'¿', 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 'i', 'j', 'k', 'l', 'm', 'n', 'o',
	'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'z', 'ä', 'ö', 'ñ', 'ü', 'à',
}

// Escaped characters of the extension table.
var gsm7Extension = map[byte]rune{
	0x0A: '\f', 0x14: '^', 0x28: '{', 0x29: '}', 0x2F: '\\',
	0x3C: '[', 0x3D: '~', 0x3E: ']', 0x40: '|', 0x65: '€',
}

func decodeGSM7(septets []byte) string {
	var result strings.Builder
	result.Grow(len(septets))
	for i := 0; i < len(septets); i++ {
		s := septets[i]
		if s == gsm7Escape && i+1 < len(septets) {
			if r, ok := gsm7Extension[septets[i+1]]; ok {
				result.WriteRune(r)
				i++
				continue
			}
			continue // lone escape renders as nothing
		}
		result.WriteRune(gsm7Alphabet[s&0x7F])
	}
	return result.String()
}

var gsm7Reverse = func() map[rune]byte {
	m := make(map[rune]byte, len(gsm7Alphabet))
	for i, r := range gsm7Alphabet {
		m[r] = byte(i)
	}
	delete(m, rune(gsm7Escape))
	return m
}()

var gsm7ExtensionReverse = func() map[rune]byte {
	m := make(map[rune]byte, len(gsm7Extension))
	for b, r := range gsm7Extension {
		m[r] = b
	}
	return m
}()

// EncodeGSM7 converts text to septets of the default alphabet, escaping
// extension characters. Characters outside both tables become '?', as the
// wire format has no way to carry them.
func EncodeGSM7(text string) []byte {
	septets := make([]byte, 0, len(text))
	for _, r := range text {
		if s, ok := gsm7Reverse[r]; ok {
			septets = append(septets, s)
			continue
		}
		if e, ok := gsm7ExtensionReverse[r]; ok {
			septets = append(septets, gsm7Escape, e)
			continue
		}
		septets = append(septets, '?')
	}
	return septets
}
