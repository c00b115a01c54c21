package pdu

import (
	"fmt"
	"strings"
)

// Type-of-number values from the type-of-address octet.
const (
	tonInternational = 0x01
	tonAlphanumeric  = 0x05
)

const fillerNibble = 0x0F

// DecodeAddress unpacks a semi-octet encoded address into its digit string.
// digits is the declared digit count, packed must hold exactly
// ceil(digits/2) bytes with the digits nibble-swapped and an F filler in
// the last high nibble when the count is odd. International numbers get a
// leading +.
func DecodeAddress(packed []byte, digits int, toa byte) (string, error) {
	ton := (toa >> 4) & 0x07
	if ton == tonAlphanumeric {
		return "", fmt.Errorf("%w: alphanumeric sender 0x%02X", ErrUnsupportedAddressType, toa)
	}
	if digits < 0 || len(packed) != (digits+1)/2 {
		return "", fmt.Errorf("packed address holds %d bytes, %d digits need %d",
			len(packed), digits, (digits+1)/2)
	}
	result := make([]byte, 0, digits+1)
	if ton == tonInternational {
		result = append(result, '+')
	}
	for i, b := range packed {
		lo, hi := b&0x0F, b>>4
		if lo > 9 {
			return "", fmt.Errorf("invalid digit nibble 0x%X at byte %d", lo, i)
		}
		result = append(result, '0'+lo)
		if i == len(packed)-1 && digits%2 != 0 {
			if hi != fillerNibble {
				return "", fmt.Errorf("missing filler nibble in odd-length address")
			}
			break
		}
		if hi > 9 {
			return "", fmt.Errorf("invalid digit nibble 0x%X at byte %d", hi, i)
		}
		result = append(result, '0'+hi)
	}
	return string(result), nil
}

// EncodeAddress packs a digit string into semi-octet form, the exact
// inverse of DecodeAddress. A leading + is dropped, odd digit counts get
// an F filler nibble.
func EncodeAddress(digits string) []byte {
	digits = strings.TrimPrefix(digits, "+")
	packed := make([]byte, 0, (len(digits)+1)/2)
	for i := 0; i < len(digits); i += 2 {
		b := digits[i] - '0'
		if i+1 < len(digits) {
			b |= (digits[i+1] - '0') << 4
		} else {
			b |= fillerNibble << 4
		}
		packed = append(packed, b)
	}
	return packed
}

// TypeOfAddress returns the type-of-address octet matching a digit string:
// international numbering plan for numbers with a + prefix, unknown
// otherwise.
func TypeOfAddress(digits string) byte {
	if strings.HasPrefix(digits, "+") {
		return 0x91
	}
	return 0x81
}
