package pdu

import (
	"encoding/hex"
	"strings"
)

// EncodeSubmit builds the hex form of a minimal SMS-SUBMIT carrying text
// in the 7-bit default alphabet, with no validity period and no user data
// header. The simulator uses it to synthesize outgoing messages that
// decode like real ones.
func EncodeSubmit(reference byte, destination, text string) string {
	septets := EncodeGSM7(text)
	var buf []byte
	buf = append(buf, 0x01, reference) // SMS-SUBMIT, no VP
	digits := strings.TrimPrefix(destination, "+")
	buf = append(buf, byte(len(digits)), TypeOfAddress(destination))
	buf = append(buf, EncodeAddress(destination)...)
	buf = append(buf, 0x00, 0x00) // PID, DCS: default alphabet
	buf = append(buf, byte(len(septets)))
	buf = append(buf, Pack7Bit(septets)...)
	return strings.ToUpper(hex.EncodeToString(buf))
}
