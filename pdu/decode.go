package pdu

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// First octet flag masks.
const (
	mtiMask  = 0x03
	vpfMask  = 0x18
	udhiFlag = 0x40
	rpFlag   = 0x80
)

// reader walks the PDU byte stream and turns every short read into
// ErrTruncatedPDU instead of indexing past the buffer.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) readByte(field string) (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("%w: missing %s at offset %d", ErrTruncatedPDU, field, r.pos)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int, field string) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, fmt.Errorf("%w: %s needs %d bytes, %d left",
			ErrTruncatedPDU, field, n, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Decode parses a full hex command string into a Message. The input is
// case insensitive and may carry surrounding whitespace; an odd length or
// non-hex characters fail with ErrMalformedHex. Declared lengths running
// past the supplied bytes fail with ErrTruncatedPDU, as do bytes left
// over after the user data: the declared lengths must account for the
// whole input.
func Decode(hexInput string) (*Message, error) {
	clean := strings.ToUpper(strings.TrimSpace(hexInput))
	if clean == "" || len(clean)%2 != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrMalformedHex, len(clean))
	}
	data, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedHex, err)
	}
	r := &reader{data: data}

	firstOctet, err := r.readByte("first octet")
	if err != nil {
		return nil, err
	}
	msg := &Message{ReplyPath: firstOctet&rpFlag != 0}
	submit := firstOctet&mtiMask == 0x01
	if submit {
		msg.Type = SubmitMessage
		if msg.Reference, err = r.readByte("message reference"); err != nil {
			return nil, err
		}
	} else {
		msg.Type = DeliverMessage
	}

	if msg.Address, err = decodeAddressField(r); err != nil {
		return nil, err
	}
	if msg.PID, err = r.readByte("protocol identifier"); err != nil {
		return nil, err
	}
	if msg.DCS, err = r.readByte("data coding scheme"); err != nil {
		return nil, err
	}
	msg.Alphabet = AlphabetFromDCS(msg.DCS)

	if submit {
		// validity period is skipped, only its length matters
		var vpBytes int
		switch (firstOctet & vpfMask) >> 3 {
		case 0x00:
			vpBytes = 0
		case 0x02: // relative
			vpBytes = 1
		default: // enhanced or absolute
			vpBytes = 7
		}
		if _, err = r.readBytes(vpBytes, "validity period"); err != nil {
			return nil, err
		}
	} else {
		if _, err = r.readBytes(7, "service centre timestamp"); err != nil {
			return nil, err
		}
	}

	udl, err := r.readByte("user data length")
	if err != nil {
		return nil, err
	}
	udBytes := int(udl)
	if msg.Alphabet == AlphabetGSM7 {
		udBytes = (int(udl)*7 + 7) / 8 // UDL counts septets
	}
	if msg.UserData, err = r.readBytes(udBytes, "user data"); err != nil {
		return nil, err
	}
	if r.pos != len(r.data) {
		return nil, fmt.Errorf("%w: %d bytes left after user data",
			ErrTruncatedPDU, len(r.data)-r.pos)
	}

	payload := msg.UserData
	headerLen := 0
	if firstOctet&udhiFlag != 0 {
		if headerLen, msg.Concat, err = parseUserDataHeader(msg.UserData); err != nil {
			return nil, err
		}
		payload = msg.UserData[headerLen:]
	}

	switch msg.Alphabet {
	case AlphabetGSM7:
		if headerLen == 0 {
			msg.Text = DecodeText(AlphabetGSM7, payload, int(udl))
		}
		// packed text behind a header needs fill-bit alignment, the raw
		// bytes stay available in UserData
	case AlphabetUCS2:
		msg.Text = DecodeText(AlphabetUCS2, payload, 0)
	}
	return msg, nil
}

func decodeAddressField(r *reader) (string, error) {
	digits, err := r.readByte("address length")
	if err != nil {
		return "", err
	}
	toa, err := r.readByte("type of address")
	if err != nil {
		return "", err
	}
	packed, err := r.readBytes((int(digits)+1)/2, "address digits")
	if err != nil {
		return "", err
	}
	return DecodeAddress(packed, int(digits), toa)
}

// Concatenation information elements of the user data header.
const (
	ieConcat8  = 0x00
	ieConcat16 = 0x08
)

// parseUserDataHeader walks the information elements and extracts the
// multipart concatenation info if present. It returns the total header
// length including the length octet itself.
func parseUserDataHeader(userData []byte) (int, *Concat, error) {
	r := &reader{data: userData}
	udhl, err := r.readByte("user data header length")
	if err != nil {
		return 0, nil, err
	}
	header, err := r.readBytes(int(udhl), "user data header")
	if err != nil {
		return 0, nil, err
	}

	var concat *Concat
	hr := &reader{data: header}
	for hr.pos < len(hr.data) {
		iei, err := hr.readByte("information element id")
		if err != nil {
			return 0, nil, err
		}
		length, err := hr.readByte("information element length")
		if err != nil {
			return 0, nil, err
		}
		value, err := hr.readBytes(int(length), "information element")
		if err != nil {
			return 0, nil, err
		}
		switch {
		case iei == ieConcat8 && len(value) == 3:
			concat = &Concat{Ref: uint16(value[0]), Total: value[1], Seq: value[2]}
		case iei == ieConcat16 && len(value) == 4:
			concat = &Concat{Ref: uint16(value[0])<<8 | uint16(value[1]), Total: value[2], Seq: value[3]}
		}
	}
	return int(udhl) + 1, concat, nil
}
