// Package pdu decodes and encodes the hex-encoded SMS transfer PDUs
// accepted by the simulator.
package pdu

import "errors"

// Decoding errors. The submission service maps these to protocol response
// codes, they never abort a request.
var (
	ErrMalformedHex           = errors.New("malformed hex input")
	ErrTruncatedPDU           = errors.New("truncated pdu")
	ErrUnsupportedAddressType = errors.New("unsupported address type")
)

// MessageType classifies the transfer PDU by its MTI bits.
type MessageType string

const (
	SubmitMessage  MessageType = "SMS-SUBMIT"
	DeliverMessage MessageType = "SMS-DELIVER"
)

// Alphabet is the text encoding selected by the data coding scheme.
type Alphabet byte

const (
	AlphabetGSM7 Alphabet = iota // 7-bit packed default alphabet
	AlphabetBinary
	AlphabetUCS2
)

func (a Alphabet) String() string {
	switch a {
	case AlphabetGSM7:
		return "gsm-7bit"
	case AlphabetBinary:
		return "8bit"
	case AlphabetUCS2:
		return "ucs2"
	default:
		return "unknown"
	}
}

// Concat carries the multipart concatenation info from the user data header.
type Concat struct {
	Ref   uint16 `json:"ref"`
	Total byte   `json:"total"`
	Seq   byte   `json:"seq"`
}

// Message is a fully decoded transfer PDU.
type Message struct {
	Type      MessageType `json:"message_type"`
	Reference byte        `json:"reference"`
	Address   string      `json:"address"` // destination (submit) or originator (deliver)
	PID       byte        `json:"protocol_identifier"`
	DCS       byte        `json:"data_coding_scheme"`
	Alphabet  Alphabet    `json:"-"`
	ReplyPath bool        `json:"reply_path,omitempty"`
	UserData  []byte      `json:"user_data,omitempty"` // raw user data, header included
	Text      string      `json:"text,omitempty"`      // decoded text, empty for binary payloads
	Concat    *Concat     `json:"concat,omitempty"`
}
