package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SMS-SUBMIT to +5511999999999 with text "hello", default alphabet,
// no validity period.
const submitHello = "01000D91551199999999F9000005E8329BFD06"

func TestDecodeSubmit(t *testing.T) {
	msg, err := Decode(submitHello)
	require.NoError(t, err)
	assert.Equal(t, SubmitMessage, msg.Type)
	assert.Equal(t, byte(0x00), msg.Reference)
	assert.Equal(t, "+5511999999999", msg.Address)
	assert.Equal(t, byte(0x00), msg.PID)
	assert.Equal(t, byte(0x00), msg.DCS)
	assert.Equal(t, AlphabetGSM7, msg.Alphabet)
	assert.Equal(t, "hello", msg.Text)
	assert.Nil(t, msg.Concat)
}

func TestDecodeIsCaseAndSpaceInsensitive(t *testing.T) {
	msg, err := Decode("  01000d91551199999999f9000005e8329bfd06\n")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
}

func TestDecodeSubmitMatchesEncodeSubmit(t *testing.T) {
	assert.Equal(t, submitHello, EncodeSubmit(0x00, "+5511999999999", "hello"))
}

func TestEncodeSubmitRoundTrip(t *testing.T) {
	hex := EncodeSubmit(0x2A, "+5511988887777", "Simulator test message")
	msg, err := Decode(hex)
	require.NoError(t, err)
	assert.Equal(t, byte(0x2A), msg.Reference)
	assert.Equal(t, "+5511988887777", msg.Address)
	assert.Equal(t, "Simulator test message", msg.Text)
}

func TestDecodeSubmitWithRelativeValidityPeriod(t *testing.T) {
	// VPF = relative adds a single octet before the user data
	msg, err := Decode("11000B915511999999F90000AA05E8329BFD06")
	require.NoError(t, err)
	assert.Equal(t, "+55119999999", msg.Address)
	assert.Equal(t, "hello", msg.Text)
}

func TestDecodeSubmitWithConcatHeader(t *testing.T) {
	// UDHI set, 8-bit payload, concatenation IE 0x00: ref 0xAB part 1 of 2
	msg, err := Decode("412A0B915511999999F9000408050003AB02016869")
	require.NoError(t, err)
	assert.Equal(t, SubmitMessage, msg.Type)
	assert.Equal(t, byte(0x2A), msg.Reference)
	assert.Equal(t, AlphabetBinary, msg.Alphabet)
	require.NotNil(t, msg.Concat)
	assert.Equal(t, uint16(0xAB), msg.Concat.Ref)
	assert.Equal(t, byte(2), msg.Concat.Total)
	assert.Equal(t, byte(1), msg.Concat.Seq)
	assert.Equal(t, []byte{0x05, 0x00, 0x03, 0xAB, 0x02, 0x01, 0x68, 0x69}, msg.UserData)
}

func TestDecodeSubmitWith16BitConcatRef(t *testing.T) {
	msg, err := Decode("412A0B915511999999F9000409060804DEAD03026869")
	require.NoError(t, err)
	require.NotNil(t, msg.Concat)
	assert.Equal(t, uint16(0xDEAD), msg.Concat.Ref)
	assert.Equal(t, byte(3), msg.Concat.Total)
	assert.Equal(t, byte(2), msg.Concat.Seq)
}

func TestDecodeDeliverUCS2(t *testing.T) {
	msg, err := Decode("000B915511999999F9000800000000000000" + "06004F006C00E1")
	require.NoError(t, err)
	assert.Equal(t, DeliverMessage, msg.Type)
	assert.Equal(t, "+55119999999", msg.Address)
	assert.Equal(t, AlphabetUCS2, msg.Alphabet)
	assert.Equal(t, "Olá", msg.Text)
}

func TestDecodeMalformedHex(t *testing.T) {
	for _, input := range []string{"", "   ", "ZZZ", "0G", "ABC", "D07"} {
		_, err := Decode(input)
		assert.ErrorIs(t, err, ErrMalformedHex, "input %q", input)
	}
}

func TestDecodeTruncated(t *testing.T) {
	// cutting the valid submit anywhere after the first octet must fail
	// with a truncation error, never a panic
	for i := 2; i < len(submitHello); i += 2 {
		_, err := Decode(submitHello[:i])
		assert.ErrorIs(t, err, ErrTruncatedPDU, "cut at %d", i)
	}
}

func TestDecodeTrailingBytes(t *testing.T) {
	// bytes beyond the declared lengths are a decode failure, not ignored
	for _, suffix := range []string{"AA", "DEADBEEF"} {
		_, err := Decode(submitHello + suffix)
		assert.ErrorIs(t, err, ErrTruncatedPDU, "suffix %s", suffix)
	}
}

func TestDecodeTruncatedHeader(t *testing.T) {
	// declared user data header length exceeds the user data
	_, err := Decode("412A0B915511999999F90004020500")
	assert.ErrorIs(t, err, ErrTruncatedPDU)
}

func TestDecodeAlphanumericSender(t *testing.T) {
	_, err := Decode("000AD0C8329BFD0E01000000000000000000")
	assert.ErrorIs(t, err, ErrUnsupportedAddressType)
}

func TestDecodeAddressDigitCountHonored(t *testing.T) {
	for digits := 1; digits <= 16; digits++ {
		number := ""
		for i := 0; i < digits; i++ {
			number += string(rune('0' + (i+1)%10))
		}
		hex := EncodeSubmit(0x01, number, "x")
		msg, err := Decode(hex)
		require.NoError(t, err, "digits %d", digits)
		assert.Len(t, msg.Address, digits)
	}
}
