package pdu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAddress(t *testing.T) {
	tt := []struct {
		desc     string
		packed   []byte
		digits   int
		toa      byte
		expected string
	}{
		{"even national", []byte{0x21, 0x43}, 4, 0x81, "1234"},
		{"odd with filler", []byte{0x21, 0x43, 0xF5}, 5, 0x81, "12345"},
		{"international", []byte{0x55, 0x11, 0x99, 0x99, 0x99, 0x99, 0xF9}, 13, 0x91, "+5511999999999"},
		{"empty", []byte{}, 0, 0x81, ""},
	}
	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			actual, err := DecodeAddress(tc.packed, tc.digits, tc.toa)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestDecodeAddressFailures(t *testing.T) {
	t.Run("alphanumeric sender", func(t *testing.T) {
		_, err := DecodeAddress([]byte{0x21}, 2, 0xD0)
		assert.ErrorIs(t, err, ErrUnsupportedAddressType)
	})
	t.Run("wrong byte count", func(t *testing.T) {
		_, err := DecodeAddress([]byte{0x21}, 4, 0x81)
		assert.Error(t, err)
	})
	t.Run("missing filler", func(t *testing.T) {
		_, err := DecodeAddress([]byte{0x21, 0x43, 0x65}, 5, 0x81)
		assert.Error(t, err)
	})
	t.Run("non-digit nibble", func(t *testing.T) {
		_, err := DecodeAddress([]byte{0xA1, 0x43}, 4, 0x81)
		assert.Error(t, err)
	})
}

func TestAddressRoundTrip(t *testing.T) {
	for _, packed := range [][]byte{
		{0x21, 0x43},
		{0x21, 0x43, 0xF5},
		{0x55, 0x11, 0x99, 0x99, 0x99, 0x99, 0xF9},
		{0xF7},
	} {
		digits := len(packed) * 2
		if packed[len(packed)-1]>>4 == 0xF {
			digits--
		}
		decoded, err := DecodeAddress(packed, digits, 0x81)
		require.NoError(t, err)
		assert.Equal(t, packed, EncodeAddress(decoded))
	}
}

func TestEncodeAddressStripsPlus(t *testing.T) {
	assert.Equal(t, EncodeAddress("5511999999999"), EncodeAddress("+5511999999999"))
}
