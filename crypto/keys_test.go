package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	key, err := GeneratePrivateKey()
	require.NoError(t, err)

	addr := key.PubKey().Address()
	encoded := addr.String()
	require.True(t, strings.HasPrefix(encoded, AddressPrefix+"1"))

	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, addr, decoded)
}

func TestDecodeAddressRejectsForeignPrefix(t *testing.T) {
	_, err := DecodeAddress("nhb1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq")
	require.Error(t, err)
}

func TestDeriveAddressDeterministic(t *testing.T) {
	parent := DeriveAddress("merchant", []byte("authority-a"))
	a := DeriveAddress("promotion", parent.Bytes(), []byte{0})
	b := DeriveAddress("promotion", parent.Bytes(), []byte{0})
	c := DeriveAddress("promotion", parent.Bytes(), []byte{1})
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.NotEqual(t, a, parent)
}

func TestDeriveAddressNamespaced(t *testing.T) {
	a := DeriveAddress("coupon", []byte("x"))
	b := DeriveAddress("listing", []byte("x"))
	require.NotEqual(t, a, b)
}
