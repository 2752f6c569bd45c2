package crypto

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix is the human-readable part used when rendering account
// addresses.
const AddressPrefix = "agora"

// AddressLength is the byte length of every account identifier on the ledger.
const AddressLength = 32

// Address identifies an account, merchant, promotion, coupon or any other
// keyed record. Addresses are opaque 32-byte values compared by equality.
type Address [AddressLength]byte

// ZeroAddress is the sentinel "unset" identity. Records use it to detect
// first-time initialisation.
var ZeroAddress Address

// NewAddress copies the supplied bytes into an Address. The input must be
// exactly AddressLength bytes long.
func NewAddress(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("address must be %d bytes long, got %d", AddressLength, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Bytes returns the raw address bytes.
func (a Address) Bytes() []byte {
	return a[:]
}

// IsZero reports whether the address is the unset sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String renders the address in bech32 with the agora prefix.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a[:], 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(AddressPrefix, conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// DecodeAddress parses a bech32 agora address back into its raw form.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	if prefix != AddressPrefix {
		return Address{}, fmt.Errorf("unexpected address prefix %q", prefix)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	return NewAddress(conv)
}

// DeriveAddress computes the deterministic address of a child record from a
// namespace tag and an ordered list of discriminator parts. The derivation is
// pure: the same inputs always yield the same address, and the namespace tag
// keeps independent record families collision-free.
func DeriveAddress(namespace string, parts ...[]byte) Address {
	buf := bytes.NewBufferString(namespace)
	for _, part := range parts {
		buf.WriteByte('/')
		buf.Write(part)
	}
	var a Address
	copy(a[:], ethcrypto.Keccak256(buf.Bytes()))
	return a
}

// --- Key Management ---

type PrivateKey struct {
	*ecdsa.PrivateKey
}

type PublicKey struct {
	*ecdsa.PublicKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(ethcrypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the byte representation of the private key.
func (k *PrivateKey) Bytes() []byte {
	return ethcrypto.FromECDSA(k.PrivateKey)
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Address hashes the uncompressed public key into a 32-byte account
// identifier.
func (k *PublicKey) Address() Address {
	var a Address
	copy(a[:], ethcrypto.Keccak256(ethcrypto.FromECDSAPub(k.PublicKey)))
	return a
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}
