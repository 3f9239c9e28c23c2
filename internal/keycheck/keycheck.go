// Package keycheck validates raw key material extracted from DER key blobs
// against the algorithm its OIDs classify to.
//
// Checks are structural: a public key must decode to a valid group element
// (or parse as the algorithm's public key type), a private key must have the
// expected size and, where cheap, lie in the valid scalar range. Nothing is
// signed or derived.
package keycheck

import (
	"crypto/ecdh"
	"crypto/elliptic"
	"crypto/x509"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/cloudflare/circl/sign/ed448"
	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
	"github.com/cloudflare/circl/sign/mldsa/mldsa65"
	"github.com/cloudflare/circl/sign/mldsa/mldsa87"

	"github.com/remiblancher/keyder/pkg/der"
)

// Sentinel errors for key checks.
var (
	// ErrInvalidKey indicates the key bytes are not valid for the algorithm.
	ErrInvalidKey = errors.New("invalid key material")

	// ErrUnsupportedAlgorithm indicates no check exists for the algorithm.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

const (
	ed25519KeySize   = 32
	secp256k1KeySize = 32
	mldsaSeedSize    = 32
)

// checker validates one key kind for one algorithm.
type checker func(raw []byte) error

type algorithmCheckers struct {
	public  checker
	private checker
}

// checkers maps algorithm labels to their checks.
var checkers = map[string]algorithmCheckers{
	der.LabelEd25519: {public: checkEd25519Public, private: checkSize(ed25519KeySize)},
	der.LabelECDSA:   {public: checkSecp256k1Public, private: checkSecp256k1Private},
	der.LabelEd448:   {public: checkSize(ed448.PublicKeySize), private: checkSize(ed448.SeedSize)},
	der.LabelX25519:  {public: checkECDH(ecdh.X25519()), private: checkSize(32)},
	der.LabelP256:    {public: checkNISTPublic(elliptic.P256(), ecdh.P256()), private: checkECDHPrivate(ecdh.P256())},
	der.LabelP384:    {public: checkNISTPublic(elliptic.P384(), ecdh.P384()), private: checkECDHPrivate(ecdh.P384())},
	der.LabelP521:    {public: checkNISTPublic(elliptic.P521(), ecdh.P521()), private: checkECDHPrivate(ecdh.P521())},
	der.LabelRSA:     {public: checkRSAPublic, private: checkRSAPrivate},
	der.LabelMLDSA44: {
		public:  checkUnmarshal(func(b []byte) error { return new(mldsa44.PublicKey).UnmarshalBinary(b) }),
		private: checkSize(mldsaSeedSize, mldsa44.PrivateKeySize),
	},
	der.LabelMLDSA65: {
		public:  checkUnmarshal(func(b []byte) error { return new(mldsa65.PublicKey).UnmarshalBinary(b) }),
		private: checkSize(mldsaSeedSize, mldsa65.PrivateKeySize),
	},
	der.LabelMLDSA87: {
		public:  checkUnmarshal(func(b []byte) error { return new(mldsa87.PublicKey).UnmarshalBinary(b) }),
		private: checkSize(mldsaSeedSize, mldsa87.PrivateKeySize),
	},
}

// Supported reports whether Check has rules for algorithm.
func Supported(algorithm string) bool {
	_, ok := checkers[algorithm]
	return ok
}

// Check validates raw key bytes of the given kind for algorithm, which is a
// label produced by der.Classify.
func Check(algorithm string, kind der.KeyKind, raw []byte) error {
	c, ok := checkers[algorithm]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, algorithm)
	}

	var fn checker
	switch kind {
	case der.KindPublic:
		fn = c.public
	case der.KindPrivate:
		fn = c.private
	default:
		return fmt.Errorf("%w: no key kind", ErrInvalidKey)
	}

	if err := fn(raw); err != nil {
		return fmt.Errorf("%s %s key: %w", algorithm, kind, err)
	}
	return nil
}

// CheckInfo validates the key summarized by info.
func CheckInfo(info *der.KeyInfo) error {
	if info == nil {
		return fmt.Errorf("%w: no key", ErrInvalidKey)
	}
	return Check(info.Algorithm, info.Kind, info.Raw)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidKey, fmt.Sprintf(format, args...))
}

func checkSize(sizes ...int) checker {
	return func(raw []byte) error {
		for _, n := range sizes {
			if len(raw) == n {
				return nil
			}
		}
		return invalid("length %d, want one of %v", len(raw), sizes)
	}
}

func checkUnmarshal(unmarshal func([]byte) error) checker {
	return func(raw []byte) error {
		if err := unmarshal(raw); err != nil {
			return invalid("%v", err)
		}
		return nil
	}
}

func checkEd25519Public(raw []byte) error {
	if len(raw) != ed25519KeySize {
		return invalid("length %d, want %d", len(raw), ed25519KeySize)
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return invalid("not a curve point: %v", err)
	}
	return nil
}

func checkSecp256k1Public(raw []byte) error {
	if _, err := btcec.ParsePubKey(raw); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func checkSecp256k1Private(raw []byte) error {
	if len(raw) != secp256k1KeySize {
		return invalid("length %d, want %d", len(raw), secp256k1KeySize)
	}
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(raw); overflow {
		return invalid("scalar not below the group order")
	}
	if s.IsZero() {
		return invalid("zero scalar")
	}
	return nil
}

func checkECDH(curve ecdh.Curve) checker {
	return func(raw []byte) error {
		if _, err := curve.NewPublicKey(raw); err != nil {
			return invalid("%v", err)
		}
		return nil
	}
}

func checkECDHPrivate(curve ecdh.Curve) checker {
	return func(raw []byte) error {
		if _, err := curve.NewPrivateKey(raw); err != nil {
			return invalid("%v", err)
		}
		return nil
	}
}

// checkNISTPublic accepts compressed and uncompressed points.
func checkNISTPublic(curve elliptic.Curve, ec ecdh.Curve) checker {
	uncompressed := checkECDH(ec)
	return func(raw []byte) error {
		if len(raw) > 0 && (raw[0] == 0x02 || raw[0] == 0x03) {
			if x, _ := elliptic.UnmarshalCompressed(curve, raw); x == nil {
				return invalid("not a compressed %s point", curve.Params().Name)
			}
			return nil
		}
		return uncompressed(raw)
	}
}

func checkRSAPublic(raw []byte) error {
	if _, err := x509.ParsePKCS1PublicKey(raw); err != nil {
		return invalid("%v", err)
	}
	return nil
}

func checkRSAPrivate(raw []byte) error {
	if _, err := x509.ParsePKCS1PrivateKey(raw); err != nil {
		return invalid("%v", err)
	}
	return nil
}
