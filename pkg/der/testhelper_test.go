package der

import (
	encoding_asn1 "encoding/asn1"
	"encoding/hex"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ed25519PrivateKeyInfoHex is an Ed25519 PKCS#8 PrivateKeyInfo whose inner
// CurvePrivateKey holds ed25519SeedHex.
const (
	ed25519PrivateKeyInfoHex = "302e020100300506032b657004220420c036915d924e5b517fae86ce34d8c76005cb5099798a37a137831ff5e3dc0622"
	ed25519SeedHex           = "c036915d924e5b517fae86ce34d8c76005cb5099798a37a137831ff5e3dc0622"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad test hex %q: %v", s, err)
	}
	return b
}

func mustOID(t testing.TB, dotted string) encoding_asn1.ObjectIdentifier {
	t.Helper()
	var oid encoding_asn1.ObjectIdentifier
	for _, part := range strings.Split(dotted, ".") {
		n, err := strconv.Atoi(part)
		if err != nil {
			t.Fatalf("bad test OID %q: %v", dotted, err)
		}
		oid = append(oid, n)
	}
	return oid
}

func build(t testing.TB, fn func(b *cryptobyte.Builder)) []byte {
	t.Helper()
	var b cryptobyte.Builder
	fn(&b)
	out, err := b.Bytes()
	if err != nil {
		t.Fatalf("failed to build DER: %v", err)
	}
	return out
}

// buildSPKI builds SubjectPublicKeyInfo { AlgorithmIdentifier { oids... }, BIT STRING pub }.
func buildSPKI(t testing.TB, pub []byte, oids ...string) []byte {
	t.Helper()
	return build(t, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				for _, oid := range oids {
					b.AddASN1ObjectIdentifier(mustOID(t, oid))
				}
			})
			b.AddASN1BitString(pub)
		})
	})
}

// buildPKCS8 builds PrivateKeyInfo { 0, AlgorithmIdentifier { oid }, OCTET STRING { OCTET STRING seed } }.
func buildPKCS8(t testing.TB, seed []byte, oid string) []byte {
	t.Helper()
	return build(t, func(b *cryptobyte.Builder) {
		b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
			b.AddASN1Int64(0)
			b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(mustOID(t, oid))
			})
			b.AddASN1(asn1.OCTET_STRING, func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(seed)
			})
		})
	})
}
