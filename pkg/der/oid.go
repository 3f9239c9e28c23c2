package der

// Algorithm labels returned by the OID classifier.
const (
	LabelEd25519 = "ed25519"
	LabelECDSA   = "ecdsa"  // secp256k1 named curve
	LabelPubKey  = "pubkey" // id-ecPublicKey, curve given by a second OID
	LabelEd448   = "ed448"
	LabelX25519  = "x25519"
	LabelX448    = "x448"
	LabelRSA     = "rsa"
	LabelP256    = "p256"
	LabelP384    = "p384"
	LabelP521    = "p521"
	LabelMLDSA44 = "ml-dsa-44"
	LabelMLDSA65 = "ml-dsa-65"
	LabelMLDSA87 = "ml-dsa-87"

	// LabelUnknown is substituted for OIDs missing from the registry.
	LabelUnknown = "unknown"
)

// Key algorithm OIDs in dotted-decimal form.
const (
	OIDEd25519        = "1.3.101.112"
	OIDEd448          = "1.3.101.113"
	OIDX25519         = "1.3.101.110"
	OIDX448           = "1.3.101.111"
	OIDSecp256k1      = "1.3.132.0.10"
	OIDECPublicKey    = "1.2.840.10045.2.1"
	OIDRSAEncryption  = "1.2.840.113549.1.1.1"
	OIDNamedCurveP256 = "1.2.840.10045.3.1.7"
	OIDNamedCurveP384 = "1.3.132.0.34"
	OIDNamedCurveP521 = "1.3.132.0.35"
	OIDMLDSA44        = "2.16.840.1.101.3.4.3.17"
	OIDMLDSA65        = "2.16.840.1.101.3.4.3.18"
	OIDMLDSA87        = "2.16.840.1.101.3.4.3.19"
)

// registry maps OIDs to labels. It is never written after initialization.
var registry = map[string]string{
	OIDEd25519:        LabelEd25519,
	OIDSecp256k1:      LabelECDSA,
	OIDECPublicKey:    LabelPubKey,
	OIDEd448:          LabelEd448,
	OIDX25519:         LabelX25519,
	OIDX448:           LabelX448,
	OIDRSAEncryption:  LabelRSA,
	OIDNamedCurveP256: LabelP256,
	OIDNamedCurveP384: LabelP384,
	OIDNamedCurveP521: LabelP521,
	OIDMLDSA44:        LabelMLDSA44,
	OIDMLDSA65:        LabelMLDSA65,
	OIDMLDSA87:        LabelMLDSA87,
}

// Classify returns the label registered for oid, or LabelUnknown.
func Classify(oid string) string {
	if label, ok := registry[oid]; ok {
		return label
	}
	return LabelUnknown
}

// ClassifyOIDs maps each OID to its label, keeping order. Unknown OIDs map
// to LabelUnknown; classification never fails.
func ClassifyOIDs(oids []string) []string {
	labels := make([]string, len(oids))
	for i, oid := range oids {
		labels[i] = Classify(oid)
	}
	return labels
}

// KnownOIDs returns a copy of the registry.
func KnownOIDs() map[string]string {
	out := make(map[string]string, len(registry))
	for oid, label := range registry {
		out[oid] = label
	}
	return out
}

// PrimaryAlgorithm picks the most specific label from an ordered label list:
// the first known label other than LabelPubKey, then LabelPubKey, then
// LabelUnknown. For an id-ecPublicKey wrapper this yields the curve.
func PrimaryAlgorithm(labels []string) string {
	generic := false
	for _, l := range labels {
		switch l {
		case LabelUnknown:
		case LabelPubKey:
			generic = true
		default:
			return l
		}
	}
	if generic {
		return LabelPubKey
	}
	return LabelUnknown
}
