// Package claims defines the claim tuple exchanged between every component of
// the engine. A claim is opaque beyond its type/value pair; components filter
// by type and never interpret values.
package claims

// Claim is a typed assertion about an identity (e.g. subject id, email).
// ValueType and Issuer are optional and empty when absent.
type Claim struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	ValueType string `json:"valueType,omitempty"`
	Issuer    string `json:"issuer,omitempty"`
}

// New creates a claim with no value type or issuer.
func New(claimType, value string) Claim {
	return Claim{Type: claimType, Value: value}
}

// Protected claim types carry session-continuity data (external provider
// tokens) rather than user-visible profile data. They are always propagated
// regardless of the requested scope grant.
const (
	MicrosoftTokenClaimType = "urn:msauth:token"
	GoogleTokenClaimType    = "urn:goauth:token"
)

var protectedClaimTypes = map[string]struct{}{
	MicrosoftTokenClaimType: {},
	GoogleTokenClaimType:    {},
}

// IsProtected reports whether the claim type is always propagated regardless
// of the requested scopes.
func IsProtected(claimType string) bool {
	_, ok := protectedClaimTypes[claimType]
	return ok
}

// ProtectedTypes returns the set of protected claim types.
func ProtectedTypes() []string {
	types := make([]string, 0, len(protectedClaimTypes))
	for t := range protectedClaimTypes {
		types = append(types, t)
	}
	return types
}

// OfType returns the claims in candidates whose type equals claimType.
func OfType(claimType string, candidates []Claim) []Claim {
	var matched []Claim
	for _, c := range candidates {
		if c.Type == claimType {
			matched = append(matched, c)
		}
	}
	return matched
}
