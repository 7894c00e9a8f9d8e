package authcode

import (
	"time"

	"github.com/jrsteele09/go-oidc-core/claims"
)

// RecordClaim is the flattened, store-agnostic form of one claim.
type RecordClaim struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	ValueType string `json:"valueType,omitempty"`
	Issuer    string `json:"issuer,omitempty"`
}

// Record is the persistable form of an authorization code and its associated
// claim set, stored against the code value as key.
type Record struct {
	Code    string        `json:"code"`
	Expires time.Time     `json:"expires"`
	Claims  []RecordClaim `json:"claims"`
}

// ToRecord flattens a code and its claim set into a Record. No expiry
// validation is performed; expiry enforcement is the caller's responsibility
// at redemption time.
func ToRecord(code Code, claimSet []claims.Claim) Record {
	record := Record{
		Code:    code.Value,
		Expires: code.Expires,
		Claims:  make([]RecordClaim, len(claimSet)),
	}
	for i, c := range claimSet {
		record.Claims[i] = RecordClaim{
			Type:      c.Type,
			Value:     c.Value,
			ValueType: c.ValueType,
			Issuer:    c.Issuer,
		}
	}
	return record
}

// FromRecord reconstructs the code and claim set from a Record. The round
// trip through ToRecord/FromRecord is lossless.
func FromRecord(record Record) (Code, []claims.Claim) {
	code := Code{Value: record.Code, Expires: record.Expires}
	claimSet := make([]claims.Claim, len(record.Claims))
	for i, rc := range record.Claims {
		claimSet[i] = claims.Claim{
			Type:      rc.Type,
			Value:     rc.Value,
			ValueType: rc.ValueType,
			Issuer:    rc.Issuer,
		}
	}
	return code, claimSet
}
