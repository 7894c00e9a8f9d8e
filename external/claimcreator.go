package external

import (
	"encoding/json"

	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/jrsteele09/go-oidc-core/sessions"
	"github.com/pkg/errors"
)

// Protector seals a claim value before it leaves this package, e.g. by
// encrypting or signing it. The implementation is supplied by the caller.
type Protector func(value string) (string, error)

// ClaimCreator wraps a reconstructed provider token into a single opaque
// protected claim on the local identity.
type ClaimCreator struct {
	bridge  *Bridge
	protect Protector
}

// NewClaimCreator creates a claim creator sealing values through protect.
func NewClaimCreator(bridge *Bridge, protect Protector) (*ClaimCreator, error) {
	if bridge == nil {
		return nil, errors.New("[NewClaimCreator] bridge is required")
	}
	if protect == nil {
		return nil, errors.New("[NewClaimCreator] protect callback is required")
	}
	return &ClaimCreator{bridge: bridge, protect: protect}, nil
}

// Create reconstructs the provider token from the session items and wraps it
// as a protected claim. The claim type is selected by the provider recorded
// in the session.
func (c *ClaimCreator) Create(items sessions.Items) (*claims.Claim, error) {
	claimType, err := claimTypeForProvider(items[ProviderItem])
	if err != nil {
		return nil, err
	}

	providerToken, err := c.bridge.Build(items)
	if err != nil {
		return nil, errors.Wrap(err, "ClaimCreator.Create Build")
	}

	serialized, err := json.Marshal(providerToken)
	if err != nil {
		return nil, errors.Wrap(err, "ClaimCreator.Create marshal token")
	}

	sealed, err := c.protect(string(serialized))
	if err != nil {
		return nil, errors.Wrap(err, "ClaimCreator.Create protect")
	}

	claim := claims.New(claimType, sealed)
	return &claim, nil
}

func claimTypeForProvider(provider string) (string, error) {
	switch provider {
	case ProviderMicrosoft:
		return claims.MicrosoftTokenClaimType, nil
	case ProviderGoogle:
		return claims.GoogleTokenClaimType, nil
	default:
		return "", errors.Errorf("[ClaimCreator.Create] unknown provider %q", provider)
	}
}
