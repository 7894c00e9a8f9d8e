// Package auth validates inbound authorization requests for the
// authorization-code flow. Validation is a chain of independent checks over
// an accumulator: every violated rule is reported with the name of the field
// it belongs to, so callers can render field-specific errors.
package auth

// ResponseType represents the OAuth 2.0 response type.
type ResponseType string

// CodeResponseType is the only supported response type: the authorization
// code flow.
const CodeResponseType ResponseType = "code"

// State holds the parameters of one inbound authorization request. It is
// created per request, validated once and then consumed to produce an
// authorization code; it is never persisted standalone.
type State struct {
	// ResponseType must be "code".
	ResponseType ResponseType

	// ClientID identifies the application requesting authorization.
	// Validated against the ClientResolver oracle.
	ClientID string

	// RedirectURI is where the authorization response will be sent. Must be
	// an absolute URI whose host is allow-listed by the DomainTrust oracle.
	RedirectURI string

	// Scopes are the requested scope names. Must be non-empty, free of
	// duplicates and all known to the supported-scope registry.
	Scopes []string

	// ExternalState is the client's opaque CSRF value, echoed back on
	// redirect. Optional.
	ExternalState string

	// ExternalStateBase64 declares that ExternalState is base64-encoded, in
	// which case it must match the base64 alphabet and padding grammar.
	ExternalStateBase64 bool

	// Nonce associates the client session with the issued ID token.
	// Optional, but must be non-blank when present.
	Nonce string
}
