package auth

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jrsteele09/go-oidc-core/scopes"
)

// Field names attached to violations. They mirror the violated State property
// so callers can map violations onto user-facing form fields.
const (
	FieldResponseType = "ResponseType"
	FieldClientID     = "ClientId"
	FieldRedirectURI  = "RedirectUri"
	FieldScopes       = "Scopes"
	FieldState        = "State"
	FieldNonce        = "Nonce"
)

var base64Pattern = regexp.MustCompile(`^(?:[A-Za-z0-9+/]{4})*(?:[A-Za-z0-9+/]{2}==|[A-Za-z0-9+/]{3}=)?$`)

// FieldViolation reports one failed validation rule on a named field.
type FieldViolation struct {
	Field   string
	Message string
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Violations accumulates every failed rule for one request. A nil or empty
// Violations means the request passed validation.
type Violations []FieldViolation

func (vs Violations) Error() string {
	messages := make([]string, len(vs))
	for i, v := range vs {
		messages[i] = v.String()
	}
	return strings.Join(messages, "; ")
}

// OfField returns the violations reported against the given field.
func (vs Violations) OfField(field string) Violations {
	var matched Violations
	for _, v := range vs {
		if v.Field == field {
			matched = append(matched, v)
		}
	}
	return matched
}

// ClientResolver reports whether a client identifier is known.
type ClientResolver interface {
	ResolveClient(clientID string) bool
}

// DomainTrust reports whether a redirect host is allow-listed as safe to
// receive authorization responses.
type DomainTrust interface {
	IsTrustedDomain(host string) bool
}

// ScopeProvider supplies the supported-scope registry.
type ScopeProvider interface {
	SupportedScopes() scopes.Registry
}

// Validator validates authorization states against the configured oracles.
// All lookups are read-only; a Validator is safe for concurrent use.
type Validator struct {
	clients ClientResolver
	domains DomainTrust
	scopes  ScopeProvider
}

// NewValidator creates a validator backed by the three oracles.
func NewValidator(clients ClientResolver, domains DomainTrust, scopeProvider ScopeProvider) *Validator {
	return &Validator{
		clients: clients,
		domains: domains,
		scopes:  scopeProvider,
	}
}

// ValidateState runs every check against the state and returns all collected
// violations. Checks never short-circuit: a request failing three rules
// reports three violations.
func (v *Validator) ValidateState(state *State) Violations {
	var violations Violations
	violations = append(violations, v.checkResponseType(state)...)
	violations = append(violations, v.checkClientID(state)...)
	violations = append(violations, v.checkRedirectURI(state)...)
	violations = append(violations, v.checkScopes(state)...)
	violations = append(violations, v.checkExternalState(state)...)
	violations = append(violations, v.checkNonce(state)...)
	return violations
}

func (v *Validator) checkResponseType(state *State) Violations {
	if state.ResponseType != CodeResponseType {
		return Violations{{
			Field:   FieldResponseType,
			Message: fmt.Sprintf("response type must be %q", CodeResponseType),
		}}
	}
	return nil
}

func (v *Validator) checkClientID(state *State) Violations {
	if strings.TrimSpace(state.ClientID) == "" {
		return Violations{{Field: FieldClientID, Message: "client id is required"}}
	}
	if !v.clients.ResolveClient(state.ClientID) {
		return Violations{{Field: FieldClientID, Message: "unknown client id"}}
	}
	return nil
}

func (v *Validator) checkRedirectURI(state *State) Violations {
	parsed, err := url.Parse(state.RedirectURI)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return Violations{{Field: FieldRedirectURI, Message: "redirect uri must be an absolute uri"}}
	}
	if !v.domains.IsTrustedDomain(parsed.Hostname()) {
		return Violations{{Field: FieldRedirectURI, Message: "redirect uri host is not trusted"}}
	}
	return nil
}

func (v *Validator) checkScopes(state *State) Violations {
	if len(state.Scopes) == 0 {
		return Violations{{Field: FieldScopes, Message: "at least one scope is required"}}
	}

	var violations Violations
	supported := v.scopes.SupportedScopes()
	if len(state.Scopes) > len(supported) {
		violations = append(violations, FieldViolation{
			Field:   FieldScopes,
			Message: fmt.Sprintf("at most %d scopes may be requested", len(supported)),
		})
	}

	seen := make(map[string]struct{}, len(state.Scopes))
	for _, name := range state.Scopes {
		if _, duplicate := seen[name]; duplicate {
			violations = append(violations, FieldViolation{
				Field:   FieldScopes,
				Message: fmt.Sprintf("duplicate scope %q", name),
			})
			continue
		}
		seen[name] = struct{}{}
		if _, known := supported[name]; !known {
			violations = append(violations, FieldViolation{
				Field:   FieldScopes,
				Message: fmt.Sprintf("unsupported scope %q", name),
			})
		}
	}
	return violations
}

func (v *Validator) checkExternalState(state *State) Violations {
	if state.ExternalState == "" && !state.ExternalStateBase64 {
		return nil
	}
	if strings.TrimSpace(state.ExternalState) == "" {
		return Violations{{Field: FieldState, Message: "state must not be blank"}}
	}
	if state.ExternalStateBase64 && !base64Pattern.MatchString(state.ExternalState) {
		return Violations{{Field: FieldState, Message: "state is not valid base64"}}
	}
	return nil
}

func (v *Validator) checkNonce(state *State) Violations {
	if state.Nonce == "" {
		return nil
	}
	if strings.TrimSpace(state.Nonce) == "" {
		return Violations{{Field: FieldNonce, Message: "nonce must not be blank"}}
	}
	return nil
}
