package scopes

import (
	"strings"

	"github.com/jrsteele09/go-oidc-core/claims"
)

// Select returns the claims visible under the requested scope grant.
//
// For each requested scope present in supported, the scope's filter is
// applied to candidates and the results are unioned. Claims granted under
// multiple scopes appear once per granting scope; no deduplication is
// performed. Blank and unknown scope names are skipped - request validation
// has already happened upstream. Protected claim types are appended last,
// regardless of the requested scopes.
func Select(supported Registry, requested []string, candidates []claims.Claim) []claims.Claim {
	if len(requested) == 0 || len(candidates) == 0 {
		return nil
	}

	var selected []claims.Claim
	for _, name := range requested {
		if strings.TrimSpace(name) == "" {
			continue
		}
		scope, ok := supported[name]
		if !ok {
			continue
		}
		selected = append(selected, scope.Filter(candidates)...)
	}

	for _, c := range candidates {
		if claims.IsProtected(c.Type) {
			selected = append(selected, c)
		}
	}
	return selected
}
