package config

import "time"

// PolicyConfig exposes the security policy windows as configuration rather
// than hard constants.
type PolicyConfig interface {
	GetAuthorizationCodeLifetime() time.Duration
	GetAccessTokenLifetime() time.Duration
}

type Policy struct{}

var _ PolicyConfig = Policy{}

func (Policy) GetAuthorizationCodeLifetime() time.Duration {
	return 10 * time.Minute
}

func (Policy) GetAccessTokenLifetime() time.Duration {
	return 1 * time.Hour
}
