package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	issuerVar     = "ISSUER"
	audienceVar   = "AUDIENCE"
	tokenSecret   = "TOKEN_SECRET"
	idpIssuerVar  = "IDP_ISSUER"
	idpClientVar  = "IDP_CLIENT_ID"
	idpSecretVar  = "IDP_CLIENT_SECRET"
	idpRedirect   = "IDP_REDIRECT_URL"
	idpProvider   = "IDP_PROVIDER"
	protectSecret = "PROTECT_SECRET"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetIssuer() string
	GetAudience() string
	GetTokenSecret() string
	GetIdpIssuer() string
	GetIdpClientID() string
	GetIdpClientSecret() string
	GetIdpRedirectURL() string
	GetIdpProvider() string
	GetProtectSecret() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Go OIDC Core")
}

// GetIssuer returns the issuer name stamped into locally issued tokens
func (EnvVars) GetIssuer() string {
	return GetEnv(issuerVar, "http://localhost:8080")
}

func (EnvVars) GetAudience() string {
	return GetEnv(audienceVar, "api")
}

// GetTokenSecret returns the symmetric HMAC signing secret
func (EnvVars) GetTokenSecret() string {
	return GetEnv(tokenSecret, "")
}

func (EnvVars) GetIdpIssuer() string {
	return GetEnv(idpIssuerVar, "https://accounts.google.com")
}

func (EnvVars) GetIdpClientID() string {
	return GetEnv(idpClientVar, "")
}

func (EnvVars) GetIdpClientSecret() string {
	return GetEnv(idpSecretVar, "")
}

func (EnvVars) GetIdpRedirectURL() string {
	return GetEnv(idpRedirect, "http://localhost:8080/callback")
}

func (EnvVars) GetIdpProvider() string {
	return GetEnv(idpProvider, "google")
}

// GetProtectSecret returns the secret used to seal external token claims
func (EnvVars) GetProtectSecret() string {
	return GetEnv(protectSecret, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
