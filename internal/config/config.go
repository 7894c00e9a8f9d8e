package config

type Config interface {
	EnvConfig
	PolicyConfig
}

type mainConfig struct {
	EnvVars
	Policy
}

func New() Config {
	return mainConfig{}
}
