package config

type Config interface {
	EnvConfig
	AuthConfig
	StoreConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Auth
	Stores
	Cors
}

func New() Config {
	return mainConfig{}
}
