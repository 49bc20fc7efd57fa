package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds the configuration for the application.
type Config struct {
	Environment string `mapstructure:"environment"`
	Server      struct {
		Addr        string   `mapstructure:"addr"`
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"server"`
	Runner struct {
		ProjectRoot string `mapstructure:"project_root"`
		ScriptsDir  string `mapstructure:"scripts_dir"`
		LogsDir     string `mapstructure:"logs_dir"`
		Interpreter string `mapstructure:"interpreter"`
	} `mapstructure:"runner"`
	Store struct {
		Driver string `mapstructure:"driver"`
		DB     struct {
			Host     string `mapstructure:"host"`
			Port     int    `mapstructure:"port"`
			User     string `mapstructure:"user"`
			Password string `mapstructure:"password"`
			Name     string `mapstructure:"name"`
			SSLMode  string `mapstructure:"sslmode"`
		} `mapstructure:"db"`
	} `mapstructure:"store"`
	Auth struct {
		Enable       bool   `mapstructure:"enable"`
		Issuer       string `mapstructure:"issuer"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"auth"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

// LoadConfig loads the configuration from a file and the environment.
// An empty path uses the default search locations.
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}
	viper.SetEnvPrefix("RPA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Auth.Issuer = normalizeIssuer(config.Auth.Issuer)

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "dev")
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.cors_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
	})
	viper.SetDefault("runner.project_root", ".")
	viper.SetDefault("runner.scripts_dir", "scripts")
	viper.SetDefault("runner.logs_dir", "logs")
	viper.SetDefault("runner.interpreter", "python3")
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("store.db.port", 5432)
	viper.SetDefault("store.db.sslmode", "disable")
}

// normalizeIssuer ensures the provided OIDC issuer string is in a
// predictable form. It removes any trailing slash and leaves the scheme and
// path intact, so the value can be pasted straight from the provider's
// admin console.
func normalizeIssuer(input string) string {
	iss := strings.TrimSpace(input)
	if strings.HasSuffix(iss, "/") {
		iss = strings.TrimRight(iss, "/")
	}
	return iss
}
