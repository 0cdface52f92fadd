package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		Build    string
		AppName  string

		SecretKey        string
		DefaultFromEmail mail.Address
		SendgridApiKey   string
		RollbarToken     string

		// PendingDistributionTTL is how long a computed peer review
		// distribution awaits confirmation before it is discarded.
		PendingDistributionTTL time.Duration

		Server   ServerConfig
		Database DatabaseConfig
	}

	ServerConfig struct {
		Host               string
		Addr               string
		DebugAddr          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | mongodb
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func NewConfig() *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("build", "dev")
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("secretKey", "w3&yk2q(h!x)#*c2(#yg4h^$cegm2emyoq5-wer)enb$+57=dz")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("pendingDistributionTTL", 15*time.Minute)
	conf.SetDefault("server.host", "localhost")
	conf.SetDefault("server.addr", ":8000")
	conf.SetDefault("server.debugAddr", ":8001")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)
	conf.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("database.engine", "postgres")
	conf.SetDefault("database.name", "darasa")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", "5432")
	conf.SetDefault("database.disableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:                  conf.GetBool("debug"),
		TestMode:               env == "TEST",
		Env:                    env,
		Build:                  conf.GetString("build"),
		AppName:                conf.GetString("appName"),
		SecretKey:              conf.GetString("secretKey"),
		DefaultFromEmail:       mail.Address{Address: conf.GetString("defaultFromEmail")},
		SendgridApiKey:         conf.GetString("sendgridApiKey"),
		RollbarToken:           conf.GetString("rollbarToken"),
		PendingDistributionTTL: conf.GetDuration("pendingDistributionTTL"),
		Server: ServerConfig{
			Host:               conf.GetString("server.host"),
			Addr:               conf.GetString("server.addr"),
			DebugAddr:          conf.GetString("server.debugAddr"),
			ShutdownTimeout:    conf.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        conf.GetString("database.engine"),
			Name:          conf.GetString("database.name"),
			User:          conf.GetString("database.user"),
			Password:      conf.GetString("database.password"),
			AdminUser:     conf.GetString("database.adminUser"),
			AdminPassword: conf.GetString("database.adminPassword"),
			Host:          conf.GetString("database.host"),
			Port:          conf.GetString("database.port"),
			DisableTLS:    conf.GetBool("database.disableTLS"),
		},
	}
}
