package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var Conf *viper.Viper

func init() {
	Conf = viper.New()

	// defaults
	Conf.SetTypeByDefaultValue(true)
	Conf.SetDefault("debug", true)
	Conf.SetDefault("appName", "AMS")
	Conf.SetDefault("nodeEnv", "development")
	Conf.SetDefault("apiBaseURL", "")
	Conf.SetDefault("backendURL", "")
	Conf.SetDefault("healthPath", "/health")
	Conf.SetDefault("requestTimeout", time.Duration(0))
	Conf.SetDefault("serverAddress", ":8000")
	Conf.SetDefault("serverRequireAuth", false)
	Conf.SetDefault("secretKey", "k3v#d9+q1m@x!7w2z%t0r^b8n&c4y(h5j)e6u=s-f")
	Conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	Conf.SetDefault("databaseURL", "")
	Conf.SetDefault("sessionDBPath", "ams-session.db")
	Conf.SetDefault("rollbarToken", "")
	Conf.SetDefault("sendgridAPIKey", "")
	Conf.SetDefault("defaultFromEmail", "noreply@localhost")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		Conf.SetDefault("testMode", true)
	}
	Conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if wd, ok := Getwd(); ok {
		dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	Conf.AutomaticEnv()
}

// APIBaseURL returns the Records API base URL without its trailing slash.
// An empty value means client-only mode.
func APIBaseURL() string {
	base := CleanString(Conf.GetString("apiBaseURL"))
	if base == "" {
		base = CleanString(Conf.GetString("backendURL"))
	}
	return strings.TrimRight(base, "/")
}

// HealthPath returns the configured health endpoint, "/health" when blank.
func HealthPath() string {
	p := CleanString(Conf.GetString("healthPath"))
	if p == "" {
		return "/health"
	}
	return p
}
