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
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		RollbarToken string
		Host         string

		Sync   SyncConfig
		Notify NotifyConfig
		Stub   StubConfig
		Export ExportConfig
		Email  EmailConfig
	}

	SyncConfig struct {
		BaseURL string
		Timeout time.Duration
	}

	NotifyConfig struct {
		InfoDuration    time.Duration
		SuccessDuration time.Duration
		ErrorDuration   time.Duration
	}

	StubConfig struct {
		Address    string
		CSRFCookie string
	}

	ExportConfig struct {
		Dir string
	}

	EmailConfig struct {
		Backend          string // console | sendgrid
		SendgridApiKey   string
		DefaultFromName  string
		DefaultFromEmail string
	}
)

func (c EmailConfig) DefaultFrom() mail.Address {
	return mail.Address{Name: c.DefaultFromName, Address: c.DefaultFromEmail}
}

// NewConfig reads the configuration from the environment.
// ENV selects the variable prefix (DEV by default) and the optional config/.env.<env> file.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Masomo")
	v.SetDefault("build", "dev")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("host", "localhost")
	v.SetDefault("sync.baseURL", "http://localhost:8000")
	v.SetDefault("sync.timeout", 15*time.Second)
	v.SetDefault("notify.infoDuration", 3*time.Second)
	v.SetDefault("notify.successDuration", 3*time.Second)
	v.SetDefault("notify.errorDuration", 6*time.Second)
	v.SetDefault("stub.address", ":8000")
	v.SetDefault("stub.csrfCookie", "_csrf")
	v.SetDefault("export.dir", os.TempDir())
	v.SetDefault("email.backend", "console")
	v.SetDefault("email.sendgridApiKey", "")
	v.SetDefault("email.defaultFromName", "Masomo")
	v.SetDefault("email.defaultFromEmail", "noreply@localhost")

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	if root, ok := ProjectRoot(); ok {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
		}
	}
	v.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		RollbarToken: v.GetString("rollbarToken"),
		Host:         v.GetString("host"),
		Sync: SyncConfig{
			BaseURL: strings.TrimRight(v.GetString("sync.baseURL"), "/"),
			Timeout: v.GetDuration("sync.timeout"),
		},
		Notify: NotifyConfig{
			InfoDuration:    v.GetDuration("notify.infoDuration"),
			SuccessDuration: v.GetDuration("notify.successDuration"),
			ErrorDuration:   v.GetDuration("notify.errorDuration"),
		},
		Stub: StubConfig{
			Address:    v.GetString("stub.address"),
			CSRFCookie: v.GetString("stub.csrfCookie"),
		},
		Export: ExportConfig{
			Dir: v.GetString("export.dir"),
		},
		Email: EmailConfig{
			Backend:          v.GetString("email.backend"),
			SendgridApiKey:   v.GetString("email.sendgridApiKey"),
			DefaultFromName:  v.GetString("email.defaultFromName"),
			DefaultFromEmail: v.GetString("email.defaultFromEmail"),
		},
	}
}
