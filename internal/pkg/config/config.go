// Package config resolves all environment configuration for the order API
// in one place, with explicit defaults and validation. Handlers never read
// the environment themselves.
//
// Missing payment keys disable only the payment sub-step; missing mail
// keys disable only the merchant notification. Both conditions are
// computed once at load time, not discovered mid-request.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Recognized environment variables.
const (
	envListenAddr = "LISTEN_ADDR"

	envMpesaEnv            = "MPESA_ENV"
	envMpesaConsumerKey    = "MPESA_CONSUMER_KEY"
	envMpesaConsumerSecret = "MPESA_CONSUMER_SECRET"
	envMpesaShortCode      = "MPESA_SHORTCODE"
	envMpesaPassKey        = "MPESA_PASSKEY"
	envMpesaCallbackURL    = "MPESA_CALLBACK_URL"

	envSMTPHost         = "SMTP_HOST"
	envSMTPPort         = "SMTP_PORT"
	envMailUser         = "GMAIL_USER"
	envMailPass         = "GMAIL_PASS"
	envNotificationAddr = "ORDER_NOTIFICATION_EMAIL"

	envPaylogPath = "PAYLOG_DB_PATH"
)

type MpesaConfig struct {
	Environment    string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	PassKey        string
	CallbackURL    string
}

type MailConfig struct {
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	To       string
}

type Config struct {
	ListenAddr string
	Mpesa      MpesaConfig
	Mail       MailConfig

	// PaylogPath is the SQLite file for the gateway audit log.
	// Empty disables auditing.
	PaylogPath string
}

// Load reads the environment, applies defaults, and validates.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr: getEnv(envListenAddr, ":8080"),
		Mpesa: MpesaConfig{
			Environment:    strings.ToLower(getEnv(envMpesaEnv, "sandbox")),
			ConsumerKey:    os.Getenv(envMpesaConsumerKey),
			ConsumerSecret: os.Getenv(envMpesaConsumerSecret),
			ShortCode:      os.Getenv(envMpesaShortCode),
			PassKey:        os.Getenv(envMpesaPassKey),
			CallbackURL:    os.Getenv(envMpesaCallbackURL),
		},
		Mail: MailConfig{
			SMTPHost: getEnv(envSMTPHost, "smtp.gmail.com"),
			Username: os.Getenv(envMailUser),
			Password: os.Getenv(envMailPass),
			To:       os.Getenv(envNotificationAddr),
		},
		PaylogPath: os.Getenv(envPaylogPath),
	}

	port, err := strconv.Atoi(getEnv(envSMTPPort, "587"))
	if err != nil {
		return nil, fmt.Errorf("config: %s must be a number: %w", envSMTPPort, err)
	}
	cfg.Mail.SMTPPort = port

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string

	if c.Mpesa.Environment != "sandbox" && c.Mpesa.Environment != "production" {
		problems = append(problems, fmt.Sprintf("%s must be sandbox or production, got %q", envMpesaEnv, c.Mpesa.Environment))
	}
	if c.Mail.SMTPPort <= 0 || c.Mail.SMTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("%s must be in 1..65535", envSMTPPort))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// PaymentConfigured reports whether every payment key is present. When
// false the payment sub-step fails fast with a configuration error; the
// order itself still succeeds.
func (c *Config) PaymentConfigured() bool {
	m := c.Mpesa
	return m.ConsumerKey != "" && m.ConsumerSecret != "" &&
		m.ShortCode != "" && m.PassKey != "" && m.CallbackURL != ""
}

// MailConfigured reports whether the notification dispatcher can be
// enabled. The destination falls back to the sender, so only the
// credentials are required.
func (c *Config) MailConfigured() bool {
	return c.Mail.Username != "" && c.Mail.Password != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
