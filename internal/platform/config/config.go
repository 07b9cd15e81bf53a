package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the webhook gateway.
// Values are construction-time only; nothing here is mutated at runtime.
type Config struct {
	ServerPort int    `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Twilio (SMS adapter)
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioCallbackURL string `mapstructure:"TWILIO_CALLBACK_URL"` // optional; derived from the request when empty
	SMSAutoReply      string `mapstructure:"SMS_AUTO_REPLY"`

	// Mailgun (email adapter)
	MailgunAPIBase     string `mapstructure:"MAILGUN_API_BASE"`
	MailgunDomain      string `mapstructure:"MAILGUN_DOMAIN"`
	MailgunAPIKey      string `mapstructure:"MAILGUN_API_KEY"`
	EmailSenderName    string `mapstructure:"EMAIL_SENDER_NAME"`
	EmailSenderAddress string `mapstructure:"EMAIL_SENDER_ADDRESS"`
	EmailReplyTo       string `mapstructure:"EMAIL_REPLY_TO"`
	EmailAutoReply     string `mapstructure:"EMAIL_AUTO_REPLY"`
}

// Load reads config.defaults.yaml (when present) and environment variables
// with the APP_ prefix, e.g. APP_TWILIO_AUTH_TOKEN.
func Load(serviceName string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("APP")

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_CALLBACK_URL", "")
	v.SetDefault("SMS_AUTO_REPLY", "")

	v.SetDefault("MAILGUN_API_BASE", "https://api.mailgun.net/v3")
	v.SetDefault("MAILGUN_DOMAIN", "")
	v.SetDefault("MAILGUN_API_KEY", "")
	v.SetDefault("EMAIL_SENDER_NAME", "")
	v.SetDefault("EMAIL_SENDER_ADDRESS", "")
	v.SetDefault("EMAIL_REPLY_TO", "")
	v.SetDefault("EMAIL_AUTO_REPLY", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Configuration file ('config.defaults.yaml') not found for %s; using defaults and environment variables.", serviceName)
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
