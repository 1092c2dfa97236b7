package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DefaultNuvlaURL  = "nuvla.io"
	DefaultFrequency = 30
	DefaultTimeout   = 10 * time.Second
)

// ErrMissing is returned when a required setting is not set.
var ErrMissing = errors.New("required setting is not set")

// Flag names. The matching environment variable is the upper-cased name with
// dashes replaced by underscores, e.g. NUVLA_KEY.
const (
	flagNuvlaURL      = "nuvla-url"
	flagNuvlaKey      = "nuvla-key"
	flagNuvlaSecret   = "nuvla-secret"
	flagNuvlaInsecure = "nuvla-insecure"
	flagPushgateway   = "pushgateway-endpoint"
	flagFrequency     = "frequency"
	flagTimeout       = "timeout"
	flagListenAddress = "listen-address"
	flagLogLevel      = "log-level"
	flagLogFormat     = "log-format"
	flagPubSubProject = "pubsub-project"
	flagPubSubTopic   = "pubsub-topic"
)

// RegisterFlags adds the configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagNuvlaURL, DefaultNuvlaURL, fmt.Sprintf("Nuvla endpoint to connect to (default: %s)", DefaultNuvlaURL))
	fs.String(flagNuvlaKey, "", "Nuvla API Key Id (required)")
	fs.String(flagNuvlaSecret, "", "Nuvla API Key Secret (required)")
	fs.Bool(flagNuvlaInsecure, false, "Do not check Nuvla certificate")
	fs.String(flagPushgateway, "", "Prometheus Pushgateway endpoint, eg. localhost:9091 (required)")
	fs.Int(flagFrequency, DefaultFrequency, "Time, in seconds, between each collection of statistics")
	fs.Duration(flagTimeout, DefaultTimeout, "Timeout of every request to Nuvla and to the Pushgateway")
	fs.String(flagListenAddress, "", "Address serving /metrics and /health for the scraper itself, eg. :9102 (disabled when empty)")
	fs.String(flagLogLevel, "info", "Log level: debug, info, warn or error")
	fs.String(flagLogFormat, "json", "Log format: json, logfmt or text")
	fs.String(flagPubSubProject, "", "Google Cloud project of the optional Pub/Sub topic")
	fs.String(flagPubSubTopic, "", "Optional Pub/Sub topic receiving every snapshot")
}

// Load reads configuration from flags, environment variables and a .env file, in
// decreasing priority. fs must have been set up with RegisterFlags and parsed.
func Load(fs *pflag.FlagSet) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading from environment variables")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("failed to bind flags: %w", err)
	}

	cfg := Config{
		Nuvla: NuvlaConfig{
			URL:      v.GetString(flagNuvlaURL),
			Key:      v.GetString(flagNuvlaKey),
			Secret:   v.GetString(flagNuvlaSecret),
			Insecure: v.GetBool(flagNuvlaInsecure),
		},
		PushgatewayEndpoint: v.GetString(flagPushgateway),
		Frequency:           time.Duration(v.GetInt(flagFrequency)) * time.Second,
		Timeout:             v.GetDuration(flagTimeout),
		ListenAddress:       v.GetString(flagListenAddress),
		Log: LogConfig{
			Level:  v.GetString(flagLogLevel),
			Format: v.GetString(flagLogFormat),
		},
		PubSub: PubSubConfig{
			ProjectID: v.GetString(flagPubSubProject),
			Topic:     v.GetString(flagPubSubTopic),
		},
	}
	if cfg.Nuvla.URL == "" {
		cfg.Nuvla.URL = DefaultNuvlaURL
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required settings are present and values are usable.
// All problems are reported at once.
func (c Config) Validate() error {
	var errs []error
	required := map[string]string{
		flagNuvlaKey:    c.Nuvla.Key,
		flagNuvlaSecret: c.Nuvla.Secret,
		flagPushgateway: c.PushgatewayEndpoint,
	}
	for _, name := range []string{flagNuvlaKey, flagNuvlaSecret, flagPushgateway} {
		if strings.TrimSpace(required[name]) == "" {
			errs = append(errs, fmt.Errorf("%w: --%s", ErrMissing, name))
		}
	}
	if c.Frequency <= 0 {
		errs = append(errs, fmt.Errorf("--%s must be a positive number of seconds, got %s", flagFrequency, c.Frequency))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("--%s must be positive, got %s", flagTimeout, c.Timeout))
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("--%s: %w", flagLogLevel, err))
	}
	switch c.Log.Format {
	case "json", "logfmt", "text":
	default:
		errs = append(errs, fmt.Errorf("--%s must be json, logfmt or text, got %q", flagLogFormat, c.Log.Format))
	}
	if (c.PubSub.ProjectID == "") != (c.PubSub.Topic == "") {
		errs = append(errs, fmt.Errorf("--%s and --%s must be set together", flagPubSubProject, flagPubSubTopic))
	}
	return errors.Join(errs...)
}
