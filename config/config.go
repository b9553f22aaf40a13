// Package config handles configuration that has to exist before storage
// does: where to listen, where the database is, and the page timings.
// Used by both brochured and brochureadmin.
package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
	"maze.io/x/duration"
)

const (
	ConnectorBuiltin   = "builtin"
	ConnectorPGX       = "pgx"
	ConnectorCloudSQL  = "connector"
	defaultSendDelay   = "900ms"
	defaultStatusClear = "4s"
)

var keys = []string{
	"db_url",
	"listen_address",
	"sql_connector",
	"features_url",
	"secure_cookies",
	"send_delay",
	"status_duration",
	"caching",
}

// Init loads ~/.brochure (YAML) and BROCHURE_* environment variables.
func Init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	viper.SetConfigType("yaml")
	viper.SetConfigName(".brochure")
	viper.AddConfigPath(home)
	viper.SetEnvPrefix("brochure")
	viper.AutomaticEnv()
	for _, k := range keys {
		viper.BindEnv(k)
	}
	SetDefaults()
	err = viper.ReadInConfig() // ignore error if config file missing
	if err != nil {
		log.Printf("viper can't read config file: %v", err)
	}
	log.Printf("Using SQL connector: %s", SQLConnector())
	log.Printf("Using listen address: %s", ListenAddress())
}

// SetDefaults is split out so tests can get defaults without a config file.
func SetDefaults() {
	viper.SetDefault("db_url", "")
	viper.SetDefault("listen_address", ":8080")
	viper.SetDefault("sql_connector", ConnectorBuiltin)
	viper.SetDefault("features_url", "")
	viper.SetDefault("secure_cookies", false)
	viper.SetDefault("send_delay", defaultSendDelay)
	viper.SetDefault("status_duration", defaultStatusClear)
	viper.SetDefault("caching", true)
}

func DBURL() string {
	return viper.GetString("db_url")
}

func ListenAddress() string {
	return viper.GetString("listen_address")
}

func SecureCookies() bool {
	return viper.GetBool("secure_cookies")
}

func SQLConnector() string {
	return viper.GetString("sql_connector")
}

// FeaturesURL overrides where the page's feature list comes from.  Empty
// means the site's own storage.
func FeaturesURL() string {
	return viper.GetString("features_url")
}

// Caching turns on Cache-Control headers for static assets.
func Caching() bool {
	return viper.GetBool("caching")
}

func SendDelay() time.Duration {
	return durationOr("send_delay", defaultSendDelay)
}

func StatusDuration() time.Duration {
	return durationOr("status_duration", defaultStatusClear)
}

// ParseDuration accepts Go durations plus days and weeks ("1d", "2w").
func ParseDuration(s string) (time.Duration, error) {
	d, err := duration.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(d), nil
}

func durationOr(key, fallback string) time.Duration {
	s := viper.GetString(key)
	d, err := ParseDuration(s)
	if err != nil || d <= 0 {
		log.Printf("config: bad %s %q, using %s", key, s, fallback)
		d, _ = ParseDuration(fallback)
	}
	return d
}
