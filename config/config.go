package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "SALESOPS_CONFIG_FILE"

type consumers struct {
	ItemsGateGroup  string `mapstructure:"items_gate_group"`
	ItemsSaverGroup string `mapstructure:"items_saver_group"`
}

type topics struct {
	ItemsFromBooks      string `mapstructure:"items_from_books"`
	ItemsToStorage      string `mapstructure:"items_to_storage"`
	CatalogueExclusions string `mapstructure:"catalogue_exclusions"`
	ExclusionsTable     string `mapstructure:"exclusions_table"`
}

type tlsFiles struct {
	CA   string `mapstructure:"ca"`
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
}

// Enabled reports whether all files are set.
func (t tlsFiles) Enabled() bool {
	return t.CA != "" && t.Cert != "" && t.Key != ""
}

type sasl struct {
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type broker struct {
	SeedBrokers        []string  `mapstructure:"seed_brokers"`
	SchemaRegistryURLs []string  `mapstructure:"schema_registry_urls"`
	TLS                tlsFiles  `mapstructure:"tls"`
	SASL               sasl      `mapstructure:"sasl"`
	Topics             topics    `mapstructure:"topics"`
	Consumers          consumers `mapstructure:"consumers"`
}

// Enabled reports whether the kafka pipeline is configured.
func (b broker) Enabled() bool {
	return len(b.SeedBrokers) != 0
}

type search struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
	Index  string `mapstructure:"index"`
}

type catalogue struct {
	NewArrivalWindow time.Duration `mapstructure:"new_arrival_window"`
	UpperCaseBrands  []string      `mapstructure:"upper_case_brands"`
	DefaultPerPage   int           `mapstructure:"default_per_page"`
	MaxPerPage       int           `mapstructure:"max_per_page"`
}

type Config struct {
	LogLevel           slog.Level    `mapstructure:"log_level"`
	HTTPServerAddr     string        `mapstructure:"http_server_addr"`
	HTTPRequestTimeout time.Duration `mapstructure:"http_request_timeout"`
	SQLDB              string        `mapstructure:"sql_db"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	Search             search        `mapstructure:"search"`
	Catalogue          catalogue     `mapstructure:"catalogue"`
	Broker             broker        `mapstructure:"broker"`
}

func Load() Config {
	viper.SetConfigFile(getConfigFilepath())

	viper.SetDefault("log_level", "info")
	viper.SetDefault("http_server_addr", ":8080")
	viper.SetDefault("http_request_timeout", "10s")
	viper.SetDefault("search.index", "products")
	viper.SetDefault("catalogue.new_arrival_window", "2160h")
	viper.SetDefault("catalogue.default_per_page", 25)
	viper.SetDefault("catalogue.max_per_page", 100)

	err := viper.ReadInConfig()
	if err != nil {
		die(err)
	}

	var cfg Config
	err = viper.UnmarshalExact(&cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		die(err)
	}

	return cfg
}

func getConfigFilepath() string {
	cmdLine := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	arg := cmdLine.String("config", "/config.yaml", "config file")
	_ = cmdLine.Parse(os.Args[1:])
	env, ok := os.LookupEnv(configFileEnvName)
	if ok {
		return env
	}
	return *arg
}

func die(err error) {
	fmt.Printf("failed to load config file: %v\n", err)
	os.Exit(2)
}

func (c Config) Print() {
	template := `
	General:
	LogLevel=%q
	HTTPServerAddr=%q
	HTTPRequestTimeout=%s
	SQLDB=%q
	CORSAllowedOrigins=%q

	Search:
	URL=%q
	Index=%q

	Catalogue:
	NewArrivalWindow=%s
	UpperCaseBrands=%q
	DefaultPerPage=%d
	MaxPerPage=%d

	BrokerConfig:
	SeedBrokers=%q
	SchemaRegistryURLs=%q
	TLS=%t
	SASLUser=%q
	Topics:
		ItemsFromBooks=%q
		ItemsToStorage=%q
		CatalogueExclusions=%q
		ExclusionsTable=%q
	Consumers:
		ItemsGateGroup=%q
		ItemsSaverGroup=%q

`
	fmt.Println("Loaded config:")
	fmt.Printf(
		strings.TrimLeft(template, "\n"),
		c.LogLevel,
		c.HTTPServerAddr,
		c.HTTPRequestTimeout,
		c.SQLDB,
		c.CORSAllowedOrigins,
		c.Search.URL,
		c.Search.Index,
		c.Catalogue.NewArrivalWindow,
		c.Catalogue.UpperCaseBrands,
		c.Catalogue.DefaultPerPage,
		c.Catalogue.MaxPerPage,
		c.Broker.SeedBrokers,
		c.Broker.SchemaRegistryURLs,
		c.Broker.TLS.Enabled(),
		c.Broker.SASL.User,
		c.Broker.Topics.ItemsFromBooks,
		c.Broker.Topics.ItemsToStorage,
		c.Broker.Topics.CatalogueExclusions,
		c.Broker.Topics.ExclusionsTable,
		c.Broker.Consumers.ItemsGateGroup,
		c.Broker.Consumers.ItemsSaverGroup,
	)
}
