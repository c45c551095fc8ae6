package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Database struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	User     string `envconfig:"USER" default:"postgres"`
	Password string `envconfig:"PASSWORD"`
	Name     string `envconfig:"NAME" default:"combatstore"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

func (d Database) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

type Redis struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"6379"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" default:"0"`
}

func (r Redis) Addr() string {
	return r.Host + ":" + r.Port
}

type Kafka struct {
	Brokers    []string `envconfig:"BROKERS"`
	OrderTopic string   `envconfig:"ORDER_TOPIC" default:"orders.placed"`
}

type Config struct {
	HTTPAddr         string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	HTTPWriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	LogLevel         string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat        string        `envconfig:"LOG_FORMAT" default:"text"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	CartTTL          time.Duration `envconfig:"CART_TTL" default:"24h"`

	Database Database `envconfig:"DATABASE"`
	Redis    Redis    `envconfig:"REDIS"`
	Kafka    Kafka    `envconfig:"KAFKA"`
}

// Load reads an optional .env file and then the process environment.
func Load(envFile string) (cfg Config, err error) {
	if envFile != "" {
		if e := godotenv.Load(envFile); e != nil && !os.IsNotExist(e) {
			err = errors.Wrapf(e, "read %s", envFile)
			return
		}
	}
	if err = envconfig.Process("", &cfg); err != nil {
		err = errors.Wrap(err, "parse environment")
		return
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)
	err = cfg.validate()
	return
}

func (c Config) validate() error {
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.CartTTL <= 0 {
		return errors.New("CART_TTL must be positive")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SetupLogging applies level and format to the global logrus logger.
func (c Config) SetupLogging() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return errors.Wrap(err, "LOG_LEVEL")
	}
	log.SetLevel(level)
	if c.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func compact(values []string) []string {
	res := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}
	return res
}
