package core

import (
	"log"
	"net"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Modes
const (
	ModeSingle = "single" // one process-wide snapshot, no accounts
	ModeMulti  = "multi"  // per-device accounts, one snapshot per identity
)

// Storage drivers
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	AppName          string
	Env              string
	Build            string
	Debug            bool
	TestMode         bool
	Mode             string
	DefaultFromEmail mail.Address
	RollbarToken     string
	SendgridApiKey   string

	Server struct {
		Host            string
		Address         string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
	}

	Storage struct {
		Driver  string
		DataDir string
		Redis   struct {
			Address  string
			Password string
			DB       int
		}
		Postgres struct {
			Host       string
			Port       string
			Name       string
			User       string
			Password   string
			DisableTLS bool
		}
	}
}

func (c *Config) IsMultiUser() bool { return c.Mode == ModeMulti }

// PostgresURL builds the connection string of the postgres storage driver.
func (c *Config) PostgresURL() string {
	pg := c.Storage.Postgres
	sslMode := "require"
	if pg.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pg.User, pg.Password),
		Host:     net.JoinHostPort(pg.Host, pg.Port),
		Path:     pg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// NewConfig loads the configuration from defaults, an optional `config/.env.<env>` file and the environment.
// ENV selects the environment (DEV by default) and doubles as the prefix of every variable, e.g. DEV_STORAGE_DRIVER.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("appName", "Scorebook")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("mode", ModeMulti)
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.address", "127.0.0.1:8000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)
	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.dataDir", defaultDataDir())
	v.SetDefault("storage.redis.address", "127.0.0.1:6379")
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.postgres.host", "localhost")
	v.SetDefault("storage.postgres.port", "5432")
	v.SetDefault("storage.postgres.name", "scorebook")
	v.SetDefault("storage.postgres.user", "postgres")
	v.SetDefault("storage.postgres.password", "")
	v.SetDefault("storage.postgres.disableTLS", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("storage.driver", DriverMemory)
	case "PROD":
		v.SetDefault("debug", false)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

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
	v.AutomaticEnv()

	conf := &Config{
		AppName:        v.GetString("appName"),
		Env:            env,
		Build:          v.GetString("build"),
		Debug:          v.GetBool("debug"),
		TestMode:       v.GetBool("testMode"),
		Mode:           strings.ToLower(v.GetString("mode")),
		RollbarToken:   v.GetString("rollbarToken"),
		SendgridApiKey: v.GetString("sendgridApiKey"),
	}
	conf.DefaultFromEmail = mail.Address{Name: conf.AppName, Address: v.GetString("defaultFromEmail")}

	conf.Server.Host = v.GetString("server.host")
	conf.Server.Address = v.GetString("server.address")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableReqLogs = v.GetBool("server.disableReqLogs")

	conf.Storage.Driver = strings.ToLower(v.GetString("storage.driver"))
	conf.Storage.DataDir = v.GetString("storage.dataDir")
	conf.Storage.Redis.Address = v.GetString("storage.redis.address")
	conf.Storage.Redis.Password = v.GetString("storage.redis.password")
	conf.Storage.Redis.DB = v.GetInt("storage.redis.db")
	conf.Storage.Postgres.Host = v.GetString("storage.postgres.host")
	conf.Storage.Postgres.Port = v.GetString("storage.postgres.port")
	conf.Storage.Postgres.Name = v.GetString("storage.postgres.name")
	conf.Storage.Postgres.User = v.GetString("storage.postgres.user")
	conf.Storage.Postgres.Password = v.GetString("storage.postgres.password")
	conf.Storage.Postgres.DisableTLS = v.GetBool("storage.postgres.disableTLS")

	if conf.Mode != ModeSingle {
		conf.Mode = ModeMulti
	}
	return conf
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "scorebook")
	}
	return ".scorebook"
}
