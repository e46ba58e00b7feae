package core

import (
	"fmt"
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage engines
const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
	EngineSqlite   = "sqlite3"
)

type Config struct {
	Env              string // DEV (local; default), TEST, QA, PROD
	Debug            bool
	TestMode         bool
	AppName          string
	Build            string
	SecretKey        string
	WorkDir          string
	FrontendBaseURL  string
	DefaultFromEmail mail.Address
	AdminEmail       mail.Address
	RollbarToken     string
	SendgridApiKey   string

	Server struct {
		Address            string
		Host               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		SessionIdleTimeout time.Duration
		SessionCookieName  string
		SecureCookies      bool
		LoginRateLimit     float64 // requests per second per IP; 0 disables
	}

	Database struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite3 file (or ":memory:")
	}
}

// DatabaseAddress returns the DB server host:port
func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "SchoolConnect")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "t9%k1m*4x!s@ce7v)o0(dz&uq2#hh^w$3b+pyfn8r6j_ga5le")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "SchoolConnect <noreply@localhost>")
	v.SetDefault("adminEmail", "Admin <admin@localhost>")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.sessionIdleTimeout", 24*time.Hour)
	v.SetDefault("server.sessionCookieName", "sc_session")
	v.SetDefault("server.secureCookies", false)
	v.SetDefault("server.loginRateLimit", 0.0)

	v.SetDefault("database.engine", EngineMemory)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "schoolconnect")
	v.SetDefault("database.user", "schoolconnect")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "schoolconnect.db")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", EngineMemory)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		WorkDir:          wd,
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: mustParseAddress("defaultFromEmail", v.GetString("defaultFromEmail")),
		AdminEmail:       mustParseAddress("adminEmail", v.GetString("adminEmail")),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
	}

	conf.Server.Address = v.GetString("server.address")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.SessionIdleTimeout = v.GetDuration("server.sessionIdleTimeout")
	conf.Server.SessionCookieName = v.GetString("server.sessionCookieName")
	conf.Server.SecureCookies = v.GetBool("server.secureCookies")
	conf.Server.LoginRateLimit = v.GetFloat64("server.loginRateLimit")
	if host, err := os.Hostname(); err == nil {
		conf.Server.Host = host
	}

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.adminUser")
	conf.Database.AdminPassword = v.GetString("database.adminPassword")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")
	conf.Database.Path = v.GetString("database.path")

	return conf
}

// NewTestConfig returns a Config suitable for tests: in-memory storage, no rate limiting.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.Debug = false
	conf.TestMode = true
	conf.Database.Engine = EngineMemory
	conf.Server.LoginRateLimit = 0
	conf.Server.SessionIdleTimeout = time.Hour
	return conf
}

func mustParseAddress(key, addr string) mail.Address {
	a, err := mail.ParseAddress(addr)
	if err != nil {
		log.Fatal(fmt.Sprintf("config.%s: %v", key, err))
	}
	return *a
}

// getwd looks for the project root (the directory holding go.mod).
// go test changes the working directory to the package being tested, so walk up until it is found.
func getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd // deployed binary: no go.mod around
		}
		currDir = newDir
	}
}
