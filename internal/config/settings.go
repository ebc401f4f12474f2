package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"encho_fleet/internal/store"
)

// Settings is the runtime configuration, read from the environment (and an
// optional .env file).
type Settings struct {
	Port    string
	GinMode string

	DBDriver   string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimezone string
	SQLitePath string

	WeeklySchema string // current | legacy

	LogFile      string
	LogLevel     string
	LogstashAddr string
}

var defaults = map[string]interface{}{
	"PORT":          "8080",
	"GIN_MODE":      "release",
	"DB_DRIVER":     "postgres",
	"DB_HOST":       "localhost",
	"DB_PORT":       "5432",
	"DB_USER":       "postgres",
	"DB_PASSWORD":   "password",
	"DB_NAME":       "encho",
	"DB_SSLMODE":    "disable",
	"DB_TIMEZONE":   "UTC",
	"SQLITE_PATH":   "./data/encho.db",
	"WEEKLY_SCHEMA": string(store.Current),
	"LOG_FILE":      "./logs/app.log",
	"LOG_LEVEL":     "info",
	"LOGSTASH_ADDR": "",
}

// Load reads .env (if present) and the environment into Settings.
func Load() *Settings {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	return &Settings{
		Port:         v.GetString("PORT"),
		GinMode:      v.GetString("GIN_MODE"),
		DBDriver:     strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:       v.GetString("DB_HOST"),
		DBPort:       v.GetString("DB_PORT"),
		DBUser:       v.GetString("DB_USER"),
		DBPassword:   v.GetString("DB_PASSWORD"),
		DBName:       v.GetString("DB_NAME"),
		DBSSLMode:    v.GetString("DB_SSLMODE"),
		DBTimezone:   v.GetString("DB_TIMEZONE"),
		SQLitePath:   v.GetString("SQLITE_PATH"),
		WeeklySchema: strings.ToLower(v.GetString("WEEKLY_SCHEMA")),
		LogFile:      v.GetString("LOG_FILE"),
		LogLevel:     v.GetString("LOG_LEVEL"),
		LogstashAddr: v.GetString("LOGSTASH_ADDR"),
	}
}

// Validate reports every configuration problem at once.
func (s *Settings) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(s.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", s.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch s.DBDriver {
	case "postgres":
		if s.DBHost == "" || s.DBName == "" {
			problems = append(problems, "DB_HOST and DB_NAME are required for the postgres driver")
		}
	case "sqlite":
		if s.SQLitePath == "" {
			problems = append(problems, "SQLITE_PATH cannot be empty when using the sqlite driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid DB_DRIVER '%s': must be postgres or sqlite", s.DBDriver))
	}

	if _, err := store.ParseConvention(s.WeeklySchema); err != nil {
		problems = append(problems, err.Error())
	}

	switch s.GinMode {
	case "", "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("invalid GIN_MODE '%s': must be debug, release or test", s.GinMode))
	}

	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL '%s'", s.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// DSN builds the postgres data source name.
func (s *Settings) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode, s.DBTimezone,
	)
}
