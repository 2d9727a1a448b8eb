package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/IshimwePatience/conferenceroomrbc-sub000/internal/booking"
)

// Config captures environment driven configuration values for the booking
// service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	LogLevel      string
	SessionTTL    time.Duration
	SweepInterval time.Duration

	// Booking policy knobs.
	BusinessStart  time.Duration
	BusinessEnd    time.Duration
	MinDuration    time.Duration
	MaxDuration    time.Duration
	LeadTime       time.Duration
	MaxAdvanceDays int
	TimezoneName   string

	// Optional bootstrap administrator, created at startup when no account
	// with the given email exists yet.
	AdminEmail        string
	AdminPassword     string
	AdminOrganization string
}

// Load parses configuration values from the current process environment.
// Every variable is optional; unset values fall back to the defaults the
// booking policy ships with.
func Load() (Config, error) {
	defaults := booking.DefaultOptions()
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:roombooking.db?_foreign_keys=on",
		LogLevel:       "info",
		SessionTTL:     12 * time.Hour,
		SweepInterval:  time.Minute,
		BusinessStart:  defaults.BusinessStart,
		BusinessEnd:    defaults.BusinessEnd,
		MinDuration:    defaults.MinDuration,
		MaxDuration:    defaults.MaxDuration,
		LeadTime:       defaults.LeadTime,
		MaxAdvanceDays: int(defaults.MaxAdvance / (24 * time.Hour)),
		TimezoneName:   "UTC",
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ROOMBOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("ROOMBOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if level := strings.TrimSpace(os.Getenv("ROOMBOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}

	parseDuration(&cfg.SessionTTL, "ROOMBOOKING_SESSION_TTL", &invalid)
	parseDuration(&cfg.SweepInterval, "ROOMBOOKING_SWEEP_INTERVAL", &invalid)
	parseClockOffset(&cfg.BusinessStart, "ROOMBOOKING_BUSINESS_START", &invalid)
	parseClockOffset(&cfg.BusinessEnd, "ROOMBOOKING_BUSINESS_END", &invalid)
	parseDuration(&cfg.MinDuration, "ROOMBOOKING_MIN_DURATION", &invalid)
	parseDuration(&cfg.MaxDuration, "ROOMBOOKING_MAX_DURATION", &invalid)
	parseDuration(&cfg.LeadTime, "ROOMBOOKING_LEAD_TIME", &invalid)

	if daysValue := strings.TrimSpace(os.Getenv("ROOMBOOKING_MAX_ADVANCE_DAYS")); daysValue != "" {
		days, err := strconv.Atoi(daysValue)
		if err != nil || days <= 0 {
			invalid = append(invalid, "ROOMBOOKING_MAX_ADVANCE_DAYS")
		} else {
			cfg.MaxAdvanceDays = days
		}
	}

	if tz := strings.TrimSpace(os.Getenv("ROOMBOOKING_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "ROOMBOOKING_TIMEZONE")
		} else {
			cfg.TimezoneName = tz
		}
	}

	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(os.Getenv("ROOMBOOKING_ADMIN_EMAIL")))
	cfg.AdminPassword = os.Getenv("ROOMBOOKING_ADMIN_PASSWORD")
	cfg.AdminOrganization = strings.TrimSpace(os.Getenv("ROOMBOOKING_ADMIN_ORG"))
	if cfg.AdminOrganization == "" {
		cfg.AdminOrganization = "default"
	}

	if cfg.BusinessStart >= cfg.BusinessEnd {
		invalid = append(invalid, "ROOMBOOKING_BUSINESS_START")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// PolicyOptions converts the configured thresholds into validator options.
func (c Config) PolicyOptions() booking.Options {
	opts := booking.DefaultOptions()
	opts.BusinessStart = c.BusinessStart
	opts.BusinessEnd = c.BusinessEnd
	opts.MinDuration = c.MinDuration
	opts.MaxDuration = c.MaxDuration
	opts.LeadTime = c.LeadTime
	opts.MaxAdvance = time.Duration(c.MaxAdvanceDays) * 24 * time.Hour
	if loc, err := time.LoadLocation(c.TimezoneName); err == nil {
		opts.Location = loc
	}
	return opts
}

func parseDuration(target *time.Duration, key string, invalid *[]string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		*invalid = append(*invalid, key)
		return
	}
	*target = parsed
}

// parseClockOffset reads an "HH:MM" wall-clock value as an offset from local
// midnight, also accepting plain durations such as "7h30m".
func parseClockOffset(target *time.Duration, key string, invalid *[]string) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	if parsed, ok := parseClock(value); ok {
		*target = parsed
		return
	}
	if parsed, err := time.ParseDuration(value); err == nil && parsed >= 0 && parsed <= 24*time.Hour {
		*target = parsed
		return
	}
	*invalid = append(*invalid, key)
}

func parseClock(value string) (time.Duration, bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute, true
}
