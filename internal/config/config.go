package config

import (
	"eld-hos-service/internal/domain"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration, read from the environment (and .env).
type Config struct {
	Port             string
	DatabaseURL      string
	AutoMigrate      bool
	SeedPath         string
	ORSAPIKey        string
	ORSBaseURL       string
	StaticRoutesPath string
	JWTSecret        string
	Cycle            string
	RulesPath        string
	ShutdownTimeout  time.Duration
}

// Get returns the environment value for key, or fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: %s=%q is not a bool, using %t", key, v, fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := Get(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}

// LoadDotEnv loads .env into the environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

func Load() *Config {
	return &Config{
		Port:             Get("PORT", "8080"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		AutoMigrate:      getBool("AUTO_MIGRATE", false),
		SeedPath:         Get("SEED_PATH", ""),
		ORSAPIKey:        Get("ORS_API_KEY", ""),
		ORSBaseURL:       Get("ORS_BASE_URL", ""),
		StaticRoutesPath: Get("STATIC_ROUTES_PATH", ""),
		JWTSecret:        Get("AUTH_JWT_SECRET", ""),
		Cycle:            Get("HOS_CYCLE", domain.Cycle70Hour8Day),
		RulesPath:        Get("HOS_RULES_PATH", ""),
		ShutdownTimeout:  getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

type ruleSetFile struct {
	Default  string                  `yaml:"default"`
	RuleSets map[string]ruleSetEntry `yaml:"rule_sets"`
}

type ruleSetEntry struct {
	CycleLimit        time.Duration `yaml:"cycle_limit"`
	CycleDays         int           `yaml:"cycle_days"`
	DailyDriveLimit   time.Duration `yaml:"daily_drive_limit"`
	DutyWindow        time.Duration `yaml:"duty_window"`
	BreakAfterDriving time.Duration `yaml:"break_after_driving"`
	MinBreak          time.Duration `yaml:"min_break"`
	DailyRest         time.Duration `yaml:"daily_rest"`
	Restart           time.Duration `yaml:"restart"`
}

// LoadRuleSet resolves the active rule set.
//
// Without a file the built-in preset named by cycle is used. A YAML file may
// override any limit of a preset or define a new named set:
//
//	default: 70_8
//	rule_sets:
//	  70_8:
//	    break_after_driving: 8h
//	    min_break: 30m
//
// cycle selects the set; when empty the file's default is used.
func LoadRuleSet(path, cycle string) (domain.RuleSet, error) {
	if strings.TrimSpace(path) == "" {
		return domain.RulesFor(cycle)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return domain.RuleSet{}, fmt.Errorf("load rule set: read %q: %w", path, err)
	}

	var f ruleSetFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return domain.RuleSet{}, fmt.Errorf("load rule set: parse yaml: %w", err)
	}

	name := cycle
	if name == "" {
		name = f.Default
	}
	if name == "" {
		name = domain.Cycle70Hour8Day
	}

	r, presetErr := domain.RulesFor(name)
	entry, ok := f.RuleSets[name]
	switch {
	case !ok && presetErr != nil:
		return domain.RuleSet{}, fmt.Errorf("load rule set: %q is neither a preset nor defined in %q", name, path)
	case presetErr != nil:
		r = domain.DefaultRules()
		r.Name = name
	}

	if ok {
		overlay(&r, entry)
	}

	if err := r.Validate(); err != nil {
		return domain.RuleSet{}, fmt.Errorf("load rule set: %w", err)
	}
	return r, nil
}

func overlay(r *domain.RuleSet, e ruleSetEntry) {
	set := func(dst *time.Duration, v time.Duration) {
		if v != 0 {
			*dst = v
		}
	}
	set(&r.CycleLimit, e.CycleLimit)
	set(&r.DailyDriveLimit, e.DailyDriveLimit)
	set(&r.DutyWindow, e.DutyWindow)
	set(&r.BreakAfterDriving, e.BreakAfterDriving)
	set(&r.MinBreak, e.MinBreak)
	set(&r.DailyRest, e.DailyRest)
	set(&r.Restart, e.Restart)
	if e.CycleDays != 0 {
		r.CycleDays = e.CycleDays
	}
}

// Validate reports configuration that would stop the server from starting.
func (c *Config) Validate() error {
	var errs []error
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT %q is not a number", c.Port))
	}
	if c.AutoMigrate && c.DatabaseURL == "" {
		errs = append(errs, errors.New("AUTO_MIGRATE requires DATABASE_URL"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}
