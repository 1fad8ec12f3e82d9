package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	JWTSecretKey       string
	ServerPort         int
	LogLevel           string
	CORSAllowedOrigins []string
	SchedulerInterval  time.Duration
	R2                 *R2Config
}

// R2Config is nil when snapshot export is not configured.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicBaseURL   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = origins[:0]
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
	}

	interval := time.Minute
	if raw := os.Getenv("SCHEDULER_INTERVAL"); raw != "" {
		interval, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULER_INTERVAL environment variable: %w", err)
		}
		if interval < time.Second {
			return nil, fmt.Errorf("SCHEDULER_INTERVAL must be at least 1s, got %s", interval)
		}
	}

	r2, err := loadR2()
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		LogLevel:           logLevel,
		CORSAllowedOrigins: origins,
		SchedulerInterval:  interval,
		R2:                 r2,
	}, nil
}

func loadR2() (*R2Config, error) {
	vars := map[string]string{
		"R2_ACCOUNT_ID":        os.Getenv("R2_ACCOUNT_ID"),
		"R2_ACCESS_KEY_ID":     os.Getenv("R2_ACCESS_KEY_ID"),
		"R2_SECRET_ACCESS_KEY": os.Getenv("R2_SECRET_ACCESS_KEY"),
		"R2_BUCKET_NAME":       os.Getenv("R2_BUCKET_NAME"),
		"R2_PUBLIC_BASE_URL":   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	var missing []string
	for name, v := range vars {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == len(vars) {
		return nil, nil
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("incomplete R2 configuration, missing %s", strings.Join(sortedCopy(missing), ", "))
	}

	return &R2Config{
		AccountID:       vars["R2_ACCOUNT_ID"],
		AccessKeyID:     vars["R2_ACCESS_KEY_ID"],
		SecretAccessKey: vars["R2_SECRET_ACCESS_KEY"],
		BucketName:      vars["R2_BUCKET_NAME"],
		PublicBaseURL:   strings.TrimRight(vars["R2_PUBLIC_BASE_URL"], "/"),
	}, nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
