package main

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// config holds deployment settings read from the environment.
type config struct {
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Secure    bool
	HTTPTimeout time.Duration
	Concurrency int
}

func loadConfig() (config, error) {
	cfg := config{
		S3Endpoint:  getEnv("GRIB1_S3_ENDPOINT", "s3.amazonaws.com"),
		S3AccessKey: getEnv("GRIB1_S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("GRIB1_S3_SECRET_KEY", ""),
		S3Secure:    getEnvBool("GRIB1_S3_SECURE", true),
	}

	timeout, err := time.ParseDuration(getEnv("GRIB1_HTTP_TIMEOUT", "120s"))
	if err != nil {
		return config{}, fmt.Errorf("GRIB1_HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.Concurrency, err = strconv.Atoi(getEnv("GRIB1_CONCURRENCY", "6"))
	if err != nil || cfg.Concurrency < 1 {
		return config{}, fmt.Errorf("GRIB1_CONCURRENCY: want a positive integer, got %q", os.Getenv("GRIB1_CONCURRENCY"))
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true"
	}
	return defaultValue
}
