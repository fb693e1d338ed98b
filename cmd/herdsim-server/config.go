package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"

	"github.com/daniacca/herdsim/internal/herd"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Addr           string
	RunConfigFile  string
	TickIntervalMS int
	LogLevel       string
}

// configResolver defines how to resolve a single configuration value.
type configResolver struct {
	flagName    string
	envVarName  string
	defaultVal  string
	description string
	setter      func(*ServerConfig, string)
}

// loadServerConfig loads server configuration from CLI flags and environment
// variables, flag taking precedence over env var over default.
func loadServerConfig() ServerConfig {
	cfg := ServerConfig{}

	resolvers := []configResolver{
		{
			flagName:    "addr",
			envVarName:  "HERDSIM_ADDR",
			defaultVal:  ":8080",
			description: "HTTP listen address (e.g. :8080, 0.0.0.0:8080)",
			setter:      func(c *ServerConfig, v string) { c.Addr = v },
		},
		{
			flagName:    "run-config",
			envVarName:  "HERDSIM_RUN_CONFIG",
			defaultVal:  "",
			description: "optional path to a run config JSON file to create a run at startup",
			setter:      func(c *ServerConfig, v string) { c.RunConfigFile = v },
		},
		{
			flagName:    "tick-interval-ms",
			envVarName:  "HERDSIM_TICK_INTERVAL_MS",
			defaultVal:  "250",
			description: "default tick interval in milliseconds for auto-running grids",
			setter: func(c *ServerConfig, v string) {
				if val, err := strconv.Atoi(v); err == nil && val > 0 {
					c.TickIntervalMS = val
				} else {
					log.Printf("Invalid value for tick-interval-ms: %s, using default 250", v)
					c.TickIntervalMS = 250
				}
			},
		},
		{
			flagName:    "log-level",
			envVarName:  "HERDSIM_LOG_LEVEL",
			defaultVal:  "info",
			description: "Log level: debug, info, warn, error",
			setter:      func(c *ServerConfig, v string) { c.LogLevel = v },
		},
	}

	flagVars := make(map[string]*string)
	for _, resolver := range resolvers {
		flagVars[resolver.flagName] = flag.String(resolver.flagName, "", resolver.description)
	}

	flag.Parse()

	for _, resolver := range resolvers {
		var value string
		if *flagVars[resolver.flagName] != "" {
			value = *flagVars[resolver.flagName]
		} else if envValue := os.Getenv(resolver.envVarName); envValue != "" {
			value = envValue
		} else {
			value = resolver.defaultVal
		}
		resolver.setter(&cfg, value)
	}

	return cfg
}

// loadRunConfigFromFile reads and validates a run config JSON file.
func loadRunConfigFromFile(path string) (herd.RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return herd.RunConfig{}, err
	}

	var cfg herd.RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return herd.RunConfig{}, err
	}
	if err := herd.ValidateRunConfig(cfg); err != nil {
		return herd.RunConfig{}, err
	}
	return cfg, nil
}
