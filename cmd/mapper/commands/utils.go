/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the Aria State Mapper commands. Provides
common configuration loading, logging setup, and browser session helpers used
across all command implementations.
*/

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/kleascm/aria-state-mapper/pkg/browser"
	"github.com/kleascm/aria-state-mapper/pkg/logging"
)

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("ARIAMAPPER")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging configures the session logging system and returns the logger
func SetupLogging() (*logging.Logger, error) {
	format := logging.LogFormat(viper.GetString("log_format"))
	if viper.GetBool("json_logs") {
		format = logging.LogFormatJSON
	}

	logger, err := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    format,
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		Timestamp: true,
		Colors:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	if stats, err := logging.NewLogManager(viper.GetString("log_dir"), viper.GetInt("log_max_files")).GetLogStats(); err == nil {
		logger.GetLogger().WithFields(logrus.Fields{
			"log_files": stats.TotalFiles,
			"log_bytes": stats.TotalSize,
		}).Debug("Session log directory stats")
	}
	return logger, nil
}

// StartBrowser launches a browser session from the viper configuration
func StartBrowser(ctx context.Context, log *logrus.Logger) (*browser.ChromeDPController, error) {
	page := browser.NewChromeDPController(browser.Config{
		Headless: viper.GetBool("headless"),
		Timeout:  viper.GetDuration("timeout"),
	})
	if err := page.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	log.WithFields(logrus.Fields{
		"headless": viper.GetBool("headless"),
		"timeout":  viper.GetDuration("timeout").String(),
	}).Info("Browser session started")
	return page, nil
}

// sessionTimeout bounds a whole command run so a wedged page cannot hang the
// process forever.
func sessionTimeout() time.Duration {
	per := viper.GetDuration("timeout")
	if per <= 0 {
		per = 10 * time.Second
	}
	states := viper.GetInt("max_states")
	if states <= 0 {
		states = 50
	}
	// Generous bound: every state may need several actions.
	return time.Duration(states) * per * 10
}
