package cmd

import (
	"fmt"
	"time"

	"tokenlottery/config"

	"github.com/evalphobia/logrus_sentry"
	log "github.com/sirupsen/logrus"
)

// setupLogging configures the global logger for the environment and
// forwards errors to Sentry when a DSN is configured
func setupLogging(cfg *config.Config) error {
	switch cfg.Environment {
	case "production":
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
	case "test":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		log.SetLevel(log.DebugLevel)
	}

	if cfg.SentryDSN == "" {
		return nil
	}

	hook, err := logrus_sentry.NewSentryHook(cfg.SentryDSN, []log.Level{
		log.PanicLevel,
		log.FatalLevel,
		log.ErrorLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to create sentry hook: %w", err)
	}
	hook.Timeout = 2 * time.Second
	hook.StacktraceConfiguration.Enable = true
	hook.SetEnvironment(cfg.Environment)

	log.AddHook(hook)
	log.Info("Sentry error reporting enabled")
	return nil
}
