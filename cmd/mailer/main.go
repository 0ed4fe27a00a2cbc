// Package main is the command-line driver for the mailer client:
// it sends one composed message or relays one EML file per invocation.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/osvegis/mailer"
	"github.com/osvegis/mailer/internal/config"
)

type attachList []string

func (a *attachList) String() string { return strings.Join(*a, ",") }

func (a *attachList) Set(v string) error {
	*a = append(*a, v)
	return nil
}

func main() {
	var attachments attachList

	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	to := flag.String("to", "", "recipients separated by semicolons (first To, rest Cc)")
	subject := flag.String("subject", "", "message subject")
	body := flag.String("body", "", "message body, plain text or HTML")
	bodyFile := flag.String("body-file", "", "read the message body from a file")
	eml := flag.String("eml", "", "relay a previously composed EML file instead of composing")
	flag.Var(&attachments, "attach", "file to attach (repeatable)")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	setupLogger(cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		slog.Error("incomplete configuration", "error", err)
		os.Exit(1)
	}
	if *to == "" {
		slog.Error("-to is required")
		os.Exit(1)
	}

	if err := run(cfg, *to, *subject, *body, *bodyFile, *eml, attachments); err != nil {
		slog.Error("send failed", "error", err)
		os.Exit(1)
	}

	slog.Info("message sent", "to", *to)
}

func run(cfg *config.Config, to, subject, body, bodyFile, eml string, attachments []string) error {
	security, err := mailer.ParseSecurity(cfg.SMTP.Security)
	if err != nil {
		return err
	}

	m, err := mailer.New(mailer.Options{
		Host:       cfg.SMTP.Host,
		Port:       cfg.SMTP.Port,
		Username:   cfg.SMTP.Username,
		Password:   cfg.SMTP.Password,
		Security:   security,
		VerifyCert: cfg.SMTP.VerifyCert,
		From:       cfg.Mail.From,
		BCC:        cfg.Mail.BCC,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if eml != "" {
		return m.SendFile(to, eml)
	}

	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}

	atts := make([]mailer.Attachment, 0, len(attachments))
	for _, path := range attachments {
		atts = append(atts, mailer.FileAttachment(path))
	}
	return m.Send(to, subject, body, atts...)
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// setupLogger configures the global slog logger with JSON output and the
// specified log level.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
