package invitekit

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the configuration for an invite run.
//
// The env tags match the variable names the tool reads from the
// environment (or a .env file loaded by the caller).
type Config struct {
	// APIID is the Telegram API ID from https://my.telegram.org
	APIID int `env:"TG_API_ID"`

	// APIHash is the Telegram API hash from https://my.telegram.org
	APIHash string `env:"TG_API_HASH"`

	// Phone is the phone number used for interactive login when the
	// stored session is not yet authorized.
	Phone string `env:"TG_PHONE"`

	// SessionDir is the directory for storing session data.
	// Defaults to "./session" if empty.
	SessionDir string `env:"TG_SESSION_DIR" envDefault:"./session"`

	// Channel is the target channel: "@username" or a numeric ID
	// (e.g. -1001234567890).
	Channel string `env:"TG_TARGET_CHANNEL"`

	// InputPath is the CSV file with the users to invite.
	// Defaults to "telegram_users.csv" if empty.
	InputPath string `env:"TG_CSV" envDefault:"telegram_users.csv"`

	// OutputPath is the CSV file invite results are appended to.
	// Defaults to "invite_results.csv" if empty.
	OutputPath string `env:"OUTPUT_FILE" envDefault:"invite_results.csv"`

	// BatchSize is the number of users invited per batch.
	// Defaults to 10 if zero.
	BatchSize int `env:"BATCH_SIZE" envDefault:"10"`

	// BatchDelay is the pause in seconds between batches.
	// Defaults to 5 if zero.
	BatchDelay int `env:"BATCH_DELAY" envDefault:"5"`

	// InviteDelay is the pause in seconds between individual invites
	// within a batch. Defaults to 1 if zero.
	InviteDelay int `env:"INVITE_DELAY" envDefault:"1"`

	// MaxFloodWait caps the server-requested flood wait, in seconds.
	// A wait longer than this is recorded as a failure instead of
	// being slept through. Defaults to 600 if zero; -1 disables the cap.
	MaxFloodWait int `env:"MAX_FLOOD_WAIT" envDefault:"600"`

	// Resume skips input records whose key already appears in the
	// output file from a previous run.
	Resume bool `env:"RESUME" envDefault:"true"`

	// DryRun processes the list without any Telegram calls.
	DryRun bool `env:"DRY_RUN"`

	// Verbose enables debug logging for the MTProto client.
	Verbose bool `env:"VERBOSE"`

	// Logger is the logger to use. If nil, slog.Default() is used.
	Logger *slog.Logger

	// DeviceModel is the device model to report to Telegram.
	// Defaults to "invitekit" if empty.
	DeviceModel string

	// AppVersion is the app version to report to Telegram.
	// Defaults to "1.0.0" if empty.
	AppVersion string
}

func (c *Config) setDefaults() {
	if c.SessionDir == "" {
		c.SessionDir = "./session"
	}
	if c.InputPath == "" {
		c.InputPath = "telegram_users.csv"
	}
	if c.OutputPath == "" {
		c.OutputPath = "invite_results.csv"
	}
	if c.BatchSize == 0 {
		c.BatchSize = 10
	}
	if c.BatchDelay == 0 {
		c.BatchDelay = 5
	}
	if c.InviteDelay == 0 {
		c.InviteDelay = 1
	}
	if c.MaxFloodWait == 0 {
		c.MaxFloodWait = 600
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.DeviceModel == "" {
		c.DeviceModel = "invitekit"
	}
	if c.AppVersion == "" {
		c.AppVersion = "1.0.0"
	}
}

func (c *Config) validate() error {
	if c.APIID == 0 {
		return ErrMissingAPIID
	}
	if c.APIHash == "" {
		return ErrMissingAPIHash
	}
	if c.Channel == "" {
		return ErrMissingChannel
	}
	if c.BatchSize < 0 {
		return ErrBadBatchSize
	}
	if c.BatchDelay < 0 || c.InviteDelay < 0 {
		return ErrBadDelay
	}
	return nil
}

// zapLogger creates a zap logger matching the Verbose setting.
func (c *Config) zapLogger() *zap.Logger {
	var level zapcore.Level
	if c.Verbose {
		level = zapcore.DebugLevel
	} else {
		level = zapcore.WarnLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
		},
	}

	logger, _ := cfg.Build()
	return logger
}
