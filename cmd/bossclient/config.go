package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"bossbounty/internal/adapter/solana/rpc"
	"bossbounty/internal/adapter/solana/ws"
	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
)

const (
	defaultRPCURL = "https://api.devnet.solana.com"
	minPoll       = 2 * time.Second
	maxPoll       = 4 * time.Second
)

type config struct {
	RPCURL          string
	WSURL           string
	Commitment      string
	ProgramID       game.Address
	GameAccount     game.Address
	KeypairPath     string
	PollInterval    time.Duration
	ReconcileDelay  time.Duration
	ClaimSettle     time.Duration
	ClaimRetry      time.Duration
	StillActiveCode int
	HTTPAddr        string
	DBDSN           string
	MigrationsDir   string
	OperatorKey     string
	CORSOrigin      string
	LogLevel        hlog.Level
}

// loadConfig reads the environment, after merging an optional .env file from
// the working directory.
func loadConfig() (config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := config{
		RPCURL:          stringEnv("BOSS_RPC_URL", defaultRPCURL),
		Commitment:      stringEnv("BOSS_COMMITMENT", rpc.CommitmentConfirmed),
		KeypairPath:     stringEnv("BOSS_KEYPAIR", "~/.config/solana/id.json"),
		PollInterval:    clampDuration(time.Duration(intEnv("BOSS_POLL_SECONDS", 3))*time.Second, minPoll, maxPoll),
		ReconcileDelay:  durationMSEnv("BOSS_RECONCILE_DELAY_MS", time.Second),
		ClaimSettle:     durationMSEnv("BOSS_CLAIM_SETTLE_MS", 2*time.Second),
		ClaimRetry:      durationMSEnv("BOSS_CLAIM_RETRY_MS", 1500*time.Millisecond),
		StillActiveCode: intEnv("BOSS_STILL_ACTIVE_CODE", rpc.DefaultStillActiveCode),
		HTTPAddr:        stringEnv("BOSS_HTTP_ADDR", ":8080"),
		DBDSN:           stringEnv("BOSS_DB_DSN", ""),
		MigrationsDir:   stringEnv("BOSS_MIGRATIONS_DIR", ""),
		OperatorKey:     stringEnv("BOSS_OPERATOR_KEY", ""),
		CORSOrigin:      stringEnv("BOSS_CORS_ORIGIN", ""),
		LogLevel:        logLevel(stringEnv("BOSS_LOG_LEVEL", "info")),
	}
	cfg.WSURL = stringEnv("BOSS_WS_URL", ws.EndpointFromRPC(cfg.RPCURL))

	switch cfg.Commitment {
	case rpc.CommitmentProcessed, rpc.CommitmentConfirmed, rpc.CommitmentFinalized:
	default:
		return config{}, fmt.Errorf("BOSS_COMMITMENT: unknown commitment %q", cfg.Commitment)
	}

	var err error
	if cfg.ProgramID, err = requiredAddress("BOSS_PROGRAM_ID"); err != nil {
		return config{}, err
	}
	if cfg.GameAccount, err = requiredAddress("BOSS_GAME_ACCOUNT"); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func requiredAddress(key string) (game.Address, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return game.Address{}, fmt.Errorf("%s is required", key)
	}
	addr, err := game.ParseAddress(v)
	if err != nil {
		return game.Address{}, fmt.Errorf("%s: %w", key, err)
	}
	return addr, nil
}

func stringEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationMSEnv(key string, fallback time.Duration) time.Duration {
	ms := intEnv(key, -1)
	if ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func logLevel(name string) hlog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}
