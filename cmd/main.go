package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"

	"year-progress-bot/handler"
	"year-progress-bot/internal/integrations/openmeteo"
	"year-progress-bot/internal/integrations/paramstore"
	"year-progress-bot/internal/integrations/telegram"
	"year-progress-bot/internal/phrases"
	"year-progress-bot/internal/repository"
	"year-progress-bot/internal/schedule"
	"year-progress-bot/internal/usecase"
)

func main() {
	ctx := context.Background()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Local runs may keep their settings in .env; Lambda never ships one.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env file", "err", err)
	}

	// ---- Configuration (read only here) ----
	stateBackend := envString("STATE_BACKEND", "file")
	paramPrefix := strings.TrimSpace(os.Getenv("PARAM_PREFIX"))
	silence := envBool("SILENCE_ENABLED", true)
	place := envString("WEATHER_PLACE", "Madrid")
	location := openmeteo.Location{
		Latitude:  envFloat("WEATHER_LAT", openmeteo.Madrid.Latitude),
		Longitude: envFloat("WEATHER_LON", openmeteo.Madrid.Longitude),
		Timezone:  envString("WEATHER_TZ", openmeteo.Madrid.Timezone),
	}

	// ---- AWS SDK config, only when something needs it ----
	var awsCfg *aws.Config
	loadAWS := func() aws.Config {
		if awsCfg == nil {
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				slog.Error("failed to load AWS config", "err", err)
				os.Exit(1)
			}
			awsCfg = &cfg
		}
		return *awsCfg
	}

	// ---- Clients ----
	var store usecase.StateStore
	switch stateBackend {
	case "dynamodb":
		dynamoStore, err := repository.NewDynamoStore(
			awsdynamodb.NewFromConfig(loadAWS()),
			mustEnv("STATE_TABLE"),
			envString("STATE_ID", "year-progress"),
		)
		if err != nil {
			slog.Error("failed to create DynamoDB state store", "err", err)
			os.Exit(1)
		}
		store = dynamoStore
	case "file":
		fileStore, err := repository.NewFileStore(envString("STATE_FILE", defaultStatePath()))
		if err != nil {
			slog.Error("failed to create state file store", "err", err)
			os.Exit(1)
		}
		slog.Info("using state file", "path", fileStore.Path())
		store = fileStore
	default:
		slog.Error("unknown state backend", "backend", stateBackend)
		os.Exit(1)
	}

	var creds telegram.CredentialsFunc
	if paramPrefix != "" {
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(loadAWS()))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		creds = telegram.ParamStoreCredentials(ssmClient, paramPrefix)
	} else {
		chatID, err := strconv.ParseInt(mustEnv("TELEGRAM_CHAT_ID"), 10, 64)
		if err != nil {
			slog.Error("TELEGRAM_CHAT_ID must be an integer", "err", err)
			os.Exit(1)
		}
		creds = telegram.StaticCredentials(mustEnv("TELEGRAM_BOT_TOKEN"), chatID)
	}
	telegramClient, err := telegram.NewClient(creds)
	if err != nil {
		slog.Error("failed to create Telegram client", "err", err)
		os.Exit(1)
	}

	weatherClient, err := openmeteo.NewClient(location, openmeteo.WithLogger(slog.Default()))
	if err != nil {
		slog.Error("failed to create weather client", "err", err)
		os.Exit(1)
	}

	pools, err := phrases.Load(os.Getenv("PHRASES_FILE"))
	if err != nil {
		slog.Error("failed to load phrases", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	reportService, err := usecase.NewReportService(store, weatherClient, telegramClient, pools,
		usecase.WithPlace(place),
		usecase.WithSilence(silence),
		usecase.WithLogger(slog.Default()),
	)
	if err != nil {
		slog.Error("failed to create report service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(reportService, slog.Default())
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(h.Handle)
		return
	}

	switch mode := envString("RUN_MODE", "once"); mode {
	case "once":
		if _, err := h.Handle(ctx, events.CloudWatchEvent{}); err != nil {
			os.Exit(1)
		}
	case "schedule":
		runScheduled(ctx, h)
	default:
		slog.Error("unknown run mode", "mode", mode)
		os.Exit(1)
	}
}

func runScheduled(ctx context.Context, h *handler.Handler) {
	loc, err := time.LoadLocation(envString("SCHEDULE_TZ", "UTC"))
	if err != nil {
		slog.Error("invalid SCHEDULE_TZ", "err", err)
		os.Exit(1)
	}
	sched, err := schedule.New(envString("SCHEDULE", "0 9 * * *"), loc, func(ctx context.Context) error {
		_, err := h.Handle(ctx, events.CloudWatchEvent{})
		return err
	}, slog.Default())
	if err != nil {
		slog.Error("failed to create scheduler", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := sched.Run(ctx); err != nil {
		slog.Error("scheduler failed", "err", err)
		os.Exit(1)
	}
}

// defaultStatePath keeps the state file next to the binary.
func defaultStatePath() string {
	const name = "year_progress_state.json"
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	f, err := parseEnvFloat(key, def)
	if err != nil {
		slog.Error("environment variable must be a number", "key", key, "err", err)
		os.Exit(1)
	}
	return f
}

func envBool(key string, def bool) bool {
	b, err := parseEnvBool(key, def)
	if err != nil {
		slog.Error("environment variable must be a boolean", "key", key, "err", err)
		os.Exit(1)
	}
	return b
}

func parseEnvFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func parseEnvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}
