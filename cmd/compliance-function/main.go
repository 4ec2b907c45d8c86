package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"

	"github.com/Boakye-20/ai-compliance-tool/internal/app"
	"github.com/Boakye-20/ai-compliance-tool/internal/config"
	"github.com/Boakye-20/ai-compliance-tool/internal/services"
	"github.com/Boakye-20/ai-compliance-tool/internal/telemetry"
)

// configPathEnv optionally points at a YAML config file deployed with the function.
const configPathEnv = "COMPLIANCE_CONFIG_FILE"

var (
	instance *app.App
	router   http.Handler
	upload   *services.UploadFunction
	once     sync.Once
	initErr  error
)

func init() {
	slog.SetDefault(telemetry.SetupLogger(os.Getenv("COMPLIANCE_LOG_LEVEL")))

	functions.HTTP("HandleAnalyze", handleAnalyze)
	functions.CloudEvent("AnalyzeUpload", analyzeUpload)
}

// main is required by the Go Functions Framework.
func main() {}

func setup() {
	once.Do(func() {
		ctx := context.Background()
		cfg, err := config.Load(os.Getenv(configPathEnv))
		if err != nil {
			initErr = err
			return
		}
		logger := telemetry.SetupLogger(cfg.LogLevel)
		slog.SetDefault(logger)

		instance, err = app.New(ctx, cfg, logger)
		if err != nil {
			initErr = err
			return
		}
		router = instance.Router()
		upload, initErr = instance.UploadFunction(ctx)
	})
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	setup()
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	router.ServeHTTP(w, r)
}

func analyzeUpload(ctx context.Context, e cloudevents.Event) error {
	setup()
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// Process logs its own failures with object context.
	return upload.Process(ctx, gcsEvent)
}
