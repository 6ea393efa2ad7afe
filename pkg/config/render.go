package config

import (
	"os"
	"time"
)

// RenderConfig configures job orchestration and the placeholder executor.
type RenderConfig struct {
	Queue string

	// TemplatePath is the storage-relative path of the placeholder video.
	TemplatePath string
	OutputDir    string

	MaxErrorLength int

	EnqueueAttempts int
	EnqueueBackoff  time.Duration

	// RelayInterval and RelayAfter drive the re-push of jobs whose enqueue never landed.
	RelayInterval time.Duration
	RelayAfter    time.Duration
}

func loadRenderConfig() RenderConfig {
	return RenderConfig{
		Queue:           getEnv("RENDER_QUEUE", "renders"),
		TemplatePath:    getEnv("RENDER_TEMPLATE_PATH", "templates/template.mp4"),
		OutputDir:       getEnv("RENDER_OUTPUT_DIR", "renders"),
		MaxErrorLength:  getEnvInt("RENDER_MAX_ERROR_LENGTH", 500),
		EnqueueAttempts: getEnvInt("RENDER_ENQUEUE_ATTEMPTS", 3),
		EnqueueBackoff:  getEnvDuration("RENDER_ENQUEUE_BACKOFF", 100*time.Millisecond),
		RelayInterval:   getEnvDuration("RENDER_RELAY_INTERVAL", 30*time.Second),
		RelayAfter:      getEnvDuration("RENDER_RELAY_AFTER", time.Minute),
	}
}

func hostname() string {
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	return "worker"
}
