package config

import "time"

// JobxConfig configures the background job runtime used by the render worker.
type JobxConfig struct {
	Concurrency     int
	Queues          []string
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
	DequeueTimeout  time.Duration
	// ConsumerName identifies this process's in-flight list; defaults to the hostname.
	ConsumerName string
}

func loadJobxConfig() JobxConfig {
	return JobxConfig{
		Concurrency:     getEnvInt("JOBX_CONCURRENCY", 1),
		Queues:          getEnvStringSlice("JOBX_QUEUES", []string{"renders"}),
		PollInterval:    getEnvDuration("JOBX_POLL_INTERVAL", time.Second),
		ShutdownTimeout: getEnvDuration("JOBX_SHUTDOWN_TIMEOUT", 30*time.Second),
		DequeueTimeout:  getEnvDuration("JOBX_DEQUEUE_TIMEOUT", 5*time.Second),
		ConsumerName:    getEnv("JOBX_CONSUMER", hostname()),
	}
}
