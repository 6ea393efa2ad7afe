package jobx

import "time"

// WorkerOptions configures the job processing client.
type WorkerOptions struct {
	Queues          []string
	Concurrency     int
	PollInterval    time.Duration
	ShutdownTimeout time.Duration
	DequeueTimeout  time.Duration
	ConsumerName    string
}

func defaultWorkerOptions() WorkerOptions {
	return WorkerOptions{
		Queues:          []string{"default"},
		Concurrency:     1,
		PollInterval:    time.Second,
		ShutdownTimeout: 30 * time.Second,
		DequeueTimeout:  5 * time.Second,
		ConsumerName:    "worker",
	}
}

// WorkerOption is a functional option for configuring the client.
type WorkerOption func(*WorkerOptions)

// WithQueues sets the queues to process.
func WithQueues(queues ...string) WorkerOption {
	return func(o *WorkerOptions) {
		if len(queues) > 0 {
			o.Queues = queues
		}
	}
}

// WithConcurrency sets the number of consumer goroutines.
func WithConcurrency(n int) WorkerOption {
	return func(o *WorkerOptions) {
		if n > 0 {
			o.Concurrency = n
		}
	}
}

// WithPollInterval sets the back-off after a failed dequeue.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) {
		o.PollInterval = d
	}
}

// WithShutdownTimeout sets the maximum time to wait for workers to finish on shutdown.
func WithShutdownTimeout(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) {
		o.ShutdownTimeout = d
	}
}

// WithDequeueTimeout sets the timeout passed to the blocking dequeue call.
func WithDequeueTimeout(d time.Duration) WorkerOption {
	return func(o *WorkerOptions) {
		o.DequeueTimeout = d
	}
}

// WithConsumerName sets the base name for this process's consumers.
// Consumer i is named "<name>-<i>" and owns its own in-flight list.
func WithConsumerName(name string) WorkerOption {
	return func(o *WorkerOptions) {
		if name != "" {
			o.ConsumerName = name
		}
	}
}
