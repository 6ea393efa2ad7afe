package jobx

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/logx"
)

// HandlerFunc processes one message. A returned error is logged at error level
// and the message is still acknowledged; jobx never redelivers on its own.
type HandlerFunc func(ctx context.Context, msg *Message) error

// TaskFunc is a periodic task run by the worker process alongside consumers.
type TaskFunc func(ctx context.Context) error

// Enqueuer pushes payloads onto a named queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, queue, payload string) error
}

// Queue is the backend contract: a reliable list queue where every consumer
// moves messages into its own in-flight list and acknowledges them when done.
type Queue interface {
	Push(ctx context.Context, queue, payload string) error

	// Pop blocks up to timeout; it returns nil, nil when nothing arrived.
	Pop(ctx context.Context, queue, consumer string, timeout time.Duration) (*Message, error)
	Ack(ctx context.Context, msg *Message) error

	// Recover moves messages left in consumer's in-flight list back onto the queue.
	Recover(ctx context.Context, queue, consumer string) (int, error)

	Len(ctx context.Context, queue string) (int64, error)
}

type periodicTask struct {
	name     string
	interval time.Duration
	fn       TaskFunc
}

// Client is the main entry point for enqueuing and processing jobs.
type Client struct {
	queue    Queue
	opts     WorkerOptions
	handlers map[string]HandlerFunc
	tasks    []periodicTask
	mu       sync.RWMutex
	running  bool
}

// NewClient creates a new job processing client.
func NewClient(queue Queue, options ...WorkerOption) *Client {
	opts := defaultWorkerOptions()
	for _, o := range options {
		o(&opts)
	}
	return &Client{
		queue:    queue,
		opts:     opts,
		handlers: make(map[string]HandlerFunc),
	}
}

// Register adds the handler for a queue.
func (c *Client) Register(queue string, handler HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[queue] = handler
}

// Schedule adds a task run every interval while Start is running.
func (c *Client) Schedule(name string, interval time.Duration, fn TaskFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, periodicTask{name: name, interval: interval, fn: fn})
}

// Enqueue pushes a payload for processing.
func (c *Client) Enqueue(ctx context.Context, queue, payload string) error {
	if queue == "" || payload == "" {
		return jobxErrors.New(ErrInvalidJob).
			WithDetail("queue", queue)
	}
	if err := c.queue.Push(ctx, queue, payload); err != nil {
		return jobxErrors.NewWithCause(ErrEnqueueFailed, err).WithDetail("queue", queue)
	}
	return nil
}

// Depth returns the number of messages waiting on queue.
func (c *Client) Depth(ctx context.Context, queue string) (int64, error) {
	return c.queue.Len(ctx, queue)
}

// Start begins processing jobs. It blocks until ctx is cancelled.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return jobxErrors.New(ErrAlreadyRunning)
	}
	c.running = true
	tasks := append([]periodicTask(nil), c.tasks...)
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	for _, q := range c.opts.Queues {
		if _, ok := c.handler(q); !ok {
			return jobxErrors.New(ErrNoHandler).WithDetail("queue", q)
		}
	}

	logx.Infof("jobx: starting %d consumers per queue on %v", c.opts.Concurrency, c.opts.Queues)

	// Consumers are not running yet, so whatever sits in their in-flight
	// lists was abandoned by a previous process with the same name.
	for _, q := range c.opts.Queues {
		for i := range c.opts.Concurrency {
			consumer := c.consumerName(i)
			n, err := c.queue.Recover(ctx, q, consumer)
			if err != nil {
				logx.WithError(err).Warnf("jobx: failed to recover in-flight messages for %s", consumer)
				continue
			}
			if n > 0 {
				logx.WithFields(logx.Fields{"queue": q, "consumer": consumer, "count": n}).
					Warn("jobx: requeued abandoned in-flight messages")
			}
		}
	}

	var wg sync.WaitGroup

	for _, t := range tasks {
		wg.Add(1)
		go func(t periodicTask) {
			defer wg.Done()
			c.schedulerLoop(ctx, t)
		}(t)
	}

	for _, q := range c.opts.Queues {
		for i := range c.opts.Concurrency {
			wg.Add(1)
			go func(queue, consumer string) {
				defer wg.Done()
				c.workerLoop(ctx, queue, consumer)
			}(q, c.consumerName(i))
		}
	}

	<-ctx.Done()
	logx.Info("jobx: shutting down workers...")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("jobx: all workers stopped")
	case <-time.After(c.opts.ShutdownTimeout):
		logx.Warn("jobx: shutdown timed out, in-flight messages will be recovered on next start")
	}

	return nil
}

func (c *Client) consumerName(i int) string {
	return fmt.Sprintf("%s-%d", c.opts.ConsumerName, i)
}

func (c *Client) handler(queue string) (HandlerFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[queue]
	return h, ok
}

func (c *Client) schedulerLoop(ctx context.Context, t periodicTask) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.fn(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logx.WithError(err).WithField("task", t.name).Warn("jobx: periodic task failed")
			}
		}
	}
}

func (c *Client) workerLoop(ctx context.Context, queue, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := c.queue.Pop(ctx, queue, consumer, c.opts.DequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.WithError(err).Warnf("jobx: %s dequeue error", consumer)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.opts.PollInterval):
			}
			continue
		}
		if msg == nil {
			continue
		}

		// The message is finished even if shutdown starts mid-handler.
		c.processJob(context.WithoutCancel(ctx), msg)
	}
}

func (c *Client) processJob(ctx context.Context, msg *Message) {
	handler, _ := c.handler(msg.Queue)

	log := logx.WithFields(logx.Fields{
		"queue":    msg.Queue,
		"consumer": msg.Consumer,
		"payload":  msg.Payload,
	})

	if err := c.safeHandle(ctx, handler, msg); err != nil {
		log.WithError(err).Error("jobx: handler failed, message dropped")
	}

	if err := c.queue.Ack(ctx, msg); err != nil {
		log.WithError(err).Error("jobx: failed to acknowledge message")
	}
}

func (c *Client) safeHandle(ctx context.Context, handler HandlerFunc, msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = jobxErrors.New(ErrHandlerPanic).WithDetail("panic", fmt.Sprint(r))
		}
	}()
	return handler(ctx, msg)
}
