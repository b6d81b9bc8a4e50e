package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"backend/internal/config"
	"backend/internal/worker/tasks"
)

// Client enqueues background work onto the shared Redis-backed queue.
type Client interface {
	EnqueueSendInvoice(payload tasks.SendInvoicePayload) error
	EnqueueLeadFollowUp(payload tasks.LeadFollowUpPayload, delay time.Duration) error
	Close() error
}

type asynqClient struct {
	client *asynq.Client
}

// NewClient creates a queue client on the shared Redis instance.
func NewClient(cfg config.RedisConfig) Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &asynqClient{client: client}
}

func (c *asynqClient) EnqueueSendInvoice(payload tasks.SendInvoicePayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(tasks.TypeSendInvoice, data)
	_, err = c.client.Enqueue(task,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("billing"),
	)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (c *asynqClient) EnqueueLeadFollowUp(payload tasks.LeadFollowUpPayload, delay time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(tasks.TypeLeadFollowUp, data)
	_, err = c.client.Enqueue(task,
		asynq.MaxRetry(3),
		asynq.ProcessIn(delay),
		asynq.Queue("default"),
	)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (c *asynqClient) Close() error {
	return c.client.Close()
}
