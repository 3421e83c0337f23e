package worker

import (
	"context"
	"encoding/json"

	"github.com/postdeck-next/internal/logger"
	"github.com/postdeck-next/internal/provider"
	"github.com/postdeck-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPostPublish, c.handlePostPublish)
}

func (c *Consumer) handlePostPublish(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_post_publish_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PostPublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_post_publish_unmarshal_failed", "error", err)
		return err
	}
	if payload.PostID == 0 {
		logger.Debugw("worker_post_publish_skip_invalid_payload", "post_id", payload.PostID)
		return nil
	}
	if c.DispatchService == nil {
		logger.Warnw("worker_post_publish_skip_dispatch_nil", "post_id", payload.PostID)
		return nil
	}
	if err := c.DispatchService.ExecutePublish(ctx, payload.PostID); err != nil {
		logger.Warnw("worker_post_publish_failed", "post_id", payload.PostID, "error", err)
		return err
	}
	return nil
}
