package queue

import (
	"encoding/json"

	"github.com/postdeck-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPostPublish 定时发布任务
	TaskPostPublish = constants.TaskPostPublish
)

// PostPublishPayload 定时发布任务载荷
type PostPublishPayload struct {
	PostID uint `json:"post_id"`
}

// NewPostPublishTask 创建定时发布任务
func NewPostPublishTask(payload PostPublishPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPostPublish, body), nil
}
