// Package scheduler runs background jobs over asynq. The only recurring job
// sweeps conversations whose customers went silent and marks them abandoned.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskConversationSweep = "conversations.sweep"

type ConversationSweepPayload struct {
	RequestedBy string `json:"requestedBy,omitempty"`
}

func NewConversationSweepTask(payload ConversationSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConversationSweep, data), nil
}

func ParseConversationSweepPayload(task *asynq.Task) (ConversationSweepPayload, error) {
	var payload ConversationSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ConversationSweepPayload{}, err
	}
	return payload, nil
}
