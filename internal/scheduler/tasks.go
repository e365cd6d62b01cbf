package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const TaskFunnelRefresh = "reports.funnel.refresh"

type FunnelRefreshPayload struct {
	MonthKey string `json:"monthKey"`
	Source   string `json:"source"`
	Rows     int    `json:"rows"`
}

func NewFunnelRefreshTask(payload FunnelRefreshPayload) (*asynq.Task, error) {
	if payload.MonthKey == "" {
		return nil, fmt.Errorf("funnel refresh: month key is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFunnelRefresh, data), nil
}

func ParseFunnelRefreshPayload(task *asynq.Task) (FunnelRefreshPayload, error) {
	var payload FunnelRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FunnelRefreshPayload{}, err
	}
	if payload.MonthKey == "" {
		return FunnelRefreshPayload{}, fmt.Errorf("funnel refresh: month key is required")
	}
	return payload, nil
}

func funnelRefreshTaskID(monthKey string) string {
	return TaskFunnelRefresh + ":" + monthKey
}
