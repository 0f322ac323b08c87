// Package tasks defines the background tasks exchanged between the scheduler and the worker
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/studycards/backend/internal/calendar"
)

// TypeReconcileDay is the asynq task type that rebuilds one day of daily progress
const TypeReconcileDay = "progress:reconcile_day"

// QueueMaintenance is the queue background maintenance tasks run on
const QueueMaintenance = "maintenance"

// ReconcileDayPayload is the payload of a TypeReconcileDay task
type ReconcileDayPayload struct {
	Date calendar.Date `json:"date"`
}

// NewReconcileDayTask creates the task for date. The task id is derived from the date so
// a second enqueue for the same day is rejected by asynq.
func NewReconcileDayTask(date calendar.Date) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(ReconcileDayPayload{Date: date})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode reconcile payload: %w", err)
	}

	opts := []asynq.Option{
		asynq.Queue(QueueMaintenance),
		asynq.TaskID(ReconcileTaskID(date)),
		asynq.MaxRetry(5),
	}
	return asynq.NewTask(TypeReconcileDay, payload), opts, nil
}

// ReconcileTaskID returns the unique task id for the day
func ReconcileTaskID(date calendar.Date) string {
	return "reconcile:" + date.String()
}

// ParseReconcileDay decodes the payload of a TypeReconcileDay task
func ParseReconcileDay(t *asynq.Task) (ReconcileDayPayload, error) {
	var payload ReconcileDayPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("failed to decode reconcile payload: %w", err)
	}
	if payload.Date.IsZero() {
		return payload, fmt.Errorf("reconcile payload has no date")
	}
	return payload, nil
}
