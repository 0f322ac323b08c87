package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/studycards/backend/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReconcileDayTask(t *testing.T) {
	date := calendar.New(2026, time.October, 13)

	task, opts, err := NewReconcileDayTask(date)

	require.NoError(t, err)
	assert.Equal(t, TypeReconcileDay, task.Type())
	assert.JSONEq(t, `{"date":"2026-10-13"}`, string(task.Payload()))
	assert.Len(t, opts, 3)
	assert.Equal(t, "reconcile:2026-10-13", ReconcileTaskID(date))

	payload, err := ParseReconcileDay(task)
	require.NoError(t, err)
	assert.Equal(t, date, payload.Date)
}

func TestParseReconcileDay_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: "2026-10-13"},
		{name: "missing date", payload: `{}`},
		{name: "invalid date", payload: `{"date":"13.10.2026"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReconcileDay(asynq.NewTask(TypeReconcileDay, []byte(tt.payload)))
			assert.Error(t, err)
		})
	}
}
