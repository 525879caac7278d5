package tasks

import (
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeProcessFeed TaskType = "process_feed"
)

type TaskInterface interface {
	GetID() string
	GetType() TaskType
	GetSourceName() string
	Start()
	GetDuration() time.Duration
}

type Task struct {
	ID         string
	Type       TaskType
	SourceName string
	StartedAt  *time.Time
}

func (t *Task) GetID() string {
	return t.ID
}

func (t *Task) GetType() TaskType {
	return t.Type
}

func (t *Task) GetSourceName() string {
	return t.SourceName
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}

func NewTask(taskType TaskType, sourceName string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		SourceName: sourceName,
	}
}
