package models

import (
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
)

// Task is a unit of work inside a project; sessions log time against it.
type Task struct {
	ID            domain.PositiveInteger
	ProjectID     domain.PositiveInteger
	Name          domain.NonEmptyString
	Description   domain.Option[string]
	ExpectedHours domain.Option[domain.NonNegativeNumber]
	IsCompleted   bool
	CreatedAt     time.Time
}

// NewTask leaves is_completed to the store default.
type NewTask struct {
	ProjectID     domain.PositiveInteger
	Name          domain.NonEmptyString
	Description   domain.Option[string]
	ExpectedHours domain.Option[domain.NonNegativeNumber]
}

var TaskCodec = codec.NewObject("Task",
	codec.Prop("id", codec.PositiveInteger(), func(t *Task) *domain.PositiveInteger { return &t.ID }),
	codec.Prop("project_id", codec.PositiveInteger(), func(t *Task) *domain.PositiveInteger { return &t.ProjectID }),
	codec.Prop("name", codec.NonEmptyString(), func(t *Task) *domain.NonEmptyString { return &t.Name }),
	codec.Prop("description", codec.Optional(codec.String()), func(t *Task) *domain.Option[string] { return &t.Description }),
	codec.Prop("expected_hours", codec.Optional(codec.NonNegativeNumber()), func(t *Task) *domain.Option[domain.NonNegativeNumber] { return &t.ExpectedHours }),
	codec.Prop("is_completed", codec.Bool(), func(t *Task) *bool { return &t.IsCompleted }),
	codec.Prop("created_at", codec.Time(), func(t *Task) *time.Time { return &t.CreatedAt }),
)

var TaskPatchCodec = codec.NewObject("TaskPatch",
	codec.Prop("name", codec.NonEmptyString(), func(t *Task) *domain.NonEmptyString { return &t.Name }),
	codec.Prop("description", codec.Optional(codec.String()), func(t *Task) *domain.Option[string] { return &t.Description }),
	codec.Prop("expected_hours", codec.Optional(codec.NonNegativeNumber()), func(t *Task) *domain.Option[domain.NonNegativeNumber] { return &t.ExpectedHours }),
	codec.Prop("is_completed", codec.Bool(), func(t *Task) *bool { return &t.IsCompleted }),
)

var NewTaskCodec = codec.NewObject("NewTask",
	codec.Prop("project_id", codec.PositiveInteger(), func(t *NewTask) *domain.PositiveInteger { return &t.ProjectID }),
	codec.Prop("name", codec.NonEmptyString(), func(t *NewTask) *domain.NonEmptyString { return &t.Name }),
	codec.Prop("description", codec.Optional(codec.String()), func(t *NewTask) *domain.Option[string] { return &t.Description }),
	codec.Prop("expected_hours", codec.Optional(codec.NonNegativeNumber()), func(t *NewTask) *domain.Option[domain.NonNegativeNumber] { return &t.ExpectedHours }),
)
