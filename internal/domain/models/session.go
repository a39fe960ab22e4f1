package models

import (
	"time"

	"tracker/internal/codec"
	"tracker/internal/domain"
)

// Session is a span of time worked on a task. An open session has no end.
type Session struct {
	ID        domain.PositiveInteger
	TaskID    domain.PositiveInteger
	StartTime time.Time
	EndTime   domain.Option[time.Time]
}

func (s Session) IsOpen() bool { return s.EndTime.IsNone() }

// Duration is the worked time, measured up to now for an open session.
func (s Session) Duration(now time.Time) time.Duration {
	return s.EndTime.OrElse(now).Sub(s.StartTime)
}

// NewSession starts now unless a start time is given.
type NewSession struct {
	TaskID    domain.PositiveInteger
	StartTime domain.Option[time.Time]
}

var SessionCodec = codec.NewObject("Session",
	codec.Prop("id", codec.PositiveInteger(), func(s *Session) *domain.PositiveInteger { return &s.ID }),
	codec.Prop("task_id", codec.PositiveInteger(), func(s *Session) *domain.PositiveInteger { return &s.TaskID }),
	codec.Prop("start_time", codec.Time(), func(s *Session) *time.Time { return &s.StartTime }),
	codec.Prop("end_time", codec.Optional(codec.Time()), func(s *Session) *domain.Option[time.Time] { return &s.EndTime }),
)

// SessionEndCodec writes only the end of a session.
var SessionEndCodec = codec.NewObject("SessionEnd",
	codec.Prop("end_time", codec.Optional(codec.Time()), func(s *Session) *domain.Option[time.Time] { return &s.EndTime }),
)

var NewSessionCodec = codec.NewObject("NewSession",
	codec.Prop("task_id", codec.PositiveInteger(), func(s *NewSession) *domain.PositiveInteger { return &s.TaskID }),
	codec.Prop("start_time", codec.Defaulted(codec.Time()), func(s *NewSession) *domain.Option[time.Time] { return &s.StartTime }),
)
