package services

import (
	"context"
	"strconv"
	"time"

	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/repositories"
	"tracker/internal/utils"

	"github.com/hashicorp/go-hclog"
)

// SessionService starts and stops work sessions. A task has at most one
// open session at a time.
type SessionService struct {
	Sessions repositories.SessionRepository
	Tasks    repositories.TaskRepository
	Logger   hclog.Logger
	Now      func() time.Time
}

func (s SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s SessionService) Start(ctx context.Context, requestID string, userID int64, in models.NewSession) (models.Session, error) {
	taskID := in.TaskID.Int64()
	task, err := s.Tasks.Find(ctx, userID, taskID)
	if err != nil {
		return models.Session{}, err
	}
	if task.IsNone() {
		return models.Session{}, domain.NotFound("task")
	}
	open, err := s.Sessions.FindOpen(ctx, taskID)
	if err != nil {
		return models.Session{}, err
	}
	if len(open) > 0 {
		return models.Session{}, domain.Conflict("task already has an open session").
			WithExtra("session_id", open[0].ID.Int64())
	}
	if in.StartTime.IsNone() {
		in.StartTime = domain.Some(s.now())
	}
	id, err := s.Sessions.Create(ctx, in)
	if err != nil {
		return models.Session{}, err
	}
	utils.LogEvent(s.Logger, requestID, "session", "start", "task_id="+strconv.FormatInt(taskID, 10))
	return s.find(ctx, userID, id)
}

// Stop closes an open session, at the given moment or now.
func (s SessionService) Stop(ctx context.Context, requestID string, userID, id int64, at domain.Option[time.Time]) (models.Session, error) {
	session, err := s.find(ctx, userID, id)
	if err != nil {
		return models.Session{}, err
	}
	if !session.IsOpen() {
		return models.Session{}, domain.Conflict("session already stopped")
	}
	end := at.OrElse(s.now())
	if end.Before(session.StartTime) {
		return models.Session{}, domain.BadRequest("end_time is before start_time")
	}
	if _, err := s.Sessions.Stop(ctx, id, end); err != nil {
		return models.Session{}, err
	}
	utils.LogEvent(s.Logger, requestID, "session", "stop", "session_id="+strconv.FormatInt(id, 10))
	return s.find(ctx, userID, id)
}

func (s SessionService) Delete(ctx context.Context, requestID string, userID, id int64) error {
	if _, err := s.find(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.Sessions.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.Logger, requestID, "session", "delete", "session_id="+strconv.FormatInt(id, 10))
	return nil
}

func (s SessionService) find(ctx context.Context, userID, id int64) (models.Session, error) {
	found, err := s.Sessions.Find(ctx, userID, id)
	if err != nil {
		return models.Session{}, err
	}
	session, ok := found.Get()
	if !ok {
		return models.Session{}, domain.NotFound("session")
	}
	return session, nil
}
