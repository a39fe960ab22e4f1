package handlers

import (
	"context"
	"net/http"

	"tracker/internal/codec"
	"tracker/internal/domain"
	"tracker/internal/domain/models"
	"tracker/internal/http/dispatch"
	"tracker/internal/pagination"
	"tracker/internal/repositories"

	"github.com/gin-gonic/gin"
)

type taskQuery struct {
	Page        pagination.Args
	ProjectID   domain.Option[domain.PositiveInteger]
	IsCompleted domain.Option[bool]
}

var taskQueryCodec = codec.NewObject("TaskQuery",
	codec.Inline(pageArgsCodec(repositories.TaskSortable), func(q *taskQuery) *pagination.Args { return &q.Page }),
	codec.Prop("project_id", codec.Optional(codec.FromString(codec.PositiveInteger())), func(q *taskQuery) *domain.Option[domain.PositiveInteger] { return &q.ProjectID }),
	codec.Prop("is_completed", codec.Optional(codec.FromString(codec.Bool())), func(q *taskQuery) *domain.Option[bool] { return &q.IsCompleted }),
).Codec()

var taskConnectionCodec = pagination.ConnectionCodec(models.TaskCodec.Codec())

// ownProject fails with not_found unless userID owns projectID.
func (a *API) ownProject(ctx context.Context, userID int64, projectID domain.PositiveInteger) error {
	p, err := a.Projects.Find(ctx, userID, projectID.Int64())
	_, err = found(p, err, "project")
	return err
}

// GET /api/tasks
func (a *API) listTasks() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, taskQuery, None, pagination.Connection[models.Task]]{
		Name:   "tasks.list",
		Query:  taskQueryCodec,
		Output: taskConnectionCodec,
		Handler: func(ctx context.Context, req dispatch.Request[None, taskQuery, None]) (pagination.Connection[models.Task], error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return pagination.Connection[models.Task]{}, err
			}
			filter := repositories.TaskFilter{ProjectID: req.Query.ProjectID, IsCompleted: req.Query.IsCompleted}
			return a.Tasks.List(ctx, userID, filter, req.Query.Page)
		},
	})
}

// GET /api/tasks/:id
func (a *API) getTask() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, models.Task]{
		Name:   "tasks.get",
		Params: idParamsCodec,
		Output: models.TaskCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (models.Task, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Task{}, err
			}
			t, err := a.Tasks.Find(ctx, userID, req.Params.ID.Int64())
			return found(t, err, "task")
		},
	})
}

// POST /api/tasks
func (a *API) createTask() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, models.NewTask, models.Task]{
		Name:   "tasks.create",
		Body:   models.NewTaskCodec.Codec(),
		Output: models.TaskCodec.Codec(),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, models.NewTask]) (models.Task, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Task{}, err
			}
			created, err := a.insertTasks(ctx, userID, []models.NewTask{req.Body})
			if err != nil {
				return models.Task{}, err
			}
			return created[0], nil
		},
	})
}

// POST /api/tasks/batch takes one task or an array of them and inserts
// them in a single statement.
func (a *API) createTasks() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[None, None, []models.NewTask, []models.Task]{
		Name:   "tasks.batch",
		Body:   codec.OneOrMany(models.NewTaskCodec.Codec()),
		Output: codec.Array(models.TaskCodec.Codec()),
		Status: http.StatusCreated,
		Handler: func(ctx context.Context, req dispatch.Request[None, None, []models.NewTask]) ([]models.Task, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return nil, err
			}
			if len(req.Body) == 0 {
				return nil, domain.BadRequest("no tasks to create")
			}
			return a.insertTasks(ctx, userID, req.Body)
		},
	})
}

func (a *API) insertTasks(ctx context.Context, userID int64, tasks []models.NewTask) ([]models.Task, error) {
	checked := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		pid := t.ProjectID.Int64()
		if checked[pid] {
			continue
		}
		if err := a.ownProject(ctx, userID, t.ProjectID); err != nil {
			return nil, err
		}
		checked[pid] = true
	}
	ids, err := a.Tasks.Create(ctx, tasks...)
	if err != nil {
		return nil, err
	}
	out := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		t, err := a.Tasks.Find(ctx, userID, id)
		task, err := found(t, err, "task")
		if err != nil {
			return nil, err
		}
		out = append(out, task)
	}
	return out, nil
}

// PUT /api/tasks/:id
func (a *API) updateTask() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, codec.Partial[models.Task], models.Task]{
		Name:   "tasks.update",
		Params: idParamsCodec,
		Body:   models.TaskPatchCodec.PartialCodec(),
		Output: models.TaskCodec.Codec(),
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, codec.Partial[models.Task]]) (models.Task, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return models.Task{}, err
			}
			id := req.Params.ID.Int64()
			existing, err := a.Tasks.Find(ctx, userID, id)
			if _, err := found(existing, err, "task"); err != nil {
				return models.Task{}, err
			}
			if _, err := a.Tasks.Update(ctx, id, req.Body); err != nil {
				return models.Task{}, err
			}
			t, err := a.Tasks.Find(ctx, userID, id)
			return found(t, err, "task")
		},
	})
}

// DELETE /api/tasks/:id
func (a *API) deleteTask() gin.HandlerFunc {
	return dispatch.Handle(a.Dispatcher, dispatch.Route[idParams, None, None, None]{
		Name:   "tasks.delete",
		Params: idParamsCodec,
		Status: http.StatusNoContent,
		Handler: func(ctx context.Context, req dispatch.Request[idParams, None, None]) (None, error) {
			userID, err := currentUser(req.Auth)
			if err != nil {
				return None{}, err
			}
			id := req.Params.ID.Int64()
			existing, err := a.Tasks.Find(ctx, userID, id)
			if _, err := found(existing, err, "task"); err != nil {
				return None{}, err
			}
			n, err := a.Tasks.Delete(ctx, id)
			return removed(n, err, "task")
		},
	})
}
