package repositories

import "tracker/internal/store"

// Column allow-lists. Every identifier a statement may name is listed here.
var (
	UsersTable = store.Table{Name: "users", Columns: []string{
		"id", "email", "password", "name", "created_at",
	}}
	TaxRatesTable = store.Table{Name: "tax_rates", Columns: []string{
		"id", "user_id", "label", "value",
	}}
	ClientsTable = store.Table{Name: "clients", Columns: []string{
		"id", "user_id", "type", "first_name", "last_name", "fiscal_code",
		"business_name", "vat_number", "country_code", "email", "created_at",
	}}
	ProjectsTable = store.Table{Name: "projects", Columns: []string{
		"id", "client_id", "name", "description", "hourly_rate", "budget", "created_at",
	}}
	TasksTable = store.Table{Name: "tasks", Columns: []string{
		"id", "project_id", "name", "description", "expected_hours", "is_completed", "created_at",
	}}
	SessionsTable = store.Table{Name: "sessions", Columns: []string{
		"id", "task_id", "start_time", "end_time",
	}}
)

// Ownership runs sessions -> tasks -> projects -> clients -> users; these
// scope a statement to the rows one user owns.

func ownedClients(userID int64) store.Build {
	return func(q *store.Select) { q.Eq("user_id", userID) }
}

func ownedProjects(userID int64) store.Build {
	return func(q *store.Select) {
		q.Join("JOIN clients ON clients.id = projects.client_id").
			Where("clients.user_id = ?", userID)
	}
}

func ownedTasks(userID int64) store.Build {
	return func(q *store.Select) {
		q.Join("JOIN projects ON projects.id = tasks.project_id").
			Join("JOIN clients ON clients.id = projects.client_id").
			Where("clients.user_id = ?", userID)
	}
}

func ownedSessions(userID int64) store.Build {
	return func(q *store.Select) {
		q.Join("JOIN tasks ON tasks.id = sessions.task_id").
			Join("JOIN projects ON projects.id = tasks.project_id").
			Join("JOIN clients ON clients.id = projects.client_id").
			Where("clients.user_id = ?", userID)
	}
}

// byID scopes to one row of t on top of an ownership scope.
func byID(t store.Table, id int64, scope store.Build) store.Build {
	return func(q *store.Select) {
		scope(q)
		q.Where(t.Column("id")+" = ?", id)
	}
}

func scoped(t store.Table, scope store.Build) *store.Select {
	q := store.From(t)
	scope(q)
	return q
}

func firstID(ids []int64) int64 {
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}
