package models

type TodoList struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedBy  string     `json:"created_by"`
	SharedWith StringList `json:"shared_with"`
	CreatedAt  int64      `json:"created_at"`
	UpdatedAt  int64      `json:"updated_at"`
}

type Todo struct {
	ID           string     `json:"id"`
	ListID       *string    `json:"list_id"`
	Title        string     `json:"title"`
	Notes        *string    `json:"notes"`
	Done         bool       `json:"done"`
	DueAt        *int64     `json:"due_at"`
	RemindAt     *int64     `json:"remind_at"`
	RemindSentAt *int64     `json:"remind_sent_at"`
	AssignedTo   *string    `json:"assigned_to"`
	SharedWith   StringList `json:"shared_with"`
	CreatedBy    string     `json:"created_by"`
	CreatedAt    int64      `json:"created_at"`
	UpdatedAt    int64      `json:"updated_at"`
	Version      int64      `json:"version"`
	DeletedAt    *int64     `json:"deleted_at,omitempty"`
}

type CreateListRequest struct {
	Name       string   `json:"name" validate:"required,min=1,max=255"`
	SharedWith []string `json:"shared_with"`
}

type CreateTodoRequest struct {
	Title      string   `json:"title" validate:"required,min=1"`
	Notes      *string  `json:"notes"`
	ListID     *string  `json:"list_id"`
	DueAt      *int64   `json:"due_at"`
	RemindAt   *int64   `json:"remind_at"`
	AssignedTo *string  `json:"assigned_to"`
	SharedWith []string `json:"shared_with"`
}

// PatchTodoRequest carries a partial field set; Optional separates "absent"
// from "set to null" so nullable columns can be cleared.
type PatchTodoRequest struct {
	IfVersion  *int64             `json:"if_version"`
	Title      Optional[string]   `json:"title"`
	Notes      Optional[string]   `json:"notes"`
	Done       Optional[bool]     `json:"done"`
	DueAt      Optional[int64]    `json:"due_at"`
	RemindAt   Optional[int64]    `json:"remind_at"`
	AssignedTo Optional[string]   `json:"assigned_to"`
	SharedWith Optional[[]string] `json:"shared_with"`
}

func (r *PatchTodoRequest) Empty() bool {
	return !r.Title.Set && !r.Notes.Set && !r.Done.Set && !r.DueAt.Set &&
		!r.RemindAt.Set && !r.AssignedTo.Set && !r.SharedWith.Set
}
