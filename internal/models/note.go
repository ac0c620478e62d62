package models

type NoteGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CreatedBy  string     `json:"created_by"`
	SharedWith StringList `json:"shared_with"`
	CreatedAt  int64      `json:"created_at"`
	UpdatedAt  int64      `json:"updated_at"`
}

type Note struct {
	ID         string     `json:"id"`
	GroupID    *string    `json:"group_id"`
	Title      string     `json:"title"`
	BodyMD     string     `json:"body_md"`
	SharedWith StringList `json:"shared_with"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  int64      `json:"created_at"`
	UpdatedAt  int64      `json:"updated_at"`
	Version    int64      `json:"version"`
	DeletedAt  *int64     `json:"deleted_at,omitempty"`
}

// NoteShare grants anonymous access to exactly one note. An expired share is
// treated as nonexistent.
type NoteShare struct {
	Token     string `json:"token"`
	NoteID    string `json:"note_id"`
	CreatedBy string `json:"created_by"`
	CanEdit   bool   `json:"can_edit"`
	ExpiresAt *int64 `json:"expires_at"`
	CreatedAt int64  `json:"created_at"`
}

type CreateGroupRequest struct {
	Name       string   `json:"name" validate:"required,min=1,max=255"`
	SharedWith []string `json:"shared_with"`
}

type PatchGroupRequest struct {
	Name       Optional[string]   `json:"name"`
	SharedWith Optional[[]string] `json:"shared_with"`
}

func (r *PatchGroupRequest) Empty() bool {
	return !r.Name.Set && !r.SharedWith.Set
}

type CreateNoteRequest struct {
	Title      string   `json:"title" validate:"required,min=1"`
	BodyMD     *string  `json:"body_md"`
	GroupID    *string  `json:"group_id"`
	SharedWith []string `json:"shared_with"`
}

type PatchNoteRequest struct {
	IfVersion  *int64             `json:"if_version"`
	Title      Optional[string]   `json:"title"`
	BodyMD     Optional[string]   `json:"body_md"`
	GroupID    Optional[string]   `json:"group_id"`
	SharedWith Optional[[]string] `json:"shared_with"`
}

func (r *PatchNoteRequest) Empty() bool {
	return !r.Title.Set && !r.BodyMD.Set && !r.GroupID.Set && !r.SharedWith.Set
}

type ShareNoteRequest struct {
	CanEdit          *bool  `json:"can_edit"`
	ExpiresInSeconds *int64 `json:"expires_in_seconds" validate:"omitempty,gt=0"`
}
