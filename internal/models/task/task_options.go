package task

// Patch частичное обновление задачи: nil означает "поле не передано"
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
}

type TaskOption func(*Patch)

func WithTitle(title string) TaskOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) TaskOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithStatus(status Status) TaskOption {
	if status == "" {
		return nil
	}
	return func(p *Patch) {
		p.Status = &status
	}
}

func NewPatch(options ...TaskOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

// Apply переносит переданные поля в задачу, временные метки не трогает
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}
