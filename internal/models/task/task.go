package task

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	UUID        uuid.UUID `json:"id" db:"uuid"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

type Status string

const StatusPending Status = "Pending"
const StatusInProgress Status = "In Progress"
const StatusCompleted Status = "Completed"

// FilterAll в query-параметре status означает отсутствие фильтра
const FilterAll = "All"

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

// ParseFilter переводит значение query-параметра в статус для хранилища.
// Пустая строка и "All" дают пустой статус (без фильтра).
func ParseFilter(raw string) Status {
	if raw == "" || raw == FilterAll {
		return ""
	}
	return Status(raw)
}

// Precision точность хранения временных меток во всех хранилищах
const Precision = time.Millisecond

func Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}

// NextUpdate возвращает момент обновления, строго больший предыдущего
// updatedAt и createdAt.
func NextUpdate(t *Task, now time.Time) time.Time {
	now = now.UTC().Truncate(Precision)
	floor := t.UpdatedAt
	if t.CreatedAt.After(floor) {
		floor = t.CreatedAt
	}
	if !now.After(floor) {
		now = floor.Add(Precision)
	}
	return now
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
