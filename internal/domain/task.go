package domain

import "time"

// TaskPriority представляет приоритет задачи
type TaskPriority string

// Приоритеты задач
const (
	PriorityLow     TaskPriority = "LOW"
	PriorityMedium  TaskPriority = "MEDIUM"
	PriorityHigh    TaskPriority = "HIGH"
	PriorityHighest TaskPriority = "HIGHEST"
)

// priorityRank задает порядок приоритетов явно, независимо от порядка объявления констант
var priorityRank = map[TaskPriority]int{
	PriorityLow:     0,
	PriorityMedium:  1,
	PriorityHigh:    2,
	PriorityHighest: 3,
}

// Rank возвращает место приоритета в порядке LOW < MEDIUM < HIGH < HIGHEST
func (p TaskPriority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// Valid проверяет, что приоритет известен
func (p TaskPriority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// TaskProgress представляет состояние выполнения задачи
type TaskProgress string

// Состояния задачи
const (
	ProgressTodo       TaskProgress = "TODO"
	ProgressPlanning   TaskProgress = "PLANNING"
	ProgressInProgress TaskProgress = "IN_PROGRESS"
	ProgressFinished   TaskProgress = "FINISHED"
	ProgressOverdue    TaskProgress = "OVERDUE"
	ProgressClosed     TaskProgress = "CLOSED"
)

// progressRank - порядок состояний для сортировки
var progressRank = map[TaskProgress]int{
	ProgressTodo:       0,
	ProgressPlanning:   1,
	ProgressInProgress: 2,
	ProgressFinished:   3,
	ProgressOverdue:    4,
	ProgressClosed:     5,
}

// Rank возвращает место состояния в порядке TODO < ... < CLOSED
func (p TaskProgress) Rank() int {
	if r, ok := progressRank[p]; ok {
		return r
	}
	return -1
}

// Valid проверяет, что состояние известно
func (p TaskProgress) Valid() bool {
	_, ok := progressRank[p]
	return ok
}

// CanBecomeOverdue возвращает false для FINISHED, OVERDUE и CLOSED
func (p TaskProgress) CanBecomeOverdue() bool {
	switch p {
	case ProgressFinished, ProgressOverdue, ProgressClosed:
		return false
	}
	return true
}

// Task представляет задачу пользователя.
// TeamID заполнен, если задача создана через команду.
type Task struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
	Priority    TaskPriority `json:"priority"`
	Progress    TaskProgress `json:"progress"`
	OwnerEmail  string       `json:"owner"`
	TeamID      *int64       `json:"team_id,omitempty"`
	Version     int64        `json:"version"`
}

// IsDue возвращает true, если срок задачи наступил к моменту now
func (t *Task) IsDue(now time.Time) bool {
	return !t.To.After(now)
}

// Clone возвращает независимую копию задачи
func (t *Task) Clone() *Task {
	c := *t
	if t.TeamID != nil {
		id := *t.TeamID
		c.TeamID = &id
	}
	return &c
}

// TaskPatch - изменяемые поля задачи при редактировании
type TaskPatch struct {
	Name        string
	Description string
	From        time.Time
	To          time.Time
	Priority    TaskPriority
	Progress    TaskProgress
}

// Validate проверяет поля правки
func (p TaskPatch) Validate() error {
	if !p.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !p.Progress.Valid() {
		return ErrInvalidProgress
	}
	if p.To.Before(p.From) {
		return ErrInvalidTimeWindow
	}
	return nil
}

// Apply перезаписывает поля задачи значениями из правки
func (p TaskPatch) Apply(t *Task) {
	t.Name = p.Name
	t.Description = p.Description
	t.From = p.From
	t.To = p.To
	t.Priority = p.Priority
	t.Progress = p.Progress
}
