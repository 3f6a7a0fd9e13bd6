package service

import (
	"cmp"
	"slices"

	"github.com/aidar/taskmanager/internal/domain"
)

// CompareTasks orders tasks for display: priority descending, then end time
// descending, then start time descending, then progress ascending.
func CompareTasks(a, b *domain.Task) int {
	if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
		return c
	}
	if c := b.To.Compare(a.To); c != 0 {
		return c
	}
	if c := b.From.Compare(a.From); c != 0 {
		return c
	}
	return cmp.Compare(a.Progress.Rank(), b.Progress.Rank())
}

// SortTasks sorts in place. Tasks with equal keys keep their input order.
func SortTasks(tasks []*domain.Task) {
	slices.SortStableFunc(tasks, CompareTasks)
}
