package services

import (
	"sort"
	"strings"
	"time"

	"taskboard/internal/domain"
)

// searchServiceImpl implements the SearchService interface
type searchServiceImpl struct{}

// NewSearchService creates a new SearchService instance
func NewSearchService() SearchService {
	return &searchServiceImpl{}
}

// matchesTextFilter checks title and description case-insensitively
func (s *searchServiceImpl) matchesTextFilter(task *domain.Task, textFilter string) bool {
	if textFilter == "" {
		return true
	}
	needle := strings.ToLower(textFilter)
	if strings.Contains(strings.ToLower(task.Title), needle) {
		return true
	}
	return task.Description != nil && strings.Contains(strings.ToLower(*task.Description), needle)
}

func isOverdue(task *domain.Task, at time.Time) bool {
	return task.Status != domain.StatusDone && task.DueAt != nil && task.DueAt.Before(at)
}

// SearchTasks returns the tasks matching every set criterion, in input order
func (s *searchServiceImpl) SearchTasks(tasks []*domain.Task, criteria SearchCriteria) []*domain.Task {
	result := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if criteria.Status != nil && task.Status != *criteria.Status {
			continue
		}
		if !s.matchesTextFilter(task, criteria.TextFilter) {
			continue
		}
		if criteria.OverdueAt != nil && !isOverdue(task, *criteria.OverdueAt) {
			continue
		}
		result = append(result, task)
	}
	return result
}

// SortTasks returns a sorted copy of tasks. Ties keep input order.
func (s *searchServiceImpl) SortTasks(tasks []*domain.Task, order SortOrder) []*domain.Task {
	sorted := make([]*domain.Task, len(tasks))
	copy(sorted, tasks)

	switch order {
	case SortByPriority:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Priority > sorted[j].Priority
		})
	case SortByDue:
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i].DueAt, sorted[j].DueAt
			if a == nil || b == nil {
				return a != nil && b == nil
			}
			return a.Before(*b)
		})
	case SortByCreated:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		})
	case SortByTitle:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Title) < strings.ToLower(sorted[j].Title)
		})
	}

	return sorted
}
