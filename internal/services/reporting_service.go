package services

import (
	"time"

	"taskboard/internal/domain"
)

// reportingServiceImpl implements the ReportingService interface
type reportingServiceImpl struct {
	searchService SearchService
}

// NewReportingService creates a new ReportingService instance
func NewReportingService(searchService SearchService) ReportingService {
	return &reportingServiceImpl{searchService: searchService}
}

// Summarize builds the dashboard header. Counters are passed through
// unchanged; the other figures are computed from the current list.
func (r *reportingServiceImpl) Summarize(tasks []*domain.Task, counters domain.StatusCounters, now time.Time) *DashboardSummary {
	summary := &DashboardSummary{
		Counters: counters,
		Listed:   len(tasks),
		Overdue:  len(r.searchService.SearchTasks(tasks, SearchCriteria{OverdueAt: &now})),
	}

	for _, task := range tasks {
		if task.Status != domain.StatusDone && task.Priority == domain.MaxPriority {
			summary.HighPriorityOpen++
		}
	}

	for _, task := range r.searchService.SortTasks(tasks, SortByDue) {
		if task.DueAt == nil {
			break
		}
		if task.Status != domain.StatusDone && !task.DueAt.Before(now) {
			summary.NextDue = task
			break
		}
	}

	return summary
}
