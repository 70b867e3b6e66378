package services

import (
	"time"

	"taskboard/internal/domain"
)

// SearchCriteria narrows a task list
type SearchCriteria struct {
	Status     *domain.TaskStatus
	TextFilter string
	OverdueAt  *time.Time // keep only open tasks due before this instant
}

// SortOrder defines how task results should be sorted
type SortOrder string

const (
	SortByServer   SortOrder = "server"   // order returned by the server (default)
	SortByPriority SortOrder = "priority" // highest priority first
	SortByDue      SortOrder = "due"      // earliest due date first, undated last
	SortByCreated  SortOrder = "created"  // newest first
	SortByTitle    SortOrder = "title"    // alphabetical
)

// ParseSortOrder converts s into a SortOrder. The empty string means SortByServer.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "", SortByServer:
		return SortByServer, true
	case SortByPriority, SortByDue, SortByCreated, SortByTitle:
		return SortOrder(s), true
	}
	return "", false
}

// DashboardSummary is what the dashboard header shows
type DashboardSummary struct {
	Counters         domain.StatusCounters
	Listed           int // tasks in the local list, including ones created since the last refresh
	Overdue          int
	HighPriorityOpen int
	NextDue          *domain.Task
}

// SearchService filters and orders task lists
type SearchService interface {
	SearchTasks(tasks []*domain.Task, criteria SearchCriteria) []*domain.Task
	SortTasks(tasks []*domain.Task, order SortOrder) []*domain.Task
}

// ReportingService summarizes a dashboard
type ReportingService interface {
	Summarize(tasks []*domain.Task, counters domain.StatusCounters, now time.Time) *DashboardSummary
}

// ServiceContainer groups the services used by the views
type ServiceContainer struct {
	SearchService    SearchService
	ReportingService ReportingService
}

// NewServiceContainer wires the default implementations
func NewServiceContainer() *ServiceContainer {
	search := NewSearchService()
	return &ServiceContainer{
		SearchService:    search,
		ReportingService: NewReportingService(search),
	}
}
