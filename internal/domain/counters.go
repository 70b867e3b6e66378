package domain

// StatusCounters holds the number of tasks in each status.
type StatusCounters struct {
	Todo       int
	InProgress int
	Done       int
}

// Total returns the number of counted tasks.
func (c StatusCounters) Total() int {
	return c.Todo + c.InProgress + c.Done
}

// CountByStatus scans tasks and counts them per status. Nil entries and
// unknown statuses are ignored.
func CountByStatus(tasks []*Task) StatusCounters {
	var c StatusCounters
	for _, t := range tasks {
		if t == nil {
			continue
		}
		switch t.Status {
		case StatusTodo:
			c.Todo++
		case StatusInProgress:
			c.InProgress++
		case StatusDone:
			c.Done++
		}
	}
	return c
}
