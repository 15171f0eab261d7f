package plugins

// Task is a unit of work within a Flow.
type Task struct {
	Name       string
	MaxRetries int
}

// NewTask is registered as models Task.
func NewTask(name string) *Task { return &Task{Name: name} }

// Flow is an ordered collection of tasks.
type Flow struct {
	Name  string
	Tasks []*Task
}

// NewFlow is registered as models Flow.
func NewFlow(name string, tasks ...*Task) *Flow { return &Flow{Name: name, Tasks: tasks} }
