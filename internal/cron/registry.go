package cron

import "context"

// Job is one unit of scheduled work. Name is used as the log field and
// metrics label for the job's runs.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry is the ordered set of jobs a worker cycle executes.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	reg := &Registry{}
	for _, job := range jobs {
		reg.Register(job)
	}
	return reg
}

// Register appends a job to the schedule. Nil jobs are ignored.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns the schedule in registration order.
func (r *Registry) Jobs() []Job {
	out := make([]Job, len(r.jobs))
	copy(out, r.jobs)
	return out
}
