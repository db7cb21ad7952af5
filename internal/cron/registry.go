package cron

import "context"

// Job is a task run by the cron worker on every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the worker's jobs in registration order, one per name.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		registry.Register(job)
	}
	return registry
}

// Register adds job. A job with the same name replaces the earlier one in place.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	for i, existing := range r.jobs {
		if existing.Name() == job.Name() {
			r.jobs[i] = job
			return
		}
	}
	r.jobs = append(r.jobs, job)
}

func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}

// Names lists the registered job names in run order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		names = append(names, job.Name())
	}
	return names
}
