package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/briangreenhill/marathoncoach/internal/plan"
)

const (
	TaskGeneratePlan = "plan:generate"
	QueuePlans       = "plans"
)

type GeneratePlanPayload struct {
	Request     plan.Request `json:"request"`
	RequestedAt time.Time    `json:"requested_at"`
}

// TaskOptions controls retries and how long results are kept.
type TaskOptions struct {
	MaxRetry  int
	Timeout   time.Duration
	Retention time.Duration
}

// NewGeneratePlanTask builds a plan generation task with a fresh task ID.
func NewGeneratePlanTask(req plan.Request, opts TaskOptions) (*asynq.Task, error) {
	payload, err := json.Marshal(GeneratePlanPayload{Request: req, RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	taskOpts := []asynq.Option{
		asynq.TaskID(uuid.NewString()),
		asynq.Queue(QueuePlans),
		asynq.MaxRetry(opts.MaxRetry),
	}
	if opts.Timeout > 0 {
		taskOpts = append(taskOpts, asynq.Timeout(opts.Timeout))
	}
	if opts.Retention > 0 {
		taskOpts = append(taskOpts, asynq.Retention(opts.Retention))
	}
	return asynq.NewTask(TaskGeneratePlan, payload, taskOpts...), nil
}

// Status is what clients see of a generation task.
type Status struct {
	ID          string     `json:"task_id"`
	State       string     `json:"state"`
	Retried     int        `json:"retried"`
	Error       string     `json:"error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      string     `json:"result,omitempty"`
}

// Done reports whether the task finished successfully and has a result.
func (s Status) Done() bool {
	return s.State == asynq.TaskStateCompleted.String()
}

// StatusFromInfo converts inspector output into a Status.
func StatusFromInfo(info *asynq.TaskInfo) Status {
	s := Status{
		ID:      info.ID,
		State:   info.State.String(),
		Retried: info.Retried,
		Error:   info.LastErr,
		Result:  string(info.Result),
	}
	if !info.CompletedAt.IsZero() {
		at := info.CompletedAt
		s.CompletedAt = &at
	}
	return s
}
