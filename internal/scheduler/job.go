package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a six-field cron expression with seconds,
	// e.g. "0 30 18 * * 1-5" (weekdays 18:30), or a descriptor such as "@daily".
	Schedule() string
}

// RetryPolicy bounds how a job run is attempted
type RetryPolicy struct {
	MaxRetries int           // 실패 후 재시도 횟수 (0 = 재시도 없음)
	Delay      time.Duration // 재시도 간격
	Timeout    time.Duration // 시도 1회당 제한 (0 = 무제한)
}

// DefaultRetryPolicy is used for jobs that do not bring their own
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Delay:      1 * time.Minute,
		Timeout:    30 * time.Minute,
	}
}

// PolicyJob is a Job that overrides the scheduler's retry policy
type PolicyJob interface {
	Job
	RetryPolicy() RetryPolicy
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// JobResult is the outcome of one run, all attempts included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// 작업별 보관 실행 이력 수
const maxHistory = 100

// JobHistory keeps the latest runs of a job, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest beyond maxHistory
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > maxHistory {
		h.Results = h.Results[len(h.Results)-maxHistory:]
	}
}

// Latest returns up to n of the most recent results
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// JobStats summarizes a job's retained history
type JobStats struct {
	JobName      string      `json:"job_name"`
	Schedule     string      `json:"schedule"`
	Retry        RetryPolicy `json:"retry"`
	TotalRuns    int         `json:"total_runs"`
	SuccessCount int         `json:"success_count"`
	FailureCount int         `json:"failure_count"`
	SuccessRate  float64     `json:"success_rate"`
	LastRun      *time.Time  `json:"last_run,omitempty"`
	LastSuccess  *time.Time  `json:"last_success,omitempty"`
	LastFailure  *time.Time  `json:"last_failure,omitempty"`
}

// Stats folds the history into counts and the last success and failure times
func (h *JobHistory) Stats() JobStats {
	var st JobStats
	st.TotalRuns = len(h.Results)

	for i := len(h.Results) - 1; i >= 0; i-- {
		r := h.Results[i]
		start := r.StartTime
		if r.Success {
			st.SuccessCount++
			if st.LastSuccess == nil {
				st.LastSuccess = &start
			}
		} else {
			st.FailureCount++
			if st.LastFailure == nil {
				st.LastFailure = &start
			}
		}
		if st.LastRun == nil {
			st.LastRun = &start
		}
	}

	if st.TotalRuns > 0 {
		st.SuccessRate = float64(st.SuccessCount) / float64(st.TotalRuns)
	}
	return st
}
