package hunyuan

import "fmt"

// Job status codes as reported by the aiart API. The API documents no other
// terminal codes; anything unlisted is treated as still pending.
const (
	StatusWaiting    = "1"
	StatusProcessing = "2"
	StatusFailed     = "4"
	StatusCompleted  = "5"
)

// JobRequest describes one text-to-image job.
type JobRequest struct {
	// Prompt is the text description. Required. The API caps it at roughly
	// 8192 characters; the cap is enforced remotely, not here.
	Prompt string
	// Resolution is a "<width>:<height>" string, e.g. "1024:1024". Passed
	// through uninterpreted; the API rejects out-of-range values.
	Resolution string
	// Images are reference images for image-to-image guidance. Entries may be
	// http/https URLs (passed through) or local file paths (uploaded first).
	// The API documents a limit of 3; extra entries are forwarded as-is and
	// surface as a remote rejection.
	Images []string
	// Seed fixes the random seed when set; nil lets the API pick one.
	Seed *int
	// LogoAdd asks the API to watermark the result.
	LogoAdd bool
	// Revise lets the API rewrite the prompt before generation.
	Revise bool
}

// ImageGenerationResult is a snapshot of a job's remote state at one poll.
type ImageGenerationResult struct {
	JobID          string
	StatusCode     string
	StatusMsg      string
	ImageURLs      []string
	ErrorCode      string
	ErrorMsg       string
	ResultDetails  []string
	RevisedPrompts []string
	RequestID      string
}

// Completed reports whether the job finished successfully.
func (r *ImageGenerationResult) Completed() bool { return r.StatusCode == StatusCompleted }

// Failed reports whether the job terminated with an error.
func (r *ImageGenerationResult) Failed() bool { return r.StatusCode == StatusFailed }

// Processing reports whether the job is being worked on.
func (r *ImageGenerationResult) Processing() bool { return r.StatusCode == StatusProcessing }

// Waiting reports whether the job is queued.
func (r *ImageGenerationResult) Waiting() bool { return r.StatusCode == StatusWaiting }

// Pending reports whether another poll is needed. Unknown status codes count
// as pending so a new intermediate code never aborts the wait loop.
func (r *ImageGenerationResult) Pending() bool { return !r.Completed() && !r.Failed() }

// APIError is a structured failure reported by the aiart API itself, as
// opposed to a transport error.
type APIError struct {
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hunyuan: %s (%s)", e.Message, e.Code)
}

// JobError is a terminal job failure observed while polling.
type JobError struct {
	JobID   string
	Code    string
	Message string
}

func (e *JobError) Error() string {
	return fmt.Sprintf("hunyuan: job %s failed: %s (%s)", e.JobID, e.Message, e.Code)
}

// TimeoutError is returned when maxPolls is exhausted before the job
// reaches a terminal state. It names the job so a caller can resume polling
// out of band with QueryJob.
type TimeoutError struct {
	JobID string
	Polls int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("hunyuan: job %s still pending after %d polls", e.JobID, e.Polls)
}
