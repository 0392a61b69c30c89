package runlog

import (
	"context"
	"errors"
	"time"

	"visualdna/internal/hunyuan"
	"visualdna/internal/infra"
)

type jobGenerator interface {
	Generate(ctx context.Context, req hunyuan.JobRequest, pollInterval time.Duration, maxPolls int) (*hunyuan.ImageGenerationResult, error)
}

// Recorder wraps a job generator and writes each run to the store. Ledger
// failures are logged, never surfaced; the pipeline must not depend on the
// database being up.
type Recorder struct {
	Inner  jobGenerator
	Store  *Store
	Crew   string
	Logger infra.Logger
}

func (r *Recorder) Generate(ctx context.Context, req hunyuan.JobRequest, pollInterval time.Duration, maxPolls int) (*hunyuan.ImageGenerationResult, error) {
	result, err := r.Inner.Generate(ctx, req, pollInterval, maxPolls)

	jobID := ""
	if result != nil {
		jobID = result.JobID
	} else {
		var jobErr *hunyuan.JobError
		var timeoutErr *hunyuan.TimeoutError
		switch {
		case errors.As(err, &jobErr):
			jobID = jobErr.JobID
		case errors.As(err, &timeoutErr):
			jobID = timeoutErr.JobID
		}
	}

	runID, recErr := r.Store.Started(ctx, r.Crew, req.Prompt, jobID)
	if recErr != nil {
		r.Logger.Warn().Err(recErr).Msg("run ledger insert failed")
		return result, err
	}
	if err != nil {
		if recErr := r.Store.Failed(ctx, runID, err.Error()); recErr != nil {
			r.Logger.Warn().Err(recErr).Msg("run ledger update failed")
		}
		return result, err
	}
	if recErr := r.Store.Succeeded(ctx, runID, result.ImageURLs); recErr != nil {
		r.Logger.Warn().Err(recErr).Msg("run ledger update failed")
	}
	return result, err
}
