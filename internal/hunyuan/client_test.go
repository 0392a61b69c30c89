package hunyuan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeAiart scripts the aiart endpoint: one submit response plus a sequence
// of query statuses, the last of which repeats if polled further.
type fakeAiart struct {
	t *testing.T

	jobID     string
	statuses  []string
	images    []string
	errorCode string
	errorMsg  string
	// submitError, when set, makes SubmitTextToImageJob fail remotely.
	submitError *wireError

	submits    int
	queries    int
	lastSubmit submitJobRequest
}

func (f *fakeAiart) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "TC3-HMAC-SHA256 Credential=") {
			f.t.Errorf("unexpected authorization header: %q", auth)
		}
		if r.Header.Get("X-TC-Version") != apiVersion {
			f.t.Errorf("version = %q", r.Header.Get("X-TC-Version"))
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("X-TC-Action") {
		case "SubmitTextToImageJob":
			f.submits++
			if err := json.NewDecoder(r.Body).Decode(&f.lastSubmit); err != nil {
				f.t.Fatalf("decode submit: %v", err)
			}
			if f.submitError != nil {
				writeAiart(w, map[string]any{"Error": f.submitError, "RequestId": "req-err"})
				return
			}
			writeAiart(w, map[string]any{"JobId": f.jobID, "RequestId": "req-submit"})
		case "QueryTextToImageJob":
			idx := f.queries
			f.queries++
			if idx >= len(f.statuses) {
				idx = len(f.statuses) - 1
			}
			status := f.statuses[idx]
			body := map[string]any{
				"JobStatusCode": status,
				"JobStatusMsg":  "status " + status,
				"RequestId":     "req-query",
			}
			switch status {
			case StatusCompleted:
				body["ResultImage"] = f.images
				body["RevisedPrompt"] = []string{"revised prompt"}
			case StatusFailed:
				body["JobErrorCode"] = f.errorCode
				body["JobErrorMsg"] = f.errorMsg
			}
			writeAiart(w, body)
		default:
			f.t.Errorf("unexpected action %q", r.Header.Get("X-TC-Action"))
			w.WriteHeader(http.StatusBadRequest)
		}
	})
}

func writeAiart(w http.ResponseWriter, response map[string]any) {
	_ = json.NewEncoder(w).Encode(map[string]any{"Response": response})
}

func newTestClient(t *testing.T, fake *fakeAiart, backend *countingBackend) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	opts := Options{
		SecretID:  "AKIDtest",
		SecretKey: "secret",
		BaseURL:   srv.URL,
	}
	if backend != nil {
		opts.Uploader = backend
	}
	client, err := NewClient(opts)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestGenerateWaitingProcessingCompleted(t *testing.T) {
	fake := &fakeAiart{
		t:        t,
		jobID:    "job-001",
		statuses: []string{StatusWaiting, StatusProcessing, StatusCompleted},
		images:   []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
	}
	client, _ := newTestClient(t, fake, nil)

	result, err := client.Generate(context.Background(), JobRequest{Prompt: "a corgi on a bean bag"}, 0, 10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fake.queries != 3 {
		t.Fatalf("queries = %d, want 3", fake.queries)
	}
	if !result.Completed() {
		t.Fatalf("status = %q, want completed", result.StatusCode)
	}
	if len(result.ImageURLs) != 2 {
		t.Fatalf("image urls = %v", result.ImageURLs)
	}
	if len(result.RevisedPrompts) != 1 {
		t.Fatalf("revised prompts = %v", result.RevisedPrompts)
	}
}

func TestGenerateTimeoutNamesJob(t *testing.T) {
	fake := &fakeAiart{t: t, jobID: "job-slow", statuses: []string{StatusProcessing}}
	client, _ := newTestClient(t, fake, nil)

	_, err := client.Generate(context.Background(), JobRequest{Prompt: "p"}, 0, 3)
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("err = %v, want *TimeoutError", err)
	}
	if timeout.JobID != "job-slow" || timeout.Polls != 3 {
		t.Fatalf("timeout = %+v", timeout)
	}
	if fake.queries != 3 {
		t.Fatalf("queries = %d, want 3", fake.queries)
	}
	if !strings.Contains(err.Error(), "job-slow") {
		t.Fatalf("error text should name the job: %v", err)
	}
}

func TestGenerateAbortsOnFailedStatus(t *testing.T) {
	fake := &fakeAiart{
		t:         t,
		jobID:     "job-bad",
		statuses:  []string{StatusProcessing, StatusFailed},
		errorCode: "InvalidParameter.Resolution",
		errorMsg:  "resolution out of range",
	}
	client, _ := newTestClient(t, fake, nil)

	_, err := client.Generate(context.Background(), JobRequest{Prompt: "p"}, 0, 10)
	var jobErr *JobError
	if !errors.As(err, &jobErr) {
		t.Fatalf("err = %v, want *JobError", err)
	}
	if jobErr.Code != "InvalidParameter.Resolution" || jobErr.Message != "resolution out of range" {
		t.Fatalf("job error = %+v", jobErr)
	}
	if fake.queries != 2 {
		t.Fatalf("queries = %d, want 2 (abort immediately on failure)", fake.queries)
	}
}

func TestGenerateTreatsUnknownStatusAsPending(t *testing.T) {
	fake := &fakeAiart{t: t, jobID: "job-odd", statuses: []string{"3", "7", StatusCompleted}, images: []string{"https://cdn.example.com/x.png"}}
	client, _ := newTestClient(t, fake, nil)

	result, err := client.Generate(context.Background(), JobRequest{Prompt: "p"}, 0, 10)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fake.queries != 3 {
		t.Fatalf("queries = %d, want 3", fake.queries)
	}
	if !result.Completed() {
		t.Fatalf("status = %q", result.StatusCode)
	}
}

func TestSubmitJobForwardsExcessImages(t *testing.T) {
	// Four reference images exceed the documented limit of 3; the client
	// forwards them unchanged and the remote rejection surfaces as an APIError.
	fake := &fakeAiart{
		t:           t,
		submitError: &wireError{Code: "InvalidParameter.Images", Message: "too many images"},
	}
	client, _ := newTestClient(t, fake, nil)

	refs := []string{
		"https://example.com/1.png",
		"https://example.com/2.png",
		"https://example.com/3.png",
		"https://example.com/4.png",
	}
	_, err := client.SubmitJob(context.Background(), JobRequest{Prompt: "p", Images: refs})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Code != "InvalidParameter.Images" {
		t.Fatalf("code = %q", apiErr.Code)
	}
	if len(fake.lastSubmit.Images) != 4 {
		t.Fatalf("forwarded images = %v, want all 4", fake.lastSubmit.Images)
	}
}

func TestSubmitJobPayloadShape(t *testing.T) {
	fake := &fakeAiart{t: t, jobID: "job-42"}
	client, _ := newTestClient(t, fake, nil)

	seed := 7
	jobID, err := client.SubmitJob(context.Background(), JobRequest{
		Prompt:     "an orange cat on a windowsill",
		Resolution: "768:1024",
		Seed:       &seed,
		LogoAdd:    false,
		Revise:     true,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if jobID != "job-42" {
		t.Fatalf("job id = %q", jobID)
	}
	got := fake.lastSubmit
	if got.Prompt != "an orange cat on a windowsill" || got.Resolution != "768:1024" {
		t.Fatalf("payload = %+v", got)
	}
	if got.LogoAdd != 0 || got.Revise != 1 {
		t.Fatalf("flags = logo %d revise %d", got.LogoAdd, got.Revise)
	}
	if got.Seed == nil || *got.Seed != 7 {
		t.Fatalf("seed = %v", got.Seed)
	}
}

func TestSubmitJobRequiresPrompt(t *testing.T) {
	fake := &fakeAiart{t: t, jobID: "job"}
	client, _ := newTestClient(t, fake, nil)
	if _, err := client.SubmitJob(context.Background(), JobRequest{Prompt: "   "}); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
	if fake.submits != 0 {
		t.Fatalf("submits = %d, want 0", fake.submits)
	}
}

func TestSubmitJobRequiresCredentials(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.SubmitJob(context.Background(), JobRequest{Prompt: "p"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestGenerateHonorsContextDuringSleep(t *testing.T) {
	fake := &fakeAiart{t: t, jobID: "job-ctx", statuses: []string{StatusWaiting}}
	client, _ := newTestClient(t, fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := client.Generate(ctx, JobRequest{Prompt: "p"}, time.Hour, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestQueryJobStatusInvariants(t *testing.T) {
	fake := &fakeAiart{
		t:        t,
		jobID:    "job-inv",
		statuses: []string{StatusCompleted},
		images:   []string{"https://cdn.example.com/only.png"},
	}
	client, _ := newTestClient(t, fake, nil)

	result, err := client.QueryJob(context.Background(), "job-inv")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.Completed() && len(result.ImageURLs) == 0 {
		t.Fatalf("completed result must carry image urls")
	}

	fake.statuses = []string{StatusFailed}
	fake.queries = 0
	fake.errorCode = "InternalError"
	fake.errorMsg = "backend exploded"
	result, err = client.QueryJob(context.Background(), "job-inv")
	if err != nil {
		t.Fatalf("query failed job: %v", err)
	}
	if !result.Failed() || result.ErrorCode == "" || result.ErrorMsg == "" {
		t.Fatalf("failed result must carry error code/message: %+v", result)
	}
}
