package imagegen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultReplicateBaseURL is the Replicate HTTP API.
const DefaultReplicateBaseURL = "https://api.replicate.com"

// ReplicateOpts configures a ReplicateProvider.
type ReplicateOpts struct {
	BaseURL      string
	APIToken     string
	PollInterval time.Duration // Between status checks once Prefer: wait returns early (default: 2s)
	Timeout      time.Duration // Whole-prediction budget (default: 3m)
	Logger       *slog.Logger
}

// ReplicateProvider runs models through the Replicate predictions API.
// It supports every model id; route specialised providers first.
type ReplicateProvider struct {
	httpClient   *resty.Client
	pollInterval time.Duration
	timeout      time.Duration
	logger       *slog.Logger
}

// NewReplicateProvider creates a provider.
func NewReplicateProvider(opts ReplicateOpts) *ReplicateProvider {
	p := ReplicateProvider{pollInterval: opts.PollInterval, timeout: opts.Timeout, logger: opts.Logger}
	baseURL := DefaultReplicateBaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	if p.pollInterval <= 0 {
		p.pollInterval = 2 * time.Second
	}
	if p.timeout <= 0 {
		p.timeout = 3 * time.Minute
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "replicate")

	p.httpClient = resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(opts.APIToken).
		SetHeader("Content-Type", "application/json")
	return &p
}

func (p *ReplicateProvider) Name() string { return "replicate" }

func (p *ReplicateProvider) Supports(string) bool { return true }

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  any             `json:"error"`
}

// outputURL returns the first image URL; output is a string or a list of strings.
func (pr *prediction) outputURL() string {
	if len(pr.Output) == 0 {
		return ""
	}
	var single string
	if err := json.Unmarshal(pr.Output, &single); err == nil {
		return single
	}
	var many []string
	if err := json.Unmarshal(pr.Output, &many); err == nil && len(many) > 0 {
		return many[0]
	}
	return ""
}

func (p *ReplicateProvider) Generate(ctx context.Context, req Request) (*Image, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	start := time.Now()

	pred, err := p.create(ctx, req)
	if err != nil {
		return nil, err
	}
	for !isTerminal(pred.Status) {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("prediction %s: %w", pred.ID, ctx.Err())
		case <-time.After(p.pollInterval):
		}
		if pred, err = p.get(ctx, pred.ID); err != nil {
			return nil, err
		}
	}

	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("%w: prediction %s %s: %v", ErrGenerationFailed, pred.ID, pred.Status, pred.Error)
	}
	url := pred.outputURL()
	if url == "" {
		return nil, fmt.Errorf("%w: prediction %s returned no output", ErrGenerationFailed, pred.ID)
	}

	res, err := handleError(p.httpClient.NewRequest().SetContext(ctx).Get(url))
	if err != nil {
		return nil, fmt.Errorf("download output: %w", err)
	}

	p.logger.Debug("prediction completed", "prediction_id", pred.ID, "model", req.ProviderModelID, "duration", time.Since(start))
	return &Image{
		Data:        res.Body(),
		ContentType: res.Header().Get("Content-Type"),
		SourceURL:   url,
		Provider:    p.Name(),
		Duration:    time.Since(start),
	}, nil
}

// create starts a prediction. "owner/name" uses the model endpoint;
// "owner/name:version" uses the version endpoint.
func (p *ReplicateProvider) create(ctx context.Context, req Request) (*prediction, error) {
	body := map[string]any{"input": req.Params.Input(req.Prompt)}
	path := "/v1/models/" + req.ProviderModelID + "/predictions"
	if _, version, ok := strings.Cut(req.ProviderModelID, ":"); ok {
		body["version"] = version
		path = "/v1/predictions"
	}

	result := &prediction{}
	_, err := handleError(p.httpClient.NewRequest().
		SetContext(ctx).
		SetHeader("Prefer", "wait").
		SetBody(body).
		SetResult(result).
		Post(path))
	if err != nil {
		return nil, fmt.Errorf("create prediction: %w", err)
	}
	return result, nil
}

func (p *ReplicateProvider) get(ctx context.Context, id string) (*prediction, error) {
	result := &prediction{}
	_, err := handleError(p.httpClient.NewRequest().
		SetContext(ctx).
		SetResult(result).
		Get("/v1/predictions/" + id))
	if err != nil {
		return nil, fmt.Errorf("get prediction %s: %w", id, err)
	}
	return result, nil
}

func isTerminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

func handleError(res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return res, err
	}
	if res.IsError() {
		return res, fmt.Errorf("request failed: %s %s (status: %d)", res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return res, nil
}
