package predict

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/foldswitch/internal/util"
	"github.com/ppiankov/foldswitch/internal/worker"
)

var jobIDPattern = regexp.MustCompile(`jp_[A-Za-z0-9_]+`)

// retrySleep waits between attempts; tests replace it
var retrySleep = func(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// JPredConfig configures the JPred REST client
type JPredConfig struct {
	BaseURL       string // e.g. https://www.compbio.dundee.ac.uk/jpred4
	Email         string
	UserAgent     string
	DownloadsDir  string // Archives are kept here for later "archive" runs
	Timeout       time.Duration
	JobTimeout    time.Duration
	PollInterval  time.Duration
	MaxAttempts   int
	RespectRobots bool
	HTTPProxy     string
	HTTPSProxy    string
	NoProxy       string
}

// JPredProvider submits sequences to the JPred 4 REST service
type JPredProvider struct {
	config  JPredConfig
	client  *http.Client
	limiter *worker.Limiter
	robots  *util.RobotsChecker
}

// NewJPredProvider creates a JPred client. limiter may be shared between
// providers; nil disables rate limiting.
func NewJPredProvider(config JPredConfig, limiter *worker.Limiter) (*JPredProvider, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("JPred base URL is required")
	}
	if config.Email == "" {
		return nil, fmt.Errorf("an email address is required for JPred submission")
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 60 * time.Second
	}
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if limiter == nil {
		limiter = worker.NewLimiter(0, 1)
	}

	client := util.NewHTTPClient(config.Timeout, config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	p := &JPredProvider{
		config:  config,
		client:  client,
		limiter: limiter,
	}
	if config.RespectRobots {
		p.robots = util.NewRobotsChecker(client, config.UserAgent)
	}
	return p, nil
}

// Name returns the provider name
func (p *JPredProvider) Name() string {
	return "jpred"
}

// Predict submits one sequence, waits for the job and parses its archive
func (p *JPredProvider) Predict(ctx context.Context, req Request) (*Prediction, error) {
	if req.Sequence == "" {
		return nil, ErrEmptySequence
	}
	if p.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.JobTimeout)
		defer cancel()
	}

	jobID, err := p.Submit(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}

	archiveURL, err := p.Wait(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}

	contents, err := p.Download(ctx, jobID, archiveURL, req.Accession)
	if err != nil {
		return nil, fmt.Errorf("job %s: %w", jobID, err)
	}

	return &Prediction{
		Accession: req.Accession,
		Labels:    contents.Labels,
		JobID:     jobID,
		Source:    "remote",
	}, nil
}

// Submit posts a job and returns its id
func (p *JPredProvider) Submit(ctx context.Context, req Request) (string, error) {
	name := req.Accession
	body := strings.Join([]string{
		"skipPDB=on",
		"format=seq",
		"email=" + p.config.Email,
		"name=" + name,
		">" + name + "\n" + req.Sequence,
	}, "§")

	resp, err := p.do(ctx, func() (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/cgi-bin/rest/job", strings.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "text/txt")
		return r, nil
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	text, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if loc := resp.Header.Get("Location"); loc != "" {
		return path.Base(strings.TrimRight(loc, "/")), nil
	}
	if id := jobIDPattern.FindString(string(text)); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("%w: no job id in response (%d %s)", ErrJobFailed, resp.StatusCode, strings.TrimSpace(string(text)))
}

// Wait polls until the job finishes and returns the results archive URL
func (p *JPredProvider) Wait(ctx context.Context, jobID string) (string, error) {
	statusURL := p.config.BaseURL + "/cgi-bin/rest/job/id/" + jobID
	for {
		state, body, err := p.Status(ctx, statusURL)
		if err != nil {
			return "", err
		}
		switch state {
		case jobFinished:
			if link := archiveLink(body, statusURL); link != "" {
				return link, nil
			}
			return p.config.BaseURL + "/results/" + jobID + "/" + jobID + ".tar.gz", nil
		case jobFailed:
			return "", fmt.Errorf("%w: %s", ErrJobFailed, firstLine(body))
		}

		if err := retrySleep(ctx, p.config.PollInterval); err != nil {
			return "", err
		}
	}
}

type jobState int

const (
	jobRunning jobState = iota
	jobFinished
	jobFailed
)

// Status fetches one status page and classifies it
func (p *JPredProvider) Status(ctx context.Context, statusURL string) (jobState, string, error) {
	resp, err := p.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	})
	if err != nil {
		return jobRunning, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return jobRunning, "", fmt.Errorf("read status: %w", err)
	}
	body := string(b)
	lower := strings.ToLower(body)

	switch {
	case strings.Contains(lower, "finished"):
		return jobFinished, body, nil
	case strings.Contains(lower, "malformed"),
		strings.Contains(lower, "does not exist"),
		strings.Contains(lower, "error"):
		return jobFailed, body, nil
	default:
		return jobRunning, body, nil
	}
}

// Download fetches the results archive, keeps a copy under DownloadsDir
// and parses it.
func (p *JPredProvider) Download(ctx context.Context, jobID, archiveURL, accession string) (*ArchiveContents, error) {
	var delay time.Duration
	if p.robots != nil {
		allowed, crawlDelay, err := p.robots.CanFetch(ctx, archiveURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("robots.txt disallows %s", archiveURL)
		}
		delay = crawlDelay
	}
	if err := p.limiter.WaitWithDelay(ctx, archiveURL, delay); err != nil {
		return nil, err
	}

	resp, err := p.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 256<<20))
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}

	if p.config.DownloadsDir != "" {
		if err := saveArchive(p.config.DownloadsDir, jobID, accession, data); err != nil {
			return nil, err
		}
	}

	contents, err := ReadArchive(bytes.NewReader(data), jobID)
	if err != nil {
		return nil, err
	}
	if contents.Accession == "" {
		contents.Accession = accession
	}
	return contents, nil
}

// do sends a request built by build, retrying network errors, 429 and 5xx
// with exponential backoff. Any other non-2xx status fails immediately.
func (p *JPredProvider) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	backoff := time.Second
	var lastErr error

	for attempt := 1; attempt <= p.config.MaxAttempts; attempt++ {
		req, err := build()
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		if p.config.UserAgent != "" {
			req.Header.Set("User-Agent", p.config.UserAgent)
		}
		if err := p.limiter.Wait(ctx, req.URL.String()); err != nil {
			return nil, err
		}

		resp, err := p.client.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request: %w", err)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
		default:
			return resp, nil
		}

		if attempt < p.config.MaxAttempts {
			if err := retrySleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}
	}

	return nil, lastErr
}

// archiveLink finds the first link to a .tar.gz in an HTML status page,
// resolved against base.
func archiveLink(body, base string) string {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return ""
	}

	var href string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if href != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.HasSuffix(attr.Val, ".tar.gz") {
					href = attr.Val
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if href == "" {
		return ""
	}
	return resolve(base, href)
}

func saveArchive(dir, jobID, accession string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create downloads dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, jobID+".tar.gz"), data, 0644); err != nil {
		return fmt.Errorf("save archive: %w", err)
	}
	if accession != "" {
		if err := os.WriteFile(filepath.Join(dir, jobID+accessionSuffix), []byte(accession+"\n"), 0644); err != nil {
			return fmt.Errorf("save accession: %w", err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
