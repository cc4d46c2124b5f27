package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logger"
)

// Formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// DefaultTimeout bounds a URL fetch.
const DefaultTimeout = 15 * time.Second

// MaxFetchBytes caps how much of a response body is read.
const MaxFetchBytes = 4 << 20

const userAgent = "Mozilla/5.0 (compatible; ResumeTailor/1.0)"

// FetchError describes a failed URL fetch.
type FetchError struct {
	URL     string
	Message string
	Cause   error
}

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether retrying the fetch could help. Client errors
// and malformed URLs are permanent.
func (e *FetchError) Retryable() bool {
	var status *statusError
	if errors.As(e.Cause, &status) {
		return status.code >= 500 || status.code == http.StatusTooManyRequests
	}
	return e.Message != "invalid URL"
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("HTTP status %d", e.code) }

// FromText cleans inline text, converting it first when it is an HTML
// document.
func FromText(content string) (string, *Metadata, error) {
	format := FormatText
	if LooksLikeHTML(content) {
		format = FormatHTML
		text, err := HTMLToText(content)
		if err != nil {
			return "", nil, err
		}
		return text, NewMetadata(SourceText, "", format, text), nil
	}
	text := CleanText(content)
	return text, NewMetadata(SourceText, "", format, text), nil
}

// FromFile reads and cleans a .txt, .md or .html file.
func FromFile(path string) (string, *Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	var (
		text   string
		format string
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		format = FormatHTML
		text, err = HTMLToText(string(raw))
		if err != nil {
			return "", nil, err
		}
	case ".md", ".markdown":
		format = FormatMarkdown
		text = CleanText(string(raw))
	default:
		text, _, err = FromText(string(raw))
		if err != nil {
			return "", nil, err
		}
		format = FormatText
		if LooksLikeHTML(string(raw)) {
			format = FormatHTML
		}
	}
	return text, NewMetadata(SourceFile, path, format, text), nil
}

// Fetcher retrieves job postings over HTTP, optionally re-rendering thin
// pages in a browser.
type Fetcher struct {
	client *http.Client
	render Renderer
	logger *zap.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRenderer enables the fallback used when static HTML yields less
// than MinContentLength of text.
func WithRenderer(r Renderer) FetcherOption {
	return func(f *Fetcher) { f.render = r }
}

// WithFetchLogger sets the logger for fallback decisions.
func WithFetchLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher returns a Fetcher using client, or a client with
// DefaultTimeout when nil.
func NewFetcher(client *http.Client, opts ...FetcherOption) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	f := &Fetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logger.OrNop(f.logger)
	return f
}

// FromURL fetches a job posting page and extracts its text.
func (f *Fetcher) FromURL(ctx context.Context, rawURL string) (string, *Metadata, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", nil, &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "invalid URL", Cause: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", nil, &FetchError{URL: rawURL, Message: "unexpected response", Cause: &statusError{code: resp.StatusCode}}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchBytes))
	if err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "failed to read body", Cause: err}
	}

	format := FormatHTML
	var text string
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		format = FormatText
		text = CleanText(string(body))
	} else if text, err = HTMLToText(string(body)); err != nil {
		return "", nil, &FetchError{URL: rawURL, Message: "content extraction failed", Cause: err}
	}

	if format == FormatHTML && f.render != nil && ShouldUseBrowser(text) {
		text = f.rendered(ctx, rawURL, text)
	}
	return text, NewMetadata(SourceURL, rawURL, format, text), nil
}

// rendered re-extracts a page from its browser-rendered HTML. The static
// text is kept when rendering fails or yields less.
func (f *Fetcher) rendered(ctx context.Context, rawURL, static string) string {
	l := logger.ForContext(ctx, f.logger).With(zap.String("url", rawURL))
	l.Debug("static page too thin, rendering in browser", zap.Int("chars", len(strings.TrimSpace(static))))

	html, err := f.render(ctx, rawURL)
	if err != nil {
		l.Warn("browser fallback failed, using static text", zap.Error(err))
		return static
	}
	text, err := HTMLToText(html)
	if err != nil || len(strings.TrimSpace(text)) <= len(strings.TrimSpace(static)) {
		return static
	}
	return text
}
