package lichess

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vytor/chessvault/internal/logger"
)

// validPerfTypes is the whitelist of performance categories the export API
// accepts from us. Anything else is dropped silently.
var validPerfTypes = map[string]bool{
	"bullet":         true,
	"blitz":          true,
	"rapid":          true,
	"classical":      true,
	"correspondence": true,
}

// NormalizePerfTypes intersects the requested perf types against the
// whitelist, preserving order and lowercasing entries.
func NormalizePerfTypes(types []string) []string {
	var out []string
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if validPerfTypes[t] {
			out = append(out, t)
		}
	}
	return out
}

// GamesRequest describes one export stream request.
type GamesRequest struct {
	Username        string
	MaxGames        int
	Since           *time.Time
	Until           *time.Time
	PerfTypes       []string
	Opponent        string
	Color           string
	RatedOnly       bool
	AnalyzedOnly    bool
	FinishedOnly    bool
	IncludeAnalysis bool
	IncludePGN      bool
}

type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *logger.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mostly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit sets the outbound request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

func New(baseURL, userAgent string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(2), 1),
		log:        logger.Default().WithPrefix("lichess"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) gamesURL(req GamesRequest) string {
	q := url.Values{}
	if req.MaxGames > 0 {
		q.Set("max", strconv.Itoa(req.MaxGames))
	}
	if req.Since != nil {
		q.Set("since", strconv.FormatInt(req.Since.UnixMilli(), 10))
	}
	if req.Until != nil {
		q.Set("until", strconv.FormatInt(req.Until.UnixMilli(), 10))
	}
	if perfs := NormalizePerfTypes(req.PerfTypes); len(perfs) > 0 {
		q.Set("perfType", strings.Join(perfs, ","))
	}
	if req.Opponent != "" {
		q.Set("vs", req.Opponent)
	}
	if req.Color == "white" || req.Color == "black" {
		q.Set("color", req.Color)
	}
	if req.RatedOnly {
		q.Set("rated", "true")
	}
	if req.AnalyzedOnly {
		q.Set("analysed", "true")
	}
	if req.FinishedOnly {
		q.Set("finished", "true")
	}

	// Enrichments we always want in the stream.
	q.Set("moves", "true")
	q.Set("opening", "true")
	q.Set("clocks", "true")
	if req.IncludePGN {
		q.Set("pgnInJson", "true")
	}
	if req.IncludeAnalysis {
		q.Set("evals", "true")
	}

	return fmt.Sprintf("%s/api/games/user/%s?%s", c.baseURL, url.PathEscape(req.Username), q.Encode())
}

// StreamGames issues the single export request for a session and returns the
// ND-JSON stream. The caller owns the stream and must Close it.
func (c *Client) StreamGames(ctx context.Context, req GamesRequest) (*GameStream, error) {
	log := logger.FromContext(ctx).WithPrefix("lichess").WithField("username", req.Username)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := c.gamesURL(req)
	log.Debug("streaming games from: %s", reqURL)
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/x-ndjson")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("failed to start game stream: %v", err)
		return nil, err
	}

	log.Debug("stream response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		log.Error("game stream request failed: status=%d, body=%s", resp.StatusCode, string(body))
		return nil, fmt.Errorf("games status %d: %s", resp.StatusCode, string(body))
	}

	return NewGameStream(resp.Body), nil
}

// GameStream iterates the newline-delimited JSON body one game at a time.
type GameStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
}

// NewGameStream wraps a reader of ND-JSON game lines. Exposed so tests can
// feed canned streams without an HTTP server.
func NewGameStream(body io.ReadCloser) *GameStream {
	scanner := bufio.NewScanner(body)
	// Games with evals and embedded PGN can produce very long lines.
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &GameStream{body: body, scanner: scanner}
}

// Next returns the next non-blank line of the stream. It returns false when
// the stream is exhausted or failed; check Err afterwards.
func (s *GameStream) Next() ([]byte, bool) {
	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, true
	}
	return nil, false
}

// Err reports a stream-level read error, if any.
func (s *GameStream) Err() error {
	return s.scanner.Err()
}

func (s *GameStream) Close() error {
	return s.body.Close()
}
