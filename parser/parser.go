package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/uJobs/jobs"
)

// Reason explains why a candidate URL did not yield a posting.
type Reason string

// Parse failure reasons.
const (
	ReasonNonJobPage  Reason = "non_job_page"
	ReasonFetchError  Reason = "fetch_error"
	ReasonUnparseable Reason = "unparseable"
)

// Outcome is the result of parsing one candidate URL. Either Failure is
// empty and Posting is populated, or Failure names the reason the candidate
// was dropped.
type Outcome struct {
	Candidate jobs.CandidateURL
	Posting   jobs.Posting
	Failure   Reason

	// Underlying error for fetch failures.
	Err error
}

// OK returns true if the outcome carries a posting.
func (o Outcome) OK() bool { return o.Failure == "" }

// Config encapsulates the settings for configuring a Parser.
type Config struct {
	// Fetcher downloads candidate pages.
	Fetcher PageFetcher

	// NetDetector, when set, rejects URLs whose host resolves to a
	// private network.
	NetDetector PrivateNetworkDetector

	// Extraction strategies in the order they run. Defaults to structured
	// data followed by the markup heuristic.
	Strategies []Strategy

	// A clock instance for stamping discovery times. If not specified, a
	// default wall-clock implementation will be used.
	Clock clock.Clock

	// Keyword extraction settings.
	KeywordLimit  int
	KeywordMinLen int

	// Descriptions are cut down to this many bytes.
	MaxDescriptionLen int

	// Logger instance. If not specified, a default logger instance will be
	// used.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error

	if cfg.Fetcher == nil {
		err = multierror.Append(err, fmt.Errorf("page fetcher not provided"))
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}

	if len(cfg.Strategies) == 0 {
		cfg.Strategies = []Strategy{StructuredData{}, &Heuristic{Clock: cfg.Clock}}
	}

	if cfg.KeywordLimit == 0 {
		cfg.KeywordLimit = 10
	} else if cfg.KeywordLimit < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for keyword limit"))
	}

	if cfg.KeywordMinLen == 0 {
		cfg.KeywordMinLen = 3
	} else if cfg.KeywordMinLen < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for keyword min length"))
	}

	if cfg.MaxDescriptionLen == 0 {
		cfg.MaxDescriptionLen = 5000
	} else if cfg.MaxDescriptionLen < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max description length"))
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Parser turns candidate URLs into postings.
type Parser struct {
	cfg Config
}

// New returns a new Parser instance configured with cfg.
func New(cfg Config) (*Parser, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("posting parser: config validation failed: %w", err)
	}

	return &Parser{cfg: cfg}, nil
}

// Parse fetches the page behind candidate and extracts a posting from it.
// Failures are reported through the returned Outcome, never retried.
func (p *Parser) Parse(ctx context.Context, candidate jobs.CandidateURL) Outcome {
	out := Outcome{Candidate: candidate}

	if IsNonJobURL(candidate.URL) {
		out.Failure = ReasonNonJobPage

		return out
	}

	if err := p.checkNetwork(candidate.URL); err != nil {
		out.Failure, out.Err = ReasonFetchError, err

		return out
	}

	body, err := p.cfg.Fetcher.Fetch(ctx, candidate.URL)
	if err != nil {
		p.cfg.Logger.WithFields(logrus.Fields{
			"url": candidate.URL,
			"err": err,
		}).Debug("page fetch failed")

		out.Failure, out.Err = ReasonFetchError, err

		return out
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		out.Failure, out.Err = ReasonUnparseable, err

		return out
	}

	var draft Draft
	for _, strategy := range p.cfg.Strategies {
		draft.merge(strategy.Extract(doc))

		if draft.Complete() {
			break
		}
	}

	if draft.Description == "" {
		out.Failure = ReasonUnparseable

		return out
	}

	description := truncate(draft.Description, p.cfg.MaxDescriptionLen)

	out.Posting = jobs.Posting{
		URL:          jobs.CanonicalURL(candidate.URL),
		Title:        draft.Title,
		Company:      draft.Company,
		Location:     draft.Location,
		DatePosted:   calendarDate(draft.DatePosted),
		ValidThrough: draft.ValidThrough,
		Description:  description,
		Keywords:     ExtractKeywords(description, p.cfg.KeywordLimit, p.cfg.KeywordMinLen),
		Board:        jobs.BoardFromURL(candidate.URL),
		Remote:       draft.Remote,
		Salary:       draft.Salary,
		DiscoveredAt: p.cfg.Clock.Now().UTC(),
	}

	return out
}

func (p *Parser) checkNetwork(rawURL string) error {
	if p.cfg.NetDetector == nil {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	private, err := p.cfg.NetDetector.IsNetworkPrivate(u.Hostname())
	if err != nil {
		return err
	}

	if private {
		return fmt.Errorf("host %q resolves to a private network", u.Hostname())
	}

	return nil
}
