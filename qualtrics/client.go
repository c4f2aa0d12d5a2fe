package qualtrics

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 30 * time.Second

	baseURLTemplate = "https://%s.qualtrics.com/API/v3"
)

// Config holds the immutable settings a Client is built from.
type Config struct {
	DataCenter          string
	APIToken            string
	DefaultSurveyOwner  string
	DefaultLibraryOwner string
}

// Client represents a Qualtrics v3 API client. It holds no mutable state
// after construction and is safe for concurrent use.
type Client struct {
	cfg     Config
	baseURL string
	doer    Doer
	clock   clockwork.Clock
	logger  zerolog.Logger
}

// New creates a new Qualtrics client
func New(cfg Config, opts ...Option) (*Client, error) {
	o := clientOptions{
		logger:  zerolog.Nop(),
		timeout: DefaultTimeout,
		clock:   clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("qualtrics API token is required")
	}
	baseURL := o.baseURL
	if baseURL == "" {
		if cfg.DataCenter == "" {
			return nil, fmt.Errorf("qualtrics data center is required")
		}
		baseURL = fmt.Sprintf(baseURLTemplate, cfg.DataCenter)
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	doer := o.doer
	if doer == nil {
		rc := o.resty
		if rc == nil {
			rc = resty.New()
		}
		rc.SetTimeout(o.timeout)
		doer = newRestyDoer(rc)
	}

	return &Client{
		cfg:     cfg,
		baseURL: baseURL,
		doer:    doer,
		clock:   o.clock,
		logger:  o.logger,
	}, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) now() time.Time {
	return c.clock.Now()
}
