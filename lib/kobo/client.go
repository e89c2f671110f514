package kobo

import (
	"fmt"
	"strings"
	"time"

	"kobodash/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("lib/kobo")

// Per-endpoint page timeouts. Submission data is by far the slowest
// endpoint, the rest are small metadata pages.
const (
	projectViewTimeout = time.Second * 10
	viewAssetTimeout   = time.Second * 30
	assetListTimeout   = time.Second * 15
	assetDetailTimeout = time.Second * 20
	formFileTimeout    = time.Second * 10
	submissionTimeout  = time.Second * 180
)

const submissionCacheSize = 64

// Client talks to a KoboToolbox-style survey platform API. All state
// it hands out is rebuilt from the remote API on each call; the only
// thing it retains is the submission memo cache.
type Client struct {
	BaseURL string
	http    *resty.Client

	submissions *expirable.LRU[string, []map[string]any]
}

type ClientOptions struct {
	// e.g. https://eu.kobotoolbox.org
	BaseURL string
	// an account API token, sent as `Authorization: Token <...>`
	Token string
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" || opts.Token == "" {
		return nil, ErrMissingCredentials
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetHeader("Authorization", fmt.Sprintf("Token %s", opts.Token))
	client.SetHeader("Accept", "application/json")

	telemetry.InstrumentResty(client, "kobo/http")

	return &Client{
		BaseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    client,
		// ttl 0: entries never expire, invalidation is explicit
		submissions: expirable.NewLRU[string, []map[string]any](submissionCacheSize, nil, 0),
	}, nil
}

// ClearCache drops all memoized submission results.
func (c *Client) ClearCache() {
	c.submissions.Purge()
}
