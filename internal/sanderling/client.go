package sanderling

import (
	"context"
	"fmt"
	"time"

	"sigwatch/internal/components/assert"
	"sigwatch/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

type ClientOptions struct {
	// URL is the endpoint of the memory reading service, every operation is
	// a POST to this same url.
	URL               string
	Timeout           time.Duration
	RequestsPerSecond float64
	// Output receives every raw exchange with the service when set.
	Output telemetry.RestyOutput
}

// Client talks to the volatile process api of the Sanderling alternate ui.
type Client struct {
	http *resty.Client
	url  string
	tel  telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) *Client {
	assert.NotEmptyStr(opts.URL)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("sanderling", tel)

	httpClient := resty.New()
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}
	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	return &Client{http: httpClient, url: opts.URL, tel: tel}
}

// call posts one volatile process request and decodes its response.
func call[T any](ctx context.Context, c *Client, reportId, op string, args any) (Envelope[T], error) {
	c.tel.ReportDebug(reportId, op, args)

	body, err := EncodeRequest(op, args)
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("json marshal: %w", err))
		return Envelope[T]{}, err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post(c.url)
	if err != nil {
		if ctx.Err() != nil {
			return Envelope[T]{}, ctx.Err()
		}
		c.tel.ReportWarning(reportId, fmt.Errorf("fetch: %w", err))
		return Envelope[T]{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if !res.IsSuccess() {
		err = fmt.Errorf("%w: response status %s", ErrTransport, res.Status())
		c.tel.ReportWarning(reportId, err)
		return Envelope[T]{}, err
	}

	envelope, err := Decode[T](res.Body())
	if err != nil {
		c.tel.ReportBroken(reportId, fmt.Errorf("decode: %w", err), string(res.Body()))
		return Envelope[T]{}, err
	}
	c.tel.ReportDebug(fmt.Sprintf("%s response", reportId), envelope.Kind)
	return envelope, nil
}
