// Package authority talks to the remote fiscal authority (EIS) over
// HTTP/JSON. Every outbound attempt, including failures, is mirrored into
// the API call log.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"

	apilogdomain "github.com/kwachapos/fiscalgate/internal/apilog/domain"
	"github.com/kwachapos/fiscalgate/internal/config"
	invoicedomain "github.com/kwachapos/fiscalgate/internal/invoice/domain"
	"github.com/kwachapos/fiscalgate/internal/signing"
	terminaldomain "github.com/kwachapos/fiscalgate/internal/terminal/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	submitSalePath      = "/sales/submit-sales-transaction"
	blockingMessagePath = "/utilities/get-terminal-blocking-message"
	unblockStatusPath   = "/utilities/check-terminal-unblock-status"
)

var (
	// ErrTransport covers non-timeout network failures (DNS, TLS,
	// connection refused). These surface as submission failures and are
	// never queued offline.
	ErrTransport = errors.New("authority_transport_failure")
	// ErrRejected carries the authority's rejection remark.
	ErrRejected = errors.New("authority_rejected")
	// ErrMalformedResponse means the authority answered with an
	// undecodable body.
	ErrMalformedResponse = errors.New("authority_malformed_response")
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Recorder apilogdomain.Recorder
}

// Client submits invoices and terminal state queries to the authority.
type Client struct {
	baseURL  string
	http     *http.Client
	log      *zap.Logger
	recorder apilogdomain.Recorder
}

func NewClient(p Params) *Client {
	return &Client{
		baseURL: p.Config.EISBaseURL,
		http: &http.Client{
			Timeout: p.Config.EISTimeout,
		},
		log:      p.Log.Named("authority"),
		recorder: p.Recorder,
	}
}

// SubmitSale sends the invoice document to the submission endpoint.
// A timeout is reported in the outcome, not as an error; every other
// transport problem returns ErrTransport.
func (c *Client) SubmitSale(ctx context.Context, terminal *terminaldomain.Terminal, doc *invoicedomain.Document) (SubmitOutcome, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return SubmitOutcome{}, fmt.Errorf("encode invoice: %w", err)
	}
	return c.submitPayload(ctx, terminal, payload)
}

// Resubmit replays a previously stored invoice payload verbatim against
// the same endpoint with the same headers.
func (c *Client) Resubmit(ctx context.Context, terminal *terminaldomain.Terminal, payload []byte) (SubmitOutcome, error) {
	return c.submitPayload(ctx, terminal, payload)
}

func (c *Client) submitPayload(ctx context.Context, terminal *terminaldomain.Terminal, payload []byte) (SubmitOutcome, error) {
	env, err := c.post(ctx, terminal, submitSalePath, payload)
	if err != nil {
		if isTimeout(err) {
			c.log.Warn("submission timed out, taking offline path",
				zap.String("terminal_id", terminal.TerminalID),
			)
			return SubmitOutcome{Kind: OutcomeTimeout}, nil
		}
		return SubmitOutcome{}, errors.Join(ErrTransport, err)
	}

	if !env.success() {
		return SubmitOutcome{
			Kind:       OutcomeRejected,
			StatusCode: env.StatusCode,
			Remark:     env.Remark,
		}, nil
	}

	var data saleData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return SubmitOutcome{}, errors.Join(ErrMalformedResponse, err)
		}
	}
	return SubmitOutcome{
		Kind:                       OutcomeConfirmed,
		StatusCode:                 env.StatusCode,
		Remark:                     env.Remark,
		ValidationURL:              data.ValidationURL,
		ShouldDownloadLatestConfig: data.ShouldDownloadLatestConfig,
		ShouldBlockTerminal:        data.ShouldBlockTerminal,
	}, nil
}

// BlockingMessage fetches the human-readable reason the authority blocked
// a terminal.
func (c *Client) BlockingMessage(ctx context.Context, terminal *terminaldomain.Terminal) (string, error) {
	payload, _ := json.Marshal(map[string]string{"terminalId": terminal.TerminalID})

	env, err := c.post(ctx, terminal, blockingMessagePath, payload)
	if err != nil {
		return "", errors.Join(ErrTransport, err)
	}
	if !env.success() {
		return "", fmt.Errorf("%w: %s", ErrRejected, env.Remark)
	}

	var data blockingMessageData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", errors.Join(ErrMalformedResponse, err)
	}
	return data.BlockingReason, nil
}

// UnblockStatus asks whether the authority has cleared the terminal.
func (c *Client) UnblockStatus(ctx context.Context, terminal *terminaldomain.Terminal) (bool, error) {
	payload, _ := json.Marshal(map[string]string{"terminalId": terminal.TerminalID})

	env, err := c.post(ctx, terminal, unblockStatusPath, payload)
	if err != nil {
		return false, errors.Join(ErrTransport, err)
	}
	if !env.success() {
		return false, fmt.Errorf("%w: %s", ErrRejected, env.Remark)
	}

	var data unblockStatusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return false, errors.Join(ErrMalformedResponse, err)
	}
	return data.IsUnblocked, nil
}

func (c *Client) post(ctx context.Context, terminal *terminaldomain.Terminal, path string, payload []byte) (envelope, error) {
	fullURL := c.baseURL + path
	headers := map[string]string{
		"accept":        "application/json",
		"Authorization": "Bearer " + terminal.Token,
		"Content-Type":  "application/json",
		"x-signature":   signing.ActivationHeader(terminal.ActivationCode, terminal.SecretKey),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return envelope{}, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx, fullURL, headers, payload, err)
		return envelope{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordFailure(ctx, fullURL, headers, payload, err)
		return envelope{}, err
	}

	c.recordResponse(ctx, fullURL, headers, payload, resp, body)

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return envelope{}, errors.Join(ErrMalformedResponse, err)
	}
	return env, nil
}

func (c *Client) recordResponse(ctx context.Context, fullURL string, reqHeaders map[string]string, payload []byte, resp *http.Response, body []byte) {
	c.recorder.Record(context.WithoutCancel(ctx), apilogdomain.Entry{
		Method:          http.MethodPost,
		URL:             fullURL,
		RequestHeaders:  reqHeaders,
		RequestBody:     string(payload),
		ResponseStatus:  resp.StatusCode,
		ResponseHeaders: flattenHeaders(resp.Header),
		ResponseBody:    string(body),
	})
}

func (c *Client) recordFailure(ctx context.Context, fullURL string, reqHeaders map[string]string, payload []byte, cause error) {
	c.recorder.Record(context.WithoutCancel(ctx), apilogdomain.Entry{
		Method:         http.MethodPost,
		URL:            fullURL,
		RequestHeaders: reqHeaders,
		RequestBody:    string(payload),
		ResponseStatus: 0,
		ResponseBody:   cause.Error(),
	})
}

func flattenHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		out[k] = h.Get(k)
	}
	return out
}

// isTimeout distinguishes "the authority is slow or unreachable right now"
// from every other transport failure. Only timeouts open the offline path.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
