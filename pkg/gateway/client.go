package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"

	"threadsync/pkg/logger"
	"threadsync/pkg/models"
)

// Client talks to the remote message service. It attaches the bearer
// credential to every request; callers never see or manage the token. The
// client is explicitly constructed and injected into the engine (no global
// singleton), so tests can substitute a fake Remote.
type Client struct {
	base    string
	token   string
	timeout time.Duration
	httpc   *fasthttp.Client
}

// New returns a Client bound to baseURL. timeout bounds each request when
// the caller's context carries no deadline of its own.
func New(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:    baseURL,
		token:   token,
		timeout: timeout,
		httpc:   &fasthttp.Client{},
	}
}

// do performs one request and hands back status and body. A timeout is a
// transport failure; the caller maps both onto the same RequestError kind.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.base + path)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.httpc.DoDeadline(req, resp, deadline); err != nil {
		return 0, nil, err
	}
	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

// FetchMessages returns the first page of the remote history for a
// conversation, bounded by limit. The engine does not paginate further.
func (c *Client) FetchMessages(ctx context.Context, conversationID string, limit int) ([]models.RemoteMessage, error) {
	path := fmt.Sprintf("/v1/conversations/%s/messages?limit=%d", url.PathEscape(conversationID), limit)
	status, body, err := c.do(ctx, fasthttp.MethodGet, path, nil)
	if err != nil {
		logger.Warn("remote_fetch_transport_error", "conversation", conversationID, "error", err)
		return nil, &RequestError{Op: OpFetch, Err: err}
	}
	if status < 200 || status >= 300 {
		logger.Warn("remote_fetch_rejected", "conversation", conversationID, "status", status)
		return nil, &RequestError{Op: OpFetch, StatusCode: status, Body: string(body)}
	}
	var out struct {
		Messages []models.RemoteMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &RequestError{Op: OpFetch, StatusCode: status, Err: err}
	}
	return out.Messages, nil
}

// SendMessage posts text to a conversation and returns the confirmed wire
// message with its server-issued identity.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (models.RemoteMessage, error) {
	b, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return models.RemoteMessage{}, &RequestError{Op: OpSend, Err: err}
	}
	path := "/v1/conversations/" + url.PathEscape(conversationID) + "/messages"
	status, body, err := c.do(ctx, fasthttp.MethodPost, path, b)
	if err != nil {
		logger.Warn("remote_send_transport_error", "conversation", conversationID, "error", err)
		return models.RemoteMessage{}, &RequestError{Op: OpSend, Err: err}
	}
	if status < 200 || status >= 300 {
		logger.Warn("remote_send_rejected", "conversation", conversationID, "status", status)
		return models.RemoteMessage{}, &RequestError{Op: OpSend, StatusCode: status, Body: string(body)}
	}
	var out struct {
		Message models.RemoteMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return models.RemoteMessage{}, &RequestError{Op: OpSend, StatusCode: status, Err: err}
	}
	return out.Message, nil
}

// DeleteMessage deletes a message by its server-issued identity.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	path := "/v1/messages/" + url.PathEscape(messageID)
	status, body, err := c.do(ctx, fasthttp.MethodDelete, path, nil)
	if err != nil {
		logger.Warn("remote_delete_transport_error", "message", messageID, "error", err)
		return &RequestError{Op: OpDelete, Err: err}
	}
	if status < 200 || status >= 300 {
		logger.Warn("remote_delete_rejected", "message", messageID, "status", status)
		return &RequestError{Op: OpDelete, StatusCode: status, Body: string(body)}
	}
	return nil
}
