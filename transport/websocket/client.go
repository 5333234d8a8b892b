package websocket

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/gorilla/websocket"
	"github.com/yola1107/cardduel/library/xgo"
)

var (
	errClosedRequest = errors.New("client: session not established")
	errMaxRetries    = errors.New("client: max retries reached")
	errInvalidURL    = errors.New("client: invalid URL")
)

// MessageHandler receives every inbound frame of a client session.
type MessageHandler func(data []byte)

type ClientOption func(*clientOptions)

func WithTlsConf(tlsConfig *tls.Config) ClientOption {
	return func(o *clientOptions) { o.tlsConf = tlsConfig }
}

func WithSessionConfig(c *SessionConfig) ClientOption {
	return func(o *clientOptions) { o.session = c }
}

func WithEndpoint(endpoint string) ClientOption {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

func WithConnectFunc(fn func(*Session)) ClientOption {
	return func(o *clientOptions) { o.connectFunc = fn }
}

func WithDisconnectFunc(fn func(*Session)) ClientOption {
	return func(o *clientOptions) { o.disconnectFunc = fn }
}

func WithMessageHandler(fn MessageHandler) ClientOption {
	return func(o *clientOptions) { o.messageHandler = fn }
}

// WithRetryPolicy enables reconnects. maxAttempt 0 disables them, a negative value retries forever.
func WithRetryPolicy(b, m time.Duration, maxAttempt int32) ClientOption {
	return func(o *clientOptions) {
		o.retryPolicy.baseDelay = b
		o.retryPolicy.maxDelay = m
		o.retryPolicy.maxAttempt = maxAttempt
	}
}

type clientOptions struct {
	ctx            context.Context
	tlsConf        *tls.Config
	endpoint       string
	connectFunc    func(*Session)
	disconnectFunc func(*Session)
	messageHandler MessageHandler
	session        *SessionConfig
	retryPolicy    *retryPolicy
}

type retryPolicy struct {
	baseDelay  time.Duration
	maxDelay   time.Duration
	maxAttempt int32
}

// Client is a websocket client speaking text frames.
type Client struct {
	opts       *clientOptions
	url        *url.URL
	mu         sync.Mutex
	session    *Session
	closing    atomic.Bool
	retryCount atomic.Int32
}

// NewClient dials the endpoint and returns a connected client.
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	options := &clientOptions{
		ctx:      ctx,
		endpoint: "ws://127.0.0.1:3000/api/cardgame/ws",
		session:  defaultSessionConfig(),
		retryPolicy: &retryPolicy{
			baseDelay:  time.Second,
			maxDelay:   15 * time.Second,
			maxAttempt: 0,
		},
	}
	for _, o := range opts {
		o(options)
	}

	u, err := parseURL(options.endpoint, options.tlsConf == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidURL, err)
	}

	c := &Client{opts: options, url: u}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseURL(endpoint string, insecure bool) (*url.URL, error) {
	if !strings.Contains(endpoint, "://") {
		if insecure {
			endpoint = "ws://" + endpoint
		} else {
			endpoint = "wss://" + endpoint
		}
	}
	return url.Parse(endpoint)
}

func (c *Client) IsAlive() bool {
	if c == nil {
		return false
	}
	sess := c.GetSession()
	return sess != nil && !sess.Closed()
}

func (c *Client) GetSession() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Send writes one text frame.
func (c *Client) Send(data []byte) error {
	sess := c.GetSession()
	if sess == nil || sess.Closed() {
		return errClosedRequest
	}
	return sess.Send(data)
}

func (c *Client) canRetry() bool {
	maxAttempt := c.opts.retryPolicy.maxAttempt
	switch {
	case c.closing.Load():
		return false
	case maxAttempt < 0:
		return true
	case maxAttempt == 0:
		return false
	default:
		return c.retryCount.Load() < maxAttempt
	}
}

func (c *Client) dial() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.opts.session.WriteTimeout,
		TLSClientConfig:  c.opts.tlsConf,
	}

	for {
		if err := c.opts.ctx.Err(); err != nil {
			return err
		}

		conn, _, err := dialer.DialContext(c.opts.ctx, c.url.String(), nil)
		if err == nil {
			c.retryCount.Store(0)
			sess := NewSession(c, conn, c.opts.session)
			c.mu.Lock()
			c.session = sess
			c.mu.Unlock()
			return nil
		}

		curr := c.retryCount.Add(1)
		if !c.canRetry() {
			return fmt.Errorf("%w: %d attempts: %v", errMaxRetries, curr, err)
		}

		delay := c.calculateBackoff(curr)
		log.Warnf("reconnecting to %q. attempt=%d retrying in %v: %v", c.url, curr, delay, err)

		select {
		case <-time.After(delay):
		case <-c.opts.ctx.Done():
			return c.opts.ctx.Err()
		}
	}
}

func (c *Client) calculateBackoff(attempt int32) time.Duration {
	backoff := float64(c.opts.retryPolicy.baseDelay) * math.Pow(1.5, float64(attempt-1))
	backoff = math.Min(backoff, float64(c.opts.retryPolicy.maxDelay))
	return time.Duration(backoff * (0.9 + 0.2*rand.Float64()))
}

func (c *Client) OnSessionOpen(sess *Session) {
	if c.opts.connectFunc != nil {
		c.opts.connectFunc(sess)
	}
}

func (c *Client) OnSessionClose(sess *Session) {
	if c.opts.disconnectFunc != nil {
		c.opts.disconnectFunc(sess)
	}
	if c.canRetry() {
		go func() {
			if err := c.dial(); err != nil {
				log.Warnf("reconnect %q failed: %v", c.url, err)
			}
		}()
	}
}

func (c *Client) DispatchMessage(_ *Session, data []byte) error {
	if c.opts.messageHandler == nil {
		return nil
	}
	defer xgo.RecoverFromError(nil)
	c.opts.messageHandler(data)
	return nil
}

func (c *Client) Close() {
	c.closing.Store(true)
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()
	if s != nil {
		s.Close(false)
	}
}
