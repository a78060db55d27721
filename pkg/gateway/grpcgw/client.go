// Package grpcgw implements gateway.Gateway over gRPC.
//
// The revenue service is called with untyped unary RPCs carrying
// google.protobuf.Struct messages, authenticated with OAuth2 client
// credentials when configured.
package grpcgw

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chainsafe/revenue-middleware/pkg/gateway"
)

// RPCError describes a failed call, including the ErrorInfo reason when the server sent one.
type RPCError struct {
	Method  string
	Code    codes.Code
	Reason  string
	Message string
}

func (e *RPCError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s (%s): %s", e.Method, e.Code, e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Method, e.Code, e.Message)
}

// Option configures the client using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger      *zap.Logger
	httpClient  *http.Client
	dialOpts    []grpc.DialOption
	tokenSource TokenSource // optional override, primarily for tests
}

// WithLogger sets a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets the HTTP client used against the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithDialOptions appends additional gRPC dial options.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(s *settings) { s.dialOpts = append(s.dialOpts, opts...) }
}

// WithTokenSource overrides the token source built from the auth config.
func WithTokenSource(ts TokenSource) Option {
	return func(s *settings) { s.tokenSource = ts }
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop(), httpClient: http.DefaultClient}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// Client is a gateway.Gateway backed by a gRPC connection.
type Client struct {
	conn   *grpc.ClientConn
	tokens TokenSource
	logger *zap.Logger
}

var _ gateway.Gateway = (*Client)(nil)

// New creates a client for cfg. The connection is established lazily.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("gateway url is required")
	}
	s := applyOptions(opts)

	dopts, err := dialOptions(cfg, s.dialOpts)
	if err != nil {
		return nil, err
	}
	conn, err := grpc.NewClient(cfg.URL, dopts...)
	if err != nil {
		return nil, fmt.Errorf("create grpc client for %s: %w", cfg.URL, err)
	}

	tokens := s.tokenSource
	if tokens == nil && cfg.Auth != nil {
		tokens = NewClientCredentials(cfg.Auth, s.httpClient)
	}

	return &Client{conn: conn, tokens: tokens, logger: s.logger.Named("gateway")}, nil
}

// Send implements gateway.Gateway.
func (c *Client) Send(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	in, err := encodeRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, err = c.outgoingContext(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, fullMethod(req.Method()), in, out); err != nil {
		rpcErr := toRPCError(req.Method(), err)
		if rpcErr.Code == codes.Unauthenticated && c.tokens != nil {
			c.tokens.Invalidate()
		}
		c.logger.Debug("gateway call failed",
			zap.String("method", req.Method()),
			zap.Stringer("request_id", req.ID()),
			zap.Error(rpcErr))
		return nil, rpcErr
	}

	return decodeResponse(out)
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) outgoingContext(ctx context.Context, req gateway.Request) (context.Context, error) {
	pairs := []string{"x-request-id", req.ID().String()}
	if c.tokens != nil {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("obtain access token: %w", err)
		}
		pairs = append(pairs, "authorization", "Bearer "+tok)
	}
	return metadata.AppendToOutgoingContext(ctx, pairs...), nil
}

func toRPCError(method string, err error) *RPCError {
	st, ok := status.FromError(err)
	if !ok {
		return &RPCError{Method: method, Code: codes.Unknown, Message: err.Error()}
	}
	rpcErr := &RPCError{Method: method, Code: st.Code(), Message: st.Message()}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			rpcErr.Reason = info.GetReason()
			break
		}
	}
	return rpcErr
}
