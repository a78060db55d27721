// Package mockgw is a local stand-in for the remote revenue service: a gRPC
// endpoint answering status and transaction page calls with deterministic data,
// and an OAuth2 token endpoint issuing the bearer tokens it accepts.
//
// Not for production use.
package mockgw

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
	"github.com/chainsafe/revenue-middleware/pkg/gateway"
	"github.com/chainsafe/revenue-middleware/pkg/gateway/grpcgw"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

const (
	defaultTransactions = 45
	defaultTokenTTL     = time.Hour
	errorDomain         = "revenue.mock"
)

// Config controls the generated data and authentication.
type Config struct {
	// Secret signs issued tokens. Empty disables authentication on the gRPC side.
	Secret []byte
	Issuer string
	// ClientSecret, when set, must match the client_secret of token requests.
	ClientSecret string
	TokenTTL     time.Duration
	// Transactions is the length of every entity's history.
	Transactions int
	// Epoch anchors generated dates.
	Epoch time.Time
}

// Server implements the mock revenue service.
type Server struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates a mock server.
func New(cfg Config, logger *zap.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.Transactions <= 0 {
		cfg.Transactions = defaultTransactions
	}
	if cfg.Epoch.IsZero() {
		cfg.Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, logger: logger.Named("mockgw"), now: time.Now}
}

// GRPCServer returns a gRPC server routing every method to the mock handler.
func (s *Server) GRPCServer() *grpc.Server {
	return grpc.NewServer(grpc.UnknownServiceHandler(s.handle))
}

func (s *Server) handle(_ any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)
	if err := s.authorize(stream.Context()); err != nil {
		return err
	}

	in := &structpb.Struct{}
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	fields := in.GetFields()

	entity, err := strconv.ParseInt(fields["entity_id"].GetStringValue(), 10, 64)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid entity_id: %v", err)
	}
	if entity <= 0 {
		return notFound(entity)
	}

	var out *structpb.Struct
	switch path.Base(method) {
	case gateway.MethodGetRevenueStatus:
		out, err = grpcgw.EncodeStatus(s.Status(revenue.EntityID(entity)))
	case gateway.MethodGetTransactions:
		var st revenue.StreamType
		if st, err = revenue.ParseStreamType(fields["stream"].GetStringValue()); err != nil {
			return status.Error(codes.InvalidArgument, err.Error())
		}
		limit := int(fields["limit"].GetNumberValue())
		txs, more, next, perr := s.Page(revenue.EntityID(entity), st, fields["cursor"].GetStringValue(), limit)
		if perr != nil {
			return status.Error(codes.InvalidArgument, perr.Error())
		}
		out, err = grpcgw.EncodePage(txs, more, next)
	default:
		return status.Errorf(codes.Unimplemented, "unknown method %s", method)
	}
	if err != nil {
		return status.Errorf(codes.Internal, "encode reply: %v", err)
	}

	s.logger.Debug("served", zap.String("method", method), zap.Int64("entity_id", entity))
	return stream.SendMsg(out)
}

func notFound(entity int64) error {
	st, err := status.New(codes.NotFound, fmt.Sprintf("entity %d not found", entity)).
		WithDetails(&errdetails.ErrorInfo{Reason: "ENTITY_NOT_FOUND", Domain: errorDomain})
	if err != nil {
		return status.Error(codes.NotFound, "entity not found")
	}
	return st.Err()
}

func (s *Server) authorize(ctx context.Context) error {
	if len(s.cfg.Secret) == 0 {
		return nil
	}
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return status.Error(codes.Unauthenticated, "missing bearer token")
	}
	raw, ok := strings.CutPrefix(values[0], "Bearer ")
	if !ok {
		return status.Error(codes.Unauthenticated, "malformed authorization header")
	}
	if _, err := s.parseToken(raw); err != nil {
		return status.Errorf(codes.Unauthenticated, "invalid token: %v", err)
	}
	return nil
}

// Status returns the generated status of an entity. Available balance grows
// with the entity id; odd ids have withdrawals disabled.
func (s *Server) Status(entity revenue.EntityID) revenue.Status {
	available := amount.FromNano(int64(entity)*1_000_000_000_000, amount.Token)
	overall := amount.FromNano(int64(entity)*3_000_000_000_000, amount.Token)

	points := make([]revenue.ChartPoint, 0, 7)
	for day := range 7 {
		points = append(points, revenue.ChartPoint{
			At:    s.cfg.Epoch.AddDate(0, 0, day),
			Value: amount.FromNano(int64(entity)*int64(day+1)*100_000_000_000, amount.Token),
		})
	}

	return revenue.Status{
		Balances:          revenue.Balances{Current: available, Available: available, Overall: overall},
		WithdrawalEnabled: entity%2 == 0,
		USDRate:           decimal.RequireFromString("0.0132"),
		Chart:             &revenue.Chart{Title: "revenue", Points: points},
	}
}

// Page returns one page of an entity's generated history. The cursor is the
// offset into the filtered stream; the empty cursor is the first page.
func (s *Server) Page(
	entity revenue.EntityID,
	st revenue.StreamType,
	cursor string,
	limit int,
) ([]revenue.Transaction, bool, string, error) {
	offset := 0
	if cursor != "" {
		v, err := strconv.Atoi(cursor)
		if err != nil || v < 0 {
			return nil, false, "", errors.New("invalid cursor")
		}
		offset = v
	}
	if limit <= 0 {
		limit = 20
	}

	all := s.history(entity, st)
	if offset > len(all) {
		offset = len(all)
	}
	end := min(offset+limit, len(all))
	more := end < len(all)
	next := ""
	if more {
		next = strconv.Itoa(end)
	}
	return all[offset:end], more, next, nil
}

// history is newest first. Every third transaction is outgoing.
func (s *Server) history(entity revenue.EntityID, st revenue.StreamType) []revenue.Transaction {
	out := make([]revenue.Transaction, 0, s.cfg.Transactions)
	for i := range s.cfg.Transactions {
		dir := revenue.DirectionIncoming
		if i%3 == 2 {
			dir = revenue.DirectionOutgoing
		}
		if (st == revenue.StreamIncoming && dir != revenue.DirectionIncoming) ||
			(st == revenue.StreamOutgoing && dir != revenue.DirectionOutgoing) {
			continue
		}
		out = append(out, revenue.Transaction{
			ID:        fmt.Sprintf("%d-%d", entity, i),
			Direction: dir,
			Amount:    amount.FromNano(int64(i+1)*1_000_000_000, amount.Token),
			Date:      s.cfg.Epoch.Add(-time.Duration(i) * time.Hour),
			Peer:      "mock",
		})
	}
	return out
}

func (s *Server) parseToken(raw string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	}, opts...); err != nil {
		return nil, err
	}
	return claims, nil
}
