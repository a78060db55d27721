// Package gateway defines the remote request contract consumed by the revenue controller.
package gateway

import (
	"context"

	"github.com/google/uuid"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// Gateway sends one request to the remote service and returns its reply.
//
// Send may block; callers that must not block run it on their own goroutine.
// Timeouts are the gateway's responsibility.
type Gateway interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// Request is implemented by every request type the gateway understands.
type Request interface {
	// Method is the remote method name, used for routing, logs and metrics.
	Method() string
	ID() uuid.UUID
}

// Response is the decoded reply. Callers type-switch on the concrete type.
type Response any

const (
	MethodGetRevenueStatus = "GetRevenueStatus"
	MethodGetTransactions  = "GetTransactions"
)

// StatusRequest asks for the current revenue status of an entity.
type StatusRequest struct {
	RequestID uuid.UUID
	Account   revenue.AccountID
	EntityID  revenue.EntityID
}

func (r *StatusRequest) Method() string { return MethodGetRevenueStatus }
func (r *StatusRequest) ID() uuid.UUID  { return r.RequestID }

// TransactionsRequest asks for one page of a transaction stream.
// An empty cursor requests the first page.
type TransactionsRequest struct {
	RequestID uuid.UUID
	Account   revenue.AccountID
	EntityID  revenue.EntityID
	Stream    revenue.StreamType
	Cursor    string
	Limit     int
}

func (r *TransactionsRequest) Method() string { return MethodGetTransactions }
func (r *TransactionsRequest) ID() uuid.UUID  { return r.RequestID }

// StatusResponse carries a full revenue status.
type StatusResponse struct {
	Status revenue.Status
}

// TransactionsResponse carries one page of transactions.
// More is false on the last page; NextCursor is only meaningful when More is true.
type TransactionsResponse struct {
	Transactions []revenue.Transaction
	More         bool
	NextCursor   string
}

// Func adapts a function to the Gateway interface.
type Func func(ctx context.Context, req Request) (Response, error)

// Send calls f.
func (f Func) Send(ctx context.Context, req Request) (Response, error) { return f(ctx, req) }
