package grpcgw

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chainsafe/revenue-middleware/pkg/gateway"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// Messages travel as google.protobuf.Struct. Replies name their type in "@type";
// ids and nano values are strings so they survive the float64 number encoding.
const (
	serviceName = "revenue.v1.RevenueService"

	TypeRevenueStatus    = "revenue.v1.RevenueStatus"
	TypeTransactionsPage = "revenue.v1.TransactionsPage"
)

func fullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

// UnknownResponse is returned for replies whose "@type" this client does not know.
type UnknownResponse struct {
	Type string
}

func encodeRequest(req gateway.Request) (*structpb.Struct, error) {
	var fields map[string]any
	switch r := req.(type) {
	case *gateway.StatusRequest:
		fields = map[string]any{
			"request_id": r.RequestID.String(),
			"account":    r.Account.String(),
			"entity_id":  r.EntityID.String(),
		}
	case *gateway.TransactionsRequest:
		fields = map[string]any{
			"request_id": r.RequestID.String(),
			"account":    r.Account.String(),
			"entity_id":  r.EntityID.String(),
			"stream":     r.Stream.String(),
			"cursor":     r.Cursor,
			"limit":      float64(r.Limit),
		}
	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}
	return structpb.NewStruct(fields)
}

type statusReply struct {
	Type string `json:"@type"`
	revenue.Status
}

type pageReply struct {
	Type         string                `json:"@type"`
	Transactions []revenue.Transaction `json:"transactions"`
	More         bool                  `json:"more"`
	NextCursor   string                `json:"next_cursor"`
}

func decodeResponse(msg *structpb.Struct) (gateway.Response, error) {
	typ := msg.GetFields()["@type"].GetStringValue()

	raw, err := protojson.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %s reply: %w", typ, err)
	}

	switch typ {
	case TypeRevenueStatus:
		var r statusReply
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return &gateway.StatusResponse{Status: r.Status}, nil
	case TypeTransactionsPage:
		var r pageReply
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode %s: %w", typ, err)
		}
		return &gateway.TransactionsResponse{
			Transactions: r.Transactions,
			More:         r.More,
			NextCursor:   r.NextCursor,
		}, nil
	default:
		return &UnknownResponse{Type: typ}, nil
	}
}

// EncodeStatus builds the wire form of a revenue status reply. Used by test servers and fixtures.
func EncodeStatus(st revenue.Status) (*structpb.Struct, error) {
	return encodeReply(statusReply{Type: TypeRevenueStatus, Status: st})
}

// EncodePage builds the wire form of a transactions page reply.
func EncodePage(txs []revenue.Transaction, more bool, next string) (*structpb.Struct, error) {
	return encodeReply(pageReply{Type: TypeTransactionsPage, Transactions: txs, More: more, NextCursor: next})
}

func encodeReply(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	msg := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, msg); err != nil {
		return nil, err
	}
	return msg, nil
}
