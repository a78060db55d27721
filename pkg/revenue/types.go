// Package revenue defines the domain types shared by the snapshot cache, the
// transaction history store and the per-account controller.
package revenue

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
)

var (
	// ErrFetchFailed marks a failed snapshot or page fetch.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrUnexpectedResponseType marks a gateway reply of a type the caller did not ask for.
	ErrUnexpectedResponseType = errors.New("unexpected response type")
	// ErrUnknownStream is returned when parsing an unknown stream name.
	ErrUnknownStream = errors.New("unknown transaction stream")
)

// AccountID identifies a local account. Every account owns one controller.
type AccountID int64

func (a AccountID) String() string { return strconv.FormatInt(int64(a), 10) }

// EntityID identifies a bot or channel whose revenue is tracked.
type EntityID int64

func (e EntityID) String() string { return strconv.FormatInt(int64(e), 10) }

// ParseEntityID parses a decimal entity id.
func ParseEntityID(s string) (EntityID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid entity id %q: %w", s, err)
	}
	return EntityID(v), nil
}

// PeerKind tells bots apart from broadcast channels.
type PeerKind int

const (
	PeerBot PeerKind = iota + 1
	PeerChannel
)

func (k PeerKind) String() string {
	switch k {
	case PeerBot:
		return "bot"
	case PeerChannel:
		return "channel"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k PeerKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PeerKind) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "bot":
		*k = PeerBot
	case "channel":
		*k = PeerChannel
	default:
		return fmt.Errorf("unknown peer kind %q", b)
	}
	return nil
}

// StreamType selects one of the three transaction streams of an entity.
type StreamType int

const (
	StreamAll StreamType = iota
	StreamIncoming
	StreamOutgoing
)

// Streams lists every stream type in a stable order.
var Streams = []StreamType{StreamAll, StreamIncoming, StreamOutgoing}

func (s StreamType) String() string {
	switch s {
	case StreamAll:
		return "all"
	case StreamIncoming:
		return "incoming"
	case StreamOutgoing:
		return "outgoing"
	default:
		return "stream(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseStreamType parses "all", "incoming" or "outgoing".
func ParseStreamType(s string) (StreamType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all":
		return StreamAll, nil
	case "incoming", "in":
		return StreamIncoming, nil
	case "outgoing", "out":
		return StreamOutgoing, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStream, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s StreamType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StreamType) UnmarshalText(b []byte) error {
	v, err := ParseStreamType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Balances groups the three balance figures of a status.
type Balances struct {
	Current   amount.Amount `json:"current"`
	Available amount.Amount `json:"available"`
	Overall   amount.Amount `json:"overall"`
}

// ChartPoint is one sample of a revenue chart series.
type ChartPoint struct {
	At    time.Time     `json:"at"`
	Value amount.Amount `json:"value"`
}

// Chart is an optional revenue time series.
type Chart struct {
	Title  string       `json:"title,omitempty"`
	Points []ChartPoint `json:"points"`
}

// Status is the revenue status of one entity. It is always replaced as a whole.
type Status struct {
	Balances          Balances        `json:"balances"`
	WithdrawalEnabled bool            `json:"withdrawal_enabled"`
	NextWithdrawalAt  time.Time       `json:"next_withdrawal_at,omitempty"`
	USDRate           decimal.Decimal `json:"usd_rate"`
	Chart             *Chart          `json:"chart,omitempty"`
}

// Clone returns a deep copy so callers outside the owning controller never share memory with it.
func (s *Status) Clone() *Status {
	if s == nil {
		return nil
	}
	out := *s
	if s.Chart != nil {
		chart := *s.Chart
		chart.Points = append([]ChartPoint(nil), s.Chart.Points...)
		out.Chart = &chart
	}
	return &out
}

// Direction of a transaction relative to the entity.
type Direction int

const (
	DirectionIncoming Direction = iota + 1
	DirectionOutgoing
)

func (d Direction) String() string {
	if d == DirectionOutgoing {
		return "outgoing"
	}
	return "incoming"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "incoming":
		*d = DirectionIncoming
	case "outgoing":
		*d = DirectionOutgoing
	default:
		return fmt.Errorf("unknown direction %q", b)
	}
	return nil
}

// Transaction is one entry of a transaction stream, as returned by the server.
type Transaction struct {
	ID        string        `json:"id"`
	Direction Direction     `json:"direction"`
	Amount    amount.Amount `json:"amount"`
	Date      time.Time     `json:"date"`
	Peer      string        `json:"peer,omitempty"`
	Pending   bool          `json:"pending,omitempty"`
	Failed    bool          `json:"failed,omitempty"`
	Refund    bool          `json:"refund,omitempty"`
}

// BalanceUpdate is an out-of-band push telling that an entity's balance changed.
type BalanceUpdate struct {
	Kind     PeerKind `json:"kind"`
	EntityID EntityID `json:"entity_id"`
	Status   *Status  `json:"status"`
}
