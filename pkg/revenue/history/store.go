// Package history keeps the paginated transaction streams of one account.
//
// Every entity has three independent streams (all, incoming, outgoing), each with
// its own cursor and end-of-stream flag. Like the snapshot cache, the store only
// tracks state; the owning controller issues the fetches and serializes access.
package history

import (
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

type streamKey struct {
	entity revenue.EntityID
	stream revenue.StreamType
}

type stream struct {
	transactions []revenue.Transaction
	cursor       *string
	loading      bool
	endReached   bool
	everHadData  bool
}

func (s *stream) started() bool {
	return s.cursor != nil || len(s.transactions) > 0 || s.endReached
}

// View is a read-only copy of one stream.
type View struct {
	Entity       revenue.EntityID      `json:"entity_id"`
	Stream       revenue.StreamType    `json:"stream"`
	Transactions []revenue.Transaction `json:"transactions"`
	Cursor       *string               `json:"cursor,omitempty"`
	Loading      bool                  `json:"loading"`
	EndReached   bool                  `json:"end_reached"`
	EverHadData  bool                  `json:"ever_had_data"`
}

// Store maps (entity, stream) pairs to their pagination state.
type Store struct {
	streams map[streamKey]*stream
}

// New creates an empty store.
func New() *Store {
	return &Store{streams: make(map[streamKey]*stream)}
}

// BeginLoad marks the stream as loading and returns the cursor to fetch from.
// It returns false, leaving the stream untouched, when the stream is already
// loading or has reached its end. The first page uses the empty cursor.
func (s *Store) BeginLoad(id revenue.EntityID, st revenue.StreamType) (string, bool) {
	str := s.stream(id, st)
	if str.loading || str.endReached {
		return "", false
	}
	str.loading = true
	if str.cursor == nil {
		return "", true
	}
	return *str.cursor, true
}

// Complete appends a fetched page. more tells whether the server has further pages;
// next is the cursor of the following page and is ignored once the end is reached.
// A page claiming more data without a cursor ends the stream, since the empty
// cursor would restart it from the first page.
func (s *Store) Complete(id revenue.EntityID, st revenue.StreamType, txs []revenue.Transaction, more bool, next string) {
	str := s.stream(id, st)
	str.transactions = append(str.transactions, txs...)
	str.endReached = !more || next == ""
	if str.endReached {
		str.cursor = nil
	} else {
		str.cursor = &next
	}
	if len(txs) > 0 {
		str.everHadData = true
	}
	str.loading = false
}

// Fail ends a load that could not be fetched. The stream is marked as ended so
// callers paging on scroll stop until the entity is invalidated, which restarts
// it from the first page.
func (s *Store) Fail(id revenue.EntityID, st revenue.StreamType) {
	str := s.stream(id, st)
	str.loading = false
	str.endReached = true
	str.cursor = nil
}

// Invalidate resets every stream of the entity that is not currently loading and
// returns the streams it reset. In-flight loads are left to land.
func (s *Store) Invalidate(id revenue.EntityID) []revenue.StreamType {
	reset := make([]revenue.StreamType, 0, len(revenue.Streams))
	for _, st := range revenue.Streams {
		str := s.stream(id, st)
		if str.loading {
			continue
		}
		str.transactions = nil
		str.cursor = nil
		str.endReached = false
		reset = append(reset, st)
	}
	return reset
}

// PreloadCandidates returns the streams of the entity that were never started and are idle.
func (s *Store) PreloadCandidates(id revenue.EntityID) []revenue.StreamType {
	var out []revenue.StreamType
	for _, st := range revenue.Streams {
		str := s.stream(id, st)
		if !str.loading && !str.started() {
			out = append(out, st)
		}
	}
	return out
}

// View returns a copy of the stream.
func (s *Store) View(id revenue.EntityID, st revenue.StreamType) View {
	v := View{Entity: id, Stream: st, Transactions: []revenue.Transaction{}}
	str, ok := s.streams[streamKey{id, st}]
	if !ok {
		return v
	}
	v.Transactions = append(v.Transactions, str.transactions...)
	if str.cursor != nil {
		cursor := *str.cursor
		v.Cursor = &cursor
	}
	v.Loading = str.loading
	v.EndReached = str.endReached
	v.EverHadData = str.everHadData
	return v
}

// IsLoading reports whether a page fetch is in flight.
func (s *Store) IsLoading(id revenue.EntityID, st revenue.StreamType) bool {
	str, ok := s.streams[streamKey{id, st}]
	return ok && str.loading
}

// IsFullyLoaded reports whether the stream reached its end.
func (s *Store) IsFullyLoaded(id revenue.EntityID, st revenue.StreamType) bool {
	str, ok := s.streams[streamKey{id, st}]
	return ok && str.endReached
}

// HasAny reports whether the stream holds any transaction.
func (s *Store) HasAny(id revenue.EntityID, st revenue.StreamType) bool {
	str, ok := s.streams[streamKey{id, st}]
	return ok && len(str.transactions) > 0
}

// HasAnyStream reports whether any stream of the entity holds a transaction.
func (s *Store) HasAnyStream(id revenue.EntityID) bool {
	for _, st := range revenue.Streams {
		if s.HasAny(id, st) {
			return true
		}
	}
	return false
}

// EverHadData reports whether the stream ever received a non-empty page.
func (s *Store) EverHadData(id revenue.EntityID, st revenue.StreamType) bool {
	str, ok := s.streams[streamKey{id, st}]
	return ok && str.everHadData
}

func (s *Store) stream(id revenue.EntityID, st revenue.StreamType) *stream {
	k := streamKey{id, st}
	str, ok := s.streams[k]
	if !ok {
		str = &stream{}
		s.streams[k] = str
	}
	return str
}
