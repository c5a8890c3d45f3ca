package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when attempting to send to a closed client
	ErrClientClosed = errors.New("client is closed")

	// ErrClientTooSlow is returned when a client's outbound queue is full
	ErrClientTooSlow = errors.New("client send queue is full")
)

const (
	// backlogSize is how many recent frames each user's feed keeps for replay
	backlogSize = 64

	// maxClientsPerUser bounds concurrent connections of one user; the oldest
	// connection is dropped to admit a new one
	maxClientsPerUser = 8
)

// Subscriber is one live connection following a user's ledger
type Subscriber interface {
	ID() string
	UserID() int32
	Send(frame []byte) error
	Close() error
}

// frame is a serialized event with its position in the user's feed
type frame struct {
	seq  uint64
	data []byte
}

// feed is the per-user state: the last sequence handed out, the recent
// frames for replay, and the subscribers in connection order
type feed struct {
	seq         uint64
	backlog     []frame
	subscribers []Subscriber
}

func (f *feed) remove(id string) bool {
	for i, s := range f.subscribers {
		if s.ID() == id {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			return true
		}
	}
	return false
}

// replayFrom returns the frames after since, or ok=false when some of them
// have already left the backlog
func (f *feed) replayFrom(since uint64) (frames []frame, ok bool) {
	if since == f.seq {
		return nil, true
	}
	// A sequence ahead of ours was issued before a restart
	if since > f.seq {
		return nil, false
	}
	if len(f.backlog) == 0 || f.backlog[0].seq > since+1 {
		return nil, false
	}
	for _, fr := range f.backlog {
		if fr.seq > since {
			frames = append(frames, fr)
		}
	}
	return frames, true
}

// Hub fans ledger events out to the live connections of each user. Every
// event gets the next sequence number of its user so clients can detect
// gaps and resume after a reconnect. It is safe for concurrent use.
type Hub struct {
	feeds map[int32]*feed
	mu    sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		feeds: make(map[int32]*feed),
	}
}

func (h *Hub) feedFor(userID int32) *feed {
	f, ok := h.feeds[userID]
	if !ok {
		f = &feed{}
		h.feeds[userID] = f
	}
	return f
}

// Register subscribes s to its user's feed. Frames newer than since are
// replayed first; when they are no longer available s receives a resync
// event carrying the current sequence instead. since = 0 means a fresh
// subscription with nothing to replay.
func (h *Hub) Register(s Subscriber, since uint64) {
	userID := s.UserID()

	h.mu.Lock()
	f := h.feedFor(userID)

	var replay [][]byte
	if since > 0 {
		if frames, ok := f.replayFrom(since); ok {
			for _, fr := range frames {
				replay = append(replay, fr.data)
			}
		} else if data, err := ResyncRequired(f.seq).ToJSON(); err == nil {
			replay = append(replay, data)
		}
	}

	var evicted Subscriber
	if len(f.subscribers) >= maxClientsPerUser {
		evicted = f.subscribers[0]
		f.subscribers = f.subscribers[1:]
	}

	// Queue the replay before the subscriber becomes visible to Broadcast
	// so frames arrive in sequence order
	admitted := true
	for _, data := range replay {
		if err := s.Send(data); err != nil {
			admitted = false
			break
		}
	}
	if admitted {
		f.subscribers = append(f.subscribers, s)
	}
	h.mu.Unlock()

	if evicted != nil {
		_ = evicted.Close()
		log.Info().
			Int32("user_id", userID).
			Str("client_id", evicted.ID()).
			Msg("WebSocket client evicted: too many connections")
	}
	if !admitted {
		_ = s.Close()
		log.Warn().Int32("user_id", userID).Str("client_id", s.ID()).Msg("WebSocket client dropped during replay")
		return
	}

	log.Debug().
		Int32("user_id", userID).
		Str("client_id", s.ID()).
		Uint64("since", since).
		Int("replayed", len(replay)).
		Msg("WebSocket client registered")
}

// Unregister removes a subscriber from the hub
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f, ok := h.feeds[s.UserID()]; ok && f.remove(s.ID()) {
		log.Debug().
			Int32("user_id", s.UserID()).
			Str("client_id", s.ID()).
			Msg("WebSocket client unregistered")
	}
}

// Broadcast stamps event with the user's next sequence number and queues it
// for every subscriber of that user. Subscribers whose queue is full are
// dropped; they resume from their last seen sequence on reconnect.
func (h *Hub) Broadcast(userID int32, event Event) {
	h.mu.Lock()
	f := h.feedFor(userID)
	event.Seq = f.seq + 1

	data, err := event.ToJSON()
	if err != nil {
		h.mu.Unlock()
		log.Error().
			Err(err).
			Int32("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	f.seq = event.Seq
	f.backlog = append(f.backlog, frame{seq: event.Seq, data: data})
	if len(f.backlog) > backlogSize {
		f.backlog = f.backlog[len(f.backlog)-backlogSize:]
	}

	var dropped []Subscriber
	kept := f.subscribers[:0]
	for _, s := range f.subscribers {
		if err := s.Send(data); err != nil {
			dropped = append(dropped, s)
			continue
		}
		kept = append(kept, s)
	}
	f.subscribers = kept
	delivered := len(kept)
	h.mu.Unlock()

	for _, s := range dropped {
		_ = s.Close()
		log.Warn().
			Int32("user_id", userID).
			Str("client_id", s.ID()).
			Uint64("seq", event.Seq).
			Msg("WebSocket client dropped: send failed")
	}

	log.Debug().
		Int32("user_id", userID).
		Str("event_type", event.Type).
		Uint64("seq", event.Seq).
		Int("client_count", delivered).
		Msg("Broadcast event")
}

// LastSeq returns the sequence number of the user's most recent event
func (h *Hub) LastSeq(userID int32) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f, ok := h.feeds[userID]; ok {
		return f.seq
	}
	return 0
}

// ClientCount returns the number of clients connected for a user
func (h *Hub) ClientCount(userID int32) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if f, ok := h.feeds[userID]; ok {
		return len(f.subscribers)
	}
	return 0
}

// TotalClientCount returns the total number of connected clients across all users
func (h *Hub) TotalClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := 0
	for _, f := range h.feeds {
		total += len(f.subscribers)
	}
	return total
}

// Shutdown closes every connected client and empties the hub
func (h *Hub) Shutdown() {
	h.mu.Lock()
	feeds := h.feeds
	h.feeds = make(map[int32]*feed)
	h.mu.Unlock()

	closed := 0
	for _, f := range feeds {
		for _, s := range f.subscribers {
			_ = s.Close()
			closed++
		}
	}
	log.Info().Int("client_count", closed).Msg("WebSocket hub shut down")
}
