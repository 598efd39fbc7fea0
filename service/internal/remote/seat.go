// Package remote seats WebSocket clients at a table as agent.Player values.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
	"github.com/Mear-MRK/hokm/service/internal/game"
)

// ErrSeatTaken is returned when a client tries to join a seat that has a live
// connection, or one already claimed by a client holding a token.
var ErrSeatTaken = errors.New("seat already taken")

const writeTimeout = 5 * time.Second

// Seat is a player whose decisions come from a WebSocket client. Prompts not
// answered within the turn timeout are played automatically.
type Seat struct {
	seat    uint8
	name    string
	tableID uuid.UUID
	timeout time.Duration
	log     *logrus.Entry

	hand engine.Hand // touched only by the table goroutine

	answers   chan Message
	closed    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	conn    *websocket.Conn
	claimed bool
	seq     int
	pending *Message // unanswered prompt, replayed on reconnect
}

var _ agent.Player = (*Seat)(nil)

// NewSeat returns a remote seat at tableID. A timeout of 0 waits forever.
func NewSeat(seat uint8, tableID uuid.UUID, timeout time.Duration, log logrus.FieldLogger) *Seat {
	if log == nil {
		log = logrus.StandardLogger()
	}
	name := fmt.Sprintf("REMOTE_%d", seat)
	return &Seat{
		seat:    seat % engine.NumPlayers,
		name:    name,
		tableID: tableID,
		timeout: timeout,
		log:     log.WithFields(logrus.Fields{"agent": name, "seat": seat, "table": tableID.String()}),
		answers: make(chan Message, 8),
		closed:  make(chan struct{}),
	}
}

func (s *Seat) Seat() uint8  { return s.seat }
func (s *Seat) Name() string { return s.name }

// TableID returns the table the seat belongs to.
func (s *Seat) TableID() uuid.UUID { return s.tableID }

// Connected reports whether a client is attached.
func (s *Seat) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Close releases a blocked prompt; every later decision is automatic.
func (s *Seat) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

// InitRound stores the dealt hand and shows it to the client.
func (s *Seat) InitRound(hand engine.Hand) {
	s.hand = hand
	v := game.SeatView{
		TableID: s.tableID,
		Seat:    int(s.seat),
		Hand:    game.HandStrings(hand),
	}
	for i := range v.HandSizes {
		v.HandSizes[i] = hand.Len()
	}
	s.send(Message{Type: TypeView, View: &v})
}

func (s *Seat) Reset() { s.hand.Clear() }

// Observe forwards every card played at the table.
func (s *Seat) Observe(seat uint8, c engine.Card, _ engine.Suit) {
	n := int(seat)
	s.send(Message{Type: TypeInfo, Seat: &n, Card: game.CardString(c)})
}

// CallTrump asks the client for a suit, falling back to the first-five score.
func (s *Seat) CallTrump(firstFive engine.Hand) engine.Suit {
	v := game.SeatView{TableID: s.tableID, Seat: int(s.seat), Hand: game.HandStrings(firstFive)}
	out := engine.NoSuit
	ok := s.ask(Message{Type: TypePrompt, Want: WantTrump, View: &v}, func(a Message) bool {
		if a.Type != TypeTrump {
			return false
		}
		su, err := game.ParseSuit(a.Suit)
		if err != nil {
			return false
		}
		out = su
		return true
	})
	if !ok {
		out = agent.ChooseTrump(firstFive)
		s.log.WithField("trump", out.String()).Info("trump call timed out, scoring first five")
	}
	return out
}

// Play asks the client for a legal card, falling back to the weakest one.
func (s *Seat) Play(t engine.TrickState) engine.Card {
	legal := s.hand.LegalPlays(t.Led)
	v := game.TrickView(s.tableID, s.hand, t)
	out := engine.NoCard
	ok := s.ask(Message{Type: TypePrompt, Want: WantPlay, View: &v}, func(a Message) bool {
		if a.Type != TypePlay {
			return false
		}
		c, err := game.ParseCard(a.Card)
		if err != nil || !legal.Has(c) {
			return false
		}
		out = c
		return true
	})
	if !ok {
		out = s.hand.LeastToFollow(t.Led, t.Trump, nil)
		s.log.WithField("card", out.String()).Info("turn timed out, playing weakest card")
	}
	s.hand.Remove(out)
	return out
}

// ask sends a prompt and waits for an accepted answer carrying its sequence
// number. It reports false on timeout or Close.
func (s *Seat) ask(m Message, accept func(Message) bool) bool {
	s.mu.Lock()
	s.seq++
	m.Seq = s.seq
	s.pending = &m
	conn := s.conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}()
	s.write(conn, m)

	var expire <-chan time.Time
	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		expire = timer.C
	}
	for {
		select {
		case a := <-s.answers:
			if a.Seq != m.Seq {
				continue
			}
			if accept(a) {
				return true
			}
			s.send(Message{Type: TypeInfo, Seq: m.Seq, Text: "rejected " + a.Type + " " + a.Card + a.Suit})
		case <-expire:
			return false
		case <-s.closed:
			return false
		}
	}
}

// attach binds conn to the seat, sends the reconnect token and replays the
// pending prompt. A seat claimed once can only be reattached with a token.
func (s *Seat) attach(conn *websocket.Conn, token string, reconnect bool) error {
	s.mu.Lock()
	if s.conn != nil || (s.claimed && !reconnect) {
		s.mu.Unlock()
		return ErrSeatTaken
	}
	s.conn = conn
	s.claimed = true
	pending := s.pending
	s.mu.Unlock()

	n := int(s.seat)
	s.write(conn, Message{Type: TypeToken, Seat: &n, Token: token})
	if pending != nil {
		s.write(conn, *pending)
	}
	s.log.WithField("reconnect", reconnect).Info("client attached")
	return nil
}

// detach drops conn if it is still the seat's connection.
func (s *Seat) detach(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == conn {
		s.conn = nil
		s.log.Info("client detached")
	}
}

// deliver queues a client answer; answers beyond the buffer are dropped.
func (s *Seat) deliver(m Message) {
	select {
	case s.answers <- m:
	default:
		s.log.WithField("type", m.Type).Debug("answer dropped")
	}
}

func (s *Seat) send(m Message) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	s.write(conn, m)
}

func (s *Seat) write(conn *websocket.Conn, m Message) {
	if conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, m); err != nil {
		s.log.WithError(err).WithField("type", m.Type).Debug("write failed")
	}
}
