package remote

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	engine "github.com/Mear-MRK/hokm/engine"
)

// DefaultTokenTTL bounds how long a reconnect token stays valid.
const DefaultTokenTTL = 2 * time.Hour

type seatKey struct {
	table uuid.UUID
	seat  uint8
}

// Server attaches WebSocket clients to registered remote seats.
//
// A client joins with /ws?table=<id>&seat=<n> and receives a token message.
// After a dropped connection it rejoins with /ws?token=<token>; the pending
// prompt, if any, is sent again.
type Server struct {
	secret []byte
	ttl    time.Duration
	log    *logrus.Entry

	mu     sync.Mutex
	seats  map[seatKey]*Seat
	closed bool
}

// NewServer returns a server signing reconnect tokens with secret.
func NewServer(secret []byte, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{
		secret: secret,
		ttl:    DefaultTokenTTL,
		log:    log.WithField("component", "remote"),
		seats:  make(map[seatKey]*Seat),
	}
}

// Register makes s reachable by clients. A seat registered after Close is
// closed at once.
func (srv *Server) Register(s *Seat) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.seats[seatKey{s.tableID, s.seat}] = s
	if srv.closed {
		s.Close()
	}
}

// Close releases every registered seat.
func (srv *Server) Close() {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.closed = true
	for _, s := range srv.seats {
		s.Close()
	}
}

// CloseOnDone closes the server when ctx is done, so a table blocked on a
// remote prompt can see the cancellation. stop detaches it from ctx.
func (srv *Server) CloseOnDone(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, srv.Close)
}

func (srv *Server) lookup(key seatKey) *Seat {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.seats[key]
}

// ServeHTTP upgrades the request and pumps client answers into the seat.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, reconnect, err := srv.parseJoin(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	seat := srv.lookup(key)
	if seat == nil {
		http.Error(w, "unknown seat", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		srv.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	token, err := IssueToken(srv.secret, key.table, key.seat, srv.ttl)
	if err != nil {
		srv.log.WithError(err).Error("issue token")
		conn.Close(websocket.StatusInternalError, "token")
		return
	}
	if err := seat.attach(conn, token, reconnect); err != nil {
		conn.Close(websocket.StatusPolicyViolation, err.Error())
		return
	}
	defer seat.detach(conn)

	for {
		var m Message
		if err := wsjson.Read(r.Context(), conn, &m); err != nil {
			if websocket.CloseStatus(err) == -1 {
				srv.log.WithError(err).Debug("read failed")
			}
			return
		}
		seat.deliver(m)
	}
}

func (srv *Server) parseJoin(r *http.Request) (seatKey, bool, error) {
	q := r.URL.Query()
	if tok := q.Get("token"); tok != "" {
		table, seat, err := ParseToken(srv.secret, tok)
		if err != nil {
			return seatKey{}, false, err
		}
		return seatKey{table, seat}, true, nil
	}
	table, err := uuid.Parse(q.Get("table"))
	if err != nil {
		return seatKey{}, false, errors.New("bad table id")
	}
	n, err := strconv.Atoi(q.Get("seat"))
	if err != nil || n < 0 || n >= engine.NumPlayers {
		return seatKey{}, false, errors.New("bad seat")
	}
	return seatKey{table, uint8(n)}, false, nil
}
