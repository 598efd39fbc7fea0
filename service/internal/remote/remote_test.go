package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	engine "github.com/Mear-MRK/hokm/engine"
	"github.com/Mear-MRK/hokm/engine/agent"
	"github.com/Mear-MRK/hokm/service/internal/game"
)

var testSecret = []byte("test-secret")

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?" + query
}

func joinQuery(id uuid.UUID, seat int) string {
	return fmt.Sprintf("table=%s&seat=%d", id, seat)
}

// heartsTrick is the second play of a trick led with the five of hearts.
func heartsTrick(seat uint8) (engine.Hand, engine.TrickState) {
	hand := engine.NewHand(
		engine.NewCard(engine.SuitHearts, engine.RankTwo),
		engine.NewCard(engine.SuitHearts, engine.RankKing),
		engine.NewCard(engine.SuitClubs, engine.RankAce),
	)
	ts := engine.TrickState{TrickID: 10, Leader: seat - 1, Seat: seat, Order: 1, Led: engine.SuitHearts, Trump: engine.SuitSpades}
	for i := range ts.Table {
		ts.Table[i] = engine.NoCard
	}
	ts.Table[seat-1] = engine.NewCard(engine.SuitHearts, engine.RankFive)
	return hand, ts
}

// readUntil reads frames until one of type typ arrives.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string) Message {
	t.Helper()
	for {
		var m Message
		require.NoError(t, wsjson.Read(ctx, conn, &m))
		if m.Type == typ {
			return m
		}
	}
}

// answerAll plays the first legal card and calls the suit of the first card
// for every prompt until the connection ends.
func answerAll(ctx context.Context, conn *websocket.Conn, prompts *atomic.Int32) error {
	for {
		var m Message
		if err := wsjson.Read(ctx, conn, &m); err != nil {
			return err
		}
		if m.Type != TypePrompt || m.View == nil {
			continue
		}
		prompts.Add(1)
		ans := Message{Seq: m.Seq}
		switch m.Want {
		case WantTrump:
			ans.Type, ans.Suit = TypeTrump, m.View.Hand[0][1:]
		case WantPlay:
			ans.Type, ans.Card = TypePlay, m.View.Legal[0]
		}
		if err := wsjson.Write(ctx, conn, ans); err != nil {
			return err
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	tok, err := IssueToken(testSecret, id, 3, time.Minute)
	require.NoError(t, err)

	gotID, gotSeat, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)
	assert.Equal(t, uint8(3), gotSeat)

	_, _, err = ParseToken([]byte("other"), tok)
	assert.ErrorIs(t, err, ErrBadToken)

	expired, err := IssueToken(testSecret, id, 3, -time.Minute)
	require.NoError(t, err)
	_, _, err = ParseToken(testSecret, expired)
	assert.ErrorIs(t, err, ErrBadToken)
}

func TestTokenRejectsForgedClaims(t *testing.T) {
	claims := Claims{
		TableID: uuid.NewString(),
		Seat:    1,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, _, err = ParseToken(testSecret, none)
	assert.ErrorIs(t, err, ErrBadToken, "unsigned token")

	claims.Seat = 7
	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, _, err = ParseToken(testSecret, bad)
	assert.ErrorIs(t, err, ErrBadToken, "seat out of range")

	claims.Seat = 1
	claims.ExpiresAt = nil
	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)
	_, _, err = ParseToken(testSecret, noExp)
	assert.ErrorIs(t, err, ErrBadToken, "missing expiry")
}

func TestSeatTimeoutPlaysWeakest(t *testing.T) {
	logger, hook := test.NewNullLogger()
	seat := NewSeat(1, uuid.New(), 20*time.Millisecond, logger)

	five := engine.NewHand(
		engine.NewCard(engine.SuitSpades, engine.RankAce),
		engine.NewCard(engine.SuitSpades, engine.RankKing),
		engine.NewCard(engine.SuitSpades, engine.RankTwo),
		engine.NewCard(engine.SuitHearts, engine.RankThree),
		engine.NewCard(engine.SuitClubs, engine.RankFour),
	)
	assert.Equal(t, agent.ChooseTrump(five), seat.CallTrump(five))

	hand, trick := heartsTrick(1)
	seat.InitRound(hand)
	c := seat.Play(trick)
	assert.Equal(t, "2H", game.CardString(c))
	assert.False(t, seat.hand.Has(c))
	assert.Equal(t, 2, seat.hand.Len())
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "turn timed out")
}

func TestSeatCloseReleasesPrompt(t *testing.T) {
	logger, _ := test.NewNullLogger()
	seat := NewSeat(1, uuid.New(), 0, logger)
	hand, trick := heartsTrick(1)
	seat.InitRound(hand)

	played := make(chan engine.Card, 1)
	go func() { played <- seat.Play(trick) }()
	seat.Close()
	select {
	case c := <-played:
		assert.Equal(t, "2H", game.CardString(c))
	case <-time.After(2 * time.Second):
		t.Fatal("Play did not return after Close")
	}
	seat.Close()
}

func TestServeHTTPRejectsBadJoins(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := NewServer(testSecret, logger)
	ts := httptest.NewServer(srv)
	defer ts.Close()
	id := uuid.New()
	srv.Register(NewSeat(0, id, 0, logger))

	cases := []struct {
		name  string
		query string
		code  int
	}{
		{"bad table", "table=nope&seat=0", http.StatusBadRequest},
		{"bad seat", joinQuery(id, 9), http.StatusBadRequest},
		{"unknown seat", joinQuery(id, 1), http.StatusNotFound},
		{"unknown table", joinQuery(uuid.New(), 0), http.StatusNotFound},
		{"bad token", "token=abc", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/ws?" + tc.query)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestRemoteSeatPlaysRound(t *testing.T) {
	logger, hook := test.NewNullLogger()
	srv := NewServer(testSecret, logger)
	ts := httptest.NewServer(srv)
	defer ts.Close()
	defer srv.Close()

	id := uuid.New()
	remote := NewSeat(0, id, 5*time.Second, logger)
	srv.Register(remote)
	var players [engine.NumPlayers]agent.Player
	players[0] = remote
	for seat := 1; seat < engine.NumPlayers; seat++ {
		players[seat] = agent.NewRandomAgent(uint8(seat), uint64(seat))
	}
	tbl, err := game.NewTableWithID(id, players, 11, engine.DefaultHouseRules(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, joinQuery(id, 0)), nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var prompts atomic.Int32
	done := make(chan error, 1)
	go func() { done <- answerAll(ctx, conn, &prompts) }()

	res, err := tbl.PlayRound(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Winner, int8(0))
	assert.Positive(t, prompts.Load())
	for _, e := range hook.AllEntries() {
		assert.NotContains(t, e.Message, "timed out")
	}

	cancel()
	<-done
}

func TestReconnectReplaysPrompt(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := NewServer(testSecret, logger)
	ts := httptest.NewServer(srv)
	defer ts.Close()

	id := uuid.New()
	seat := NewSeat(2, id, 0, logger)
	srv.Register(seat)
	defer seat.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, _, err := websocket.Dial(ctx, wsURL(ts, joinQuery(id, 2)), nil)
	require.NoError(t, err)
	tok := readUntil(ctx, t, first, TypeToken)
	require.NotEmpty(t, tok.Token)
	require.NotNil(t, tok.Seat)
	assert.Equal(t, 2, *tok.Seat)
	first.Close(websocket.StatusNormalClosure, "")
	require.Eventually(t, func() bool { return !seat.Connected() }, 2*time.Second, 10*time.Millisecond)

	// Only the token holder may take a claimed seat back.
	intruder, _, err := websocket.Dial(ctx, wsURL(ts, joinQuery(id, 2)), nil)
	require.NoError(t, err)
	var m Message
	err = wsjson.Read(ctx, intruder, &m)
	assert.Equal(t, websocket.StatusPolicyViolation, websocket.CloseStatus(err))
	intruder.CloseNow()

	hand, trick := heartsTrick(2)
	seat.InitRound(hand)
	played := make(chan engine.Card, 1)
	go func() { played <- seat.Play(trick) }()
	require.Eventually(t, func() bool {
		seat.mu.Lock()
		defer seat.mu.Unlock()
		return seat.pending != nil
	}, 2*time.Second, 10*time.Millisecond)

	second, _, err := websocket.Dial(ctx, wsURL(ts, "token="+tok.Token), nil)
	require.NoError(t, err)
	defer second.CloseNow()
	readUntil(ctx, t, second, TypeToken)
	prompt := readUntil(ctx, t, second, TypePrompt)
	assert.Equal(t, WantPlay, prompt.Want)
	require.NotNil(t, prompt.View)
	assert.Equal(t, []string{"2H", "KH"}, prompt.View.Legal)

	require.NoError(t, wsjson.Write(ctx, second, Message{Type: TypePlay, Seq: prompt.Seq, Card: "AC"}))
	info := readUntil(ctx, t, second, TypeInfo)
	assert.Contains(t, info.Text, "rejected")

	require.NoError(t, wsjson.Write(ctx, second, Message{Type: TypePlay, Seq: prompt.Seq - 1, Card: "2H"}))
	require.NoError(t, wsjson.Write(ctx, second, Message{Type: TypePlay, Seq: prompt.Seq, Card: "KH"}))
	select {
	case c := <-played:
		assert.Equal(t, "KH", game.CardString(c))
	case <-time.After(5 * time.Second):
		t.Fatal("answer was not taken")
	}
}

func TestCanceledContextReleasesTable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	srv := NewServer(testSecret, logger)
	id := uuid.New()
	var players [engine.NumPlayers]agent.Player
	for s := range players {
		seat := NewSeat(uint8(s), id, 0, logger)
		srv.Register(seat)
		players[s] = seat
	}
	tbl, err := game.NewTableWithID(id, players, 5, engine.DefaultHouseRules(), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stop := srv.CloseOnDone(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() {
		_, err := tbl.PlayMatch(ctx)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("PlayMatch still blocked after cancel")
	}

	late := NewSeat(1, uuid.New(), 0, logger)
	srv.Register(late)
	hand, trick := heartsTrick(1)
	late.InitRound(hand)
	assert.Equal(t, "2H", game.CardString(late.Play(trick)), "seats registered after Close do not wait")
}
