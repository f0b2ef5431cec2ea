package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/questguide/questguide-backend/internal/response"
	ws "github.com/questguide/questguide-backend/internal/websocket"
	"github.com/rs/zerolog"
)

type stubFeed struct {
	mu     sync.Mutex
	events chan string
	closed bool
}

func (f *stubFeed) SubscribeSubmissions(_ context.Context, _ uuid.UUID) (<-chan string, func() error, error) {
	return f.events, func() error {
		f.mu.Lock()
		f.closed = true
		f.mu.Unlock()
		return nil
	}, nil
}

func (f *stubFeed) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func dialFeed(t *testing.T, srv *httptest.Server, testID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/tests/" + testID + "/submissions"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestSubmissionFeed(t *testing.T) {
	tst := geographyTest()
	feed := &stubFeed{events: make(chan string, 1)}
	h := NewFeedHandler(newStubTestService(tst), feed, zerolog.Nop(), nil)

	r := newEngine(adminUser)
	r.GET("/ws/tests/:id/submissions", h.Submissions)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn := dialFeed(t, srv, tst.ID.String())

	var connected ws.ConnectedResponse
	if err := conn.ReadJSON(&connected); err != nil {
		t.Fatal(err)
	}
	if connected.Event != ws.EventConnected || connected.TestID != tst.ID.String() {
		t.Fatalf("connected = %+v", connected)
	}

	feed.events <- `{"score":75,"student_name":"Ann"}`
	var sub struct {
		Event ws.Event `json:"event"`
		Data  struct {
			Score       float64 `json:"score"`
			StudentName string  `json:"student_name"`
		} `json:"data"`
	}
	if err := conn.ReadJSON(&sub); err != nil {
		t.Fatal(err)
	}
	if sub.Event != ws.EventSubmission || sub.Data.Score != 75 || sub.Data.StudentName != "Ann" {
		t.Errorf("submission = %+v", sub)
	}

	if err := conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}); err != nil {
		t.Fatal(err)
	}
	var pong ws.PongResponse
	if err := conn.ReadJSON(&pong); err != nil || pong.Event != ws.EventPong {
		t.Errorf("pong = %+v, err %v", pong, err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{oops")); err != nil {
		t.Fatal(err)
	}
	var bad ws.ErrorResponse
	if err := conn.ReadJSON(&bad); err != nil || bad.Error != "invalid message" {
		t.Errorf("bad message reply = %+v, err %v", bad, err)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for !feed.isClosed() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !feed.isClosed() {
		t.Error("subscription not closed after client left")
	}
}

func TestSubmissionFeedUnknownTest(t *testing.T) {
	h := NewFeedHandler(newStubTestService(), &stubFeed{events: make(chan string)}, zerolog.Nop(), nil)
	r := newEngine(adminUser)
	r.GET("/ws/tests/:id/submissions", h.Submissions)

	w := do(r, http.MethodGet, "/ws/tests/"+uuid.NewString()+"/submissions", "")
	expectError(t, w, http.StatusNotFound, response.ErrNotFound)
}

func TestBuildUpgraderOrigins(t *testing.T) {
	up := buildUpgrader([]string{"https://app.example.com"})
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	req.Header.Set("Origin", "https://APP.example.com")
	if !up.CheckOrigin(req) {
		t.Error("allowed origin rejected")
	}
	req.Header.Set("Origin", "https://evil.example.com")
	if up.CheckOrigin(req) {
		t.Error("foreign origin accepted")
	}
	if !buildUpgrader(nil).CheckOrigin(req) {
		t.Error("empty allow list should accept any origin")
	}
}
