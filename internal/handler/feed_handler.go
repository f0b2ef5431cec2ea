package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	ws "github.com/questguide/questguide-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// SubmissionFeed streams raw submission events of one test.
type SubmissionFeed interface {
	SubscribeSubmissions(ctx context.Context, testID uuid.UUID) (<-chan string, func() error, error)
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler relays live submission events to admins over WebSocket.
type FeedHandler struct {
	testService TestService
	feed        SubmissionFeed
	log         zerolog.Logger
	upgrader    websocket.Upgrader
	pingPeriod  time.Duration
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(testService TestService, feed SubmissionFeed, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		testService: testService,
		feed:        feed,
		log:         log.With().Str("component", "feed_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
		pingPeriod:  ws.PingPeriod,
	}
}

// Submissions godoc
// WS /ws/tests/:id/submissions?token=...
// Streams every submission of the test as {"event":"submission","data":{...}}.
func (h *FeedHandler) Submissions(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := h.testService.Get(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	// The subscription outlives the hijacked request, so it gets its own context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, closeFeed, err := h.feed.SubscribeSubmissions(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer closeFeed()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	feedLog := h.log.With().Str("test_id", id.String()).Logger()
	feedLog.Info().Msg("Admin attached to submission feed")

	if err := ws.WriteTyped(conn, ws.ConnectedResponse{Event: ws.EventConnected, TestID: id.String()}); err != nil {
		return
	}

	replies := make(chan interface{}, 4)
	go h.readPump(ctx, cancel, conn, replies, feedLog)

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			feedLog.Info().Msg("Admin detached from submission feed")
			return

		case payload, open := <-events:
			if !open {
				ws.WriteError(conn, "feed closed")
				return
			}
			err = ws.WriteTyped(conn, ws.SubmissionResponse{Event: ws.EventSubmission, Data: json.RawMessage(payload)})

		case reply := <-replies:
			err = ws.WriteTyped(conn, reply)

		case <-ticker.C:
			err = ws.WritePing(conn)
		}
		if err != nil {
			feedLog.Debug().Err(err).Msg("Feed write failed")
			return
		}
	}
}

// readPump consumes client messages so control frames are processed, answers
// pings through replies and cancels ctx when the peer goes away.
func (h *FeedHandler) readPump(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, replies chan<- interface{}, log zerolog.Logger) {
	defer cancel()
	ws.KeepAlive(conn)

	for {
		var msg ws.RequestEnvelope
		err := ws.ReadJSON(conn, &msg)

		var reply interface{}
		switch {
		case err == nil && msg.Action == ws.ActionPing:
			reply = ws.PongResponse{Event: ws.EventPong}
		case err == nil:
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}
		case isDecodeError(err):
			reply = ws.ErrorResponse{Event: ws.EventError, Error: "invalid message"}
		default:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		select {
		case replies <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func isDecodeError(err error) bool {
	var syntax *json.SyntaxError
	var typ *json.UnmarshalTypeError
	return errors.As(err, &syntax) || errors.As(err, &typ)
}
