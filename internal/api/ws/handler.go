package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kwararru/shell/internal/host"
	"github.com/kwararru/shell/internal/infrastructure/logging"
	"github.com/kwararru/shell/internal/infrastructure/monitoring"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// outboxSize bounds the intents queued for a slow client
	outboxSize = 64
	// maxMessageSize bounds a single inbound frame
	maxMessageSize = 64 << 10
)

// Handler streams intents to mounted apps over WebSockets. Each connection
// is one mounted app: it registers a live handler on connect and releases
// it on disconnect.
type Handler struct {
	host     *host.Host
	metrics  *monitoring.Metrics
	log      *logging.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a new WebSocket handler
func NewHandler(h *host.Host, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	return &Handler{
		host:    h,
		metrics: metrics,
		log:     logging.OrNop(log).Named("ws"),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // origin is policed by the CORS middleware
			},
		},
	}
}

// WithOriginCheck replaces the upgrade origin check
func (h *Handler) WithOriginCheck(check func(r *http.Request) bool) *Handler {
	h.upgrader.CheckOrigin = check
	return h
}

// conn serializes writes to one websocket
type conn struct {
	ws      *websocket.Conn
	appID   string
	outbox  chan types.WSMessage
	done    chan struct{}
	closing sync.Once
}

func (c *conn) close() {
	c.closing.Do(func() { close(c.done) })
}

// enqueue queues msg without blocking. It reports false when the client
// is gone or too slow.
func (c *conn) enqueue(msg types.WSMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.outbox <- msg:
		return true
	default:
		return false
	}
}

// HandleConnection mounts the app named by :id for the lifetime of the socket
func (h *Handler) HandleConnection(c *gin.Context) {
	appID := c.Param("id")
	if !h.host.Catalog.Has(appID) {
		err := hosterr.NewUnknownApp(appID)
		c.AbortWithStatusJSON(err.Status, gin.H{"error": err.Error(), "code": err.Code})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("app_id", appID), zap.Error(err))
		return
	}

	cn := &conn{
		ws:     ws,
		appID:  appID,
		outbox: make(chan types.WSMessage, outboxSize),
		done:   make(chan struct{}),
	}

	props, release, err := h.host.Mount(appID, func(in types.Intent) {
		if !cn.enqueue(types.WSMessage{Type: "intent", AppID: appID, Intent: types.NewIntentRequest(in)}) {
			h.log.Warn("intent dropped for slow client",
				zap.String("app_id", appID),
				zap.String("action", string(in.Action)))
		}
	})
	if err != nil {
		h.log.Error("mount failed", zap.String("app_id", appID), zap.Error(err))
		ws.Close()
		return
	}

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}
	h.log.Info("app stream connected", zap.String("app_id", appID))

	mounted := types.WSMessage{Type: "mounted", AppID: appID, Active: boolPtr(props.IsActive())}
	if props.InitialIntent != nil {
		mounted.Intent = types.NewIntentRequest(*props.InitialIntent)
	}
	cn.enqueue(mounted)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(cn)
	}()

	h.readLoop(cn, props)

	cn.close()
	release()
	wg.Wait()
	ws.Close()
	h.log.Info("app stream closed", zap.String("app_id", appID))
}

func (h *Handler) readLoop(cn *conn, props host.AppProps) {
	cn.ws.SetReadLimit(maxMessageSize)
	cn.ws.SetReadDeadline(time.Now().Add(pongWait))
	cn.ws.SetPongHandler(func(string) error {
		return cn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := cn.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", zap.String("app_id", cn.appID), zap.Error(err))
			}
			return
		}

		var msg types.WSMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			cn.enqueue(errorMessage("malformed message"))
			continue
		}
		h.record("in", msg.Type)

		switch msg.Type {
		case "navigate":
			cn.enqueue(h.navigate(msg, props))
		case "status":
			cn.enqueue(types.WSMessage{Type: "status", AppID: cn.appID, Active: boolPtr(props.IsActive())})
		case "ping":
			cn.enqueue(types.WSMessage{Type: "pong"})
		default:
			cn.enqueue(errorMessage("unknown message type: " + msg.Type))
		}
	}
}

func (h *Handler) navigate(msg types.WSMessage, props host.AppProps) types.WSMessage {
	if msg.Intent == nil {
		return errorMessage("navigate requires an intent")
	}
	in, err := msg.Intent.Intent()
	if err != nil {
		return errorMessage(err.Error())
	}

	res := props.OnNavigate(in)
	reply := types.WSMessage{Type: "resolution", AppID: res.AppID, Resolved: boolPtr(res.Resolved)}
	if !res.Resolved {
		reply.Error = hosterr.NewRoutingMiss(string(in.Action), in.Type).Error()
	}
	return reply
}

func (h *Handler) writeLoop(cn *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cn.done:
			cn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			cn.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-cn.outbox:
			data, err := sonic.Marshal(msg)
			if err != nil {
				h.log.Error("failed to encode message", zap.Error(err))
				continue
			}
			cn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cn.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				h.log.Debug("websocket write failed", zap.String("app_id", cn.appID), zap.Error(err))
				cn.close()
				cn.ws.Close()
				return
			}
			h.record("out", msg.Type)
		case <-ticker.C:
			cn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				cn.close()
				cn.ws.Close()
				return
			}
		}
	}
}

func (h *Handler) record(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

func errorMessage(msg string) types.WSMessage {
	return types.WSMessage{Type: "error", Error: msg}
}

func boolPtr(b bool) *bool {
	return &b
}
