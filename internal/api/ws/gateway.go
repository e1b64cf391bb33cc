package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/support-console/internal/api/dto"
	"github.com/spec-kit/support-console/internal/domain"
	"github.com/spec-kit/support-console/internal/service"
	apperrors "github.com/spec-kit/support-console/pkg/util"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	readLimit  = 4096
)

// Authenticator resolves a session token to an active admin.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.AdminUser, error)
}

// ChatFeed streams the directory.
type ChatFeed interface {
	Subscribe(ctx context.Context, filter service.ChatFilter, onUpdate func([]domain.Chat)) (func(), error)
}

// MessageFeed streams one transcript.
type MessageFeed interface {
	Subscribe(ctx context.Context, chatID string, onUpdate func([]domain.ChatMessage)) (func(), error)
}

// Frame is one snapshot pushed to a client.
type Frame struct {
	Type   string `json:"type"`
	ChatID string `json:"chat_id,omitempty"`
	Data   any    `json:"data"`
}

// Gateway serves live directory and transcript snapshots over websockets.
type Gateway struct {
	auth     Authenticator
	chats    ChatFeed
	messages MessageFeed
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewGateway builds the gateway. Origins are not checked; access rests on the session token.
func NewGateway(authn Authenticator, chats ChatFeed, messages MessageFeed, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		auth:     authn,
		chats:    chats,
		messages: messages,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Router registers the websocket routes.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws/chats", g.serveChats).Methods(http.MethodGet)
	r.HandleFunc("/ws/chats/{id}/messages", g.serveMessages).Methods(http.MethodGet)
	return r
}

func (g *Gateway) serveChats(w http.ResponseWriter, r *http.Request) {
	admin, ok := g.authorize(w, r)
	if !ok {
		return
	}
	filter := service.ChatFilter{
		Status: domain.ChatStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("q"),
	}
	g.stream(w, r, admin, func(ctx context.Context, push func(Frame) error) (func(), error) {
		return g.chats.Subscribe(ctx, filter, func(chats []domain.Chat) {
			_ = push(Frame{Type: "chats", Data: dto.ChatsFromDomain(chats)})
		})
	})
}

func (g *Gateway) serveMessages(w http.ResponseWriter, r *http.Request) {
	admin, ok := g.authorize(w, r)
	if !ok {
		return
	}
	chatID := mux.Vars(r)["id"]
	g.stream(w, r, admin, func(ctx context.Context, push func(Frame) error) (func(), error) {
		return g.messages.Subscribe(ctx, chatID, func(msgs []domain.ChatMessage) {
			_ = push(Frame{Type: "messages", ChatID: chatID, Data: dto.MessagesFromDomain(msgs)})
		})
	})
}

// authorize accepts the token from the query string, where browsers can set it, or from a
// bearer header.
func (g *Gateway) authorize(w http.ResponseWriter, r *http.Request) (*domain.AdminUser, bool) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			token = h[7:]
		}
	}
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return nil, false
	}
	admin, err := g.auth.Authenticate(r.Context(), token)
	if err != nil {
		de := apperrors.ToDomainError(err)
		http.Error(w, de.Message, de.HTTPStatus)
		return nil, false
	}
	if !admin.CanAccess(domain.PermissionSupport) {
		http.Error(w, "insufficient permissions", http.StatusForbidden)
		return nil, false
	}
	return admin, true
}

type subscribeFunc func(ctx context.Context, push func(Frame) error) (func(), error)

// stream upgrades the connection, subscribes and pumps frames until the client goes away.
// Client messages are read only to observe pongs and close frames.
func (g *Gateway) stream(w http.ResponseWriter, r *http.Request, admin *domain.AdminUser, subscribe subscribeFunc) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Info("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(zap.String("admin_id", admin.UID), zap.String("path", r.URL.Path))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var writeMu sync.Mutex
	push := func(f Frame) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			logger.Info("websocket write failed", zap.Error(err))
			cancel()
			return err
		}
		return nil
	}

	unsubscribe, err := subscribe(ctx, push)
	if err != nil {
		logger.Warn("live subscription failed", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(writeWait))
		return
	}
	defer unsubscribe()
	logger.Debug("live subscription started")

	go g.keepAlive(ctx, conn)

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Debug("websocket read ended", zap.Error(err))
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// keepAlive pings the client and closes the connection once ctx ends, which unblocks the
// read loop after a failed write.
func (g *Gateway) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
