package ws

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	subscribeReplyTimeout   = 10 * time.Second
	writeTimeout            = 5 * time.Second
)

// Watcher subscribes to account change notifications over the Solana
// pubsub websocket.
type Watcher struct {
	URL        string
	Commitment string
	Dialer     *websocket.Dialer
}

// EndpointFromRPC derives the pubsub URL from an HTTP RPC URL.
func EndpointFromRPC(rpcURL string) string {
	switch {
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://")
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://")
	default:
		return rpcURL
	}
}

type subscribeRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Watch opens one subscription. Notifications that arrive while the previous
// one is still unread collapse into it. The returned channel closes when ctx
// ends or the connection drops.
func (w *Watcher) Watch(ctx context.Context, addr game.Address) (<-chan struct{}, error) {
	dialer := w.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: defaultHandshakeTimeout,
		}
	}
	conn, _, err := dialer.DialContext(ctx, w.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", w.URL, err)
	}

	commitment := w.Commitment
	if commitment == "" {
		commitment = "confirmed"
	}
	subID, err := subscribe(conn, addr, commitment)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	hlog.CtxInfof(ctx, "account subscription open account=%s subscription=%d", addr, subID)

	out := make(chan struct{}, 1)
	done := make(chan struct{})
	var closeOnce sync.Once
	shutdown := func() {
		closeOnce.Do(func() { _ = conn.Close() })
	}

	go func() {
		defer close(out)
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					hlog.CtxWarnf(ctx, "account subscription dropped account=%s err=%v", addr, err)
				}
				return
			}
			note := gjson.ParseBytes(msg)
			if note.Get("method").String() != "accountNotification" || note.Get("params.subscription").Int() != subID {
				continue
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = conn.WriteJSON(subscribeRequest{
				JSONRPC: "2.0",
				ID:      2,
				Method:  "accountUnsubscribe",
				Params:  []any{subID},
			})
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			shutdown()
		case <-done:
			shutdown()
		}
	}()

	return out, nil
}

func subscribe(conn *websocket.Conn, addr game.Address, commitment string) (int64, error) {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err := conn.WriteJSON(subscribeRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "accountSubscribe",
		Params: []any{addr.String(), map[string]any{
			"encoding":   "base64",
			"commitment": commitment,
		}},
	})
	if err != nil {
		return 0, fmt.Errorf("accountSubscribe: %w", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(subscribeReplyTimeout))
	defer conn.SetReadDeadline(time.Time{})
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return 0, fmt.Errorf("accountSubscribe: read reply: %w", err)
		}
		reply := gjson.ParseBytes(msg)
		if reply.Get("id").Int() != 1 {
			continue
		}
		if rpcErr := reply.Get("error"); rpcErr.Exists() {
			return 0, fmt.Errorf("accountSubscribe: %s", rpcErr.Get("message").String())
		}
		return reply.Get("result").Int(), nil
	}
}
