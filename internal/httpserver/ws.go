package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/BrandonAlanDev/Portfolio2025/internal/nav"
	"github.com/BrandonAlanDev/Portfolio2025/internal/observability"
	"github.com/BrandonAlanDev/Portfolio2025/internal/page"
	"github.com/BrandonAlanDev/Portfolio2025/internal/section"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxWSBytes  = 64 << 10
	outboxDepth = 16
)

// Inbound is a message sent by the browser over the page socket.
type Inbound struct {
	Type           string                    `json:"type"` // scroll, measure, activate, menu, locale
	ScrollY        float64                   `json:"scrollY,omitempty"`
	ViewportHeight float64                   `json:"viewportHeight,omitempty"`
	Bounds         map[string]section.Bounds `json:"bounds,omitempty"`
	ID             string                    `json:"id,omitempty"`
	Locale         string                    `json:"locale,omitempty"`
}

// Outbound is a message pushed to the browser.
type Outbound struct {
	Type    string             `json:"type"` // state, scroll, error
	State   *nav.State         `json:"state,omitempty"`
	Scroll  *nav.ScrollCommand `json:"scroll,omitempty"`
	Error   string             `json:"error,omitempty"`
	Message string             `json:"message,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
}

// checkOrigin accepts same-host origins and the configured allow list.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if _, ok := s.origins[origin]; ok {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// stream upgrades to a websocket that carries browser reports in and state
// changes and scroll commands out.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookup(w, r)
	if !ok {
		return
	}
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the handshake error
		return
	}
	logger := observability.FromContext(r.Context()).With(zap.String("page_id", p.ID))
	logger.Debug("page socket connected")

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	outbox := make(chan Outbound, outboxDepth)
	push := func(m Outbound) {
		select {
		case outbox <- m:
		case <-ctx.Done():
		default:
			logger.Warn("page socket outbox full, dropping message", zap.String("type", m.Type))
		}
	}

	detach := p.Observe(func(_, next nav.State) {
		push(Outbound{Type: "state", State: &next})
	})
	defer detach()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.writeLoop(ctx, conn, outbox, logger)
	}()

	snap := p.Snapshot()
	push(Outbound{Type: "state", State: &snap.State})

	s.readLoop(ctx, conn, p, push, logger)
	cancel()
	<-done
	_ = conn.Close()
	logger.Debug("page socket closed")
}

func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, p *page.Page, push func(Outbound), logger *zap.Logger) {
	conn.SetReadLimit(maxWSBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Inbound
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("page socket read failed", zap.Error(err))
			}
			return
		}

		var err error
		switch msg.Type {
		case "scroll":
			_, err = p.Report(ctx, page.Report{ScrollY: msg.ScrollY, ViewportHeight: msg.ViewportHeight, Bounds: msg.Bounds})
		case "measure":
			_, err = p.Dispatch(ctx, page.Measure{Bounds: msg.Bounds})
		case "activate":
			_, err = p.Dispatch(ctx, nav.Activate{ID: msg.ID})
		case "menu":
			_, err = p.Dispatch(ctx, nav.ToggleMenu{})
		case "locale":
			_, err = p.Dispatch(ctx, nav.SetLocale{Locale: msg.Locale})
		default:
			push(Outbound{Type: "error", Error: "unsupported_message", Message: "unsupported message type " + msg.Type})
			continue
		}
		if err != nil {
			_, code := errorCode(err)
			push(Outbound{Type: "error", Error: code, Message: err.Error()})
			if code == "page_not_found" {
				return
			}
			continue
		}
		if cmd, ok := p.PendingScroll(); ok {
			push(Outbound{Type: "scroll", Scroll: &cmd})
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, outbox <-chan Outbound, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			for drained := false; !drained; {
				select {
				case m := <-outbox:
					_ = conn.WriteJSON(m)
				default:
					drained = true
				}
			}
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case m := <-outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				logger.Warn("page socket write failed", zap.Error(err))
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
