package app

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // displays are served on the local network
	},
}

// handleWS streams the status view: once on connect, then after every
// live-state update.
func (a *App) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[app] websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := a.Hub.Subscribe()
	defer sub.Unsubscribe()

	log.Debug().Str("from", r.RemoteAddr).Msg("[app] websocket client connected")
	defer log.Debug().Str("from", r.RemoteAddr).Msg("[app] websocket client disconnected")

	gone := make(chan struct{})
	go readPump(conn, gone)

	if err := a.writeView(conn); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(wsWriteWait))
			return
		case <-gone:
			return
		case _, ok := <-sub.C():
			if !ok {
				return
			}
			if err := a.writeView(conn); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (a *App) writeView(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(a.View()); err != nil {
		log.Debug().Err(err).Msg("[app] websocket write failed")
		return err
	}
	return nil
}

// readPump drains client frames so pongs and close frames are processed.
func readPump(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("[app] websocket read error")
			}
			return
		}
	}
}
