package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// FrameHandler processes one inbound frame. Each call is a separate
// operation with no tenant carried over from earlier frames.
type FrameHandler func(conn *Conn, frame Frame)

// Serve pumps frames between ws and conn until either side goes away. It
// blocks until the read side stops and always closes conn and ws.
func Serve(ws *websocket.Conn, conn *Conn, handle FrameHandler, log *logger.Logger) {
	log = log.With(zap.String("connection_id", conn.ID()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(ws, conn, log)
	}()

	readPump(ws, conn, handle, log)
	conn.Close()
	<-done
}

func writePump(ws *websocket.Conn, conn *Conn, log *logger.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message := <-conn.Outbound():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := ws.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Warn("Failed to open writer", zap.Error(err))
				conn.Close()
				return
			}
			if _, err := w.Write(message); err != nil {
				log.Warn("Failed to write message", zap.Error(err))
			}
			if err := w.Close(); err != nil {
				conn.Close()
				return
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}

		case <-conn.Done():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func readPump(ws *websocket.Conn, conn *Conn, handle FrameHandler, log *logger.Logger) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, message, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Unexpected close error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var frame Frame
		if err := json.Unmarshal(message, &frame); err != nil {
			_ = conn.Send(ErrorFrame("malformed frame"))
			continue
		}
		handle(conn, frame)
	}
}
