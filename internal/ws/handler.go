package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SlickRick2121/Ten-K-sub000/internal/game"
	"github.com/SlickRick2121/Ten-K-sub000/internal/registry"
	"github.com/SlickRick2121/Ten-K-sub000/internal/room"
	"github.com/SlickRick2121/Ten-K-sub000/internal/types"
)

const writeTimeout = 3 * time.Second

// Handler upgrades a connection and binds it to one room for its whole
// lifetime. Room and display name travel in the query string; every later
// action is a ClientMessage.
func Handler(reg *registry.Registry, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomName := r.URL.Query().Get("room")
		playerName := r.URL.Query().Get("name")
		if roomName == "" || playerName == "" {
			http.Error(w, "missing room or name", http.StatusBadRequest)
			return
		}

		rm, ok := reg.Lookup(roomName)
		if !ok {
			http.Error(w, "unknown room", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		out := make(chan types.ServerMessage, 16)
		reply := make(chan error, 1)
		rm.Inbox() <- room.Join{ClientID: clientID, Name: playerName, Outbox: out, Reply: reply}
		if err := <-reply; err != nil {
			writeMsg(r.Context(), conn, types.ServerMessage{Type: "Error", Error: err.Error()})
			conn.Close(websocket.StatusPolicyViolation, "cannot join")
			return
		}
		defer func() { rm.Inbox() <- room.Detach{ClientID: clientID} }()

		listCh := reg.Subscribe(clientID)
		defer reg.Unsubscribe(clientID)

		// Boundary rejections (bad json, unknown type) go through the
		// writer too; only one goroutine may write to the socket.
		local := make(chan types.ServerMessage, 4)

		log.Info("connection joined",
			zap.String("room", roomName),
			zap.String("player", playerName),
			zap.String("client", clientID))

		// Writer goroutine: multiplexes room events and room-list pushes.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for {
				select {
				case msg, ok := <-out:
					if !ok {
						// Room dropped us (slow consumer or shutdown).
						conn.Close(websocket.StatusGoingAway, "dropped")
						return
					}
					writeMsg(writeCtx, conn, msg)
				case msg, ok := <-listCh:
					if !ok {
						return
					}
					writeMsg(writeCtx, conn, msg)
				case msg := <-local:
					writeMsg(writeCtx, conn, msg)
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				// Any other failure counts as a transport drop; the
				// deferred Detach keeps the room accurate.
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				local <- types.ServerMessage{Type: "Error", Error: "bad json"}
				continue
			}

			if cm.Type == "Leave" {
				rm.Inbox() <- room.Leave{ClientID: clientID}
				return
			}

			cmd, ok := toCommand(cm)
			if !ok {
				local <- types.ServerMessage{Type: "Error", Error: "unknown type"}
				continue
			}
			rm.Inbox() <- room.FromClient{ClientID: clientID, Cmd: cmd}
		}
	}
}

func toCommand(m types.ClientMessage) (game.Command, bool) {
	switch m.Type {
	case "StartGame":
		return game.Command{Type: game.CmdStart}, true
	case "RollDice":
		return game.Command{Type: game.CmdRoll}, true
	case "ToggleDie":
		if m.DieID == "" {
			return game.Command{}, false
		}
		return game.Command{Type: game.CmdToggle, DieID: m.DieID}, true
	case "BankScore":
		return game.Command{Type: game.CmdBank}, true
	case "RestartGame":
		return game.Command{Type: game.CmdRestart}, true
	default:
		return game.Command{}, false
	}
}

func writeMsg(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
