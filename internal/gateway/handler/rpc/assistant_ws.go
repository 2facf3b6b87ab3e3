package rpc

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"contentflow/internal/assistant"
)

const (
	assistantWSWriteWait = 10 * time.Second
	assistantWSPongWait  = 60 * time.Second
	assistantWSPingEvery = (assistantWSPongWait * 9) / 10
)

func newAssistantWSUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			return origin == "" || len(allowed) == 0 || slices.Contains(allowed, origin)
		},
	}
}

type assistantWSInbound struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	ItemID    string `json:"itemId,omitempty"`
	Action    string `json:"action,omitempty"`
	Input     string `json:"input,omitempty"`
}

type assistantWSOutbound struct {
	Type    string              `json:"type"`
	Event   string              `json:"event,omitempty"`
	Session *assistant.Snapshot `json:"session,omitempty"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
}

// HandleAssistantWS streams session snapshots and accepts modal gestures.
// Every manager event is pushed as a "session" frame; commands are answered
// by the events they cause, or by an "error" frame.
func (h *AssistantHandler) HandleAssistantWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(assistantWSPongWait)); err != nil {
		h.log.Warn().Err(err).Msg("assistant ws set read deadline failed")
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(assistantWSPongWait))
	})

	writeCh := make(chan assistantWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(assistantWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(assistantWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(assistantWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	events := h.mgr.Subscribe(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				pushAssistantWS(writeCh, assistantWSOutbound{
					Type:    "session",
					Event:   string(ev.Type),
					Session: ev.Session,
				})
			}
		}
	}()

	for {
		var in assistantWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		msgType := strings.ToLower(strings.TrimSpace(in.Type))
		if msgType == "" {
			pushAssistantWS(writeCh, assistantWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "type is required",
			})
			continue
		}

		var cmdErr error
		switch msgType {
		case "ping":
			pushAssistantWS(writeCh, assistantWSOutbound{Type: "pong"})
		case "open":
			_, cmdErr = h.open(OpenRequest{ItemID: in.ItemID, Action: in.Action})
		case "set_input":
			_, cmdErr = h.mgr.SetInput(in.SessionID, in.Input)
		case "generate":
			// Resolution arrives as a session event; the read loop keeps
			// serving gestures such as close meanwhile.
			sessionID := in.SessionID
			go func() {
				if _, err := h.mgr.Generate(ctx, sessionID); err != nil {
					pushAssistantWS(writeCh, wsError(err))
				}
			}()
		case "commit":
			_, cmdErr = h.mgr.Commit(in.SessionID)
		case "close":
			cmdErr = h.mgr.Close(in.SessionID)
		default:
			pushAssistantWS(writeCh, assistantWSOutbound{
				Type:    "error",
				Code:    "invalid_argument",
				Message: "unsupported type: " + msgType,
			})
		}
		if cmdErr != nil {
			pushAssistantWS(writeCh, wsError(cmdErr))
		}
	}
}

func wsError(err error) assistantWSOutbound {
	return assistantWSOutbound{
		Type:    "error",
		Code:    codeName(err),
		Message: err.Error(),
	}
}

// pushAssistantWS never blocks; a full queue drops its oldest frame.
func pushAssistantWS(writeCh chan assistantWSOutbound, out assistantWSOutbound) {
	if writeCh == nil {
		return
	}
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
