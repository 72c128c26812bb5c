// Package transport moves automerge sync messages between document replicas
// over a websocket. The document core only produces the handshake payload;
// everything about delivery lives here.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/automerge/automerge-go"
	"github.com/gorilla/websocket"

	"github.com/brichet/JupyterCAD/pkg/caddoc"
)

// flushInterval is how often the write pump re-checks for new local changes
// once the initial sync has drained.
const flushInterval = time.Second

// Handshake is the first frame on every connection: a JSON text message
// carrying the opener's comm payload so the far side can log and route it.
type Handshake struct {
	Comm caddoc.CommPayload `json:"comm"`
}

func writeHandshake(conn *websocket.Conn, comm caddoc.CommPayload) error {
	body, err := json.Marshal(Handshake{Comm: comm})
	if err != nil {
		return fmt.Errorf("failed to encode handshake: %w", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		return fmt.Errorf("failed to send handshake: %w", err)
	}
	return nil
}

// ReadHandshake consumes the handshake frame from a freshly accepted
// connection.
func ReadHandshake(conn *websocket.Conn) (Handshake, error) {
	var hs Handshake
	mt, p, err := conn.ReadMessage()
	if err != nil {
		return hs, fmt.Errorf("failed to read handshake: %w", err)
	}
	if mt != websocket.TextMessage {
		return hs, fmt.Errorf("expected a text handshake frame, got message type %d", mt)
	}
	if err := json.Unmarshal(p, &hs); err != nil {
		return hs, fmt.Errorf("failed to decode handshake: %w", err)
	}
	return hs, nil
}

func receiveMessage(conn *websocket.Conn, syncState *automerge.SyncState) error {
	mt, p, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read message: %w", err)
	}
	switch mt {
	case websocket.BinaryMessage:
		if _, err := syncState.ReceiveMessage(p); err != nil {
			return fmt.Errorf("failed to receive message: %w", err)
		}
	default:
	}
	return nil
}

func sendPending(conn *websocket.Conn, syncState *automerge.SyncState) error {
	for {
		msg, valid := syncState.GenerateMessage()
		if !valid {
			return nil
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, msg.Bytes()); err != nil {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}
}

// Sync runs paired read and write pumps until the context is cancelled or
// the connection drops. Both sides converge on the same sequence state.
func Sync(ctx context.Context, conn *websocket.Conn, syncState *automerge.SyncState) error {
	wg := new(sync.WaitGroup)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()
		for {
			if err := receiveMessage(conn, syncState); err != nil {
				slog.Error(err.Error())
				return
			}
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer conn.Close()

		if err := sendPending(conn, syncState); err != nil {
			slog.Error(err.Error())
			return
		}

		t := time.NewTicker(flushInterval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if err := sendPending(conn, syncState); err != nil {
					slog.Error(err.Error())
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return nil
}

// Dial connects to a relay, sends the document's handshake, and keeps the
// replica in sync until the context is cancelled.
func Dial(ctx context.Context, url string, doc *caddoc.Document) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", url, err)
	}
	defer conn.Close()

	if err := writeHandshake(conn, doc.Comm()); err != nil {
		return err
	}

	slog.Info("syncing", "url", url, "comm", doc.CommID())
	return Sync(ctx, conn, automerge.NewSyncState(doc.Doc()))
}
