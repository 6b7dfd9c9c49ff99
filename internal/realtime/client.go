package realtime

import (
    "time"

    "github.com/gorilla/websocket"
)

const (
    writeWait  = 10 * time.Second
    pongWait   = 60 * time.Second
    pingPeriod = (pongWait * 9) / 10
    // maxFrameBytes bounds inbound frames; message content is short text.
    maxFrameBytes = 16 << 10
    sendBuffer    = 32
)

// client wraps one websocket connection.  Outbound frames go through the
// buffered send channel so broadcasts never block on a slow reader; the
// write pump owns the connection for writes.
type client struct {
    userID uint64
    conn   *websocket.Conn
    send   chan outEnvelope
}

func newClient(userID uint64, conn *websocket.Conn) *client {
    return &client{userID: userID, conn: conn, send: make(chan outEnvelope, sendBuffer)}
}

func (c *client) UserID() uint64 { return c.userID }

// Send queues an envelope without blocking.  A full buffer means the
// reader has stalled; the frame is dropped and the caller told.
func (c *client) Send(e outEnvelope) bool {
    select {
    case c.send <- e:
        return true
    default:
        return false
    }
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with periodic pings.  Runs in its own goroutine per connection.
func (c *client) writePump() {
    ticker := time.NewTicker(pingPeriod)
    defer func() {
        ticker.Stop()
        _ = c.conn.Close()
    }()
    for {
        select {
        case env, ok := <-c.send:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if !ok {
                _ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }
            if err := c.conn.WriteJSON(env); err != nil {
                return
            }
        case <-ticker.C:
            _ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}

// readPump reads envelopes until the connection dies and hands them to
// dispatch.  Runs on the handler goroutine.
func (c *client) readPump(dispatch func(Envelope)) {
    defer func() { _ = c.conn.Close() }()
    c.conn.SetReadLimit(maxFrameBytes)
    _ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
    c.conn.SetPongHandler(func(string) error {
        return c.conn.SetReadDeadline(time.Now().Add(pongWait))
    })
    for {
        var env Envelope
        if err := c.conn.ReadJSON(&env); err != nil {
            return
        }
        dispatch(env)
    }
}
