package server

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// WebSocketClient wraps a WebSocket connection for browser-based viewers.
type WebSocketClient struct {
	conn    *websocket.Conn
	readBuf []string   // Buffer for lines when a message contains multiple lines
	mu      sync.Mutex // Protects readBuf
	writeMu sync.Mutex
}

// NewWebSocketClient creates a new WebSocketClient. A positive maxMessageSize
// caps incoming messages; larger ones close the connection.
func NewWebSocketClient(conn *websocket.Conn, maxMessageSize int64) *WebSocketClient {
	if maxMessageSize > 0 {
		conn.SetReadLimit(maxMessageSize)
	}
	return &WebSocketClient{
		conn:    conn,
		readBuf: make([]string, 0),
	}
}

// ReadLine reads a line from the WebSocket connection (blocking).
// If a message contains multiple lines, they are buffered and returned one at a time.
// Blank messages are skipped.
func (c *WebSocketClient) ReadLine() (string, error) {
	for {
		c.mu.Lock()
		if len(c.readBuf) > 0 {
			line := c.readBuf[0]
			c.readBuf = c.readBuf[1:]
			c.mu.Unlock()
			return line, nil
		}
		c.mu.Unlock()

		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}

		lines := strings.Split(string(message), "\n")
		filtered := make([]string, 0, len(lines))
		for _, line := range lines {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				filtered = append(filtered, trimmed)
			}
		}

		c.mu.Lock()
		c.readBuf = append(c.readBuf, filtered...)
		c.mu.Unlock()
	}
}

// WriteLine writes a message to the WebSocket client as one text message.
func (c *WebSocketClient) WriteLine(message string) error {
	return c.Write([]byte(message))
}

// Write writes raw bytes to the WebSocket client as a text message.
func (c *WebSocketClient) Write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a normal closure frame and closes the connection.
func (c *WebSocketClient) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
