package testclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/shipyard/internal/ship"
)

// Reply is one message from a viewer session.
type Reply struct {
	Snapshot    ship.Snapshot `json:"snapshot"`
	LiveBuffers int           `json:"live_buffers"`
	Triangles   int           `json:"triangles"`
	Shown       int           `json:"shown"`
	Error       string        `json:"error,omitempty"`
}

// TestClient is a viewer session against a running shipyard server
type TestClient struct {
	Name    string
	conn    *websocket.Conn
	writeMu sync.Mutex
	mu      sync.Mutex
	replies []Reply
	done    chan struct{}
}

// NewTestClient opens a viewer session at ws://address/ws.
func NewTestClient(name string, address string) (*TestClient, error) {
	u := url.URL{Scheme: "ws", Host: address, Path: "/ws"}
	header := http.Header{}
	header.Set("Origin", "http://"+address)

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to connect: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	client := &TestClient{
		Name: name,
		conn: conn,
		done: make(chan struct{}),
	}

	// Start reading replies in background
	go client.readReplies()

	return client, nil
}

// readReplies continuously decodes replies from the server
func (c *TestClient) readReplies() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var reply Reply
		if err := json.Unmarshal(data, &reply); err != nil {
			reply = Reply{Error: fmt.Sprintf("undecodable reply: %v", err)}
		}
		c.mu.Lock()
		c.replies = append(c.replies, reply)
		c.mu.Unlock()
	}
}

// Show asks the server to display the ship for seed.
func (c *TestClient) Show(seed string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(seed))
}

// ShowAndWait shows seed and waits for its reply.
func (c *TestClient) ShowAndWait(seed string, timeout time.Duration) (Reply, error) {
	before := len(c.GetReplies())
	if err := c.Show(seed); err != nil {
		return Reply{}, err
	}
	if !c.WaitForReplies(before+1, timeout) {
		return Reply{}, fmt.Errorf("no reply for %q within %s", seed, timeout)
	}
	return c.LastReply(), nil
}

// GetReplies returns all replies received so far
func (c *TestClient) GetReplies() []Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]Reply, len(c.replies))
	copy(result, c.replies)
	return result
}

// LastReply returns the most recent reply, or the zero Reply.
func (c *TestClient) LastReply() Reply {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return Reply{}
	}
	return c.replies[len(c.replies)-1]
}

// WaitForReplies waits until at least n replies have arrived (with timeout)
func (c *TestClient) WaitForReplies(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if len(c.GetReplies()) >= n {
			return true
		}
		select {
		case <-c.done:
			return len(c.GetReplies()) >= n
		case <-time.After(20 * time.Millisecond):
		}
	}

	return false
}

// Close sends a close frame and tears down the connection
func (c *TestClient) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

// PrintReplies prints a one-line summary of every reply (for debugging)
func (c *TestClient) PrintReplies() {
	fmt.Printf("\n=== Replies for %s ===\n", c.Name)
	for i, r := range c.GetReplies() {
		if r.Error != "" {
			fmt.Printf("[%d] error: %s\n", i, r.Error)
			continue
		}
		fmt.Printf("[%d] %s mass=%.1f length=%.2f buffers=%d shown=%d\n",
			i, r.Snapshot.Seed, r.Snapshot.Budget.Total, r.Snapshot.TotalLength, r.LiveBuffers, r.Shown)
	}
	fmt.Println("======================")
}

// HTTPClient calls the REST API of a running server.
type HTTPClient struct {
	base   string
	client *http.Client
}

// NewHTTPClient targets http://address.
func NewHTTPClient(address string) *HTTPClient {
	return &HTTPClient{
		base:   "http://" + strings.TrimSuffix(address, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Get fetches path and returns the response with its body read.
func (h *HTTPClient) Get(path string) (*http.Response, []byte, error) {
	resp, err := h.client.Get(h.base + path)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, err
	}
	return resp, body, nil
}

// GetJSON fetches path and decodes a 200 response into v.
func (h *HTTPClient) GetJSON(path string, v any) (*http.Response, error) {
	resp, body, err := h.Get(path)
	if err != nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, json.Unmarshal(body, v)
}
