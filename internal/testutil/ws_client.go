package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/draft-together/server/internal/domain"
)

// DraftClient is a websocket client for draft tests. Every server frame is a
// full board snapshot; frames are decoded on a background pump and buffered
// so tests can assert on them with a timeout.
type DraftClient struct {
	t      *testing.T
	conn   *websocket.Conn
	drafts chan *domain.Draft
	errors chan error
	done   chan struct{}

	closeOnce sync.Once
}

// NewDraftClient connects to the given websocket URL and starts reading
// frames. The connection is closed automatically when the test finishes.
func NewDraftClient(t *testing.T, url string) *DraftClient {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.NoError(t, err, "failed to dial websocket at %s", url)

	c := &DraftClient{
		t:      t,
		conn:   conn,
		drafts: make(chan *domain.Draft, 16),
		errors: make(chan error, 1),
		done:   make(chan struct{}),
	}

	go c.readPump()
	t.Cleanup(c.Close)

	return c
}

func (c *DraftClient) readPump() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case c.errors <- err:
			default:
			}
			return
		}
		var draft domain.Draft
		if err := json.Unmarshal(data, &draft); err != nil {
			select {
			case c.errors <- err:
			default:
			}
			return
		}
		c.drafts <- &draft
	}
}

// SendEdit sends a champion placement for one board slot.
func (c *DraftClient) SendEdit(championID int32, position domain.Position) {
	c.t.Helper()
	err := c.conn.WriteJSON(domain.ChampionUpdate{
		ChampionID: championID,
		Position:   position,
	})
	require.NoError(c.t, err, "failed to send edit")
}

// SendRaw sends an arbitrary text frame, for exercising malformed input.
func (c *DraftClient) SendRaw(data []byte) {
	c.t.Helper()
	err := c.conn.WriteMessage(websocket.TextMessage, data)
	require.NoError(c.t, err, "failed to send raw frame")
}

// ExpectDraft waits for the next board frame and returns it.
func (c *DraftClient) ExpectDraft(timeout time.Duration) *domain.Draft {
	c.t.Helper()
	select {
	case draft := <-c.drafts:
		return draft
	case err := <-c.errors:
		c.t.Fatalf("websocket read failed while waiting for draft: %v", err)
	case <-time.After(timeout):
		c.t.Fatal("timed out waiting for draft frame")
	}
	return nil
}

// ExpectNoDraft asserts that no board frame arrives within the timeout.
func (c *DraftClient) ExpectNoDraft(timeout time.Duration) {
	c.t.Helper()
	select {
	case draft := <-c.drafts:
		c.t.Fatalf("expected no draft frame, got %+v", draft)
	case <-time.After(timeout):
	}
}

// Close sends a close frame and tears down the connection. Safe to call more
// than once; also registered as a test cleanup.
func (c *DraftClient) Close() {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.conn.Close()
		select {
		case <-c.done:
		case <-time.After(time.Second):
		}
	})
}
