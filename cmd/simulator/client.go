package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Wire types matching the backend

type Draft struct {
	BlueChampions [5]*int32 `json:"blue_champions"`
	RedChampions  [5]*int32 `json:"red_champions"`
	BlueBans      [5]*int32 `json:"blue_bans"`
	RedBans       [5]*int32 `json:"red_bans"`
}

type Champion struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

type Edit struct {
	ChampionID int32  `json:"champion_id"`
	Position   string `json:"position"`
}

// DraftClient talks to the backend the way the browser client does: REST
// for reads, one websocket session per room for edits.
type DraftClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDraftClient creates a new client against the given base URL.
func NewDraftClient(baseURL string) *DraftClient {
	return &DraftClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetChampions fetches the full catalog.
func (c *DraftClient) GetChampions() ([]Champion, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/champions")
	if err != nil {
		return nil, fmt.Errorf("champions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("champions failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var champions []Champion
	if err := json.NewDecoder(resp.Body).Decode(&champions); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return champions, nil
}

// GetDraft fetches the current board of a room, creating the room when it
// has never been seen.
func (c *DraftClient) GetDraft(roomID uuid.UUID) (*Draft, error) {
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/draft/%s", c.baseURL, roomID))
	if err != nil {
		return nil, fmt.Errorf("draft request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("draft failed (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var draft Draft
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &draft, nil
}

// Connect opens a websocket session on a room.
func (c *DraftClient) Connect(roomID uuid.UUID) (*DraftConn, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/ws/%s", wsURL, roomID), nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	return &DraftConn{conn: conn}, nil
}

// DraftConn is one live websocket session on a room.
type DraftConn struct {
	conn *websocket.Conn
}

// SendEdit places a champion on a board slot.
func (c *DraftConn) SendEdit(championID int32, position string) error {
	return c.conn.WriteJSON(Edit{
		ChampionID: championID,
		Position:   position,
	})
}

// ReadDraft blocks until the server pushes the next board state.
func (c *DraftConn) ReadDraft() (*Draft, error) {
	var draft Draft
	if err := c.conn.ReadJSON(&draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// ReadDraftTimeout reads the next board state, giving up after timeout.
func (c *DraftConn) ReadDraftTimeout(timeout time.Duration) (*Draft, error) {
	c.conn.SetReadDeadline(time.Now().Add(timeout))
	defer c.conn.SetReadDeadline(time.Time{})
	return c.ReadDraft()
}

// Close ends the session.
func (c *DraftConn) Close() error {
	return c.conn.Close()
}
