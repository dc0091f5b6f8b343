package websocket

import (
	"context"
	"encoding/json"

	"github.com/draft-together/server/internal/domain"
	"github.com/draft-together/server/internal/registry"
	"github.com/draft-together/server/internal/validation"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const maxMessageSize = 512 * 1024

// Client is one peer's websocket session on a room. The read pump consumes
// edit frames and applies them to the shared board; the write pump waits on
// the room's change signal and pushes the full board back out. There is no
// application-level heartbeat: the session lives until the socket drops.
type Client struct {
	conn      *websocket.Conn
	registry  *registry.Registry
	room      *registry.Room
	sub       *registry.Subscription
	validator *validation.Set
}

// NewClient wraps an upgraded connection whose peer has already joined room.
func NewClient(conn *websocket.Conn, reg *registry.Registry, room *registry.Room, validator *validation.Set) *Client {
	return &Client{
		conn:      conn,
		registry:  reg,
		room:      room,
		sub:       room.Subscribe(),
		validator: validator,
	}
}

// ReadPump consumes edit frames until the connection drops. It owns session
// teardown: the subscription, the peer count, and the connection itself are
// all released when it returns. Frames that fail to parse or name a champion
// outside the catalog are logged and skipped without ending the session.
func (c *Client) ReadPump() {
	defer func() {
		c.sub.Cancel()
		c.registry.Release(context.Background(), c.room)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("room_id", c.room.ID()).Error("websocket read failed")
			}
			return
		}

		var update domain.ChampionUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			editsTotal.WithLabelValues("malformed").Inc()
			log.WithError(err).WithField("room_id", c.room.ID()).Error("failed to parse champion update")
			continue
		}
		if !update.Position.IsValid() {
			editsTotal.WithLabelValues("malformed").Inc()
			log.WithField("room_id", c.room.ID()).Error("champion update without a board position")
			continue
		}

		if !c.validator.Contains(update.ChampionID) {
			editsTotal.WithLabelValues("rejected").Inc()
			log.WithFields(log.Fields{
				"room_id":     c.room.ID(),
				"champion_id": update.ChampionID,
			}).Error("rejected update for unknown champion")
			continue
		}

		c.room.Apply(update)
		editsTotal.WithLabelValues("applied").Inc()
	}
}

// WritePump pushes the full board to the peer every time the room signals a
// change. Fresh peers fetch the current board over HTTP before connecting, so
// nothing is sent until the first edit lands. It exits when the subscription
// closes or a write fails.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for range c.sub.C() {
		if !c.sendDraft() {
			return
		}
	}
}

func (c *Client) sendDraft() bool {
	draft := c.room.Draft()
	data, err := json.Marshal(draft)
	if err != nil {
		log.WithError(err).WithField("room_id", c.room.ID()).Error("failed to marshal draft")
		return false
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.WithError(err).WithField("room_id", c.room.ID()).Error("failed to send draft")
		return false
	}
	return true
}
