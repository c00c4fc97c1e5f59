package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dodgeshot/backend/internal/config"
	"github.com/dodgeshot/backend/internal/game"
)

// Inbound message payloads.
type SetMoveData struct {
	Angle float64 `json:"angle"`
	Force float64 `json:"force"`
}

// GameHub is the single hub for all matches.
var GameHub *Hub

var (
	wsConfig *config.Config

	// Per-match frame throttle: full state goes out every few ticks,
	// not on every one.
	frameMu      sync.Mutex
	frameCounter = make(map[string]int)
)

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// WireManager connects the match manager's frame and phase hooks to the
// hub so live matches stream to their watchers.
func WireManager(cfg *config.Config) {
	wsConfig = cfg
	game.Manager.OnFrame = broadcastFrame
	game.Manager.OnPhase = broadcastPhase
	game.Manager.OnEnd = clearFrameState
}

// clearFrameState drops a match's throttle counter. Runs on every
// teardown path, not just a played-out game over.
func clearFrameState(m *game.Match) {
	frameMu.Lock()
	delete(frameCounter, m.Token)
	frameMu.Unlock()
}

// HandleWebSocket upgrades a renderer/controller connection for one
// match. Query params: token (match token), seat (player seat, omitted
// or -1 for spectators).
func HandleWebSocket(c *gin.Context) {
	matchToken := c.Param("token")
	if matchToken == "" {
		matchToken = c.Query("token")
	}
	if matchToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	m, err := game.Manager.GetMatch(matchToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	seat := -1
	if s := c.Query("seat"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			seat = v
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:       conn,
		matchToken: matchToken,
		seat:       seat,
		send:       make(chan []byte, 256),
	}

	GameHub.register <- client

	go client.writePump()
	go client.readPump(m)
}

// readPump reads control messages from the client until disconnect.
func (c *Client) readPump(m *game.Match) {
	defer func() {
		GameHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] read error: %v", err)
			}
			return
		}
		c.dispatch(m, msg)
	}
}

func (c *Client) dispatch(m *game.Match, msg WSMessage) {
	switch msg.Type {
	case "set_move":
		if c.seat < 0 {
			c.sendError("spectators cannot move")
			return
		}
		var data SetMoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("bad set_move payload")
			return
		}
		// Outside the countdown this is a silent no-op by design.
		m.SetPlayerMove(c.seat, data.Angle, data.Force)

	case "lock_move":
		if c.seat >= 0 {
			m.LockPlayerMove(c.seat)
		}

	case "unlock_move":
		if c.seat >= 0 {
			m.UnlockPlayerMove(c.seat)
		}

	case "state_request":
		c.sendSnapshot(m)

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

func (c *Client) sendSnapshot(m *game.Match) {
	data, err := json.Marshal(map[string]interface{}{
		"type": "state",
		"data": m.Snapshot(),
	})
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// broadcastFrame streams per-frame ball state; throttled so a 60 Hz
// simulation does not push 60 full snapshots a second.
func broadcastFrame(m *game.Match) {
	if !GameHub.HasClients(m.Token) {
		return
	}

	frameMu.Lock()
	frameCounter[m.Token]++
	n := frameCounter[m.Token]
	frameMu.Unlock()

	divisor := 3 // 20 Hz at the default tick rate
	if m.Phase().Kind != game.PhaseExecuting {
		divisor = 12 // nothing moves between shots; trickle updates
	}
	if n%divisor != 0 {
		return
	}

	phase := m.Phase()
	GameHub.BroadcastToMatch(m.Token, map[string]interface{}{
		"type": "frame",
		"data": map[string]interface{}{
			"phase": phase,
			"balls": m.Balls(),
			"moves": m.Moves(),
		},
	})
}

// broadcastPhase announces phase transitions, attaching whatever the
// new phase needs: the CPU aim previews entering a countdown, the
// banner text entering a result, the verdict at game over.
func broadcastPhase(m *game.Match, phase game.RoundPhase) {
	round, total := m.Round()
	payload := map[string]interface{}{
		"phase":        phase,
		"round":        round,
		"total_rounds": total,
		"eliminated":   m.EliminatedSeats(),
	}

	switch phase.Kind {
	case game.PhaseCountdown:
		maxPoints, maxBounces := 120, 3
		if wsConfig != nil {
			maxPoints, maxBounces = wsConfig.PreviewMaxPoints, wsConfig.PreviewMaxBounces
		}
		payload["plans"] = m.Plans()
		payload["previews"] = m.AimPreviews(maxPoints, maxBounces)
	case game.PhaseGameOver:
		clearFrameState(m)
	}

	GameHub.BroadcastToMatch(m.Token, map[string]interface{}{
		"type": "phase",
		"data": payload,
	})
}
