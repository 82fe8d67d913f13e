package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack-trainer/internal/currency"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	sendBufferSize = 64
)

// ErrConnectionClosed is returned when sending to a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// Connection is one websocket client playing its own session
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	session   *session.Session
	clock     quartz.Clock
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, sess *session.Session, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, sendBufferSize),
		session: sess,
		clock:   clock,
		logger:  logger.WithPrefix("conn"),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client. A client that has stopped
// reading is disconnected once its buffer fills.
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "requestId", msg.RequestID)

	switch msg.Type {
	case MessageTypeStart:
		var data StartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse start data")
			return
		}
		snap, err := c.session.Start(data.Bet)
		c.replyState(msg, snap, err)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse action data")
			return
		}
		snap, err := c.session.Act(data.Action)
		c.replyState(msg, snap, err)

	case MessageTypeEnd:
		snap, err := c.session.End()
		c.replyState(msg, snap, err)

	case MessageTypeState:
		c.replyState(msg, c.session.Snapshot(), nil)

	case MessageTypeClaimBonus:
		claimed, snap, err := c.session.ClaimBonus()
		if err != nil {
			c.sendError(msg, "storage_error", err.Error())
			return
		}
		c.reply(msg, MessageTypeBonus, bonusData(claimed, snap))

	case MessageTypeAdvise:
		var data AdviseData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse advise data")
			return
		}
		c.handleAdvise(msg, data)

	case MessageTypeSettings:
		var data SettingsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, "invalid_message", "Failed to parse settings data")
			return
		}
		c.handleSettings(msg, data)

	default:
		c.sendError(msg, "unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleAdvise(msg *Message, data AdviseData) {
	cards, err := deck.ParseCards(data.Cards)
	if err != nil || len(cards) < 2 {
		c.sendError(msg, "invalid_cards", "Need at least two player cards, e.g. \"Ts6h\"")
		return
	}
	up, err := deck.ParseCard(data.Dealer)
	if err != nil {
		c.sendError(msg, "invalid_cards", "Need one dealer card, e.g. \"9d\"")
		return
	}

	player := hand.Evaluate(cards)
	c.reply(msg, MessageTypeAdvice, AdviceData{
		Recommendation: strategy.Recommend(player, up),
		Hand:           handView(player, 0),
		Dealer:         up.String(),
	})
}

func (c *Connection) handleSettings(msg *Message, data SettingsData) {
	if data.Hints != nil {
		if _, err := c.session.SetHints(*data.Hints); err != nil {
			c.sendError(msg, "storage_error", err.Error())
			return
		}
	}
	if data.Sound != nil {
		if _, err := c.session.SetSound(*data.Sound); err != nil {
			c.sendError(msg, "storage_error", err.Error())
			return
		}
	}
	c.replyState(msg, c.session.Snapshot(), nil)
}

// replyState answers with the snapshot, or with an error when err is set
func (c *Connection) replyState(req *Message, snap session.Snapshot, err error) {
	if err != nil {
		c.sendError(req, errorCode(err), err.Error())
		return
	}
	c.reply(req, MessageTypeState, StateFromSnapshot(snap))
}

// reply sends a message that echoes the request ID of req, if any
func (c *Connection) reply(req *Message, messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	if req != nil {
		msg.RequestID = req.RequestID
	}
	_ = c.SendMessage(msg)
}

// sendError sends an error message to the client
func (c *Connection) sendError(req *Message, code, message string) {
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: message})
}

// pushBonus sends the current bonus countdown unprompted
func (c *Connection) pushBonus() {
	c.reply(nil, MessageTypeBonus, bonusData(false, c.session.Snapshot()))
}

func bonusData(claimed bool, snap session.Snapshot) BonusData {
	return BonusData{
		Claimed:          claimed,
		Available:        snap.NextBonus <= 0,
		NextBonusSeconds: int64(snap.NextBonus / time.Second),
		Countdown:        currency.FormatBonusCountdown(snap.NextBonus),
		Balance:          snap.Balance,
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidBet):
		return "invalid_bet"
	case errors.Is(err, session.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, session.ErrNoActiveRound):
		return "no_active_round"
	case errors.Is(err, session.ErrRoundInProgress):
		return "round_in_progress"
	case errors.Is(err, session.ErrActionUnavailable):
		return "action_unavailable"
	default:
		return "internal_error"
	}
}
