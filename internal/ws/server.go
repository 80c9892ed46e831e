package ws

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Bubba898/luchadores-web/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are enforced by the CORS layer on the HTTP API; the
		// websocket endpoints carry no credentials worth protecting.
		return true
	},
}

// Server exposes the host and player websocket endpoints and translates
// inbound frames into registry calls.
type Server struct {
	registry *game.Registry
	log      zerolog.Logger
}

func New(registry *game.Registry, log zerolog.Logger) *Server {
	return &Server{registry: registry, log: log}
}

// Mount attaches the websocket routes to the given engine.
func (s *Server) Mount(r *gin.Engine) {
	r.GET("/host", s.handleHost)
	r.GET("/player", s.handlePlayer)
}

// inboundMessage is the superset of all client frames; messageType decides
// which fields matter.
type inboundMessage struct {
	MessageType    string  `json:"messageType"`
	ID             string  `json:"id"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	TargetPlayerID *int    `json:"targetPlayerId"`
}

func (s *Server) handleHost(c *gin.Context) {
	code := c.Query("code")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("host upgrade failed")
		return
	}
	client := newClient(conn, s.log)
	go client.writePump()

	if _, err := s.registry.BindHost(code, client); err != nil {
		client.Close("Room not found")
		return
	}
	client.log.Info().Str("code", code).Str("role", "host").Msg("socket connected")

	defer func() {
		s.registry.Unbind(client)
		client.shutdown()
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// Malformed frames are ignored, never fatal.
			continue
		}
		switch msg.MessageType {
		case "start":
			s.registry.StartGame(client)
		case "restart":
			s.registry.Restart(client)
		}
	}
}

func (s *Server) handlePlayer(c *gin.Context) {
	code := c.Query("code")
	name := c.Query("name")
	var emoji *int
	if raw := c.Query("emoji"); raw != "" {
		if cp, err := strconv.Atoi(raw); err == nil {
			emoji = &cp
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("player upgrade failed")
		return
	}
	client := newClient(conn, s.log)
	go client.writePump()

	player, err := s.registry.BindPlayer(code, name, emoji, client)
	if err != nil {
		client.Close("Room not found")
		return
	}
	client.log.Info().Str("code", code).Int("playerId", player.ID).Msg("socket connected")

	defer func() {
		s.registry.Unbind(client)
		client.shutdown()
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg.MessageType {
		case "partdrop":
			if msg.ID == "" {
				continue
			}
			s.registry.HandlePartDrop(client, game.PartPlacement{ID: msg.ID, X: msg.X, Y: msg.Y})
		case "vote":
			if msg.TargetPlayerID == nil {
				continue
			}
			s.registry.HandleVote(client, *msg.TargetPlayerID)
		}
	}
}
