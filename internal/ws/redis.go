package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/galton/internal/config"
	"github.com/playmatatu/galton/internal/game"
	"github.com/redis/go-redis/v9"
)

var rdbClient *redis.Client
var wsConfig *config.Config

// Configure hands the hub its Redis client (may be nil) and config.
func Configure(r *redis.Client, cfg *config.Config) {
	rdbClient = r
	wsConfig = cfg
}

// StartBoardEventSubscriber relays landing events published on board_events to the
// session rooms connected to this instance.
func StartBoardEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; board event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, game.BoardEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", game.BoardEventsChannel)
		for msg := range ch {
			relayBoardEvent(BoardHub, []byte(msg.Payload))
		}
		log.Printf("[WS] %s subscriber stopped", game.BoardEventsChannel)
	}()
}

// relayBoardEvent forwards one published event to its session room.
func relayBoardEvent(h *Hub, payload []byte) {
	var head struct {
		Type         string `json:"type"`
		SessionToken string `json:"session_token"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		log.Printf("[WS] invalid event payload: %v", err)
		return
	}

	switch head.Type {
	case "landing":
		if head.SessionToken == "" {
			log.Printf("[WS] landing event without session token")
			return
		}
		if h.RoomSize(head.SessionToken) == 0 {
			return
		}
		h.broadcastRaw(head.SessionToken, payload)

	default:
		log.Printf("[WS] unknown event type: %s", head.Type)
	}
}
