package main

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/boardsync/go/internal/board"
	"github.com/mcdev12/boardsync/go/internal/card"
	"github.com/mcdev12/boardsync/go/internal/gateway"
	"github.com/mcdev12/boardsync/go/internal/list"
)

// Services holds the wired application graph.
type Services struct {
	Boards *board.App
	Lists  *list.App
	Cards  *card.App

	ConnectionManager *gateway.ConnectionManager
	WSHandler         *gateway.WebSocketHandler
	RebalanceWorker   *card.RebalanceWorker
	Bridge            *gateway.Bridge
}

func setupServices(pool *pgxpool.Pool, config *Config) (*Services, error) {
	boardRepo := board.NewRepository(pool)
	listRepo := list.NewRepository(pool)
	cardRepo := card.NewRepository(pool)

	boards := board.NewApp(boardRepo, listRepo, cardRepo)
	lists := list.NewApp(listRepo)
	cards := card.NewApp(cardRepo, listRepo)

	if config.Redis.Enabled {
		rc := redis.NewClient(&redis.Options{Addr: config.Redis.Addr})
		cache := board.NewCache(rc, board.DefaultSnapshotTTL)
		boards.WithSnapshotCache(cache)
		lists.WithSnapshotCache(cache)
		cards.WithSnapshotCache(cache)
		log.Info().Str("addr", config.Redis.Addr).Msg("snapshot cache enabled")
	}

	worker := card.NewRebalanceWorker(cards, clockwork.NewRealClock(), config.rebalanceDebounce())
	cards.WithRebalanceSignal(worker.Enqueue)

	presence := gateway.NewPresenceRegistry()
	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig(), presence, boards)

	var bridge *gateway.Bridge
	if config.Bridge.Enabled {
		bridgeCfg := gateway.DefaultBridgeConfig()
		if config.Bridge.URL != "" {
			bridgeCfg.URL = config.Bridge.URL
		}
		if config.Bridge.SubjectPrefix != "" {
			bridgeCfg.SubjectPrefix = config.Bridge.SubjectPrefix
		}

		var err error
		bridge, err = gateway.NewBridge(cm, bridgeCfg)
		if err != nil {
			return nil, err
		}
		cm.WithPublisher(bridge)
	}

	return &Services{
		Boards:            boards,
		Lists:             lists,
		Cards:             cards,
		ConnectionManager: cm,
		WSHandler:         gateway.NewWebSocketHandler(cm),
		RebalanceWorker:   worker,
		Bridge:            bridge,
	}, nil
}
