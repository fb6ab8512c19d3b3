package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/sidecast/sidecast/go/clients/engagement_client"
	"github.com/sidecast/sidecast/go/internal/engagement"
	"github.com/sidecast/sidecast/go/internal/gateway"
	"github.com/sidecast/sidecast/go/internal/participation"
	"github.com/sidecast/sidecast/go/internal/simulation"
	"github.com/sidecast/sidecast/go/internal/timeline"
	"github.com/sidecast/sidecast/go/internal/videosync"
)

type Services struct {
	Timeline   *timeline.Store
	VideoSync  *videosync.Manager
	Simulation *simulation.Manager
	Ledger     *participation.Ledger
	Engagement *engagement.Service

	ParticipationDB *participation.SQLiteStore
	Publisher       *gateway.Publisher
	ConnManager     *gateway.ConnectionManager
	Consumer        *gateway.EventConsumer
	WSHandler       *gateway.WebSocketHandler
}

// publishingSink feeds simulated match events into the timeline store and
// mirrors them onto the event bus so connected viewers see them immediately.
type publishingSink struct {
	store       *timeline.Store
	publisher   *gateway.Publisher
	broadcastID string
}

func (s *publishingSink) AddEvent(ev timeline.TimelineEvent) {
	s.store.AddEvent(ev)

	if s.publisher == nil {
		return
	}
	record := timeline.ExportRecord{
		ID:             ev.EventID(),
		VideoTimestamp: ev.VideoTimestamp(),
		EventType:      string(ev.Type()),
		Metadata:       ev.EventMetadata(),
	}
	if err := s.publisher.PublishTimelineEvent(context.Background(), s.broadcastID, record); err != nil {
		log.Error().Err(err).Str("event_id", record.ID).Msg("failed to publish timeline event")
	}

	if goal, ok := ev.(timeline.MatchGoalEvent); ok {
		minute := int(goal.VideoTimestamp() / 60)
		if err := s.publisher.PublishScore(context.Background(), s.broadcastID, minute, goal.Score); err != nil {
			log.Error().Err(err).Int("minute", minute).Msg("failed to publish score update")
		}
	}
}

func setupServices(cfg *Config) (*Services, error) {
	clock := clockwork.NewRealClock()

	// Durable participation layer
	store, err := participation.OpenSQLite(cfg.Participation.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open participation store: %w", err)
	}
	ledger, err := participation.NewLedger(context.Background(), store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("load participation ledger: %w", err)
	}

	// Event bus
	publisher, err := gateway.NewPublisher(gateway.JetStreamPublisherConfig{
		URL:           cfg.NATS.URL,
		StreamName:    cfg.NATS.Stream,
		SubjectPrefix: cfg.NATS.SubjectPrefix,
		MaxReconnects: -1,
		ReconnectWait: gateway.DefaultJetStreamPublisherConfig().ReconnectWait,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("create publisher: %w", err)
	}

	connManager := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())

	consumerCfg := gateway.DefaultJetStreamConsumerConfig()
	consumerCfg.URL = cfg.NATS.URL
	consumerCfg.StreamName = cfg.NATS.Stream
	consumerCfg.ConsumerName = cfg.NATS.Consumer
	consumerCfg.SubjectFilter = cfg.NATS.SubjectPrefix + ".>"
	consumer, err := gateway.NewEventConsumer(connManager, consumerCfg)
	if err != nil {
		publisher.Close()
		store.Close()
		return nil, fmt.Errorf("create event consumer: %w", err)
	}

	// Core engine
	timelineStore := timeline.NewStore()
	videoSync := videosync.NewManager(clock)
	sink := &publishingSink{
		store:       timelineStore,
		publisher:   publisher,
		broadcastID: cfg.Simulation.BroadcastID,
	}
	sim := simulation.NewManager(clock, sink)

	repo, err := engagement_client.NewClient(cfg.Engagement.BaseURL, cfg.Engagement.APIKey)
	if err != nil {
		consumer.Stop()
		publisher.Close()
		store.Close()
		return nil, fmt.Errorf("create engagement client: %w", err)
	}
	engagementSvc := engagement.NewService(repo, videoSync, ledger)

	// Poll results flowing through the bus refresh the engagement cache
	consumer.SetPollResultsHandler(engagementSvc.UpdatePollResults)

	return &Services{
		Timeline:        timelineStore,
		VideoSync:       videoSync,
		Simulation:      sim,
		Ledger:          ledger,
		Engagement:      engagementSvc,
		ParticipationDB: store,
		Publisher:       publisher,
		ConnManager:     connManager,
		Consumer:        consumer,
		WSHandler:       gateway.NewWebSocketHandler(connManager),
	}, nil
}

// Close releases external resources in reverse dependency order.
func (s *Services) Close() {
	if s.Consumer != nil {
		s.Consumer.Stop()
	}
	if s.Publisher != nil {
		s.Publisher.Close()
	}
	if s.ParticipationDB != nil {
		if err := s.ParticipationDB.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close participation store")
		}
	}
}
