// The chatserver binary runs the realtime side of StudyHub: the websocket
// endpoint, the room hub, the Kafka consumer for envelopes created on the
// apiserver, and the optional Redis bridge for multi-instance fan-out.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"studyhub/internal/chattypes"
	"studyhub/internal/config"
	chathandlers "studyhub/internal/handlers/chatserver"
	"studyhub/internal/kafka"
	"studyhub/internal/logging"
	"studyhub/internal/realtime"
	"studyhub/internal/redis"
	"studyhub/internal/services"
	"studyhub/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Env, cfg.LogLevel)
	log.Info().Str("app", cfg.AppName).Str("version", cfg.AppVersion).Msg("starting chat server")

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	blacklist := redis.NewTokenBlacklist(redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()

	if cfg.Realtime.BridgeEnabled {
		bridge := realtime.NewBridge(redisClient, hub, cfg.Realtime.BridgeChannel)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				log.Error().Err(err).Msg("fanout bridge stopped")
			}
		}()
	}
	go hub.Run(ctx)

	userRepo := storage.NewGormUserRepository(db)
	convoRepo := storage.NewGormConversationRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)

	convoService := services.NewConversationService(convoRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, convoRepo, userRepo, hub)

	// Envelopes created on the apiserver arrive over Kafka and join the same
	// fan-out path as websocket sends.
	consumer, err := kafka.NewConsumer(cfg.Kafka)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}
	defer consumer.Close()

	go func() {
		handler := func(_ context.Context, msg *ckafka.Message) error {
			var env chattypes.Envelope
			if err := json.Unmarshal(msg.Value, &env); err != nil {
				log.Warn().Err(err).Msg("malformed envelope on kafka, skipping")
				return nil
			}
			hub.Publish(env)
			return nil
		}
		topics := []string{cfg.Kafka.EnvelopesTopic}
		if err := consumer.Consume(ctx, topics, cfg.Kafka.ConsumerGroup, handler); err != nil {
			log.Error().Err(err).Msg("kafka consumer stopped")
		}
	}()

	onSend := func(ctx context.Context, intent chattypes.SendMessage, sender *realtime.Client) error {
		_, err := messageService.Create(ctx, services.CreateMessageInput{
			SenderID:       sender.UserID,
			ConversationID: intent.ConversationID,
			ClientID:       intent.ClientID,
			Type:           intent.Type,
			Content:        intent.Content,
			FileURL:        intent.FileURL,
		})
		return err
	}

	wsHandler := chathandlers.NewWebSocketHandler(
		hub, onSend, convoService.EnsureParticipant, cfg.Auth, cfg.WebSocket, blacklist)

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.WebSocketPath, wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", addr).Str("path", cfg.Server.WebSocketPath).Msg("chat server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("chat server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down chat server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
