// The apiserver binary serves the StudyHub REST API: auth, profiles,
// conversations and message history, study groups, sessions, quizzes,
// resources, uploads and the study assistant. Messages created here are
// produced to Kafka so the chatserver can fan them out in realtime.
package main

import (
	"context"
	"errors"
	"flag"
	"math/rand"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"studyhub/internal/config"
	apihandlers "studyhub/internal/handlers/apiserver"
	"studyhub/internal/kafka"
	"studyhub/internal/logging"
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
	log.Info().Str("app", cfg.AppName).Str("version", cfg.AppVersion).Msg("starting api server")

	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	blacklist := redis.NewTokenBlacklist(redisClient)

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer producer.Close()

	storageService, err := storage.NewLocalStorageService(cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init storage")
	}

	userRepo := storage.NewGormUserRepository(db)
	convoRepo := storage.NewGormConversationRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	quizRepo := storage.NewGormQuizRepository(db)
	resourceRepo := storage.NewGormResourceRepository(db)

	publisher := services.NewKafkaEnvelopePublisher(producer, cfg.Kafka.EnvelopesTopic)
	activity := services.NewKafkaActivityRecorder(producer, cfg.Kafka.ActivityTopic)

	authService := services.NewAuthService(userRepo, cfg.Auth, blacklist)
	userService := services.NewUserService(userRepo)
	convoService := services.NewConversationService(convoRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, convoRepo, userRepo, publisher)
	groupService := services.NewGroupService(groupRepo, convoService, activity)
	quizService := services.NewQuizService(quizRepo)
	resourceService := services.NewResourceService(resourceRepo, groupRepo, activity)
	assistantService := services.NewAssistantService(rand.NewSource(time.Now().UnixNano()))

	router := apihandlers.NewRouter(apihandlers.Handlers{
		Auth:         apihandlers.NewAuthHandler(authService),
		User:         apihandlers.NewUserHandler(userService),
		Conversation: apihandlers.NewConversationHandler(convoService, messageService),
		Group:        apihandlers.NewGroupHandler(groupService),
		Quiz:         apihandlers.NewQuizHandler(quizService),
		Resource:     apihandlers.NewResourceHandler(resourceService),
		Upload:       apihandlers.NewUploadHandler(storageService, cfg.Storage),
		Assistant:    apihandlers.NewAssistantHandler(assistantService),
	}, cfg, blacklist)

	addr := net.JoinHostPort(cfg.APIServer.Host, cfg.APIServer.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", addr).Msg("api server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("api server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
