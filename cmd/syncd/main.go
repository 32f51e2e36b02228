package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	mqcontracts "lifeflow/contracts/mq"
	"lifeflow/internal/config"
	"lifeflow/internal/handler"
	"lifeflow/internal/httpserver"
	"lifeflow/internal/mqhandler"
	"lifeflow/internal/notify"
	"lifeflow/internal/reminder"
	"lifeflow/internal/remote"
	"lifeflow/internal/syncer"
	"lifeflow/internal/timeline"
	"lifeflow/pkg/logger"
	"lifeflow/pkg/mq"
	pkgredis "lifeflow/pkg/redis"
	"lifeflow/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting syncd...",
		zap.String("remote_base_url", cfg.Remote.BaseURL),
		zap.String("mq_url", cfg.MQ.URL),
		zap.String("redis_addr", cfg.Redis.Addr),
	)

	// Redis (event dedup)
	log.Info("Initializing Redis connection...")
	rdb := pkgredis.NewRedisClient(cfg.Redis)
	defer rdb.Close()
	deduper := util.NewDeduperWithLogger(rdb, time.Duration(cfg.Sync.DedupTTLSeconds)*time.Second, log)

	// Remote persistence client
	client := remote.NewClient(
		cfg.Remote.BaseURL,
		cfg.JWT.Secret,
		cfg.Sync.DeviceID,
		time.Duration(cfg.Remote.TimeoutSeconds)*time.Second,
		log,
	)

	// Local state
	toasts := notify.NewCenter(time.Duration(cfg.Sync.ToastDismissSeconds)*time.Second, log)
	board := syncer.NewBoard()
	queue := syncer.NewQueue(board, client, toasts, log)
	cursor := timeline.NewCursor(client, cfg.Sync.TimelinePageSize, log)

	// Initial hydration. A cold start without the remote is still usable;
	// the lists.changed consumer refreshes once it comes back.
	hydrateCtx, hydrateCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if lists, err := client.ListLists(hydrateCtx); err != nil {
		log.Warn("Initial list fetch failed, starting empty", zap.Error(err))
	} else if err := board.HydrateLists(lists); err != nil {
		log.Warn("Initial list hydration failed", zap.Error(err))
	}
	if tasks, err := client.ListTasks(hydrateCtx); err != nil {
		log.Warn("Initial task fetch failed, starting empty", zap.Error(err))
	} else if err := board.HydrateTasks(tasks); err != nil {
		log.Warn("Initial task hydration failed", zap.Error(err))
	}
	if err := cursor.FetchNextPage(hydrateCtx); err != nil {
		log.Warn("Initial timeline page fetch failed", zap.Error(err))
	}
	hydrateCancel()
	log.Info("Initial state hydrated",
		zap.Int("task_count", len(board.TasksSnapshot())),
		zap.Int("list_count", len(board.ListsSnapshot())),
		zap.Int("timeline_count", cursor.Len()),
	)

	// MQ Consumer for lists.changed
	log.Info("Initializing MQ consumer for lists.changed...",
		zap.String("queue", "lists.changed.q"),
		zap.String("routing_key", mqcontracts.RoutingKeyListsChanged),
	)
	listsHandler := mqhandler.NewListsChangedHandler(client, board, queue, deduper, log)
	listsConsumer, err := mq.NewConsumer(cfg.MQ.URL, "lists.changed.q", mqcontracts.RoutingKeyListsChanged, log)
	if err != nil {
		log.Fatal("Failed to init lists consumer", zap.Error(err))
	}
	defer listsConsumer.Close()
	listsConsumer.SetHandler(listsHandler.Handle)
	go func() {
		log.Info("Starting lists.changed consumer...")
		if err := listsConsumer.StartConsuming(); err != nil {
			log.Fatal("Lists consumer failed", zap.Error(err))
		}
	}()

	// MQ Consumer for timeline.appended
	log.Info("Initializing MQ consumer for timeline.appended...",
		zap.String("queue", "timeline.appended.q"),
		zap.String("routing_key", mqcontracts.RoutingKeyTimelineAppended),
	)
	timelineMQHandler := mqhandler.NewTimelineAppendedHandler(cursor, deduper, log)
	timelineConsumer, err := mq.NewConsumer(cfg.MQ.URL, "timeline.appended.q", mqcontracts.RoutingKeyTimelineAppended, log)
	if err != nil {
		log.Fatal("Failed to init timeline consumer", zap.Error(err))
	}
	defer timelineConsumer.Close()
	timelineConsumer.SetHandler(timelineMQHandler.Handle)
	go func() {
		log.Info("Starting timeline.appended consumer...")
		if err := timelineConsumer.StartConsuming(); err != nil {
			log.Fatal("Timeline consumer failed", zap.Error(err))
		}
	}()

	// Habit reminders
	scanner := reminder.NewScanner(board, toasts, cfg.Sync.TimezoneOffsetMin, log)
	if err := scanner.Start(cfg.Sync.ReminderDailyAt, time.Duration(cfg.Sync.AtRiskScanMinutes)*time.Minute); err != nil {
		log.Fatal("Failed to start reminder scanner", zap.Error(err))
	}

	// HTTP Server
	log.Info("Initializing HTTP server...", zap.String("port", cfg.Server.Port))
	boardHandler := handler.NewBoardHandler(board, queue, toasts, log)
	timelineHandler := handler.NewTimelineHandler(cursor, client, log)
	router := httpserver.NewRouter(boardHandler, timelineHandler, log, rdb, []*mq.Consumer{listsConsumer, timelineConsumer})

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("syncd is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.String("mq_queue_lists", "lists.changed.q"),
		zap.String("mq_queue_timeline", "timeline.appended.q"),
	)

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down syncd gracefully...")

	log.Info("Stopping MQ consumers...")
	listsConsumer.Stop()
	timelineConsumer.Stop()

	log.Info("Stopping reminder scanner...")
	scanner.Stop()

	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// 排空待确认的变更，丢弃仍在途的分页响应
	log.Info("Draining mutation queue...")
	queue.Close()
	cursor.Close()

	log.Info("syncd shutdown complete")
}
