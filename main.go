package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"VChat/global"
	"VChat/logger"
	"VChat/middleware"
	authmw "VChat/middleware/security"
	"VChat/service/events"
	"VChat/service/gateway"
	"VChat/service/gateway/handlers"
	"VChat/service/storage"
	"VChat/service/storage/redisx"
	"VChat/tools/ids"
	"VChat/tools/security"
)

func main() {
	cfg := global.MustLoad()
	ids.SetNodeID(cfg.SnowflakeNode)
	defer logger.Sync()

	// External cache: Redis when reachable, otherwise a process-local
	// fallback so a dev box without Redis still serves connections.
	var cache storage.Cache
	rdb, err := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		PoolSize: cfg.RedisPoolSize,
	})
	if err != nil {
		logger.Warnf("[main] redis unavailable (%v), using in-memory cache", err)
		cache = storage.NewMemoryCache()
	} else {
		cache = storage.NewRedisCache(rdb)
	}

	presence := storage.NewPresence(cache, storage.PresenceConf{StatusTTL: cfg.StatusTTL})
	realtime := storage.NewRealtime(cache, storage.RealtimeConf{
		TypingTTL:   cfg.TypingTTL,
		CallRoomTTL: cfg.CallRoomTTL,
		LocationTTL: cfg.LocationTTL,
	})

	var bus *events.Bus
	if cfg.NatsURL != "" {
		bus, err = events.Dial(events.Conf{
			Servers: []string{cfg.NatsURL},
			Name:    cfg.GatewayID,
		}, cfg.GatewayID)
		if err != nil {
			logger.Warnf("[main] nats unavailable (%v), presence feed disabled", err)
			bus = nil
		}
	}

	srv := gateway.NewServer(gateway.Conf{
		GatewayID:   cfg.GatewayID,
		NearbyLimit: cfg.NearbyLimit,
	}, presence, realtime, bus, cfg.FanoutWorkers, cfg.FanoutQueue)
	handlers.RegisterAll(srv)

	jwtOpts := security.DefaultOptions([]byte(cfg.JWTSecret))
	verify := func(token string) (string, error) {
		return security.Verify(jwtOpts, token)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Origin(cfg.AllowedOrigins))
	srv.Mount(r, gateway.WSOptions{
		Verify:       verify,
		Auth:         authmw.Middleware(authmw.DefaultOptions(jwtOpts)),
		WriteWait:    cfg.WriteWait,
		PingInterval: cfg.PingInterval,
	})

	go func() {
		logger.Infof("[main] gateway %s listening on %s", cfg.GatewayID, cfg.ListenAddr)
		if err := r.Run(cfg.ListenAddr); err != nil {
			logger.Errorf("[main] server exited: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("[main] shutting down")
	srv.Close()
	if rdb != nil {
		_ = rdb.Close()
	}
}
