package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/wfunc/drawserver/broadcast"
	"github.com/wfunc/drawserver/config"
	"github.com/wfunc/drawserver/game"
	"github.com/wfunc/drawserver/gateway"
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/monitor"
	"github.com/wfunc/drawserver/room"
	gameserver_rpc "github.com/wfunc/drawserver/rpc"
	"github.com/wfunc/drawserver/session"
	"github.com/wfunc/drawserver/timer"
)

const shutdownTimeout = 5 * time.Second

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	registry       *room.Registry
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	timers         *timer.TimerManager
	monitor        *monitor.Monitor
	hub            *Hub
	rpcServer      *gameserver_rpc.Server
	router         chi.Router
	startTime      time.Time
}

// NewGameServer wires the game core. The RPC listener is opened here so
// address errors surface before Start.
func NewGameServer(cfg *config.Config, words game.WordProvider) (*GameServer, error) {
	s := &GameServer{
		cfg: cfg,
		registry: room.NewRegistry(room.Options{
			MaxPlayers: cfg.Game.MaxPlayers,
			MaxRounds:  cfg.Game.MaxRounds,
		}),
		sessionManager: session.NewManager(),
		timers:         timer.NewTimerManager(0),
		monitor:        monitor.NewMonitor("drawserver"),
		startTime:      time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(cfg.Server.AllowedOrigins),
		},
	}
	// 初始化广播器
	s.broadcaster = broadcast.NewSessionBroadcaster(s.sessionManager)

	scheduler := game.NewTurnScheduler(words, game.Rules{
		MinPlayers:  cfg.Game.MinPlayers,
		WordChoices: cfg.Words.Choices,
	})
	s.hub = NewHub(HubConfig{
		Dispatcher:  gateway.NewDispatcher(s.registry, scheduler, s.monitor),
		Registry:    s.registry,
		Broadcaster: s.broadcaster,
		Sessions:    s.sessionManager,
		Timers:      s.timers,
		Monitor:     s.monitor,
		NotifyDelay: cfg.Game.NotifyDelay,
	})

	// 初始化RPC服务器并注册服务
	rpcServer, err := gameserver_rpc.NewServer(cfg.Server.RPCAddress, s.hub)
	if err != nil {
		s.timers.Stop()
		return nil, err
	}
	s.rpcServer = rpcServer
	s.router = s.routes()
	return s, nil
}

func (s *GameServer) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ws", s.handleWebSocket)
	if s.cfg.Metrics.Enabled {
		r.Method(http.MethodGet, "/metrics", s.monitor.Handler())
	}
	return r
}

func (s *GameServer) Handler() http.Handler {
	return s.router
}

func (s *GameServer) Hub() *Hub {
	return s.hub
}

// Start serves HTTP and RPC and runs the hub until ctx is cancelled or one of
// them fails.
func (s *GameServer) Start(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.HTTPAddress,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.hub.Run(ctx)
	})
	g.Go(func() error {
		return s.rpcServer.Start()
	})
	g.Go(func() error {
		logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.rpcServer.Stop()
		s.timers.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type healthResponse struct {
	Status      string  `json:"status"`
	Rooms       int     `json:"rooms"`
	Connections int     `json:"connections"`
	Uptime      float64 `json:"uptimeSeconds"`
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{
		Status:      "ok",
		Rooms:       s.registry.Count(),
		Connections: s.sessionManager.Count(),
		Uptime:      time.Since(s.startTime).Seconds(),
	})
}

// originChecker accepts requests without an Origin header, a "*" entry, or an
// exact match.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
