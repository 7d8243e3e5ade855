package rpc

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/models"
)

// Controller is the game-side surface exposed over RPC. Implementations must
// serialize calls with the rest of the room traffic.
type Controller interface {
	AdvanceTurn(ctx context.Context, roomID string) (models.RoomState, error)
	RoomState(ctx context.Context, roomID string) (models.RoomState, error)
}

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	rpc      *rpc.Server
}

// NewServer listens on addr and registers a GameService backed by controller.
func NewServer(addr string, controller Controller) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := &Server{listener: listener, rpc: rpc.NewServer()}
	if err := s.rpc.Register(NewGameService(controller)); err != nil {
		listener.Close()
		return nil, err
	}
	return s, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Start accepts connections until Stop closes the listener.
func (s *Server) Start() error {
	logger.Log.Infof("RPC server listening on %s", s.listener.Addr())
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				logger.Log.Info("RPC server listener closed.")
				return nil
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			return err
		}
		go s.rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	logger.Log.Info("Stopping RPC server.")
	s.listener.Close()
}

const callTimeout = 5 * time.Second

// GameService lets an external turn timer or admin tool drive rooms.
type GameService struct {
	controller Controller
}

func NewGameService(controller Controller) *GameService {
	return &GameService{controller: controller}
}

type RoomArgs struct {
	RoomID string
}

type RoomStateReply struct {
	State models.RoomState
}

// AdvanceTurn ends the current turn of a playing room.
func (gs *GameService) AdvanceTurn(args *RoomArgs, reply *RoomStateReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	state, err := gs.controller.AdvanceTurn(ctx, args.RoomID)
	if err != nil {
		return err
	}
	reply.State = state
	return nil
}

func (gs *GameService) GetRoomState(args *RoomArgs, reply *RoomStateReply) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	state, err := gs.controller.RoomState(ctx, args.RoomID)
	if err != nil {
		return err
	}
	reply.State = state
	return nil
}
