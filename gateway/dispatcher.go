package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wfunc/drawserver/game"
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/models"
	"github.com/wfunc/drawserver/network"
	"github.com/wfunc/drawserver/room"
)

// Notice is a deferred turn announcement, valid only while the room is still
// on the generation and drawer it was scheduled for.
type Notice struct {
	RoomCode   string
	Generation uint64
	Drawer     string
	NewRound   bool
}

// Result is everything one inbound event produced.
type Result struct {
	Messages []network.Outbound
	Notices  []Notice
	Settled  []string // rooms whose pending notice is obsolete
}

func (r *Result) send(to []string, event string, payload any) {
	if len(to) == 0 {
		return
	}
	r.Messages = append(r.Messages, network.Outbound{To: to, Event: event, Payload: payload})
}

func (r *Result) fail(connID string, err error) {
	r.send([]string{connID}, network.EventError, ErrorMessage{Message: ClientMessage(err)})
}

// Recorder receives gameplay events for metrics.
type Recorder interface {
	GameStarted()
	GameEnded()
	CorrectGuess()
}

type nopRecorder struct{}

func (nopRecorder) GameStarted()  {}
func (nopRecorder) GameEnded()    {}
func (nopRecorder) CorrectGuess() {}

type handlerFunc func(d *Dispatcher, in network.Inbound, res *Result) error

// Dispatcher turns inbound events into room mutations and outbound messages.
// It performs no I/O and must be driven from a single goroutine.
type Dispatcher struct {
	registry  *room.Registry
	scheduler *game.TurnScheduler
	recorder  Recorder
	handlers  map[string]handlerFunc
}

func NewDispatcher(registry *room.Registry, scheduler *game.TurnScheduler, recorder Recorder) *Dispatcher {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Dispatcher{
		registry:  registry,
		scheduler: scheduler,
		recorder:  recorder,
		handlers: map[string]handlerFunc{
			network.EventCreateRoom:   (*Dispatcher).createRoom,
			network.EventJoinRoom:     (*Dispatcher).joinRoom,
			network.EventLeaveRoom:    (*Dispatcher).leaveRoom,
			network.EventStartGame:    (*Dispatcher).startGame,
			network.EventDraw:         (*Dispatcher).draw,
			network.EventClearCanvas:  (*Dispatcher).clearCanvas,
			network.EventWordSelected: (*Dispatcher).selectWord,
			network.EventGuessWord:    (*Dispatcher).guessWord,
			network.EventSendMessage:  (*Dispatcher).sendMessage,
			network.EventTurnEnd:      (*Dispatcher).turnEnd,
			network.EventDisconnect:   (*Dispatcher).disconnect,
		},
	}
}

// Handle processes one inbound event. Failures become an error event for the
// sender only.
func (d *Dispatcher) Handle(in network.Inbound) Result {
	var res Result
	h, ok := d.handlers[in.Event]
	if !ok {
		logger.Log.Debugf("Unknown event %q from %s", in.Event, in.ConnID)
		res.fail(in.ConnID, ErrUnknownEvent)
		return res
	}
	if err := h(d, in, &res); err != nil {
		logger.Log.Debugf("Event %s from %s rejected: %v", in.Event, in.ConnID, err)
		res.fail(in.ConnID, err)
	}
	return res
}

// AdvanceTurn ends the current turn of a room on behalf of an external timer.
func (d *Dispatcher) AdvanceTurn(code string) (Result, error) {
	var res Result
	r, ok := d.registry.GetRoom(normalizeCode(code))
	if !ok {
		return res, room.ErrRoomNotFound
	}
	outcome, err := d.scheduler.AdvanceTurn(r)
	if err != nil {
		return res, err
	}
	d.applyTransition(r, outcome, &res)
	return res, nil
}

func (d *Dispatcher) RoomState(code string) (models.RoomState, error) {
	snapshot, ok := d.registry.GetState(normalizeCode(code))
	if !ok {
		return models.RoomState{}, room.ErrRoomNotFound
	}
	return snapshot, nil
}

func (d *Dispatcher) createRoom(in network.Inbound, res *Result) error {
	var req createRoomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return fmt.Errorf("%w: playerName is required", ErrMalformedPayload)
	}

	r, err := d.registry.CreateRoom(in.ConnID, name)
	if err != nil {
		return err
	}
	logger.Log.Infof("Room %s created by %s (%s)", r.Code, name, in.ConnID)
	res.send([]string{in.ConnID}, network.EventRoomCreated, RoomRef{RoomID: r.Code})
	res.send(r.Members(), network.EventPlayerJoined, PlayerRef{ID: in.ConnID, PlayerName: name})
	res.send(r.Members(), network.EventRoomStateUpdate, r.Snapshot())
	return nil
}

func (d *Dispatcher) joinRoom(in network.Inbound, res *Result) error {
	var req joinRoomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		return fmt.Errorf("%w: playerName is required", ErrMalformedPayload)
	}

	r, joined, err := d.registry.JoinRoom(normalizeCode(req.RoomID), in.ConnID, name)
	if err != nil {
		return err
	}
	self := []string{in.ConnID}
	res.send(self, network.EventRoomJoined, RoomRef{RoomID: r.Code})
	if !joined {
		res.send(self, network.EventRoomStateUpdate, r.Snapshot())
		return nil
	}

	logger.Log.Infof("%s (%s) joined room %s", name, in.ConnID, r.Code)
	res.send(r.MembersExcept(in.ConnID), network.EventPlayerJoined, PlayerRef{ID: in.ConnID, PlayerName: name})
	res.send(r.Members(), network.EventRoomStateUpdate, r.Snapshot())
	if r.IsPlaying() {
		res.send(self, network.EventTurnStart, TurnStart{CurrentTurn: r.CurrentTurn})
		res.send(self, network.EventWordSelected, WordSelected{})
	}
	return nil
}

func (d *Dispatcher) leaveRoom(in network.Inbound, res *Result) error {
	var req roomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	return d.depart(normalizeCode(req.RoomID), in.ConnID, true, res)
}

func (d *Dispatcher) startGame(in network.Inbound, res *Result) error {
	var req roomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	r, err := d.memberRoom(req.RoomID, in.ConnID)
	if err != nil {
		return err
	}
	if err := d.scheduler.StartGame(r); err != nil {
		return err
	}
	d.recorder.GameStarted()

	res.Settled = append(res.Settled, r.Code)
	res.send(r.Members(), network.EventGameStarted, GameStarted{
		RoomID:       r.Code,
		CurrentRound: r.CurrentRound,
		CurrentTurn:  r.CurrentTurn,
	})
	res.send(r.Members(), network.EventRoomStateUpdate, r.Snapshot())
	announceTurn(r, true, res)
	return nil
}

func (d *Dispatcher) draw(in network.Inbound, res *Result) error {
	r, err := d.canvasRoom(in)
	if err != nil {
		return err
	}
	res.send(r.MembersExcept(in.ConnID), network.EventDraw, in.Data)
	return nil
}

func (d *Dispatcher) clearCanvas(in network.Inbound, res *Result) error {
	r, err := d.canvasRoom(in)
	if err != nil {
		return err
	}
	res.send(r.Members(), network.EventClearCanvas, in.Data)
	return nil
}

// canvasRoom resolves the room of a drawing event. Once a game runs only the
// drawer may touch the canvas.
func (d *Dispatcher) canvasRoom(in network.Inbound) (*room.Room, error) {
	var req roomRequest
	if err := decode(in.Data, &req); err != nil {
		return nil, err
	}
	r, err := d.memberRoom(req.RoomID, in.ConnID)
	if err != nil {
		return nil, err
	}
	if r.IsPlaying() && r.CurrentTurn != in.ConnID {
		return nil, game.ErrNotYourTurn
	}
	return r, nil
}

func (d *Dispatcher) selectWord(in network.Inbound, res *Result) error {
	var req selectWordRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	r, err := d.memberRoom(req.RoomID, in.ConnID)
	if err != nil {
		return err
	}
	if err := d.scheduler.SelectWord(r, in.ConnID, req.Word); err != nil {
		return err
	}
	res.send([]string{in.ConnID}, network.EventWordSelected, WordSelected{
		Word:     r.CurrentWord,
		IsDrawer: true,
		Choices:  r.WordChoices,
	})
	return nil
}

func (d *Dispatcher) guessWord(in network.Inbound, res *Result) error {
	var req guessRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Word) == "" {
		return fmt.Errorf("%w: word is required", ErrMalformedPayload)
	}
	r, err := d.memberRoom(req.RoomID, in.ConnID)
	if err != nil {
		return err
	}
	return d.guess(r, in.ConnID, req.Word, res)
}

func (d *Dispatcher) guess(r *room.Room, connID, text string, res *Result) error {
	result := game.SubmitGuess(r, connID, text)
	name := r.Players[connID].Name

	switch result.Outcome {
	case game.Rejected:
		return result.Err
	case game.Incorrect:
		res.send(r.Members(), network.EventWordGuessed, WordGuessed{
			PlayerName: name,
			Guess:      strings.TrimSpace(text),
		})
		return nil
	}

	d.recorder.CorrectGuess()
	logger.Log.Infof("Room %s: %s guessed the word for %d points", r.Code, name, result.Points)
	res.send(r.Members(), network.EventWordGuessed, WordGuessed{PlayerName: name, Correct: true})
	res.send(r.Members(), network.EventScoreUpdate, r.Snapshot())

	if result.TurnComplete {
		outcome, err := d.scheduler.AdvanceTurn(r)
		if err != nil {
			return err
		}
		d.applyTransition(r, outcome, res)
	}
	return nil
}

// sendMessage relays chat. Text matching the secret word is evaluated as a
// guess so it is never shown to the room.
func (d *Dispatcher) sendMessage(in network.Inbound, res *Result) error {
	var req chatRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return fmt.Errorf("%w: message is required", ErrMalformedPayload)
	}
	r, err := d.memberRoom(req.RoomID, in.ConnID)
	if err != nil {
		return err
	}
	if game.IsGuessAttempt(r, message) {
		return d.guess(r, in.ConnID, message, res)
	}
	res.send(r.Members(), network.EventReceiveMessage, ChatMessage{
		Message:    message,
		PlayerName: r.Players[in.ConnID].Name,
	})
	return nil
}

func (d *Dispatcher) turnEnd(in network.Inbound, res *Result) error {
	var req roomRequest
	if err := decode(in.Data, &req); err != nil {
		return err
	}
	r, err := d.memberRoom(req.RoomID, in.ConnID)
	if err != nil {
		return err
	}
	if !r.IsPlaying() {
		return game.ErrInvalidTransition
	}
	if r.CurrentTurn != in.ConnID {
		return game.ErrNotYourTurn
	}
	outcome, err := d.scheduler.AdvanceTurn(r)
	if err != nil {
		return err
	}
	d.applyTransition(r, outcome, res)
	return nil
}

// applyTransition publishes a turn change. The new turn itself is announced
// later through a Notice; a finished game is announced at once.
func (d *Dispatcher) applyTransition(r *room.Room, outcome game.TurnOutcome, res *Result) {
	if outcome.GameEnded {
		d.recorder.GameEnded()
		res.Settled = append(res.Settled, r.Code)
		res.send(r.Members(), network.EventGameEnd, GameEnd{
			Winner:      outcome.Result.Winner,
			FinalScores: outcome.Result.FinalScores,
		})
		res.send(r.Members(), network.EventRoomStateUpdate, r.Snapshot())
		return
	}

	res.send(r.Members(), network.EventRoomStateUpdate, r.Snapshot())
	res.Notices = append(res.Notices, Notice{
		RoomCode:   r.Code,
		Generation: outcome.Generation,
		Drawer:     outcome.Drawer,
		NewRound:   outcome.NewRound,
	})
}

func (d *Dispatcher) memberRoom(code, connID string) (*room.Room, error) {
	r, ok := d.registry.GetRoom(normalizeCode(code))
	if !ok {
		return nil, room.ErrRoomNotFound
	}
	if !r.HasPlayer(connID) {
		return nil, room.ErrNotInRoom
	}
	return r, nil
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
