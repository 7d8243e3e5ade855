package gateway

import (
	"github.com/wfunc/drawserver/game"
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/network"
	"github.com/wfunc/drawserver/room"
)

// disconnect removes a closed connection from every room it had joined.
func (d *Dispatcher) disconnect(in network.Inbound, res *Result) error {
	codes := d.registry.RoomsOf(in.ConnID)
	for _, code := range codes {
		if err := d.depart(code, in.ConnID, false, res); err != nil {
			logger.Log.Warnf("Disconnect of %s from room %s: %v", in.ConnID, code, err)
		}
	}
	if len(codes) > 0 {
		logger.Log.Infof("Connection %s disconnected from %d room(s)", in.ConnID, len(codes))
	}
	return nil
}

// depart removes connID from a room and repairs the turn when needed. notifySelf
// is false when the connection is already gone.
func (d *Dispatcher) depart(code, connID string, notifySelf bool, res *Result) error {
	current, ok := d.registry.GetRoom(code)
	if !ok {
		return room.ErrRoomNotFound
	}
	wasDrawer := current.IsDrawer(connID)

	r, player, departedIndex, err := d.registry.LeaveRoom(code, connID)
	if err != nil {
		return err
	}
	if notifySelf {
		res.send([]string{connID}, network.EventRoomLeft, RoomRef{RoomID: code})
	}
	if r == nil {
		logger.Log.Infof("Room %s closed, last player %s left", code, connID)
		res.Settled = append(res.Settled, code)
		return nil
	}

	res.send(r.Members(), network.EventPlayerLeft, PlayerRef{ID: player.ID, PlayerName: player.Name})

	switch {
	case wasDrawer:
		logger.Log.Infof("Room %s: drawer %s left, passing the turn", code, connID)
		outcome, err := d.scheduler.AdvanceAfterDeparture(r, departedIndex)
		if err != nil {
			return err
		}
		d.applyTransition(r, outcome, res)
	case r.IsPlaying() && len(r.CorrectGuessers) > 0 && game.AllGuessed(len(r.CorrectGuessers), r.PlayerCount()):
		outcome, err := d.scheduler.AdvanceTurn(r)
		if err != nil {
			return err
		}
		d.applyTransition(r, outcome, res)
	default:
		res.send(r.Members(), network.EventRoomStateUpdate, r.Snapshot())
	}
	return nil
}
