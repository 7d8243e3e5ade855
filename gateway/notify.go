package gateway

import (
	"github.com/wfunc/drawserver/logger"
	"github.com/wfunc/drawserver/network"
	"github.com/wfunc/drawserver/room"
)

// Deliver renders a deferred turn announcement. It returns nothing when the
// room has moved on since the notice was scheduled.
func (d *Dispatcher) Deliver(n Notice) []network.Outbound {
	r, ok := d.registry.GetRoom(n.RoomCode)
	if !ok || !r.IsPlaying() || r.Generation != n.Generation || r.CurrentTurn != n.Drawer {
		logger.Log.Debugf("Dropping stale turn notice for room %s (generation %d)", n.RoomCode, n.Generation)
		return nil
	}
	var res Result
	announceTurn(r, n.NewRound, &res)
	return res.Messages
}

// announceTurn tells the room who draws. Only the drawer receives the word.
func announceTurn(r *room.Room, newRound bool, res *Result) {
	all := r.Members()
	if newRound {
		res.send(all, network.EventRoundStart, RoundStart{Round: r.CurrentRound})
	}
	res.send(all, network.EventTurnStart, TurnStart{CurrentTurn: r.CurrentTurn})
	res.send([]string{r.CurrentTurn}, network.EventWordSelected, WordSelected{
		Word:     r.CurrentWord,
		IsDrawer: true,
		Choices:  r.WordChoices,
	})
	res.send(r.MembersExcept(r.CurrentTurn), network.EventWordSelected, WordSelected{})
	res.send(all, network.EventScoreUpdate, r.Snapshot())
}
