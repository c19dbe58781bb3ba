package server

import (
	"fmt"

	"impostor/internal/game"
	"impostor/internal/wshub"
)

// command turns a client message into the room action it names.
func command(playerID string, msg wshub.ClientMessage) (func(g *game.Game) error, error) {
	switch msg.Type {
	case wshub.MsgStart:
		return func(g *game.Game) error { return g.Start(playerID) }, nil
	case wshub.MsgCategory:
		return func(g *game.Game) error { return g.SubmitCategory(playerID, msg.Value) }, nil
	case wshub.MsgWord:
		return func(g *game.Game) error { return g.SubmitWord(playerID, msg.Value) }, nil
	case wshub.MsgVote:
		return func(g *game.Game) error { return g.Vote(playerID, msg.VotedPlayerID) }, nil
	case wshub.MsgReset:
		return func(g *game.Game) error { return g.Reset(playerID) }, nil
	case wshub.MsgLeave:
		return func(g *game.Game) error { return g.Leave(playerID) }, nil
	case wshub.MsgSetMode:
		return func(g *game.Game) error { return g.SetWordMode(playerID, game.WordMode(msg.Mode)) }, nil
	case wshub.MsgAddWord:
		return func(g *game.Game) error {
			_, err := g.AddWord(playerID, msg.Word, msg.Hint)
			return err
		}, nil
	case wshub.MsgRemoveWord:
		return func(g *game.Game) error { return g.RemoveWord(playerID, msg.EntryID) }, nil
	}
	return nil, fmt.Errorf("%w: unknown message type %q", game.ErrInvalidInput, msg.Type)
}
