package types

import "github.com/SlickRick2121/Ten-K-sub000/internal/game"

// ClientMessage is what a connected player sends over the socket. Room and
// name travel in the upgrade query string; everything after that is one of
// these.
type ClientMessage struct {
	Type  string `json:"type"`
	DieID string `json:"die_id,omitempty"`
}

// RollOutcome accompanies a RollResult broadcast.
type RollOutcome struct {
	Dice    []game.DieView `json:"dice"`
	Busted  bool           `json:"busted"`
	HotDice bool           `json:"hot_dice"`
}

// RoomInfo is one row of the matchmaking room list.
type RoomInfo struct {
	Name     string      `json:"name"`
	Players  int         `json:"players"`
	Capacity int         `json:"capacity"`
	Status   game.Status `json:"status"`
}

// ServerMessage is the single envelope for everything the server pushes.
// Type is one of "Joined" | "StateUpdated" | "GameStarted" | "RollResult" |
// "RoomList" | "Error".
type ServerMessage struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"player_id,omitempty"`
	State    *game.Snapshot `json:"state,omitempty"`
	Roll     *RollOutcome   `json:"roll,omitempty"`
	Rooms    []RoomInfo     `json:"rooms,omitempty"`
	Error    string         `json:"error,omitempty"`
}
