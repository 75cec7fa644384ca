package bot

import (
	"strings"

	"tg-audio-bot/internal/state"
)

// Decision is the outcome of a VIP check.
type Decision int

const (
	Denied Decision = iota
	Allowed
	Granted
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Granted:
		return "granted"
	default:
		return "denied"
	}
}

// Gate admits chats in the VIP set and enrolls chats that send the secret
// code.
type Gate struct {
	state *state.State
	code  string
}

func NewGate(st *state.State, code string) *Gate {
	return &Gate{state: st, code: code}
}

// Check reports whether chatID may use the bot. A non-member sending the
// code is enrolled and gets Granted; the message itself is not processed
// further.
func (g *Gate) Check(chatID int64, text string) Decision {
	if g.state.IsVIP(chatID) {
		return Allowed
	}
	if g.code != "" && strings.TrimSpace(text) == g.code {
		g.state.GrantVIP(chatID)
		return Granted
	}
	return Denied
}
