package remote

import "github.com/Mear-MRK/hokm/service/internal/game"

// Message types. The server sends view, prompt, token and info; the client
// answers prompts with play or trump.
const (
	TypeView   = "view"
	TypePrompt = "prompt"
	TypeToken  = "token"
	TypeInfo   = "info"
	TypePlay   = "play"
	TypeTrump  = "trump"
)

// Prompt kinds carried in Message.Want.
const (
	WantPlay  = "play"
	WantTrump = "trump"
)

// Message is the single JSON frame exchanged with a remote client.
type Message struct {
	Type  string         `json:"type"`
	Seq   int            `json:"seq,omitempty"`  // Prompt number; answers must echo it.
	Want  string         `json:"want,omitempty"` // For prompts: play or trump.
	Card  string         `json:"card,omitempty"`
	Suit  string         `json:"suit,omitempty"`
	Seat  *int           `json:"seat,omitempty"`
	Token string         `json:"token,omitempty"`
	Text  string         `json:"text,omitempty"`
	View  *game.SeatView `json:"view,omitempty"`
}
