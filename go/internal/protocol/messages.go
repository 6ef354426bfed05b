package protocol

// Kind is the value of the "type" discriminator on every frame.
type Kind string

const (
	KindTimer        Kind = "timer"
	KindStatus       Kind = "status"
	KindResult       Kind = "result"
	KindInit         Kind = "init"
	KindBetConfirmed Kind = "bet_confirmed"
	KindError        Kind = "error"
	KindPlaceBet     Kind = "place_bet"
)

// StatusRolling is the only status value the server currently sends.
const StatusRolling = "rolling"

// Message is one decoded inbound frame. The set of implementations is closed:
// Timer, Status, Result, Init, BetConfirmed, Error and Unknown.
type Message interface {
	Kind() Kind
	isMessage()
}

// Envelope carries a decoded message together with the fields that may appear
// on any frame.
type Envelope struct {
	ServerTime string
	Message    Message
}

// HistoryEntry is one past spin, as sent in init and result frames.
type HistoryEntry struct {
	Number int   `json:"number"`
	Color  Color `json:"color"`
}

// Timer is a betting countdown tick. Zero means betting is closed.
type Timer struct {
	Value int
}

// Status announces a phase change that is not a countdown tick.
type Status struct {
	Value string
}

// Result announces the outcome of a spin.
type Result struct {
	Number  int
	Color   Color
	History []HistoryEntry
	// Winners maps user ids (decimal strings) to payouts. Never nil after decode.
	Winners map[string]float64
}

// Init is sent once per connection so the client can resync the history.
type Init struct {
	History []HistoryEntry
}

// BetConfirmed acknowledges a wager and carries the authoritative balance.
type BetConfirmed struct {
	NewBalance    float64
	Message       string
	BetInfo       string
	CorrelationID string
}

// Error is a server-reported failure, typically a rejected wager.
type Error struct {
	Message       string
	CorrelationID string
}

// Unknown is a well-formed frame of a kind this client does not handle.
type Unknown struct {
	Type string
}

func (Timer) Kind() Kind        { return KindTimer }
func (Status) Kind() Kind       { return KindStatus }
func (Result) Kind() Kind       { return KindResult }
func (Init) Kind() Kind         { return KindInit }
func (BetConfirmed) Kind() Kind { return KindBetConfirmed }
func (Error) Kind() Kind        { return KindError }
func (u Unknown) Kind() Kind    { return Kind(u.Type) }

func (Timer) isMessage()        {}
func (Status) isMessage()       {}
func (Result) isMessage()       {}
func (Init) isMessage()         {}
func (BetConfirmed) isMessage() {}
func (Error) isMessage()        {}
func (Unknown) isMessage()      {}

// PlaceBet is the only frame the client sends.
type PlaceBet struct {
	Type          Kind    `json:"type"`
	UserID        int64   `json:"user_id"`
	BetType       BetType `json:"bet_type"`
	Value         string  `json:"value"`
	Amount        float64 `json:"amount"`
	CorrelationID string  `json:"correlation_id,omitempty"`
}

// NewPlaceBet builds a place_bet frame with the discriminator set.
func NewPlaceBet(userID int64, betType BetType, value string, amount float64) PlaceBet {
	return PlaceBet{
		Type:    KindPlaceBet,
		UserID:  userID,
		BetType: betType,
		Value:   value,
		Amount:  amount,
	}
}
