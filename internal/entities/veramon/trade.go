package veramon

// TradeSide identifies which party contributed an item
type TradeSide string

// Trade sides
const (
	SideInitiator TradeSide = "initiator"
	SideRecipient TradeSide = "recipient"
)

// TradeItem is one capture offered in a trade, tagged with the side that
// contributed it
type TradeItem struct {
	CaptureID string
	Side      TradeSide
}

// Trade holds the state of one two-party trade negotiation
type Trade struct {
	ID                 string
	InitiatorID        string
	RecipientID        string
	Status             TradeStatus
	Items              []TradeItem
	InitiatorConfirmed bool
	RecipientConfirmed bool
	CreatedAt          int64
	UpdatedAt          int64
	ExpiresAt          int64
}

// Terminal reports whether the trade has reached a final state
func (t *Trade) Terminal() bool {
	switch t.Status {
	case TradeStatusCompleted, TradeStatusCancelled, TradeStatusDeclined:
		return true
	default:
		return false
	}
}

// SideOf returns the side a trainer occupies, empty when the trainer is not
// a party to the trade
func (t *Trade) SideOf(trainerID string) TradeSide {
	switch trainerID {
	case t.InitiatorID:
		return SideInitiator
	case t.RecipientID:
		return SideRecipient
	default:
		return ""
	}
}

// ItemsBySide returns the capture IDs contributed by one side
func (t *Trade) ItemsBySide(side TradeSide) []string {
	var ids []string
	for _, item := range t.Items {
		if item.Side == side {
			ids = append(ids, item.CaptureID)
		}
	}
	return ids
}

// Contains reports whether a capture is already part of the trade
func (t *Trade) Contains(captureID string) bool {
	for _, item := range t.Items {
		if item.CaptureID == captureID {
			return true
		}
	}
	return false
}
