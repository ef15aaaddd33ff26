package events

// Event type names dispatched by the data-access layer.
const (
	TypeAuthState       = "auth:state"
	TypeDeckCacheClear  = "deck:cache-cleared"
	TypeCardsModified   = "deck:cards-modified"
	TypeScraperMismatch = "scraper:format-mismatch"
)

// AuthStateEvent is the payload for auth:state events.
// Sent on every authentication state transition.
type AuthStateEvent struct {
	State    string `json:"state"`              // New state name
	Username string `json:"username,omitempty"` // Logged-in username, if any
}

// CardsModifiedEvent is the payload for deck:cards-modified events.
// Sent after a successful card patch round-trip.
type CardsModifiedEvent struct {
	DeckID     int `json:"deckId"`     // Deck that was modified
	Operations int `json:"operations"` // Number of patch operations applied
}

// ScraperMismatchEvent is the payload for scraper:format-mismatch events.
// Sent when the deck page no longer matches the expected embedded format,
// which usually means the extraction code needs updating.
type ScraperMismatchEvent struct {
	DeckID int    `json:"deckId"`
	Reason string `json:"reason"`
}
