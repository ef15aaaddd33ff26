package api

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultTagColor is the color of the default (unnamed) tag.
const DefaultTagColor = "#656565"

// DefaultLabel is the label for a card with no tag assigned.
const DefaultLabel = "," + DefaultTagColor

// PresetTagColors are the tag colors Archidekt offers in its picker.
var PresetTagColors = []string{
	"#f47373",
	"#f4a973",
	"#f4d373",
	"#73f473",
	"#73d3f4",
	"#7373f4",
	"#d373f4",
	"#f473d3",
	"#656565",
	"#ffffff",
}

// Patch actions accepted by the modify-cards endpoint.
const (
	ActionAdd    = "add"
	ActionModify = "modify"
	ActionRemove = "remove"
)

// ModifyCardsRequest is the body for PATCH /api/decks/{id}/modifyCards/v2/.
type ModifyCardsRequest struct {
	Cards []PatchOperation `json:"cards"`
}

// PatchOperation is a single add/modify/remove instruction. For "add" the
// card is addressed by its oracle card id and DeckRelationID must be nil so
// the field is omitted from the body; for "modify"/"remove" the card is
// addressed by its instance id and DeckRelationID is always serialized, even
// when empty.
type PatchOperation struct {
	Action         string        `json:"action"`
	CardID         string        `json:"cardid"`
	CustomCardID   string        `json:"customCardId,omitempty"`
	Categories     []string      `json:"categories"`
	PatchID        string        `json:"patchId"`
	Modifications  Modifications `json:"modifications"`
	DeckRelationID *string       `json:"deckRelationId,omitempty"`
}

// Modifications carries the card-instance fields a patch sets.
type Modifications struct {
	Quantity       int    `json:"quantity"`
	Modifier       string `json:"modifier"`
	CustomCMC      *int   `json:"customCmc,omitempty"`
	Companion      bool   `json:"companion"`
	FlippedDefault bool   `json:"flippedDefault"`
	Label          string `json:"label"`
}

// NewPatchID generates a fresh 12-character correlation identifier. Every
// operation sent to the server must carry a unique one.
func NewPatchID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// NewAddOperation builds a patch that adds a card to a deck, addressed by
// oracle card id.
func NewAddOperation(cardID string, categories []string, quantity int, label string) PatchOperation {
	if label == "" {
		label = DefaultLabel
	}
	return PatchOperation{
		Action:     ActionAdd,
		CardID:     cardID,
		Categories: categories,
		PatchID:    NewPatchID(),
		Modifications: Modifications{
			Quantity: quantity,
			Modifier: "Normal",
			Label:    label,
		},
	}
}

// NewModifyOperation builds a patch that rewrites an existing card instance,
// addressed by its deck relation id.
func NewModifyOperation(cardID, deckRelationID string, categories []string, quantity int, label string) PatchOperation {
	if label == "" {
		label = DefaultLabel
	}
	return PatchOperation{
		Action:         ActionModify,
		CardID:         cardID,
		Categories:     categories,
		PatchID:        NewPatchID(),
		DeckRelationID: &deckRelationID,
		Modifications: Modifications{
			Quantity: quantity,
			Modifier: "Normal",
			Label:    label,
		},
	}
}

// NewRemoveOperation builds a patch that removes an existing card instance.
func NewRemoveOperation(cardID, deckRelationID string, categories []string) PatchOperation {
	return PatchOperation{
		Action:         ActionRemove,
		CardID:         cardID,
		Categories:     categories,
		PatchID:        NewPatchID(),
		DeckRelationID: &deckRelationID,
		Modifications: Modifications{
			Quantity: 1,
			Modifier: "Normal",
			Label:    DefaultLabel,
		},
	}
}

// Tag is a user-defined name+color annotation on a card instance.
type Tag struct {
	Name  string
	Color string
}

// Label encodes the tag as the wire format "<name>,<hexcolor>". The default
// tag has an empty name.
func (t Tag) Label() string {
	color := t.Color
	if color == "" {
		color = DefaultTagColor
	}
	return t.Name + "," + color
}

// ParseLabel decodes a wire label back into a Tag. An empty label decodes to
// the default tag.
func ParseLabel(label string) Tag {
	if label == "" {
		return Tag{Name: "", Color: DefaultTagColor}
	}
	name, color, found := strings.Cut(label, ",")
	if !found || color == "" {
		color = DefaultTagColor
	}
	return Tag{Name: name, Color: color}
}
