package deckpage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/cardimage"
)

// Categories whose cards are not part of the playable deck.
var excludedCategories = map[string]bool{
	"Sideboard":  true,
	"Maybeboard": true,
}

// ManaSymbol is one element of a casting cost. A plain symbol holds a single
// code ("W", "2", "X"); a hybrid symbol holds the alternative codes
// ("W", "U" for {W/U}). The deck page serializes the former as a JSON string
// and the latter as a JSON array, so decoding needs a custom unmarshaler.
type ManaSymbol struct {
	Codes []string
}

func (s *ManaSymbol) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		s.Codes = []string{single}
		return nil
	}

	var hybrid []string
	if err := json.Unmarshal(data, &hybrid); err != nil {
		return fmt.Errorf("mana symbol is neither string nor array: %w", err)
	}
	s.Codes = hybrid
	return nil
}

func (s ManaSymbol) MarshalJSON() ([]byte, error) {
	if len(s.Codes) == 1 {
		return json.Marshal(s.Codes[0])
	}
	return json.Marshal(s.Codes)
}

// IsHybrid reports whether the symbol offers alternative costs.
func (s ManaSymbol) IsHybrid() bool {
	return len(s.Codes) > 1
}

// String renders the symbol in oracle notation: "{W}" or "{W/U}".
func (s ManaSymbol) String() string {
	return "{" + strings.Join(s.Codes, "/") + "}"
}

// DeckSnapshot is one decoded deck page. Card instances are keyed by ids
// that are only stable within this snapshot; a re-fetch may renumber them,
// so ids must never be held across a cache invalidation.
type DeckSnapshot struct {
	ID           int                     `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Format       int                     `json:"format"`
	EdhBracket   *int                    `json:"edhBracket"`
	Private      bool                    `json:"private"`
	Unlisted     bool                    `json:"unlisted"`
	Owner        string                  `json:"owner"`
	OwnerID      int                     `json:"ownerid"`
	OwnerAvatar  string                  `json:"ownerAvatar"`
	UpdatedAt    string                  `json:"updatedAt"`
	CreatedAt    string                  `json:"createdAt"`
	ViewCount    int                     `json:"viewCount"`
	ParentFolder *int                    `json:"parentFolder"`
	Categories   map[string]CategoryInfo `json:"categories"`
	ColorLabels  []ColorLabel            `json:"colorLabels"`
	CardMap      map[string]CardEntry    `json:"cardMap"`
}

// FormatName returns the human-readable format name.
func (d *DeckSnapshot) FormatName() string {
	return api.FormatName(d.Format)
}

// MainboardCards returns the card instances that are part of the playable
// deck (everything outside Sideboard and Maybeboard).
func (d *DeckSnapshot) MainboardCards() map[string]CardEntry {
	out := make(map[string]CardEntry)
	for id, card := range d.CardMap {
		if !card.isExcluded() {
			out[id] = card
		}
	}
	return out
}

// SideboardCards returns the card instances in Sideboard or Maybeboard.
func (d *DeckSnapshot) SideboardCards() map[string]CardEntry {
	out := make(map[string]CardEntry)
	for id, card := range d.CardMap {
		if card.isExcluded() {
			out[id] = card
		}
	}
	return out
}

// MainboardCount sums quantities across the playable deck.
func (d *DeckSnapshot) MainboardCount() int {
	total := 0
	for _, card := range d.CardMap {
		if !card.isExcluded() {
			total += card.Qty
		}
	}
	return total
}

// SideboardCount sums quantities across Sideboard and Maybeboard.
func (d *DeckSnapshot) SideboardCount() int {
	total := 0
	for _, card := range d.CardMap {
		if card.isExcluded() {
			total += card.Qty
		}
	}
	return total
}

// TotalCards sums quantities across every category.
func (d *DeckSnapshot) TotalCards() int {
	total := 0
	for _, card := range d.CardMap {
		total += card.Qty
	}
	return total
}

// FeaturedImage picks an art crop to represent the deck: the commander when
// one exists, otherwise any mainboard card.
func (d *DeckSnapshot) FeaturedImage() string {
	fallback := ""
	for _, card := range d.CardMap {
		if card.isExcluded() {
			continue
		}
		url := card.ArtCropURL()
		if url == "" {
			continue
		}
		for _, cat := range card.Categories {
			if cat == "Commander" {
				return url
			}
		}
		if fallback == "" {
			fallback = url
		}
	}
	return fallback
}

// CategoryInfo describes one deck category.
type CategoryInfo struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	IsPremier       bool   `json:"isPremier"`
	IncludedInDeck  bool   `json:"includedInDeck"`
	IncludedInPrice bool   `json:"includedInPrice"`
}

// ColorLabel is a user-defined card tag: a name plus a hex color.
type ColorLabel struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DisplayName returns the tag name, or "Default Tag" for the unnamed tag.
func (l ColorLabel) DisplayName() string {
	if strings.TrimSpace(l.Name) == "" {
		return "Default Tag"
	}
	return l.Name
}

// CardEntry is one card instance inside a deck snapshot.
type CardEntry struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	DisplayName    string       `json:"displayName"`
	CMC            float64      `json:"cmc"`
	CastingCost    []ManaSymbol `json:"castingCost"`
	ColorIdentity  []string     `json:"colorIdentity"`
	Colors         []string     `json:"colors"`
	Text           string       `json:"text"`
	Flavor         string       `json:"flavor"`
	Set            string       `json:"set"`
	SetCode        string       `json:"setCode"`
	ReleasedAt     string       `json:"releasedAt"`
	DeckRelationID string       `json:"deckRelationId"`
	CardID         string       `json:"cardId"`
	OracleCardID   int          `json:"oracleCardId"`
	UID            string       `json:"uid"`
	Artist         string       `json:"artist"`
	SuperTypes     []string     `json:"superTypes"`
	SubTypes       []string     `json:"subTypes"`
	Types          []string     `json:"types"`
	Keywords       []string     `json:"keywords"`
	Power          string       `json:"power"`
	Toughness      string       `json:"toughness"`
	Loyalty        string       `json:"loyalty"`
	Rarity         string       `json:"rarity"`
	Layout         string       `json:"layout"`
	Qty            int          `json:"qty"`
	Modifier       string       `json:"modifier"`
	Categories     []string     `json:"categories"`
	TypeCategory   string       `json:"typeCategory"`
	ColorLabel     *ColorLabel  `json:"colorLabel"`
	Prices         *CardPrices  `json:"prices"`
	ScryfallHash   string       `json:"scryfallImageHash"`
	Salt           float64      `json:"salt"`
	EdhrecRank     int          `json:"edhrecRank"`
	Companion      bool         `json:"companion"`
}

func (c *CardEntry) isExcluded() bool {
	for _, cat := range c.Categories {
		if excludedCategories[cat] {
			return true
		}
	}
	return false
}

// PatchCardID returns the identifier card mutations must reference,
// preferring the printing's card id over the instance id.
func (c *CardEntry) PatchCardID() string {
	if c.CardID != "" {
		return c.CardID
	}
	return c.ID
}

// DisplayCardName prefers the printed display name over the oracle name.
func (c *CardEntry) DisplayCardName() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// ManaCostFormatted renders the casting cost in oracle notation, e.g.
// "{1}{W/U}{W/U}".
func (c *CardEntry) ManaCostFormatted() string {
	var b strings.Builder
	for _, symbol := range c.CastingCost {
		b.WriteString(symbol.String())
	}
	return b.String()
}

// ManaCostSymbols flattens the casting cost into individual symbol codes,
// expanding hybrid symbols into their alternatives.
func (c *CardEntry) ManaCostSymbols() []string {
	var out []string
	for _, symbol := range c.CastingCost {
		out = append(out, symbol.Codes...)
	}
	return out
}

// TypeLine reassembles the printed type line from its parts.
func (c *CardEntry) TypeLine() string {
	var parts []string
	if len(c.SuperTypes) > 0 {
		parts = append(parts, strings.Join(c.SuperTypes, " "))
	}
	if len(c.Types) > 0 {
		parts = append(parts, strings.Join(c.Types, " "))
	}
	line := strings.Join(parts, " ")
	if len(c.SubTypes) > 0 {
		line += " — " + strings.Join(c.SubTypes, " ")
	}
	return line
}

var doubleFacedLayouts = map[string]bool{
	"transform":          true,
	"modal_dfc":          true,
	"double_faced_token": true,
	"reversible_card":    true,
	"flip":               true,
	"art_series":         true,
}

// IsDoubleFaced reports whether the printing has a back face.
func (c *CardEntry) IsDoubleFaced() bool {
	return doubleFacedLayouts[c.Layout]
}

// FrontFaceName returns the part of the name before " // ".
func (c *CardEntry) FrontFaceName() string {
	if front, _, ok := strings.Cut(c.Name, " // "); ok {
		return front
	}
	return c.Name
}

// BackFaceName returns the part of the name after " // ", or "".
func (c *CardEntry) BackFaceName() string {
	if _, back, ok := strings.Cut(c.Name, " // "); ok {
		return back
	}
	return ""
}

const faceTextSeparator = "\n-----\n"

// FrontFaceText returns the oracle text of the front face.
func (c *CardEntry) FrontFaceText() string {
	if front, _, ok := strings.Cut(c.Text, faceTextSeparator); ok {
		return front
	}
	return c.Text
}

// BackFaceText returns the oracle text of the back face, or "".
func (c *CardEntry) BackFaceText() string {
	if _, back, ok := strings.Cut(c.Text, faceTextSeparator); ok {
		return back
	}
	return ""
}

// SmallImageURL is the 146x204 front image, suited to grid views.
func (c *CardEntry) SmallImageURL() string {
	return cardimage.URL(c.UID, cardimage.SizeSmall, cardimage.FaceFront)
}

// NormalImageURL is the 488x680 front image, suited to detail views.
func (c *CardEntry) NormalImageURL() string {
	return cardimage.URL(c.UID, cardimage.SizeNormal, cardimage.FaceFront)
}

// BackImageURL is the 488x680 back image, or "" for single-faced cards.
func (c *CardEntry) BackImageURL() string {
	if !c.IsDoubleFaced() {
		return ""
	}
	return cardimage.URL(c.UID, cardimage.SizeNormal, cardimage.FaceBack)
}

// SmallBackImageURL is the 146x204 back image, or "" for single-faced cards.
func (c *CardEntry) SmallBackImageURL() string {
	if !c.IsDoubleFaced() {
		return ""
	}
	return cardimage.URL(c.UID, cardimage.SizeSmall, cardimage.FaceBack)
}

// ArtCropURL is the Archidekt CDN art crop used for featured images, or ""
// when the printing lacks the required identifiers.
func (c *CardEntry) ArtCropURL() string {
	if c.ScryfallHash == "" {
		return ""
	}
	return cardimage.ArtCropURL(c.SetCode, c.UID)
}

// CardPrices carries per-vendor prices for one printing.
type CardPrices struct {
	CK       float64 `json:"ck"`
	CKFoil   float64 `json:"ckFoil"`
	TCG      float64 `json:"tcg"`
	TCGFoil  float64 `json:"tcgFoil"`
	MTGO     float64 `json:"mtgo"`
	MTGOFoil float64 `json:"mtgoFoil"`
	CM       float64 `json:"cm"`
	CMFoil   float64 `json:"cmFoil"`
	SCG      float64 `json:"scg"`
	SCGFoil  float64 `json:"scgFoil"`
	MP       float64 `json:"mp"`
	MPFoil   float64 `json:"mpFoil"`
}

// Cheapest returns the lowest non-zero non-foil price, or 0 when no vendor
// lists one.
func (p *CardPrices) Cheapest() float64 {
	cheapest := 0.0
	for _, price := range []float64{p.CK, p.TCG, p.CM, p.SCG, p.MP} {
		if price > 0 && (cheapest == 0 || price < cheapest) {
			cheapest = price
		}
	}
	return cheapest
}
