package api

import (
	"github.com/migellal/archidekt-client/internal/archidekt/cardimage"
)

// LoginRequest is the body for POST /api/rest-auth/login/.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the success body from the login endpoint.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// User identifies an Archidekt account.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	PledgeLevel *int   `json:"pledgeLevel,omitempty"`
	RootFolder  *int   `json:"rootFolder,omitempty"`
}

// TokenRefreshRequest is the body for POST /api/rest-auth/token/refresh/.
type TokenRefreshRequest struct {
	Refresh string `json:"refresh"`
}

// TokenRefreshResponse is the success body from the refresh endpoint.
// Deployments differ on which field carries the new token.
type TokenRefreshResponse struct {
	AccessToken string `json:"access_token"`
	Access      string `json:"access"`
}

// Token returns the refreshed access token, preferring access_token with a
// fallback to access.
func (r *TokenRefreshResponse) Token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Access
}

// DecksResponse is the body from the self-recent decks listing.
type DecksResponse struct {
	Results []DeckSummary `json:"results"`
}

// DeckSummary is one deck in a listing or folder; the full card list is not
// included here.
type DeckSummary struct {
	ID             int        `json:"id"`
	Name           string     `json:"name"`
	UpdatedAt      string     `json:"updatedAt"`
	DeckFormat     int        `json:"deckFormat"`
	EdhBracket     *int       `json:"edhBracket,omitempty"`
	Featured       string     `json:"featured,omitempty"`
	CustomFeatured string     `json:"customFeatured,omitempty"`
	Private        bool       `json:"private"`
	Unlisted       bool       `json:"unlisted"`
	ViewCount      int        `json:"viewCount"`
	Theorycrafted  bool       `json:"theorycrafted"`
	HasDescription bool       `json:"hasDescription"`
	ParentFolderID *int       `json:"parentFolderId,omitempty"`
	Owner          DeckOwner  `json:"owner"`
	Colors         DeckColors `json:"colors"`
	Tags           []string   `json:"tags,omitempty"`
}

// FeaturedImage returns the deck's featured image URL, preferring a custom
// image over the default.
func (d *DeckSummary) FeaturedImage() string {
	if d.CustomFeatured != "" {
		return d.CustomFeatured
	}
	return d.Featured
}

// DeckOwner identifies the owning account of a deck or folder.
type DeckOwner struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Avatar      string `json:"avatar,omitempty"`
	PledgeLevel *int   `json:"pledgeLevel,omitempty"`
}

// DeckColors counts mana symbols per color across a deck.
type DeckColors struct {
	White int `json:"W"`
	Blue  int `json:"U"`
	Black int `json:"B"`
	Red   int `json:"R"`
	Green int `json:"G"`
}

// ColorList returns the deck's colors in WUBRG order, omitting absent colors.
func (c DeckColors) ColorList() []string {
	var colors []string
	if c.White > 0 {
		colors = append(colors, "W")
	}
	if c.Blue > 0 {
		colors = append(colors, "U")
	}
	if c.Black > 0 {
		colors = append(colors, "B")
	}
	if c.Red > 0 {
		colors = append(colors, "R")
	}
	if c.Green > 0 {
		colors = append(colors, "G")
	}
	return colors
}

// FolderResponse is the body returned by all three folder endpoint variants.
type FolderResponse struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	ParentFolder *ParentFolder `json:"parentFolder,omitempty"`
	Private      bool          `json:"private"`
	Owner        *DeckOwner    `json:"owner,omitempty"`
	Subfolders   []Subfolder   `json:"subfolders,omitempty"`
	Decks        []DeckSummary `json:"decks,omitempty"`
	Count        int           `json:"count"`
	Next         string        `json:"next,omitempty"`
}

// ParentFolder is a back-reference from a folder to its parent.
type ParentFolder struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Subfolder is a child folder inside a FolderResponse.
type Subfolder struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
	Private   bool   `json:"private"`
	IsRoot    bool   `json:"isRoot"`
}

// ModifyCardsResponse is the body returned by the patch-cards endpoint.
type ModifyCardsResponse struct {
	Add               []any    `json:"add,omitempty"`
	CreatedCategories []string `json:"createdCategories,omitempty"`
}

// ColorTagDefinition is one entry from the color tags listing.
type ColorTagDefinition struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CardSearchResponse is the body from the card search endpoint.
type CardSearchResponse struct {
	Count    int                `json:"count"`
	Next     string             `json:"next,omitempty"`
	Previous string             `json:"previous,omitempty"`
	Results  []SearchResultCard `json:"results"`
}

// SearchResultCard is one printing in card search results.
type SearchResultCard struct {
	ID                int               `json:"id"`
	Artist            string            `json:"artist,omitempty"`
	UID               string            `json:"uid,omitempty"`
	DisplayName       string            `json:"displayName,omitempty"`
	ReleasedAt        string            `json:"releasedAt,omitempty"`
	Edition           *EditionInfo      `json:"edition,omitempty"`
	Flavor            string            `json:"flavor,omitempty"`
	ScryfallImageHash string            `json:"scryfallImageHash,omitempty"`
	OracleCard        *SearchOracleCard `json:"oracleCard,omitempty"`
	Prices            *SearchCardPrices `json:"prices,omitempty"`
	Rarity            string            `json:"rarity,omitempty"`
}

// Name returns the oracle name of the card, falling back to the printing's
// display name.
func (c *SearchResultCard) Name() string {
	if c.OracleCard != nil && c.OracleCard.Name != "" {
		return c.OracleCard.Name
	}
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return "Unknown"
}

// DefaultCategory returns the category a newly added copy of this card
// should land in.
func (c *SearchResultCard) DefaultCategory() string {
	if c.OracleCard != nil {
		if c.OracleCard.DefaultCategory != "" {
			return c.OracleCard.DefaultCategory
		}
		if len(c.OracleCard.Types) > 0 {
			return c.OracleCard.Types[0]
		}
	}
	return "Other"
}

// SmallImageURL returns the small front-face image URL for this printing.
func (c *SearchResultCard) SmallImageURL() string {
	return cardimage.URL(c.UID, cardimage.SizeSmall, cardimage.FaceFront)
}

// NormalImageURL returns the normal front-face image URL for this printing.
func (c *SearchResultCard) NormalImageURL() string {
	return cardimage.URL(c.UID, cardimage.SizeNormal, cardimage.FaceFront)
}

// EditionInfo describes the set a printing belongs to.
type EditionInfo struct {
	EditionCode string `json:"editioncode,omitempty"`
	EditionName string `json:"editionname,omitempty"`
	EditionDate string `json:"editiondate,omitempty"`
	EditionType string `json:"editiontype,omitempty"`
}

// SearchOracleCard carries oracle attributes in search results.
type SearchOracleCard struct {
	ID              int      `json:"id"`
	CMC             float64  `json:"cmc"`
	ColorIdentity   []string `json:"colorIdentity,omitempty"`
	Colors          []string `json:"colors,omitempty"`
	Layout          string   `json:"layout,omitempty"`
	ManaCost        string   `json:"manaCost,omitempty"`
	Name            string   `json:"name,omitempty"`
	Power           string   `json:"power,omitempty"`
	Toughness       string   `json:"toughness,omitempty"`
	Loyalty         string   `json:"loyalty,omitempty"`
	Text            string   `json:"text,omitempty"`
	Types           []string `json:"types,omitempty"`
	SubTypes        []string `json:"subTypes,omitempty"`
	SuperTypes      []string `json:"superTypes,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	DefaultCategory string   `json:"defaultCategory,omitempty"`
	Salt            *float64 `json:"salt,omitempty"`
	EdhrecRank      *int     `json:"edhrecRank,omitempty"`
}

// SearchCardPrices carries per-vendor prices in search results.
type SearchCardPrices struct {
	CK      *float64 `json:"ck,omitempty"`
	CKFoil  *float64 `json:"ckfoil,omitempty"`
	TCG     *float64 `json:"tcg,omitempty"`
	TCGFoil *float64 `json:"tcgfoil,omitempty"`
	CM      *float64 `json:"cm,omitempty"`
	CMFoil  *float64 `json:"cmfoil,omitempty"`
	MP      *float64 `json:"mp,omitempty"`
	MPFoil  *float64 `json:"mpfoil,omitempty"`
}

// Deck format identifiers used by the API.
const (
	FormatStandard  = 1
	FormatModern    = 2
	FormatCommander = 3
	FormatLegacy    = 4
	FormatVintage   = 5
	FormatPauper    = 6
	FormatPioneer   = 7
	FormatBrawl     = 8
)

// FormatName returns the display name for a deck format identifier.
func FormatName(format int) string {
	switch format {
	case FormatStandard:
		return "Standard"
	case FormatModern:
		return "Modern"
	case FormatCommander:
		return "Commander"
	case FormatLegacy:
		return "Legacy"
	case FormatVintage:
		return "Vintage"
	case FormatPauper:
		return "Pauper"
	case FormatPioneer:
		return "Pioneer"
	case FormatBrawl:
		return "Brawl"
	default:
		return "Unknown"
	}
}
