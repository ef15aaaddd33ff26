// Package cardimage derives card image URLs from printing identifiers.
// Derivation is a pure function; no network calls are made here.
package cardimage

import "fmt"

const scryfallImageBase = "https://cards.scryfall.io"

// Size selects the image resolution.
type Size string

const (
	SizeSmall  Size = "small"  // 146x204, for grids
	SizeNormal Size = "normal" // 488x680, for detail views
)

// Face selects which side of the card to show.
type Face string

const (
	FaceFront Face = "front"
	FaceBack  Face = "back"
)

// URL builds the image URL for a printing identifier. The first two
// characters of the identifier shard the CDN path. Returns "" when the
// identifier is too short to shard.
func URL(uid string, size Size, face Face) string {
	if len(uid) < 2 {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s/%c/%c/%s.jpg", scryfallImageBase, size, face, uid[0], uid[1], uid)
}

// ArtCropURL builds the Archidekt CDN art crop URL used for featured images.
// Requires both the set code and the printing identifier.
func ArtCropURL(setCode, uid string) string {
	if setCode == "" || uid == "" {
		return ""
	}
	return fmt.Sprintf("https://storage.googleapis.com/archidekt-card-images/%s/%s_art_crop.jpg", setCode, uid)
}
