// Package deckstats computes summary statistics over a deck snapshot. All
// functions are pure; they never touch the network.
package deckstats

import (
	"sort"

	"github.com/migellal/archidekt-client/internal/archidekt/deckpage"
)

// Curve buckets cap at 7; everything costlier lands in the last bucket.
const maxCurveBucket = 7

// CurveBucket is one column of a mana curve.
type CurveBucket struct {
	CMC   int
	Count int
}

// ManaCurve buckets mainboard card quantities by converted mana cost. Lands
// are excluded, they have no cost to speak of and would drown bucket zero.
func ManaCurve(deck *deckpage.DeckSnapshot) []CurveBucket {
	counts := make(map[int]int)
	for _, card := range deck.MainboardCards() {
		if isLand(&card) {
			continue
		}
		bucket := int(card.CMC)
		if bucket > maxCurveBucket {
			bucket = maxCurveBucket
		}
		counts[bucket] += card.Qty
	}

	highest := 0
	for bucket := range counts {
		if bucket > highest {
			highest = bucket
		}
	}

	curve := make([]CurveBucket, 0, highest+1)
	for cmc := 0; cmc <= highest; cmc++ {
		curve = append(curve, CurveBucket{CMC: cmc, Count: counts[cmc]})
	}
	return curve
}

func isLand(card *deckpage.CardEntry) bool {
	for _, t := range card.Types {
		if t == "Land" {
			return true
		}
	}
	return false
}

// wubrg orders color codes canonically, colorless last.
var wubrg = map[string]int{"W": 0, "U": 1, "B": 2, "R": 3, "G": 4, "C": 5}

// ColorCount is one slice of a color distribution.
type ColorCount struct {
	Color string
	Count int
}

// ColorDistribution counts mainboard card quantities per color identity
// code, in WUBRG order. A multicolor card counts once per color; a card with
// no identity counts as "C".
func ColorDistribution(deck *deckpage.DeckSnapshot) []ColorCount {
	counts := make(map[string]int)
	for _, card := range deck.MainboardCards() {
		if isLand(&card) {
			continue
		}
		if len(card.ColorIdentity) == 0 {
			counts["C"] += card.Qty
			continue
		}
		for _, color := range card.ColorIdentity {
			counts[color] += card.Qty
		}
	}

	out := make([]ColorCount, 0, len(counts))
	for color, count := range counts {
		out = append(out, ColorCount{Color: color, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		return wubrg[out[i].Color] < wubrg[out[j].Color]
	})
	return out
}

// CategoryCounts sums card quantities per category across the whole deck,
// Sideboard and Maybeboard included.
func CategoryCounts(deck *deckpage.DeckSnapshot) map[string]int {
	counts := make(map[string]int)
	for _, card := range deck.CardMap {
		for _, category := range card.Categories {
			counts[category] += card.Qty
		}
	}
	return counts
}

// TagSummary sums card quantities per color label name. Untagged cards are
// omitted.
func TagSummary(deck *deckpage.DeckSnapshot) map[string]int {
	counts := make(map[string]int)
	for _, card := range deck.CardMap {
		if card.ColorLabel == nil || card.ColorLabel.Name == "" {
			continue
		}
		counts[card.ColorLabel.Name] += card.Qty
	}
	return counts
}

// TypeCounts sums mainboard card quantities per primary card type.
func TypeCounts(deck *deckpage.DeckSnapshot) map[string]int {
	counts := make(map[string]int)
	for _, card := range deck.MainboardCards() {
		if len(card.Types) == 0 {
			counts["Other"] += card.Qty
			continue
		}
		for _, t := range card.Types {
			counts[t] += card.Qty
		}
	}
	return counts
}
