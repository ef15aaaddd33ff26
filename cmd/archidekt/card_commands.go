package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/deckpage"
)

func runSearch(ctx context.Context, a *app, args []string) error {
	query := strings.Join(args, " ")
	results, err := a.repo.SearchCards(ctx, query)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No cards found.")
		return nil
	}

	fmt.Printf("%-10s %-36s %-8s %s\n", "ID", "NAME", "SET", "MANA")
	for _, card := range results {
		set := ""
		if card.Edition != nil {
			set = card.Edition.EditionCode
		}
		mana := ""
		if card.OracleCard != nil {
			mana = card.OracleCard.ManaCost
		}
		fmt.Printf("%-10d %-36s %-8s %s\n", card.ID, truncate(card.Name(), 36), set, mana)
	}
	return nil
}

func runAdd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	deckID := fs.Int("deck", 0, "Deck id")
	cardID := fs.Int("card", 0, "Printing id (from search)")
	category := fs.String("category", "", "Category to add into (default: the card's primary type)")
	qty := fs.Int("qty", 1, "Number of copies")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckID == 0 || *cardID == 0 {
		return fmt.Errorf("both -deck and -card are required")
	}

	target := *category
	if target == "" {
		target = "Maybeboard"
	}

	if _, err := a.repo.AddCardToDeck(ctx, *deckID, strconv.Itoa(*cardID), target, *qty, ""); err != nil {
		return err
	}
	a.repo.ClearDeckCache()
	fmt.Printf("Added %dx card %d to %q in deck %d\n", *qty, *cardID, target, *deckID)
	return nil
}

// findCard resolves a card name to its instance in the deck snapshot.
func findCard(ctx context.Context, a *app, deckID int, name string) (*deckpage.DeckSnapshot, *deckpage.CardEntry, error) {
	deck, err := a.repo.GetDeckData(ctx, deckID, false)
	if err != nil {
		return nil, nil, err
	}

	var match *deckpage.CardEntry
	for _, card := range deck.CardMap {
		if strings.EqualFold(card.Name, name) || strings.EqualFold(card.DisplayCardName(), name) {
			c := card
			match = &c
			break
		}
	}
	if match == nil {
		return nil, nil, fmt.Errorf("card %q not found in deck %d", name, deckID)
	}
	return deck, match, nil
}

func runMove(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	deckID := fs.Int("deck", 0, "Deck id")
	name := fs.String("name", "", "Card name")
	to := fs.String("to", "", "Target category")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckID == 0 || *name == "" || *to == "" {
		return fmt.Errorf("-deck, -name and -to are required")
	}

	_, card, err := findCard(ctx, a, *deckID, *name)
	if err != nil {
		return err
	}

	label := ""
	if card.ColorLabel != nil {
		label = api.Tag{Name: card.ColorLabel.Name, Color: card.ColorLabel.Color}.Label()
	}

	_, err = a.repo.ChangeCardCategory(ctx, *deckID, card.PatchCardID(), card.DeckRelationID, []string{*to}, card.Qty, label)
	if err != nil {
		return err
	}
	a.repo.ClearDeckCache()
	fmt.Printf("Moved %s to %q\n", card.DisplayCardName(), *to)
	return nil
}

func runTag(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("tag", flag.ExitOnError)
	deckID := fs.Int("deck", 0, "Deck id")
	name := fs.String("name", "", "Card name")
	tagName := fs.String("tag", "", "Tag name (empty clears the tag)")
	tagColor := fs.String("color", api.DefaultTagColor, "Tag color as #rrggbb")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckID == 0 || *name == "" {
		return fmt.Errorf("-deck and -name are required")
	}

	_, card, err := findCard(ctx, a, *deckID, *name)
	if err != nil {
		return err
	}

	tag := api.Tag{Name: *tagName, Color: *tagColor}
	_, err = a.repo.ChangeCardTag(ctx, *deckID, card.PatchCardID(), card.DeckRelationID, card.Categories, card.Qty, tag)
	if err != nil {
		return err
	}
	a.repo.ClearDeckCache()
	if *tagName == "" {
		fmt.Printf("Cleared tag on %s\n", card.DisplayCardName())
	} else {
		fmt.Printf("Tagged %s as %q\n", card.DisplayCardName(), *tagName)
	}
	return nil
}

func runRemove(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	deckID := fs.Int("deck", 0, "Deck id")
	name := fs.String("name", "", "Card name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckID == 0 || *name == "" {
		return fmt.Errorf("-deck and -name are required")
	}

	_, card, err := findCard(ctx, a, *deckID, *name)
	if err != nil {
		return err
	}

	_, err = a.repo.RemoveCard(ctx, *deckID, card.PatchCardID(), card.DeckRelationID, card.Categories)
	if err != nil {
		return err
	}
	a.repo.ClearDeckCache()
	fmt.Printf("Removed %s from deck %d\n", card.DisplayCardName(), *deckID)
	return nil
}
