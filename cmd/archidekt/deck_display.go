package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/deckpage"
)

func runDecks(ctx context.Context, a *app) error {
	decks, err := a.repo.GetMyDecks(ctx)
	if err != nil {
		return err
	}
	if len(decks) == 0 {
		fmt.Println("No decks found.")
		return nil
	}

	fmt.Printf("%-10s %-40s %-12s %s\n", "ID", "NAME", "FORMAT", "COLORS")
	for _, deck := range decks {
		fmt.Printf("%-10d %-40s %-12s %s\n",
			deck.ID,
			truncate(deck.Name, 40),
			api.FormatName(deck.DeckFormat),
			strings.Join(deck.Colors.ColorList(), ""))
	}
	return nil
}

func runDeck(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("deck", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "Bypass the snapshot cache")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deckID, _, err := parseDeckID(fs.Args())
	if err != nil {
		return err
	}

	deck, err := a.repo.GetDeckData(ctx, deckID, *refresh)
	if err != nil {
		return err
	}

	fmt.Printf("%s [%s] by %s\n", deck.Name, deck.FormatName(), deck.Owner)
	if deck.Description != "" {
		fmt.Println(deck.Description)
	}
	fmt.Printf("Mainboard: %d cards, sideboard: %d cards\n\n", deck.MainboardCount(), deck.SideboardCount())

	printBoard("MAINBOARD", deck.MainboardCards())
	side := deck.SideboardCards()
	if len(side) > 0 {
		fmt.Println()
		printBoard("SIDEBOARD", side)
	}
	return nil
}

// printBoard lists card instances grouped by category, sorted by name.
func printBoard(title string, cards map[string]deckpage.CardEntry) {
	fmt.Println(title)

	byCategory := make(map[string][]deckpage.CardEntry)
	for _, card := range cards {
		category := "Uncategorized"
		if len(card.Categories) > 0 {
			category = card.Categories[0]
		}
		byCategory[category] = append(byCategory[category], card)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		entries := byCategory[category]
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

		fmt.Printf("  %s\n", category)
		for _, card := range entries {
			line := fmt.Sprintf("    %dx %s", card.Qty, card.DisplayCardName())
			if cost := card.ManaCostFormatted(); cost != "" {
				line += " " + cost
			}
			if card.ColorLabel != nil && card.ColorLabel.Name != "" {
				line += fmt.Sprintf(" [%s]", card.ColorLabel.Name)
			}
			fmt.Println(line)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
