package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
)

func runFolder(ctx context.Context, a *app, args []string) error {
	var folder *api.FolderResponse
	var err error

	if len(args) > 0 {
		id, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("invalid folder id %q", args[0])
		}
		folder, err = a.repo.GetFolder(ctx, id)
	} else {
		folder, err = a.repo.GetRootFolder(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Folder: %s (id %d)\n", folder.Name, folder.ID)
	if folder.ParentFolder != nil {
		fmt.Printf("Parent: %s (id %d)\n", folder.ParentFolder.Name, folder.ParentFolder.ID)
	}

	if len(folder.Subfolders) > 0 {
		fmt.Println("\nSubfolders:")
		for _, sub := range folder.Subfolders {
			fmt.Printf("  %-10d %s\n", sub.ID, sub.Name)
		}
	}

	if len(folder.Decks) > 0 {
		fmt.Println("\nDecks:")
		for _, deck := range folder.Decks {
			fmt.Printf("  %-10d %-40s %-12s %s\n",
				deck.ID,
				truncate(deck.Name, 40),
				api.FormatName(deck.DeckFormat),
				strings.Join(deck.Colors.ColorList(), ""))
		}
	}

	if len(folder.Subfolders) == 0 && len(folder.Decks) == 0 {
		fmt.Println("\nFolder is empty.")
	}
	return nil
}

func runTags(ctx context.Context, a *app) error {
	tags, err := a.repo.GetColorTags(ctx)
	if err != nil {
		return err
	}
	if len(tags) == 0 {
		fmt.Println("No color tags defined.")
		return nil
	}

	fmt.Printf("%-6s %-24s %s\n", "ID", "NAME", "COLOR")
	for _, tag := range tags {
		name := tag.Name
		if name == "" {
			name = "(default)"
		}
		fmt.Printf("%-6d %-24s %s\n", tag.ID, name, tag.Color)
	}
	return nil
}
