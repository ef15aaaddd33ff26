package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/migellal/archidekt-client/internal/archidekt/deckstats"
	"github.com/migellal/archidekt-client/internal/charts"
)

// Slice colors for the color distribution pie, WUBRG plus colorless.
var manaColors = map[string]string{
	"W": "#F8E7B9",
	"U": "#B3CEEA",
	"B": "#A69F9D",
	"R": "#EB9F82",
	"G": "#C4D3CA",
	"C": "#CCC2C0",
}

var colorNames = map[string]string{
	"W": "White",
	"U": "Blue",
	"B": "Black",
	"R": "Red",
	"G": "Green",
	"C": "Colorless",
}

func runStats(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	outDir := fs.String("out", ".", "Directory for rendered chart files")
	open := fs.Bool("open", false, "Open the charts in a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deckID, _, err := parseDeckID(fs.Args())
	if err != nil {
		return err
	}

	deck, err := a.repo.GetDeckData(ctx, deckID, false)
	if err != nil {
		return err
	}

	fmt.Printf("%s [%s]\n", deck.Name, deck.FormatName())
	fmt.Printf("Mainboard %d, sideboard %d\n\n", deck.MainboardCount(), deck.SideboardCount())

	curve := deckstats.ManaCurve(deck)
	fmt.Println("Mana curve:")
	for _, bucket := range curve {
		label := strconv.Itoa(bucket.CMC)
		if bucket.CMC == 7 {
			label = "7+"
		}
		fmt.Printf("  %3s %s (%d)\n", label, bar(bucket.Count), bucket.Count)
	}

	colors := deckstats.ColorDistribution(deck)
	if len(colors) > 0 {
		fmt.Println("\nColors:")
		for _, c := range colors {
			fmt.Printf("  %-10s %d\n", colorNames[c.Color], c.Count)
		}
	}

	if tags := deckstats.TagSummary(deck); len(tags) > 0 {
		names := make([]string, 0, len(tags))
		for name := range tags {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nTags:")
		for _, name := range names {
			fmt.Printf("  %-24s %d\n", name, tags[name])
		}
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	curvePath := filepath.Join(*outDir, fmt.Sprintf("deck-%d-curve.html", deckID))
	if err := renderCurveChart(deck.Name, curve, curvePath); err != nil {
		return err
	}

	colorsPath := filepath.Join(*outDir, fmt.Sprintf("deck-%d-colors.html", deckID))
	if err := renderColorChart(deck.Name, colors, colorsPath); err != nil {
		return err
	}

	fmt.Printf("\nCharts written to %s and %s\n", curvePath, colorsPath)

	if *open {
		if err := charts.OpenInBrowser(curvePath); err != nil {
			log.Printf("failed to open browser: %v", err)
		}
		if err := charts.OpenInBrowser(colorsPath); err != nil {
			log.Printf("failed to open browser: %v", err)
		}
	}
	return nil
}

func bar(count int) string {
	out := ""
	for i := 0; i < count; i++ {
		out += "#"
	}
	return out
}

func renderCurveChart(deckName string, curve []deckstats.CurveBucket, path string) error {
	data := make([]charts.DataPoint, len(curve))
	for i, bucket := range curve {
		label := strconv.Itoa(bucket.CMC)
		if bucket.CMC == 7 {
			label = "7+"
		}
		data[i] = charts.DataPoint{Label: label, Value: float64(bucket.Count)}
	}

	config := charts.DefaultChartConfig()
	config.Title = "Mana Curve"
	config.Subtitle = deckName

	return charts.RenderBarChart("Cards", data, config, path)
}

func renderColorChart(deckName string, colors []deckstats.ColorCount, path string) error {
	data := make([]charts.DataPoint, len(colors))
	palette := make([]string, len(colors))
	for i, c := range colors {
		data[i] = charts.DataPoint{Label: colorNames[c.Color], Value: float64(c.Count)}
		palette[i] = manaColors[c.Color]
	}

	config := charts.DefaultChartConfig()
	config.Title = "Color Distribution"
	config.Subtitle = deckName
	if len(palette) > 0 {
		config.Colors = palette
	}

	return charts.RenderPieChart("Colors", data, config, path)
}
