package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/credentials"
	"github.com/migellal/archidekt-client/internal/archidekt/deckpage"
	"github.com/migellal/archidekt-client/internal/archidekt/repository"
	"github.com/migellal/archidekt-client/internal/archidekt/session"
	"github.com/migellal/archidekt-client/internal/config"
	"github.com/migellal/archidekt-client/internal/events"
)

var (
	debugMode  = flag.Bool("debug", false, "Enable verbose debug logging")
	configFile = flag.String("config", "", "Path to config file (default: ~/.archidekt-client/config.toml)")
)

func usage() {
	fmt.Println("Usage: archidekt [flags] <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login       Log in to Archidekt (-email, -password, -no-save)")
	fmt.Println("  logout      Log out, keeping saved credentials")
	fmt.Println("  whoami      Show the current session")
	fmt.Println("  decks       List your recent decks")
	fmt.Println("  folder      Show a folder (default: root folder)")
	fmt.Println("  deck        Show a deck's cards (-refresh)")
	fmt.Println("  search      Search cards by name")
	fmt.Println("  add         Add a card to a deck")
	fmt.Println("  move        Move a card to another category")
	fmt.Println("  tag         Re-tag a card")
	fmt.Println("  remove      Remove a card from a deck")
	fmt.Println("  tags        List your color tag definitions")
	fmt.Println("  stats       Render deck statistics charts")
	fmt.Println("  clear-data  Forget every stored credential and token")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

// app bundles the composed service graph handed to every subcommand.
type app struct {
	cfg     *config.Config
	store   *credentials.Store
	session *session.Manager
	repo    *repository.Repository
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer cleanup()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	if err := runCommand(ctx, a, command, args); err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

// buildApp composes the service graph once: config, credential store, REST
// client, session and repository.
func buildApp(ctx context.Context) (*app, func(), error) {
	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return nil, nil, err
	}
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, nil, err
	}

	store, err := credentials.Open(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	cleanup := func() { _ = store.Close() }

	dispatcher := events.NewDispatcher()
	if *debugMode || cfg.App.DebugMode {
		dispatcher.Register(events.NewLoggingObserver(true))
	}

	client := api.NewClient(api.ClientOptions{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   timeout,
	})
	sess := session.NewManager(ctx, client, store, dispatcher)
	fetcher := deckpage.NewFetcher(deckpage.FetcherOptions{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   timeout,
	})
	repo := repository.New(client, fetcher, sess, dispatcher)

	return &app{cfg: cfg, store: store, session: sess, repo: repo}, cleanup, nil
}

func runCommand(ctx context.Context, a *app, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, a, args)
	case "logout":
		return a.session.Logout(ctx)
	case "whoami":
		return runWhoami(a)
	case "decks":
		return runDecks(ctx, a)
	case "folder":
		return runFolder(ctx, a, args)
	case "deck":
		return runDeck(ctx, a, args)
	case "search":
		return runSearch(ctx, a, args)
	case "add":
		return runAdd(ctx, a, args)
	case "move":
		return runMove(ctx, a, args)
	case "tag":
		return runTag(ctx, a, args)
	case "remove":
		return runRemove(ctx, a, args)
	case "tags":
		return runTags(ctx, a)
	case "stats":
		return runStats(ctx, a, args)
	case "clear-data":
		return a.session.ClearAllData(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Account email")
	password := fs.String("password", "", "Account password")
	noSave := fs.Bool("no-save", false, "Do not store credentials for auto-login")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *password == "" {
		// No flags given: try the stored credentials first.
		if user, err := a.session.AutoLogin(ctx); err == nil {
			fmt.Printf("Logged in as %s (saved credentials)\n", user.Username)
			return nil
		}
	}
	if *email == "" {
		*email = prompt("Email: ")
	}
	if *password == "" {
		*password = prompt("Password: ")
	}

	user, err := a.session.Login(ctx, *email, *password, !*noSave)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", user.Username)
	return nil
}

func prompt(label string) string {
	fmt.Print(label)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

func runWhoami(a *app) error {
	fmt.Printf("State: %s\n", a.session.State())
	if user := a.session.CurrentUser(); user != nil {
		fmt.Printf("User:  %s (id %d)\n", user.Username, user.ID)
		if root := a.session.RootFolderID(); root != 0 {
			fmt.Printf("Root folder: %d\n", root)
		}
	}
	return nil
}

// parseDeckID reads a positional deck id argument.
func parseDeckID(args []string) (int, []string, error) {
	if len(args) < 1 {
		return 0, nil, fmt.Errorf("deck id required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid deck id %q", args[0])
	}
	return id, args[1:], nil
}
