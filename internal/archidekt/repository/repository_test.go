package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/credentials"
	"github.com/migellal/archidekt-client/internal/archidekt/deckpage"
	"github.com/migellal/archidekt-client/internal/archidekt/session"
	"github.com/migellal/archidekt-client/internal/events"
)

// serviceStub stands in for the whole Archidekt service: auth endpoints,
// folder endpoints, card mutation, search and the scraped deck page.
type serviceStub struct {
	mu sync.Mutex

	pageHits    int
	refreshHits int
	searchHits  int
	modifyHits  int

	// ordered folder endpoint paths hit, for fallback-order assertions
	folderPaths []string

	// per-path canned folder status; missing means 404
	folderStatus map[string]int

	// when set, folder endpoints 401 unless this token is presented
	folderRequireToken string

	// when true, serve the deck page without the embedded payload
	brokenPage bool

	// reject page requests bearing this token with a 401
	expiredToken string
}

func deckPageBody(deckID int) string {
	deck := fmt.Sprintf(`{"id":%d,"name":"Deck %d","format":3,"owner":"bob","ownerid":7,
		"categories":{},"colorLabels":[],
		"cardMap":{"inst-1":{"id":"inst-1","name":"Sol Ring","cmc":1,"castingCost":["1"],
			"types":["Artifact"],"qty":1,"modifier":"Normal","categories":["Artifact"],
			"deckRelationId":"rel-1","uid":"aabbccdd-0000-0000-0000-000000000000"}}}`, deckID, deckID)
	return fmt.Sprintf(`<html><body><script id="__NEXT_DATA__" type="application/json">{"props":{"pageProps":{"redux":{"deck":%s}}}}</script></body></html>`, deck)
}

func (s *serviceStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/rest-auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "AT1",
			"refresh_token": "RT1",
			"user":          map[string]any{"id": 7, "username": "bob", "rootFolder": 42},
		})
	})

	mux.HandleFunc("/api/rest-auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.refreshHits++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"access_token": "AT2"})
	})

	mux.HandleFunc("/decks/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.pageHits++
		broken := s.brokenPage
		expired := s.expiredToken
		s.mu.Unlock()

		if expired != "" && r.Header.Get("Authorization") == "JWT "+expired {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if broken {
			w.Write([]byte("<html><body>redesigned page</body></html>"))
			return
		}

		var deckID int
		fmt.Sscanf(r.URL.Path, "/decks/%d", &deckID)
		w.Write([]byte(deckPageBody(deckID)))
	})

	folder := func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.folderPaths = append(s.folderPaths, r.URL.Path)
		status, ok := s.folderStatus[r.URL.Path]
		requireToken := s.folderRequireToken
		s.mu.Unlock()

		if requireToken != "" && r.Header.Get("Authorization") != "JWT "+requireToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !ok {
			status = http.StatusNotFound
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "name": "Root", "subfolders": []any{}, "decks": []any{},
		})
	}
	mux.HandleFunc("/api/folders/", folder)
	mux.HandleFunc("/api/decks/folders/", folder)
	mux.HandleFunc("/api/users/folders/", folder)

	mux.HandleFunc("/api/decks/", func(w http.ResponseWriter, r *http.Request) {
		// modifyCards lands here: /api/decks/{id}/modifyCards/v2/
		s.mu.Lock()
		s.modifyHits++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})

	mux.HandleFunc("/api/cards/v2/", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.searchHits++
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":0,"results":[]}`))
	})

	return mux
}

func newTestRepository(t *testing.T, stub *serviceStub) (*Repository, *events.Dispatcher) {
	t.Helper()

	server := httptest.NewServer(stub.handler(t))
	t.Cleanup(server.Close)

	store, err := credentials.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open credential store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	client := api.NewClient(api.ClientOptions{BaseURL: server.URL})
	sess := session.NewManager(ctx, client, store, nil)
	if _, err := sess.Login(ctx, "a@b.com", "pw", false); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	fetcher := deckpage.NewFetcher(deckpage.FetcherOptions{BaseURL: server.URL})
	dispatcher := events.NewDispatcher()
	return New(client, fetcher, sess, dispatcher), dispatcher
}

func TestRepository_GetDeckData_CachesSecondRead(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	first, err := repo.GetDeckData(ctx, 100, false)
	if err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}
	second, err := repo.GetDeckData(ctx, 100, false)
	if err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}

	if stub.pageHits != 1 {
		t.Errorf("Expected exactly 1 page fetch, got %d", stub.pageHits)
	}
	if first != second {
		t.Error("Cached read should return the same snapshot instance")
	}
	if !repo.IsCacheValid(100) {
		t.Error("Cache should hold deck 100")
	}
}

func TestRepository_GetDeckData_DifferentDeckReplacesSlot(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	if _, err := repo.GetDeckData(ctx, 100, false); err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}
	deck2, err := repo.GetDeckData(ctx, 200, false)
	if err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}

	if stub.pageHits != 2 {
		t.Errorf("Expected 2 page fetches, got %d", stub.pageHits)
	}
	if deck2.ID != 200 {
		t.Errorf("Expected deck 200, got %d", deck2.ID)
	}
	if repo.IsCacheValid(100) {
		t.Error("Slot must no longer hold deck 100")
	}
	if !repo.IsCacheValid(200) {
		t.Error("Slot should hold deck 200")
	}
}

func TestRepository_GetDeckData_ForceRefresh(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	if _, err := repo.GetDeckData(ctx, 100, false); err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}
	if _, err := repo.GetDeckData(ctx, 100, true); err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}

	if stub.pageHits != 2 {
		t.Errorf("forceRefresh must bypass the cache, got %d fetches", stub.pageHits)
	}
}

func TestRepository_ClearDeckCache(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	if _, err := repo.GetDeckData(ctx, 100, false); err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}
	repo.ClearDeckCache()

	if repo.IsCacheValid(100) {
		t.Error("Cache should be empty after ClearDeckCache")
	}
	if _, err := repo.GetDeckData(ctx, 100, false); err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}
	if stub.pageHits != 2 {
		t.Errorf("Expected a re-fetch after invalidation, got %d fetches", stub.pageHits)
	}
}

func TestRepository_GetDeckData_RefreshesOnceOnExpiredToken(t *testing.T) {
	stub := &serviceStub{expiredToken: "AT1"}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	deck, err := repo.GetDeckData(ctx, 100, false)
	if err != nil {
		t.Fatalf("Expected recovery via token refresh, got %v", err)
	}
	if deck.ID != 100 {
		t.Errorf("Expected deck 100, got %d", deck.ID)
	}
	if stub.refreshHits != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", stub.refreshHits)
	}
	if stub.pageHits != 2 {
		t.Errorf("Expected 2 page fetches (failed + retried), got %d", stub.pageHits)
	}
}

func TestRepository_GetDeckData_ScrapeMismatchIsFatal(t *testing.T) {
	stub := &serviceStub{brokenPage: true}
	repo, dispatcher := newTestRepository(t, stub)
	ctx := context.Background()

	var mu sync.Mutex
	var mismatches []events.ScraperMismatchEvent
	dispatcher.Register(observerFunc(func(e events.Event) {
		if data, ok := e.Data.(events.ScraperMismatchEvent); ok {
			mu.Lock()
			mismatches = append(mismatches, data)
			mu.Unlock()
		}
	}))

	_, err := repo.GetDeckData(ctx, 100, false)
	if !errors.Is(err, deckpage.ErrMarkerNotFound) {
		t.Fatalf("Expected ErrMarkerNotFound, got %v", err)
	}
	if stub.refreshHits != 0 {
		t.Error("A page format change must not trigger a token refresh")
	}
	if repo.IsCacheValid(100) {
		t.Error("Cache must stay untouched after a failed fetch")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(mismatches) != 1 || mismatches[0].DeckID != 100 {
		t.Errorf("Expected one scraper mismatch event for deck 100, got %+v", mismatches)
	}
}

func TestRepository_GetDeckData_ConcurrentCallsShareOneFetch(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.GetDeckData(ctx, 100, false); err != nil {
				t.Errorf("GetDeckData failed: %v", err)
			}
		}()
	}
	wg.Wait()

	// singleflight collapses overlapping fetches; sequential stragglers hit
	// the cache, so the count stays below the caller count either way.
	if stub.pageHits > 2 {
		t.Errorf("Expected concurrent fetches to be deduplicated, got %d", stub.pageHits)
	}
}

func TestRepository_GetFolder_FallbackOrder(t *testing.T) {
	stub := &serviceStub{folderStatus: map[string]int{
		"/api/users/folders/42/": http.StatusOK,
	}}
	repo, _ := newTestRepository(t, stub)

	folder, err := repo.GetFolder(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetFolder failed: %v", err)
	}
	if folder.Name != "Root" {
		t.Errorf("Unexpected folder: %+v", folder)
	}

	want := []string{"/api/folders/42/", "/api/decks/folders/42/", "/api/users/folders/42/"}
	if len(stub.folderPaths) != 3 {
		t.Fatalf("Expected 3 attempts, got %v", stub.folderPaths)
	}
	for i, path := range want {
		if stub.folderPaths[i] != path {
			t.Errorf("Attempt %d hit %q, want %q", i, stub.folderPaths[i], path)
		}
	}
}

func TestRepository_GetFolder_FirstSuccessShortCircuits(t *testing.T) {
	stub := &serviceStub{folderStatus: map[string]int{
		"/api/folders/42/": http.StatusOK,
	}}
	repo, _ := newTestRepository(t, stub)

	if _, err := repo.GetFolder(context.Background(), 42); err != nil {
		t.Fatalf("GetFolder failed: %v", err)
	}
	if len(stub.folderPaths) != 1 {
		t.Errorf("Expected 1 attempt, got %v", stub.folderPaths)
	}
}

func TestRepository_GetFolder_AllFailCarriesLastStatus(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)

	_, err := repo.GetFolder(context.Background(), 42)
	if err == nil {
		t.Fatal("Expected an error when every endpoint fails")
	}
	if code := api.StatusCode(err); code != http.StatusNotFound {
		t.Errorf("Expected the last HTTP status carried in the error, got %d", code)
	}
}

func TestRepository_GetFolder_UnauthorizedEngagesRetry(t *testing.T) {
	// Every variant 401s against the initial token. The 401 must surface
	// through the fallback so the session wrapper refreshes and retries,
	// and the second pass with the new token succeeds.
	stub := &serviceStub{
		folderRequireToken: "AT2",
		folderStatus: map[string]int{
			"/api/folders/42/": http.StatusOK,
		},
	}
	repo, _ := newTestRepository(t, stub)

	folder, err := repo.GetFolder(context.Background(), 42)
	if err != nil {
		t.Fatalf("Expected recovery after refresh, got %v", err)
	}
	if folder == nil {
		t.Fatal("Expected a folder after the retried pass")
	}
	if stub.refreshHits != 1 {
		t.Errorf("Expected exactly 1 refresh, got %d", stub.refreshHits)
	}
}

func TestRepository_GetRootFolder_NoID(t *testing.T) {
	stub := &serviceStub{}
	server := httptest.NewServer(stub.handler(t))
	defer server.Close()

	store, err := credentials.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open credential store: %v", err)
	}
	defer func() { _ = store.Close() }()

	client := api.NewClient(api.ClientOptions{BaseURL: server.URL})
	sess := session.NewManager(context.Background(), client, store, nil)
	repo := New(client, deckpage.NewFetcher(deckpage.FetcherOptions{BaseURL: server.URL}), sess, nil)

	_, err = repo.GetRootFolder(context.Background())
	if !errors.Is(err, ErrNoRootFolder) {
		t.Fatalf("Expected ErrNoRootFolder, got %v", err)
	}
}

func TestRepository_ModifyCardsKeepsCache(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	if _, err := repo.GetDeckData(ctx, 100, false); err != nil {
		t.Fatalf("GetDeckData failed: %v", err)
	}

	op := api.NewAddOperation("555", []string{"Artifact"}, 1, "")
	if _, err := repo.ModifyCards(ctx, 100, []api.PatchOperation{op}); err != nil {
		t.Fatalf("ModifyCards failed: %v", err)
	}

	// Invalidation is the caller's decision so mutations can be batched.
	if !repo.IsCacheValid(100) {
		t.Error("ModifyCards must not clear the cache itself")
	}
	if stub.modifyHits != 1 {
		t.Errorf("Expected 1 modify call, got %d", stub.modifyHits)
	}
}

func TestRepository_SearchCards_BlankQueryShortCircuits(t *testing.T) {
	stub := &serviceStub{}
	repo, _ := newTestRepository(t, stub)
	ctx := context.Background()

	for _, query := range []string{"", "   "} {
		results, err := repo.SearchCards(ctx, query)
		if err != nil {
			t.Fatalf("SearchCards(%q) failed: %v", query, err)
		}
		if len(results) != 0 {
			t.Errorf("SearchCards(%q) = %v, want empty", query, results)
		}
	}
	if stub.searchHits != 0 {
		t.Errorf("Blank queries must not reach the network, got %d hits", stub.searchHits)
	}

	if _, err := repo.SearchCards(ctx, "sol ring"); err != nil {
		t.Fatalf("SearchCards failed: %v", err)
	}
	if stub.searchHits != 1 {
		t.Errorf("Expected 1 search call, got %d", stub.searchHits)
	}
}

func TestRepository_GetMyDecksRequiresAuth(t *testing.T) {
	stub := &serviceStub{}
	server := httptest.NewServer(stub.handler(t))
	defer server.Close()

	store, err := credentials.Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open credential store: %v", err)
	}
	defer func() { _ = store.Close() }()

	client := api.NewClient(api.ClientOptions{BaseURL: server.URL})
	sess := session.NewManager(context.Background(), client, store, nil)
	repo := New(client, deckpage.NewFetcher(deckpage.FetcherOptions{BaseURL: server.URL}), sess, nil)

	_, err = repo.GetMyDecks(context.Background())
	if !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("Expected ErrNotAuthenticated, got %v", err)
	}
}

// observerFunc adapts a function to the events.Observer interface.
type observerFunc func(events.Event)

func (f observerFunc) OnEvent(e events.Event) error { f(e); return nil }
func (f observerFunc) GetName() string              { return "test-observer" }
func (f observerFunc) ShouldHandle(eventType string) bool {
	return true
}
