// Package repository is the single data-access facade over the REST API and
// the deck page scraper. It owns the deck snapshot cache and routes every
// authorized call through the session manager's retry contract.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/migellal/archidekt-client/internal/archidekt/api"
	"github.com/migellal/archidekt-client/internal/archidekt/deckpage"
	"github.com/migellal/archidekt-client/internal/archidekt/session"
	"github.com/migellal/archidekt-client/internal/events"
)

// ErrNoRootFolder means the logged-in user has no known root folder id.
var ErrNoRootFolder = errors.New("no root folder id for current user")

// Repository coordinates the REST client, the deck page fetcher and the
// session. Safe for concurrent use.
//
// Deck snapshots are cached in a single slot keyed by deck id. Card instance
// ids inside a snapshot are only valid for that snapshot; re-fetching a deck
// renumbers them, which is why reads served from cache must never be mixed
// with ids from an older or newer fetch.
type Repository struct {
	client     *api.Client
	fetcher    *deckpage.Fetcher
	session    *session.Manager
	dispatcher *events.Dispatcher

	mu         sync.Mutex
	cachedDeck *deckpage.DeckSnapshot
	cachedID   int

	fetchGroup singleflight.Group
}

// New creates a repository. The dispatcher is optional.
func New(client *api.Client, fetcher *deckpage.Fetcher, sess *session.Manager, dispatcher *events.Dispatcher) *Repository {
	return &Repository{
		client:     client,
		fetcher:    fetcher,
		session:    sess,
		dispatcher: dispatcher,
	}
}

// GetRootFolderID returns the logged-in user's root folder id, or 0.
func (r *Repository) GetRootFolderID() int {
	return r.session.RootFolderID()
}

// GetMyDecks lists the current user's recent decks.
func (r *Repository) GetMyDecks(ctx context.Context) ([]api.DeckSummary, error) {
	return session.WithAuth(ctx, r.session, func(authHeader string) ([]api.DeckSummary, error) {
		return r.client.GetMyDecks(ctx, authHeader)
	})
}

// GetFolder fetches a folder's subfolders and decks. The API exposes three
// structurally identical folder endpoints and which one answers depends on
// how the folder was created, so each is tried in a fixed order and the
// first success wins. A 401 from any variant is carried in the returned
// error so the session layer's retry can engage.
func (r *Repository) GetFolder(ctx context.Context, folderID int) (*api.FolderResponse, error) {
	return session.WithAuth(ctx, r.session, func(authHeader string) (*api.FolderResponse, error) {
		endpoints := []func(context.Context, string, int) (*api.FolderResponse, error){
			r.client.GetFolder,
			r.client.GetDeckFolder,
			r.client.GetUserFolder,
		}

		var lastErr error
		for _, endpoint := range endpoints {
			folder, err := endpoint(ctx, authHeader, folderID)
			if err == nil {
				return folder, nil
			}
			lastErr = err
		}
		return nil, fmt.Errorf("no folder endpoint answered for folder %d: %w", folderID, lastErr)
	})
}

// GetRootFolder fetches the user's root folder.
func (r *Repository) GetRootFolder(ctx context.Context) (*api.FolderResponse, error) {
	rootID := r.session.RootFolderID()
	if rootID == 0 {
		return nil, ErrNoRootFolder
	}
	return r.GetFolder(ctx, rootID)
}

// GetDeckData returns the deck snapshot, served from cache when the slot
// holds this deck and forceRefresh is false. Concurrent fetches for the same
// deck are collapsed into one page download.
func (r *Repository) GetDeckData(ctx context.Context, deckID int, forceRefresh bool) (*deckpage.DeckSnapshot, error) {
	if !forceRefresh {
		r.mu.Lock()
		if r.cachedDeck != nil && r.cachedID == deckID {
			deck := r.cachedDeck
			r.mu.Unlock()
			return deck, nil
		}
		r.mu.Unlock()
	}

	v, err, _ := r.fetchGroup.Do(strconv.Itoa(deckID), func() (any, error) {
		return r.fetchDeck(ctx, deckID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*deckpage.DeckSnapshot), nil
}

// fetchDeck downloads and caches a fresh snapshot. Any fetch failure gets
// one token refresh and retry; the scraped page can reject a stale token
// without a clean 401, so the retry is not limited to unauthorized errors.
func (r *Repository) fetchDeck(ctx context.Context, deckID int) (*deckpage.DeckSnapshot, error) {
	token := r.session.AccessToken()
	if token == "" {
		return nil, session.ErrNotAuthenticated
	}

	deck, err := r.fetcher.Fetch(ctx, deckID, token)
	if err != nil {
		if errors.Is(err, deckpage.ErrMarkerNotFound) || errors.Is(err, deckpage.ErrMalformedPayload) {
			r.reportScrapeMismatch(deckID, err)
			return nil, err
		}

		log.Printf("deck %d fetch failed, refreshing token and retrying: %v", deckID, err)
		if _, refreshErr := r.session.RefreshToken(ctx); refreshErr != nil {
			return nil, err
		}
		deck, err = r.fetcher.Fetch(ctx, deckID, r.session.AccessToken())
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.cachedDeck = deck
	r.cachedID = deckID
	r.mu.Unlock()
	return deck, nil
}

// reportScrapeMismatch surfaces a page-format change to observers. A broken
// scrape is not a transient failure and refreshing the token will not fix
// it.
func (r *Repository) reportScrapeMismatch(deckID int, err error) {
	if r.dispatcher == nil {
		return
	}
	r.dispatcher.Dispatch(events.Event{
		Type: events.TypeScraperMismatch,
		Data: events.ScraperMismatchEvent{DeckID: deckID, Reason: err.Error()},
	})
}

// ClearDeckCache empties the snapshot slot. Every card instance id from the
// previous snapshot becomes invalid.
func (r *Repository) ClearDeckCache() {
	r.mu.Lock()
	r.cachedDeck = nil
	r.cachedID = 0
	r.mu.Unlock()

	if r.dispatcher != nil {
		r.dispatcher.Dispatch(events.Event{Type: events.TypeDeckCacheClear})
	}
}

// IsCacheValid reports whether the slot holds a snapshot for deckID.
func (r *Repository) IsCacheValid(deckID int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cachedDeck != nil && r.cachedID == deckID
}

// ModifyCards applies patch operations to a deck.
func (r *Repository) ModifyCards(ctx context.Context, deckID int, operations []api.PatchOperation) (*api.ModifyCardsResponse, error) {
	resp, err := session.WithAuth(ctx, r.session, func(authHeader string) (*api.ModifyCardsResponse, error) {
		return r.client.ModifyCards(ctx, authHeader, deckID, operations)
	})
	if err != nil {
		return nil, err
	}

	if r.dispatcher != nil {
		r.dispatcher.Dispatch(events.Event{
			Type: events.TypeCardsModified,
			Data: events.CardsModifiedEvent{DeckID: deckID, Operations: len(operations)},
		})
	}
	return resp, nil
}

// ChangeCardCategory moves a card to a new category set, preserving its
// current tag label.
func (r *Repository) ChangeCardCategory(ctx context.Context, deckID int, cardID, deckRelationID string, categories []string, quantity int, label string) (*api.ModifyCardsResponse, error) {
	op := api.NewModifyOperation(cardID, deckRelationID, categories, quantity, label)
	return r.ModifyCards(ctx, deckID, []api.PatchOperation{op})
}

// ChangeCardTag re-tags a card without touching its categories.
func (r *Repository) ChangeCardTag(ctx context.Context, deckID int, cardID, deckRelationID string, categories []string, quantity int, tag api.Tag) (*api.ModifyCardsResponse, error) {
	op := api.NewModifyOperation(cardID, deckRelationID, categories, quantity, tag.Label())
	return r.ModifyCards(ctx, deckID, []api.PatchOperation{op})
}

// AddCardToDeck adds quantity copies of a printing to one category.
func (r *Repository) AddCardToDeck(ctx context.Context, deckID int, cardID, category string, quantity int, label string) (*api.ModifyCardsResponse, error) {
	op := api.NewAddOperation(cardID, []string{category}, quantity, label)
	return r.ModifyCards(ctx, deckID, []api.PatchOperation{op})
}

// RemoveCard removes a card instance from the deck.
func (r *Repository) RemoveCard(ctx context.Context, deckID int, cardID, deckRelationID string, categories []string) (*api.ModifyCardsResponse, error) {
	op := api.NewRemoveOperation(cardID, deckRelationID, categories)
	return r.ModifyCards(ctx, deckID, []api.PatchOperation{op})
}

// SearchCards searches printings by name. A blank query returns no results
// without a network round-trip.
func (r *Repository) SearchCards(ctx context.Context, query string) ([]api.SearchResultCard, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	return session.WithAuth(ctx, r.session, func(authHeader string) ([]api.SearchResultCard, error) {
		return r.client.SearchCards(ctx, authHeader, query)
	})
}

// GetColorTags fetches the account's color tag definitions.
func (r *Repository) GetColorTags(ctx context.Context) ([]api.ColorTagDefinition, error) {
	return session.WithAuth(ctx, r.session, func(authHeader string) ([]api.ColorTagDefinition, error) {
		return r.client.GetColorTags(ctx, authHeader)
	})
}
