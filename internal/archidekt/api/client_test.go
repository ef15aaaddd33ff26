package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(serverURL string) *Client {
	return NewClient(ClientOptions{BaseURL: serverURL})
}

func TestClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rest-auth/login/" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode login body: %v", err)
		}
		if req.Email != "a@b.com" || req.Password != "pw" {
			t.Errorf("Unexpected login body: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"AT1","refresh_token":"RT1","user":{"id":7,"username":"bob","rootFolder":42}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	resp, err := client.Login(context.Background(), "a@b.com", "pw")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if resp.AccessToken != "AT1" || resp.RefreshToken != "RT1" {
		t.Errorf("Unexpected tokens: %+v", resp)
	}
	if resp.User.Username != "bob" || resp.User.ID != 7 {
		t.Errorf("Unexpected user: %+v", resp.User)
	}
	if resp.User.RootFolder == nil || *resp.User.RootFolder != 42 {
		t.Errorf("Expected rootFolder 42, got %v", resp.User.RootFolder)
	}
}

func TestClient_Login_InvalidCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"non_field_errors":["Unable to log in with provided credentials."]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	if err == nil {
		t.Fatal("Expected error for rejected login, got nil")
	}
	if StatusCode(err) != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", StatusCode(err))
	}
}

func TestClient_RefreshToken_FieldFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"access_token field", `{"access_token":"AT2"}`, "AT2"},
		{"access fallback", `{"access":"AT3"}`, "AT3"},
		{"prefers access_token", `{"access_token":"AT2","access":"AT3"}`, "AT2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/rest-auth/token/refresh/" {
					t.Errorf("Unexpected path: %s", r.URL.Path)
				}

				var req TokenRefreshRequest
				if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
					t.Fatalf("Failed to decode refresh body: %v", err)
				}
				if req.Refresh != "RT1" {
					t.Errorf("Expected refresh token RT1, got %q", req.Refresh)
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			resp, err := client.RefreshToken(context.Background(), "RT1")
			if err != nil {
				t.Fatalf("RefreshToken failed: %v", err)
			}
			if resp.Token() != tt.want {
				t.Errorf("Token() = %q, want %q", resp.Token(), tt.want)
			}
		})
	}
}

func TestClient_GetMyDecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/decks/curated/self-recent/" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "JWT AT1" {
			t.Errorf("Expected Authorization 'JWT AT1', got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"id":1,"name":"Mono Red","deckFormat":3,"owner":{"id":7,"username":"bob"},"colors":{"W":0,"U":0,"B":0,"R":24,"G":0}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	decks, err := client.GetMyDecks(context.Background(), "JWT AT1")
	if err != nil {
		t.Fatalf("GetMyDecks failed: %v", err)
	}

	if len(decks) != 1 {
		t.Fatalf("Expected 1 deck, got %d", len(decks))
	}
	if decks[0].Name != "Mono Red" {
		t.Errorf("Expected deck 'Mono Red', got %q", decks[0].Name)
	}
	if colors := decks[0].Colors.ColorList(); len(colors) != 1 || colors[0] != "R" {
		t.Errorf("Expected colors [R], got %v", colors)
	}
}

func TestClient_ModifyCards_Body(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/decks/99/modifyCards/v2/" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("Failed to decode patch body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"add":[],"createdCategories":[]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ops := []PatchOperation{NewAddOperation("123", []string{"Ramp"}, 1, "")}
	if _, err := client.ModifyCards(context.Background(), "JWT AT1", 99, ops); err != nil {
		t.Fatalf("ModifyCards failed: %v", err)
	}

	cards, ok := received["cards"].([]any)
	if !ok || len(cards) != 1 {
		t.Fatalf("Expected body with 1 card, got %v", received)
	}

	card := cards[0].(map[string]any)
	if card["action"] != "add" {
		t.Errorf("Expected action add, got %v", card["action"])
	}
	if _, present := card["deckRelationId"]; present {
		t.Error("add operation leaked deckRelationId onto the wire")
	}
	if patchID, _ := card["patchId"].(string); len(patchID) != 12 {
		t.Errorf("Expected 12-char patchId, got %v", card["patchId"])
	}
}

func TestClient_SearchCards_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("nameSearch") != "Lightning Bolt" {
			t.Errorf("Expected nameSearch 'Lightning Bolt', got %q", q.Get("nameSearch"))
		}
		for _, param := range []string{"includeTokens", "includeDigital", "includeEmblems", "unique"} {
			if q.Get(param) != "true" {
				t.Errorf("Expected %s=true, got %q", param, q.Get(param))
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"count":1,"results":[{"id":555,"uid":"ab123","oracleCard":{"id":1,"name":"Lightning Bolt","types":["Instant"]}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	results, err := client.SearchCards(context.Background(), "JWT AT1", "Lightning Bolt")
	if err != nil {
		t.Fatalf("SearchCards failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Name() != "Lightning Bolt" {
		t.Errorf("Expected 'Lightning Bolt', got %q", results[0].Name())
	}
	if results[0].DefaultCategory() != "Instant" {
		t.Errorf("Expected default category Instant, got %q", results[0].DefaultCategory())
	}
}

func TestClient_UnauthorizedDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Signature has expired."}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.GetMyDecks(context.Background(), "JWT expired")
	if err == nil {
		t.Fatal("Expected error for 401, got nil")
	}
	if !IsUnauthorized(err) {
		t.Errorf("Expected IsUnauthorized to detect the wrapped 401, got: %v", err)
	}
	if IsNotFound(err) {
		t.Error("401 should not register as not-found")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetMyDecks(ctx, "JWT AT1")
	if err == nil {
		t.Fatal("Expected error from cancelled context, got nil")
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		format int
		want   string
	}{
		{FormatCommander, "Commander"},
		{FormatStandard, "Standard"},
		{99, "Unknown"},
	}

	for _, tt := range tests {
		if got := FormatName(tt.format); got != tt.want {
			t.Errorf("FormatName(%d) = %q, want %q", tt.format, got, tt.want)
		}
	}
}
