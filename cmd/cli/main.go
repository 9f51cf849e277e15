package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"leafnote/internal/enrich"
	"leafnote/internal/localstore"
	"leafnote/internal/metadata"
	"leafnote/internal/recommend"
	"leafnote/internal/syncer"
	"leafnote/internal/transfer"
	"leafnote/pkg/models"
	"leafnote/pkg/utils"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

func main() {
	global := flag.NewFlagSet("leafnote", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	app := &app{
		client:    &http.Client{Timeout: 15 * time.Second},
		baseURL:   *baseURL,
		tokenPath: *tokenPath,
		session:   syncer.NewSession(),
	}
	app.session.Subscribe(func(id *syncer.Identity) { app.reconcile(ctx, id) })

	switch cmd {
	case "auth":
		app.handleAuth(ctx, sub, args[2:])
	case "books":
		app.handleBooks(ctx, sub, args[2:])
	case "recs":
		app.handleRecs(ctx, args[1:])
	case "transfer":
		app.handleTransfer(ctx, sub, args[2:])
	case "sync":
		app.handleSync(ctx, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

type app struct {
	client    *http.Client
	baseURL   string
	tokenPath string
	session   *syncer.Session
}

func (a *app) handleAuth(ctx context.Context, sub string, args []string) {
	switch sub {
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := a.doJSON(ctx, http.MethodPost, "/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(a.tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and signed in")
		a.session.SetIdentity(a.whoami(ctx))
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := a.doJSON(ctx, http.MethodPost, "/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(a.tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("signed in")
		a.session.SetIdentity(a.whoami(ctx))
	case "magic-request":
		fs := flag.NewFlagSet("auth magic-request", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		_ = fs.Parse(args)
		if *email == "" {
			log.Fatal("email is required")
		}

		var resp map[string]any
		payload := map[string]string{"email": *email}
		if err := a.doJSON(ctx, http.MethodPost, "/auth/magic-link", "", payload, &resp); err != nil {
			log.Fatalf("magic link request failed: %v", err)
		}
		printJSON(resp)
	case "magic-login":
		fs := flag.NewFlagSet("auth magic-login", flag.ExitOnError)
		token := fs.String("token", "", "token from the magic link")
		_ = fs.Parse(args)
		if *token == "" {
			log.Fatal("token is required")
		}

		var resp authResponse
		endpoint := "/auth/magic?token=" + url.QueryEscape(*token)
		if err := a.doJSON(ctx, http.MethodGet, endpoint, "", nil, &resp); err != nil {
			log.Fatalf("magic login failed: %v", err)
		}
		if err := saveToken(a.tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("signed in")
		a.session.SetIdentity(a.whoami(ctx))
	case "logout":
		if token := a.token(); token != "" {
			var resp map[string]any
			if err := a.doJSON(ctx, http.MethodPost, "/auth/logout", token, map[string]string{}, &resp); err != nil {
				log.Printf("server logout failed: %v", err)
			}
		}
		if err := clearToken(a.tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		a.session.SetIdentity(nil)
		fmt.Println("signed out, your local shelves stay on this machine")
	default:
		log.Fatal("usage: leafnote auth <register|login|magic-request|magic-login|logout>")
	}
}

func (a *app) handleBooks(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		lib := a.currentLibrary(ctx)
		printJSON(lib)
	case "add-read":
		fs := flag.NewFlagSet("books add-read", flag.ExitOnError)
		title := fs.String("title", "", "book title")
		rating := fs.Int("rating", 0, "rating 1-5")
		_ = fs.Parse(args)
		if strings.TrimSpace(*title) == "" {
			log.Fatal("title is required")
		}
		if *rating < 1 || *rating > 5 {
			log.Fatal("rating must be 1-5")
		}

		if token := a.token(); token != "" {
			payload := map[string]any{"title": *title, "rating": *rating}
			var resp models.ReadItem
			if err := a.doJSON(ctx, http.MethodPost, "/users/books/read", token, payload, &resp); err != nil {
				log.Fatalf("add failed: %v", err)
			}
			a.pullRemote(ctx, token)
			printJSON(resp)
			a.reportEvent(ctx, "book_added", resp.Title, resp.Author, rating, models.StatusRead)
			return
		}

		store := mustStore()
		defer store.Close()

		item := models.ReadItem{
			ID:       uuid.NewString(),
			Title:    strings.TrimSpace(*title),
			Rating:   *rating,
			DateRead: time.Now().UTC(),
		}
		meta := newEnricher().Lookup(ctx, item.Title)
		item.Author = meta.Author
		item.ShortDescription = meta.ShortDescription
		item.Categories = meta.Categories

		lib := store.LoadLibrary()
		lib.ReadBooks = append([]models.ReadItem{item}, lib.ReadBooks...)
		if err := store.SaveLibrary(lib); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		printJSON(item)
		a.reportEvent(ctx, "book_added", item.Title, item.Author, rating, models.StatusRead)
	case "add-to-read":
		fs := flag.NewFlagSet("books add-to-read", flag.ExitOnError)
		title := fs.String("title", "", "book title")
		_ = fs.Parse(args)
		if strings.TrimSpace(*title) == "" {
			log.Fatal("title is required")
		}

		if token := a.token(); token != "" {
			payload := map[string]any{"title": *title}
			var resp models.ToReadItem
			if err := a.doJSON(ctx, http.MethodPost, "/users/books/to-read", token, payload, &resp); err != nil {
				log.Fatalf("add failed: %v", err)
			}
			a.pullRemote(ctx, token)
			printJSON(resp)
			a.reportEvent(ctx, "book_queued", resp.Title, resp.Author, nil, models.StatusToRead)
			return
		}

		store := mustStore()
		defer store.Close()

		item := models.ToReadItem{
			ID:        uuid.NewString(),
			Title:     strings.TrimSpace(*title),
			DateAdded: time.Now().UTC(),
		}
		meta := newEnricher().Lookup(ctx, item.Title)
		item.Author = meta.Author
		item.ShortDescription = meta.ShortDescription
		item.Categories = meta.Categories

		lib := store.LoadLibrary()
		lib.ToReadBooks = append([]models.ToReadItem{item}, lib.ToReadBooks...)
		if err := store.SaveLibrary(lib); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		printJSON(item)
		a.reportEvent(ctx, "book_queued", item.Title, item.Author, nil, models.StatusToRead)
	case "move":
		fs := flag.NewFlagSet("books move", flag.ExitOnError)
		id := fs.String("id", "", "book id")
		rating := fs.Int("rating", 0, "rating 1-5, required when finishing a queued book")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		if token := a.token(); token != "" {
			payload := map[string]any{"rating": *rating}
			var resp map[string]any
			endpoint := "/users/books/" + url.PathEscape(*id) + "/move"
			if err := a.doJSON(ctx, http.MethodPost, endpoint, token, payload, &resp); err != nil {
				log.Fatalf("move failed: %v", err)
			}
			a.pullRemote(ctx, token)
			printJSON(resp)
			return
		}

		store := mustStore()
		defer store.Close()
		lib, moved, err := moveLocal(store.LoadLibrary(), *id, *rating)
		if err != nil {
			log.Fatalf("move failed: %v", err)
		}
		if err := store.SaveLibrary(lib); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		printJSON(moved)
	case "remove":
		fs := flag.NewFlagSet("books remove", flag.ExitOnError)
		id := fs.String("id", "", "book id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		if token := a.token(); token != "" {
			var resp map[string]any
			if err := a.doJSON(ctx, http.MethodDelete, "/users/books/"+url.PathEscape(*id), token, nil, &resp); err != nil {
				log.Fatalf("remove failed: %v", err)
			}
			a.pullRemote(ctx, token)
			printJSON(resp)
			return
		}

		store := mustStore()
		defer store.Close()
		lib, removed := removeLocal(store.LoadLibrary(), *id)
		if !removed {
			log.Fatal("not found")
		}
		if err := store.SaveLibrary(lib); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		fmt.Println("removed")
	default:
		log.Fatal("usage: leafnote books <list|add-read|add-to-read|move|remove>")
	}
}

func (a *app) handleRecs(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("recs", flag.ExitOnError)
	refresh := fs.Bool("refresh", false, "ignore the cached results")
	limit := fs.Int("limit", 8, "max recommendations")
	_ = fs.Parse(args)

	store := mustStore()
	defer store.Close()

	if !*refresh {
		if cached, ok := store.LoadRecCache(); ok {
			printJSON(cached)
			return
		}
	}

	var recs []models.Recommendation
	if token := a.token(); token != "" {
		var resp struct {
			Recommendations []models.Recommendation `json:"recommendations"`
		}
		endpoint := fmt.Sprintf("/users/books/recommendations?limit=%d", *limit)
		if err := a.doJSON(ctx, http.MethodGet, endpoint, token, nil, &resp); err != nil {
			log.Fatalf("recommendations failed: %v", err)
		}
		recs = resp.Recommendations
	} else {
		lib := store.LoadLibrary()
		readItems := recommend.DedupReadItems(lib.ReadBooks)
		toReadItems := recommend.DedupToReadItems(lib.ToReadBooks)

		local := recommend.Recommend(readItems, toReadItems, *limit)
		engine := recommend.NewEngine(metadata.NewClient(utils.LoadMetadataConfig()))
		external := engine.FetchExternal(ctx, readItems, toReadItems, *limit)
		recs = recommend.Combine(external, local, *limit)
	}

	if err := store.SaveRecCache(recs); err != nil {
		log.Printf("[cli] cache recommendations failed: %v", err)
	}
	printJSON(recs)
}

func (a *app) handleTransfer(ctx context.Context, sub string, args []string) {
	switch sub {
	case "export":
		fs := flag.NewFlagSet("transfer export", flag.ExitOnError)
		format := fs.String("format", "json", "csv or json")
		out := fs.String("out", "", "output path (defaults to leafnote-export.<format>)")
		_ = fs.Parse(args)

		lib := a.currentLibrary(ctx)

		var (
			data []byte
			err  error
		)
		switch *format {
		case "json":
			data, err = transfer.ExportJSON(lib)
		case "csv":
			data, err = transfer.ExportCSV(lib)
		default:
			log.Fatal("format must be csv or json")
		}
		if err != nil {
			log.Fatalf("export failed: %v", err)
		}

		path := *out
		if path == "" {
			path = "leafnote-export." + *format
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("exported %d read, %d to-read to %s", len(lib.ReadBooks), len(lib.ToReadBooks), path)
	case "import":
		fs := flag.NewFlagSet("transfer import", flag.ExitOnError)
		format := fs.String("format", "json", "csv or json")
		in := fs.String("in", "", "input path")
		_ = fs.Parse(args)
		if *in == "" {
			log.Fatal("in is required")
		}

		data, err := os.ReadFile(*in)
		if err != nil {
			log.Fatalf("read %s: %v", *in, err)
		}

		var lib models.Library
		switch *format {
		case "json":
			lib, err = transfer.ImportJSON(data)
		case "csv":
			lib, err = transfer.ImportCSV(data)
		default:
			log.Fatal("format must be csv or json")
		}
		if err != nil {
			log.Fatalf("import rejected: %v", err)
		}

		store := mustStore()
		defer store.Close()
		if err := store.SaveLibrary(lib); err != nil {
			log.Fatalf("save failed: %v", err)
		}
		log.Printf("imported %d read, %d to-read", len(lib.ReadBooks), len(lib.ToReadBooks))

		if token := a.token(); token != "" {
			a.pushLocal(ctx, token, lib)
		}
	default:
		log.Fatal("usage: leafnote transfer <export|import>")
	}
}

func (a *app) handleSync(ctx context.Context, sub string, args []string) {
	switch sub {
	case "now":
		if a.token() == "" {
			log.Println("not signed in, nothing to sync")
			return
		}
		a.session.SetIdentity(a.whoami(ctx))
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := tailSync(*addr, *pretty); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: leafnote sync <now|listen>")
	}
}

// whoami resolves the signed-in identity, or nil when anonymous or
// the server is unreachable.
func (a *app) whoami(ctx context.Context) *syncer.Identity {
	token := a.token()
	if token == "" {
		return nil
	}
	var me struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := a.doJSON(ctx, http.MethodGet, "/users/me", token, nil, &me); err != nil {
		log.Printf("[sync] who am i failed: %v", err)
		return nil
	}
	return &syncer.Identity{UserID: me.ID, Email: me.Email}
}

// reconcile runs on every identity change: remote wins when it has
// rows, an empty remote is seeded from the local shelves.
func (a *app) reconcile(ctx context.Context, identity *syncer.Identity) {
	if identity == nil {
		return
	}

	store := mustStore()
	defer store.Close()

	adapter := syncer.NewAdapter(&httpRemote{app: a, token: a.token()})
	lib, err := adapter.Reconcile(ctx, store.LoadLibrary(), identity)
	if err != nil {
		log.Printf("[sync] reconcile failed, keeping local shelves: %v", err)
		return
	}
	if err := store.SaveLibrary(lib); err != nil {
		log.Fatalf("save failed: %v", err)
	}
	log.Printf("[sync] shelves in sync: %d read, %d to-read", len(lib.ReadBooks), len(lib.ToReadBooks))
}

// httpRemote reaches the hosted shelves over the HTTP API.
type httpRemote struct {
	app   *app
	token string
}

func (r *httpRemote) FetchLibrary(ctx context.Context) (models.Library, error) {
	var lib models.Library
	err := r.app.doJSON(ctx, http.MethodGet, "/users/books", r.token, nil, &lib)
	return lib, err
}

func (r *httpRemote) ReplaceLibrary(ctx context.Context, lib models.Library) error {
	data, err := transfer.ExportJSON(lib)
	if err != nil {
		return err
	}
	return r.app.doRaw(ctx, http.MethodPost, "/users/books/import?format=json", r.token, data, "application/json", nil)
}

// pushLocal replaces the remote copy with the given library via the
// all-or-nothing import endpoint.
func (a *app) pushLocal(ctx context.Context, token string, lib models.Library) {
	remote := &httpRemote{app: a, token: token}
	if err := remote.ReplaceLibrary(ctx, lib); err != nil {
		log.Printf("[sync] push local shelves failed: %v", err)
		return
	}
	log.Printf("[sync] pushed to remote: %d read, %d to-read", len(lib.ReadBooks), len(lib.ToReadBooks))
}

// pullRemote refreshes the local mirror after a remote mutation.
func (a *app) pullRemote(ctx context.Context, token string) {
	store := mustStore()
	defer store.Close()

	var remote models.Library
	if err := a.doJSON(ctx, http.MethodGet, "/users/books", token, nil, &remote); err != nil {
		log.Printf("[sync] refresh local mirror failed: %v", err)
		return
	}
	if err := store.SaveLibrary(remote); err != nil {
		log.Printf("[sync] save local mirror failed: %v", err)
	}
}

func (a *app) currentLibrary(ctx context.Context) models.Library {
	if token := a.token(); token != "" {
		var remote models.Library
		if err := a.doJSON(ctx, http.MethodGet, "/users/books", token, nil, &remote); err == nil {
			return remote
		}
		log.Println("[cli] remote unreachable, using local shelves")
	}

	store := mustStore()
	defer store.Close()
	return store.LoadLibrary()
}

// reportEvent is fire-and-forget analytics; errors are swallowed.
func (a *app) reportEvent(ctx context.Context, name, title, author string, rating *int, status string) {
	payload := map[string]any{
		"anon_id":     anonID(),
		"event_name":  name,
		"book_title":  title,
		"book_author": author,
		"book_status": status,
	}
	if rating != nil {
		payload["book_rating"] = *rating
	}
	_ = a.doJSON(ctx, http.MethodPost, "/events", a.token(), payload, nil)
}

func moveLocal(lib models.Library, id string, rating int) (models.Library, any, error) {
	now := time.Now().UTC()
	for i, it := range lib.ToReadBooks {
		if it.ID != id {
			continue
		}
		if rating < 1 || rating > 5 {
			return lib, nil, errors.New("rating must be 1-5")
		}
		moved := models.ReadItem{
			ID:               uuid.NewString(),
			Title:            it.Title,
			Rating:           rating,
			DateRead:         now,
			Author:           it.Author,
			ShortDescription: it.ShortDescription,
			Categories:       it.Categories,
		}
		lib.ToReadBooks = append(lib.ToReadBooks[:i], lib.ToReadBooks[i+1:]...)
		lib.ReadBooks = append([]models.ReadItem{moved}, lib.ReadBooks...)
		return lib, moved, nil
	}
	for i, it := range lib.ReadBooks {
		if it.ID != id {
			continue
		}
		moved := models.ToReadItem{
			ID:               uuid.NewString(),
			Title:            it.Title,
			DateAdded:        now,
			Author:           it.Author,
			ShortDescription: it.ShortDescription,
			Categories:       it.Categories,
		}
		lib.ReadBooks = append(lib.ReadBooks[:i], lib.ReadBooks[i+1:]...)
		lib.ToReadBooks = append([]models.ToReadItem{moved}, lib.ToReadBooks...)
		return lib, moved, nil
	}
	return lib, nil, errors.New("not found")
}

func removeLocal(lib models.Library, id string) (models.Library, bool) {
	for i, it := range lib.ReadBooks {
		if it.ID == id {
			lib.ReadBooks = append(lib.ReadBooks[:i], lib.ReadBooks[i+1:]...)
			return lib, true
		}
	}
	for i, it := range lib.ToReadBooks {
		if it.ID == id {
			lib.ToReadBooks = append(lib.ToReadBooks[:i], lib.ToReadBooks[i+1:]...)
			return lib, true
		}
	}
	return lib, false
}

func tailSync(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func newEnricher() *enrich.Enricher {
	return enrich.NewEnricher(metadata.NewClient(utils.LoadMetadataConfig()))
}

func mustStore() *localstore.Store {
	store, err := localstore.Open(localstore.DefaultPath())
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	return store
}

func (a *app) doJSON(ctx context.Context, method, endpoint, token string, payload any, out any) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = b
	}
	contentType := ""
	if payload != nil {
		contentType = "application/json"
	}
	return a.doRaw(ctx, method, endpoint, token, body, contentType, out)
}

func (a *app) doRaw(ctx context.Context, method, endpoint, token string, body []byte, contentType string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = strings.NewReader(string(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.leafnote-token.json"
	}
	return filepath.Join(home, ".leafnote", "token.json")
}

func anonIDPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.leafnote-anon-id"
	}
	return filepath.Join(home, ".leafnote", "anon-id")
}

// anonID is a per-machine identifier that survives sign-out, so the
// analytics can tell new visitors from returning ones.
func anonID() string {
	path := anonIDPath()
	if data, err := os.ReadFile(path); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	id := uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
		_ = os.WriteFile(path, []byte(id+"\n"), 0o644)
	}
	return id
}

func (a *app) token() string {
	token, err := readToken(a.tokenPath)
	if err != nil {
		return ""
	}
	return token
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func printUsage() {
	fmt.Println("leafnote <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth register|login|magic-request|magic-login|logout")
	fmt.Println("  books list|add-read|add-to-read|move|remove")
	fmt.Println("  recs [-refresh] [-limit N]")
	fmt.Println("  transfer export|import")
	fmt.Println("  sync now|listen")
}
