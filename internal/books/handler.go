package books

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"leafnote/internal/auth"
	"leafnote/internal/enrich"
	"leafnote/internal/recommend"
	"leafnote/internal/sync"
	"leafnote/internal/transfer"
	"leafnote/pkg/models"
)

const defaultRecLimit = 8

// Metadata is the enrichment lookup the handler calls when a new title
// is added. Lookups degrade to synthesized text, so this never blocks
// a write.
type Metadata interface {
	Lookup(ctx context.Context, title string) enrich.Meta
}

type Handler struct {
	Repo     *Repo
	Enricher Metadata
	Recs     *recommend.Engine
	Hub      *sync.Hub
}

func NewHandler(repo *Repo, enricher Metadata, recs *recommend.Engine, hub *sync.Hub) *Handler {
	return &Handler{Repo: repo, Enricher: enricher, Recs: recs, Hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books", h.list)
	rg.POST("/books/read", h.addRead)
	rg.POST("/books/to-read", h.addToRead)
	rg.POST("/books/:book_id/move", h.move)
	rg.DELETE("/books/:book_id", h.remove)
	rg.GET("/books/recommendations", h.recommendations)
	rg.GET("/books/export", h.export)
	rg.POST("/books/import", h.importFile)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rows, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, SplitRows(rows))
}

type addReadReq struct {
	Title    string `json:"title"`
	Rating   int    `json:"rating"`
	DateRead string `json:"dateRead"` // RFC3339, defaults to now
}

func (h *Handler) addRead(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be 1-5"})
		return
	}

	dateRead := time.Now().UTC()
	if raw := strings.TrimSpace(req.DateRead); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dateRead must be RFC3339"})
			return
		}
		dateRead = parsed
	}

	item := models.ReadItem{
		ID:       uuid.NewString(),
		Title:    title,
		Rating:   req.Rating,
		DateRead: dateRead,
	}
	h.applyMeta(c.Request.Context(), title, &item.Author, &item.ShortDescription, &item.Categories)

	if err := h.Repo.Save(c.Request.Context(), RowFromRead(claims.UserID, item)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(claims.UserID, item.ID, item.Title, models.StatusRead)
	c.JSON(http.StatusCreated, item)
}

type addToReadReq struct {
	Title string `json:"title"`
}

func (h *Handler) addToRead(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addToReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	item := models.ToReadItem{
		ID:        uuid.NewString(),
		Title:     title,
		DateAdded: time.Now().UTC(),
	}
	h.applyMeta(c.Request.Context(), title, &item.Author, &item.ShortDescription, &item.Categories)

	if err := h.Repo.Save(c.Request.Context(), RowFromToRead(claims.UserID, item)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	h.broadcast(claims.UserID, item.ID, item.Title, models.StatusToRead)
	c.JSON(http.StatusCreated, item)
}

type moveReq struct {
	Rating int `json:"rating"` // required when moving onto the read list
}

// move shifts an item between the two lists. The moved item gets a
// fresh id; the original row is removed. Enrichment fields carry over.
func (h *Handler) move(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookID := strings.TrimSpace(c.Param("book_id"))
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_id required"})
		return
	}

	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	existing, err := h.Repo.Get(c.Request.Context(), claims.UserID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	now := time.Now().UTC()
	moved := models.BookRow{
		ID:               uuid.NewString(),
		UserID:           claims.UserID,
		Title:            existing.Title,
		Author:           existing.Author,
		ShortDescription: existing.ShortDescription,
		Categories:       existing.Categories,
	}

	switch existing.Status {
	case models.StatusToRead:
		if req.Rating < 1 || req.Rating > 5 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be 1-5"})
			return
		}
		moved.Status = models.StatusRead
		moved.Rating = &req.Rating
		moved.DateRead = &now
	case models.StatusRead:
		// rating is dropped on the way back to the queue
		moved.Status = models.StatusToRead
		moved.DateAdded = &now
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown status"})
		return
	}

	if err := h.Repo.Save(c.Request.Context(), moved); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	if _, err := h.Repo.Delete(c.Request.Context(), claims.UserID, bookID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	h.broadcast(claims.UserID, moved.ID, moved.Title, moved.Status)
	c.JSON(http.StatusOK, moved)
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookID := strings.TrimSpace(c.Param("book_id"))
	if bookID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_id required"})
		return
	}

	ok, err := h.Repo.Delete(c.Request.Context(), claims.UserID, bookID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if h.Hub != nil {
		ev := sync.BookEvent{
			Type:   "book.delete",
			UserID: claims.UserID,
			BookID: bookID,
			At:     time.Now().UTC(),
		}
		go h.Hub.BroadcastJSON(ev)
	}

	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// recommendations blends the local ranking with external suggestions.
// External lookups failing never fail the request; the local list
// stands on its own.
func (h *Handler) recommendations(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit := parseInt(c.Query("limit"), defaultRecLimit)
	if limit < 1 || limit > 20 {
		limit = defaultRecLimit
	}

	rows, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	lib := SplitRows(rows)
	readItems := recommend.DedupReadItems(lib.ReadBooks)
	toReadItems := recommend.DedupToReadItems(lib.ToReadBooks)

	local := recommend.Recommend(readItems, toReadItems, limit)

	var external []models.Recommendation
	if h.Recs != nil {
		external = h.Recs.FetchExternal(c.Request.Context(), readItems, toReadItems, limit)
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recommend.Combine(external, local, limit),
	})
}

func (h *Handler) export(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rows, err := h.Repo.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	lib := SplitRows(rows)

	switch strings.ToLower(strings.TrimSpace(c.Query("format"))) {
	case "", "json":
		b, err := transfer.ExportJSON(lib)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="leafnote-export.json"`)
		c.Data(http.StatusOK, "application/json", b)
	case "csv":
		b, err := transfer.ExportCSV(lib)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="leafnote-export.csv"`)
		c.Data(http.StatusOK, "text/csv", b)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or json"})
	}
}

// importFile replaces the caller's shelves with the uploaded file.
// All-or-nothing: a bad file or a failed write leaves existing rows
// alone.
func (h *Handler) importFile(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read body failed"})
		return
	}

	var lib models.Library
	switch strings.ToLower(strings.TrimSpace(c.Query("format"))) {
	case "", "json":
		lib, err = transfer.ImportJSON(data)
	case "csv":
		lib, err = transfer.ImportCSV(data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or json"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := make([]models.BookRow, 0, len(lib.ReadBooks)+len(lib.ToReadBooks))
	for _, it := range lib.ReadBooks {
		rows = append(rows, RowFromRead(claims.UserID, it))
	}
	for _, it := range lib.ToReadBooks {
		rows = append(rows, RowFromToRead(claims.UserID, it))
	}
	if err := h.Repo.ReplaceAllForUser(c.Request.Context(), claims.UserID, rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported_read":    len(lib.ReadBooks),
		"imported_to_read": len(lib.ToReadBooks),
	})
}

func (h *Handler) applyMeta(ctx context.Context, title string, author, shortDesc *string, categories *[]string) {
	if h.Enricher == nil {
		return
	}
	meta := h.Enricher.Lookup(ctx, title)
	*author = meta.Author
	*shortDesc = meta.ShortDescription
	*categories = meta.Categories
}

func (h *Handler) broadcast(userID, bookID, title, status string) {
	if h.Hub == nil {
		return
	}
	ev := sync.BookEvent{
		Type:   "book.update",
		UserID: userID,
		BookID: bookID,
		Title:  title,
		Status: status,
		At:     time.Now().UTC(),
	}
	go h.Hub.BroadcastJSON(ev)
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
