package events

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leafnote/internal/auth"
	"leafnote/pkg/models"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes mounts the ingest endpoint. It sits outside the auth
// middleware so anonymous sessions can report too; a bearer token, when
// present, attaches the user id.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/events", h.ingest)
}

type ingestReq struct {
	AnonID     string `json:"anon_id"`
	Name       string `json:"event_name"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	BookRating *int   `json:"book_rating"`
	BookStatus string `json:"book_status"`
}

// ingest always answers 202. Analytics must never break the flow that
// produced the event, so storage failures are logged and swallowed.
func (h *Handler) ingest(c *gin.Context) {
	var req ingestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	req.AnonID = strings.TrimSpace(req.AnonID)
	req.Name = strings.TrimSpace(req.Name)
	if req.AnonID == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anon_id and event_name required"})
		return
	}

	ev := models.Event{
		AnonID:     req.AnonID,
		Name:       req.Name,
		BookTitle:  strings.TrimSpace(req.BookTitle),
		BookAuthor: strings.TrimSpace(req.BookAuthor),
		BookRating: req.BookRating,
		BookStatus: strings.TrimSpace(req.BookStatus),
	}
	if claims := auth.MustGetClaims(c); claims != nil {
		ev.UserID = claims.UserID
	}

	if err := h.Repo.Insert(c.Request.Context(), ev); err != nil {
		log.Printf("[events] insert %q failed: %v", ev.Name, err)
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}
