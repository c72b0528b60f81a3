package main

import (
	_ "embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/dileep-u-k/askbot/internal/chat"
	"github.com/dileep-u-k/askbot/internal/llm"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//go:embed templates/chat.html
var chatHTML string

var chatTemplate = template.Must(template.New("chat.html").Parse(chatHTML))

// ChatHandler serves the chat page and its JSON twin. Sessions are identified
// by an opaque UUID cookie; the conversation itself stays server-side.
type ChatHandler struct {
	chat         *chat.Service
	cookieName   string
	cookieMaxAge int
}

func NewChatHandler(svc *chat.Service, cookieName string, sessionTTL time.Duration) *ChatHandler {
	if cookieName == "" {
		cookieName = defaultCookieName
	}
	return &ChatHandler{
		chat:         svc,
		cookieName:   cookieName,
		cookieMaxAge: int(sessionTTL.Seconds()),
	}
}

type askRequest struct {
	Query string `json:"query" binding:"required"`
}

type askResponse struct {
	Conversation []llm.Message `json:"conversation"`
}

// NewRouter registers every route on a fresh engine.
func NewRouter(h *ChatHandler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.SetHTMLTemplate(chatTemplate)

	engine.GET("/", h.HandleHome)
	engine.POST("/ask", h.HandleAsk)
	engine.GET("/healthz", h.HandleHealth)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/ask", h.HandleAskJSON)
	}
	return engine
}

// HandleHome renders the page, with history if the caller already has a session.
func (h *ChatHandler) HandleHome(c *gin.Context) {
	id, ok := h.existingSession(c)
	if !ok {
		c.HTML(http.StatusOK, "chat.html", gin.H{"conversation": nil})
		return
	}
	history, err := h.chat.History(c.Request.Context(), id)
	if err != nil {
		log.Printf("❌ Failed to load history: %v", err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.HTML(http.StatusOK, "chat.html", gin.H{"conversation": history})
}

// HandleAsk takes the form field "query" and renders the updated history.
func (h *ChatHandler) HandleAsk(c *gin.Context) {
	query := c.PostForm("query")
	if query == "" {
		c.HTML(http.StatusBadRequest, "chat.html", gin.H{"error": chat.ErrEmptyQuery.Error()})
		return
	}

	id := h.sessionID(c)
	history, err := h.chat.Ask(c.Request.Context(), id, query)
	if errors.Is(err, chat.ErrEmptyQuery) {
		c.HTML(http.StatusBadRequest, "chat.html", gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to resolve turn: %v", err)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	c.HTML(http.StatusOK, "chat.html", gin.H{"conversation": history})
}

// HandleAskJSON is the API variant of HandleAsk.
func (h *ChatHandler) HandleAskJSON(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id := h.sessionID(c)
	history, err := h.chat.Ask(c.Request.Context(), id, req.Query)
	if errors.Is(err, chat.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("❌ Failed to resolve turn: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": http.StatusText(http.StatusInternalServerError)})
		return
	}
	c.JSON(http.StatusOK, askResponse{Conversation: history})
}

func (h *ChatHandler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "build": GetBuildInfo()})
}

func (h *ChatHandler) existingSession(c *gin.Context) (string, bool) {
	id, err := c.Cookie(h.cookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// sessionID returns the caller's session, issuing a new cookie when the
// request has none or carries a value that is not a UUID.
func (h *ChatHandler) sessionID(c *gin.Context) string {
	if id, ok := h.existingSession(c); ok {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, id, h.cookieMaxAge, "/", "", false, true)
	return id
}
