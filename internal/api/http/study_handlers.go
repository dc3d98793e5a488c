package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kwararru/shell/internal/domain/srs"
	hosterr "github.com/kwararru/shell/internal/shared/errors"
	"github.com/kwararru/shell/internal/shared/types"
	"github.com/kwararru/shell/internal/shared/utils"
)

// ListDecks lists every deck with its due count
func (h *Handlers) ListDecks(c *gin.Context) {
	decks, err := h.host.Store.ListDecks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	due := make(map[string]int, len(decks))
	for _, d := range decks {
		due[d.ID] = len(h.scheduler.DueCards(d))
	}
	c.JSON(http.StatusOK, gin.H{"decks": decks, "due": due})
}

// CreateDeck stores a new deck. Every card starts unseen and due now.
func (h *Handlers) CreateDeck(c *gin.Context) {
	var req types.DeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidateDeck(req.Name, req.Subject, len(req.Cards)); err != nil {
		h.badRequest(c, err)
		return
	}
	cards, err := h.cards(req.Cards, nil)
	if err != nil {
		h.fail(c, err)
		return
	}

	deck := types.Deck{
		Name:      req.Name,
		Subject:   req.Subject,
		Cards:     cards,
		CreatedAt: h.now(),
	}
	id, err := h.host.Store.AddDeck(c.Request.Context(), deck)
	if err != nil {
		h.fail(c, err)
		return
	}
	deck.ID = id

	h.log.Info("deck created",
		zap.String("deck_id", id),
		zap.String("subject", deck.Subject),
		zap.Int("cards", len(cards)))
	c.JSON(http.StatusCreated, gin.H{"id": id, "deck": deck})
}

// GetDeck returns a deck and when it is next due
func (h *Handlers) GetDeck(c *gin.Context) {
	deck, err := h.host.Store.GetDeck(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	body := gin.H{"deck": deck, "due": len(h.scheduler.DueCards(deck))}
	if next, ok := srs.NextDue(deck); ok {
		body["next_due"] = next
	}
	c.JSON(http.StatusOK, body)
}

// UpdateDeck replaces a deck's name, subject and cards. Cards that were
// already in the deck keep their schedule.
func (h *Handlers) UpdateDeck(c *gin.Context) {
	var req types.DeckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if err := utils.ValidateDeck(req.Name, req.Subject, len(req.Cards)); err != nil {
		h.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	deck, err := h.host.Store.GetDeck(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	cards, err := h.cards(req.Cards, deck.Cards)
	if err != nil {
		h.fail(c, err)
		return
	}

	deck.Name = req.Name
	deck.Subject = req.Subject
	deck.Cards = cards
	if err := h.host.Store.UpdateDeck(ctx, deck); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deck": deck})
}

// DeleteDeck removes a deck
func (h *Handlers) DeleteDeck(c *gin.Context) {
	id := c.Param("id")
	if err := h.host.Store.DeleteDeck(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

// DueCards lists the cards of a deck that are due now
func (h *Handlers) DueCards(c *gin.Context) {
	deck, err := h.host.Store.GetDeck(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"deck_id": deck.ID,
		"cards":   h.scheduler.DueCards(deck),
	})
}

// cards builds deck cards from requests, reusing the schedule of any
// matching card in existing
func (h *Handlers) cards(reqs []types.CardRequest, existing []types.Flashcard) ([]types.Flashcard, error) {
	out := make([]types.Flashcard, 0, len(reqs))
	for _, r := range reqs {
		if err := utils.ValidateCard(r.Front, r.Back); err != nil {
			return nil, hosterr.NewInvalidRequest(err.Error())
		}
		card := h.scheduler.NewCard(r.Front, r.Back)
		for _, prev := range existing {
			if prev.SameCard(card) {
				card = prev
				break
			}
		}
		out = append(out, card)
	}
	return out, nil
}

// StartReview begins a review session over a deck's due cards
func (h *Handlers) StartReview(c *gin.Context) {
	deck, err := h.host.Store.GetDeck(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	handle, _, state, err := h.host.Reviews.Begin(deck)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": handle, "state": state})
}

// GetReview returns the state of a review session
func (h *Handlers) GetReview(c *gin.Context) {
	ctrl, ok := h.host.Reviews.Get(c.Param("id"))
	if !ok {
		h.fail(c, hosterr.NewNotFound("review", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "state": ctrl.State()})
}

// RevealCard flips the current card
func (h *Handlers) RevealCard(c *gin.Context) {
	ctrl, ok := h.host.Reviews.Get(c.Param("id"))
	if !ok {
		h.fail(c, hosterr.NewNotFound("review", c.Param("id")))
		return
	}
	state, err := ctrl.Reveal()
	if err != nil {
		h.fail(c, err, gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "state": state})
}

// RateCard rates the current card. A failed save leaves the session on the
// same card so the client can retry.
func (h *Handlers) RateCard(c *gin.Context) {
	var req types.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	ctrl, ok := h.host.Reviews.Get(c.Param("id"))
	if !ok {
		h.fail(c, hosterr.NewNotFound("review", c.Param("id")))
		return
	}

	state, err := ctrl.Rate(c.Request.Context(), types.Rating(strings.ToLower(string(req.Rating))))
	if err != nil {
		h.fail(c, err, gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "state": state})
}

// FinishReview retries recording a completed session
func (h *Handlers) FinishReview(c *gin.Context) {
	ctrl, ok := h.host.Reviews.Get(c.Param("id"))
	if !ok {
		h.fail(c, hosterr.NewNotFound("review", c.Param("id")))
		return
	}
	state, err := ctrl.Finish(c.Request.Context())
	if err != nil {
		h.fail(c, err, gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "state": state})
}

// EndReview abandons a review session
func (h *Handlers) EndReview(c *gin.Context) {
	if !h.host.Reviews.End(c.Param("id")) {
		h.fail(c, hosterr.NewNotFound("review", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListSessions lists study sessions, most recent first
func (h *Handlers) ListSessions(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	var sessions []types.StudySession
	if subject := c.Query("subject"); subject != "" {
		sessions, err = h.host.Store.SessionsBySubject(ctx, subject)
		if err == nil && limit > 0 && len(sessions) > limit {
			sessions = sessions[:limit]
		}
	} else {
		sessions, err = h.host.Store.ListSessions(ctx, limit)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// CreateSession records a study session
func (h *Handlers) CreateSession(c *gin.Context) {
	var req types.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.Subject, "subject", 1, utils.MaxSubjectLength, true); err != nil {
		h.badRequest(c, err)
		return
	}
	if req.Duration < 0 {
		h.fail(c, hosterr.NewInvalidRequest("duration must not be negative"))
		return
	}

	s := types.StudySession{Subject: req.Subject, Duration: req.Duration, Timestamp: h.now()}
	id, err := h.host.Store.AddSession(c.Request.Context(), s)
	if err != nil {
		h.fail(c, err)
		return
	}
	s.ID = id
	if h.metrics != nil {
		h.metrics.IncStudySessions()
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "session": s})
}

// ListQuizResults lists quiz results, most recent first
func (h *Handlers) ListQuizResults(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	var results []types.QuizResult
	if subject := c.Query("subject"); subject != "" {
		results, err = h.host.Store.QuizResultsBySubject(ctx, subject)
		if err == nil && limit > 0 && len(results) > limit {
			results = results[:limit]
		}
	} else {
		results, err = h.host.Store.ListQuizResults(ctx, limit)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// CreateQuizResult records a completed quiz
func (h *Handlers) CreateQuizResult(c *gin.Context) {
	var req types.QuizResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}
	if err := utils.ValidateString(req.Subject, "subject", 1, utils.MaxSubjectLength, true); err != nil {
		h.badRequest(c, err)
		return
	}
	switch {
	case req.Score < 0 || req.Score > 100:
		h.fail(c, hosterr.NewInvalidRequest("score must be between 0 and 100"))
		return
	case req.TotalQuestions < 0 || req.CorrectAnswers < 0 || req.CorrectAnswers > req.TotalQuestions:
		h.fail(c, hosterr.NewInvalidRequest("correct answers must be between 0 and total questions"))
		return
	}

	r := types.QuizResult{
		Subject:        req.Subject,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		CorrectAnswers: req.CorrectAnswers,
		CompletedAt:    h.now(),
	}
	id, err := h.host.Store.AddQuizResult(c.Request.Context(), r)
	if err != nil {
		h.fail(c, err)
		return
	}
	r.ID = id
	c.JSON(http.StatusCreated, gin.H{"id": id, "result": r})
}

// AnalyticsSummary returns study totals and weak topics
func (h *Handlers) AnalyticsSummary(c *gin.Context) {
	summary, err := h.host.Analytics.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
