// Package api is the outermost boundary of the deck store. It exposes the
// named operations a front end invokes, decodes their JSON payloads and
// renders every failure as a plain message.
package api

//go:generate mockgen -source=api.go -destination=mock/store_mock.go -package=mock_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/conorfennell/testdeck/internal/domain"
	"github.com/conorfennell/testdeck/internal/storage"
)

// Store is the persistence the operations run against.
type Store interface {
	CreateCard(ctx context.Context, card domain.Card) (int64, error)
	ListCards(ctx context.Context) ([]domain.Card, error)
	ListCardsBySubject(ctx context.Context, subject string) ([]domain.Card, error)
	UpdateCard(ctx context.Context, id int64, card domain.Card) error
	DeleteCard(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, session domain.Session) (int64, error)
	EndSession(ctx context.Context, sessionID int64, correctAnswers int) error
	RecordAttempt(ctx context.Context, attempt domain.Attempt) (int64, error)
	SubjectStats(ctx context.Context) ([]domain.SubjectStat, error)
	DailyStats(ctx context.Context, days int) ([]domain.DailyStat, error)
}

// Operation names accepted by Invoke.
const (
	OpCreateCard        = "create_card"
	OpGetAllCards       = "get_all_cards"
	OpGetCardsBySubject = "get_cards_by_subject"
	OpUpdateCard        = "update_card"
	OpDeleteCard        = "delete_card"
	OpCreateSession     = "create_session"
	OpEndSession        = "end_session"
	OpRecordAttempt     = "record_attempt"
	OpGetSubjectStats   = "get_subject_stats"
	OpGetDailyStats     = "get_daily_stats"
)

// Response is what every operation returns: either Data or an Error message.
type Response struct {
	OK    bool   `json:"ok"`
	Data  any    `json:"data"`
	Error string `json:"error,omitempty"`
}

// IDResult carries the id of a newly created row.
type IDResult struct {
	ID int64 `json:"id"`
}

type (
	CardRequest struct {
		Card domain.Card `json:"card"`
	}
	SubjectRequest struct {
		Subject string `json:"subject"`
	}
	UpdateCardRequest struct {
		ID   int64       `json:"id"`
		Card domain.Card `json:"card"`
	}
	IDRequest struct {
		ID int64 `json:"id"`
	}
	SessionRequest struct {
		Session domain.Session `json:"session"`
	}
	EndSessionRequest struct {
		SessionID      int64 `json:"session_id"`
		CorrectAnswers int   `json:"correct_answers"`
	}
	AttemptRequest struct {
		Attempt domain.Attempt `json:"attempt"`
	}
	DailyStatsRequest struct {
		Days int `json:"days"`
	}
)

// Handler dispatches named operations to a Store.
type Handler struct {
	store       Store
	defaultDays int
	log         *zap.Logger
	ops         map[string]func(context.Context, json.RawMessage) Response
}

// NewHandler builds a Handler. defaultDays is the daily stats window used
// when a request does not give one.
func NewHandler(store Store, defaultDays int, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{store: store, defaultDays: defaultDays, log: log}
	h.ops = map[string]func(context.Context, json.RawMessage) Response{
		OpCreateCard:        decoded(h.CreateCard),
		OpGetAllCards:       func(ctx context.Context, _ json.RawMessage) Response { return h.GetAllCards(ctx) },
		OpGetCardsBySubject: decoded(h.GetCardsBySubject),
		OpUpdateCard:        decoded(h.UpdateCard),
		OpDeleteCard:        decoded(h.DeleteCard),
		OpCreateSession:     decoded(h.CreateSession),
		OpEndSession:        decoded(h.EndSession),
		OpRecordAttempt:     decoded(h.RecordAttempt),
		OpGetSubjectStats:   func(ctx context.Context, _ json.RawMessage) Response { return h.GetSubjectStats(ctx) },
		OpGetDailyStats:     decoded(h.GetDailyStats),
	}
	return h
}

// decoded adapts a typed operation to a raw JSON payload.
// An empty payload decodes to the zero request.
func decoded[T any](fn func(context.Context, T) Response) func(context.Context, json.RawMessage) Response {
	return func(ctx context.Context, payload json.RawMessage) Response {
		var req T
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return Response{Error: fmt.Sprintf("invalid request payload: %v", err)}
			}
		}
		return fn(ctx, req)
	}
}

// Invoke runs the named operation with a JSON payload.
func (h *Handler) Invoke(ctx context.Context, op string, payload json.RawMessage) Response {
	fn, found := h.ops[op]
	if !found {
		return Response{Error: fmt.Sprintf("unknown operation %q", op)}
	}
	return fn(ctx, payload)
}

func (h *Handler) CreateCard(ctx context.Context, req CardRequest) Response {
	id, err := h.store.CreateCard(ctx, req.Card)
	if err != nil {
		return h.fail(OpCreateCard, err)
	}
	return ok(IDResult{ID: id})
}

func (h *Handler) GetAllCards(ctx context.Context) Response {
	cards, err := h.store.ListCards(ctx)
	if err != nil {
		return h.fail(OpGetAllCards, err)
	}
	return ok(cards)
}

func (h *Handler) GetCardsBySubject(ctx context.Context, req SubjectRequest) Response {
	cards, err := h.store.ListCardsBySubject(ctx, req.Subject)
	if err != nil {
		return h.fail(OpGetCardsBySubject, err)
	}
	return ok(cards)
}

func (h *Handler) UpdateCard(ctx context.Context, req UpdateCardRequest) Response {
	if err := h.store.UpdateCard(ctx, req.ID, req.Card); err != nil {
		return h.fail(OpUpdateCard, err)
	}
	return Response{OK: true}
}

func (h *Handler) DeleteCard(ctx context.Context, req IDRequest) Response {
	if err := h.store.DeleteCard(ctx, req.ID); err != nil {
		return h.fail(OpDeleteCard, err)
	}
	return Response{OK: true}
}

func (h *Handler) CreateSession(ctx context.Context, req SessionRequest) Response {
	id, err := h.store.CreateSession(ctx, req.Session)
	if err != nil {
		return h.fail(OpCreateSession, err)
	}
	return ok(IDResult{ID: id})
}

func (h *Handler) EndSession(ctx context.Context, req EndSessionRequest) Response {
	if err := h.store.EndSession(ctx, req.SessionID, req.CorrectAnswers); err != nil {
		return h.fail(OpEndSession, err)
	}
	return Response{OK: true}
}

func (h *Handler) RecordAttempt(ctx context.Context, req AttemptRequest) Response {
	id, err := h.store.RecordAttempt(ctx, req.Attempt)
	if err != nil {
		return h.fail(OpRecordAttempt, err)
	}
	return ok(IDResult{ID: id})
}

func (h *Handler) GetSubjectStats(ctx context.Context) Response {
	stats, err := h.store.SubjectStats(ctx)
	if err != nil {
		return h.fail(OpGetSubjectStats, err)
	}
	return ok(stats)
}

func (h *Handler) GetDailyStats(ctx context.Context, req DailyStatsRequest) Response {
	days := req.Days
	if days == 0 {
		days = h.defaultDays
	}
	stats, err := h.store.DailyStats(ctx, days)
	if err != nil {
		return h.fail(OpGetDailyStats, err)
	}
	return ok(stats)
}

func ok(data any) Response {
	return Response{OK: true, Data: data}
}

// fail is the only place an error becomes a message.
func (h *Handler) fail(op string, err error) Response {
	kind := storage.KindOf(err)
	fields := []zap.Field{zap.String("op", op), zap.Stringer("kind", kind), zap.Error(err)}
	if errors.Is(err, context.Canceled) || kind == storage.KindInvalid || kind == storage.KindNotFound {
		h.log.Debug("operation rejected", fields...)
	} else {
		h.log.Warn("operation failed", fields...)
	}
	return Response{Error: err.Error()}
}
