package game

import (
	"context"
	"log/slog"
	"math"

	"github.com/pechomax/pechomax-api/internal/httpapi"
	"github.com/pechomax/pechomax-api/internal/leaderboard"
	"github.com/pechomax/pechomax-api/internal/models"
	"github.com/pechomax/pechomax-api/internal/store"
)

// Engine applies the gamification rules on catch mutations: derive the
// point value, move the owner's cumulative score, and re-resolve the
// level tier. Catch write, score move and level assignment commit in one
// transaction; the leaderboard cache is updated after commit, best-effort.
type Engine struct {
	store *store.PostgresStore
	board *leaderboard.Board // optional
}

func NewEngine(st *store.PostgresStore, board *leaderboard.Board) *Engine {
	return &Engine{store: st, board: board}
}

// PointValue computes a catch's score contribution from the species point
// value and the measured length and weight.
func PointValue(speciesPoints int, length, weight float64) int {
	return int(math.Round(float64(speciesPoints) * length * weight))
}

// RecordCatch validates the species, derives the point value and commits
// the catch together with its score effect. Species lookup failure aborts
// before any mutation.
func (e *Engine) RecordCatch(ctx context.Context, username string, c *models.Catch) (*models.Catch, error) {
	sp, err := e.store.GetSpecies(ctx, c.SpeciesID)
	if err != nil {
		return nil, err
	}
	c.PointValue = PointValue(sp.PointValue, c.Length, c.Weight)

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback(ctx)
	txStore := e.store.WithTx(tx)

	created, err := txStore.CreateCatch(ctx, c)
	if err != nil {
		return nil, err
	}
	newScore, err := txStore.AddScore(ctx, c.UserID, c.PointValue)
	if err != nil {
		return nil, err
	}
	if err := txStore.AssignLevelForScore(ctx, c.UserID, newScore); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "commit transaction", err)
	}

	e.publishScore(ctx, c.UserID, username, newScore)
	return created, nil
}

// AmendCatch recomputes the point value for an edited catch and applies
// only the difference to the owner's score, so edits never double-count.
func (e *Engine) AmendCatch(ctx context.Context, username string, c *models.Catch) (*models.Catch, error) {
	sp, err := e.store.GetSpecies(ctx, c.SpeciesID)
	if err != nil {
		return nil, err
	}
	oldPoints := c.PointValue
	c.PointValue = PointValue(sp.PointValue, c.Length, c.Weight)
	delta := c.PointValue - oldPoints

	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "begin transaction", err)
	}
	defer tx.Rollback(ctx)
	txStore := e.store.WithTx(tx)

	updated, err := txStore.UpdateCatch(ctx, c)
	if err != nil {
		return nil, err
	}
	newScore, err := txStore.AddScore(ctx, c.UserID, delta)
	if err != nil {
		return nil, err
	}
	if err := txStore.AssignLevelForScore(ctx, c.UserID, newScore); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, httpapi.Wrap(httpapi.KindInternal, "commit transaction", err)
	}

	e.publishScore(ctx, c.UserID, username, newScore)
	return updated, nil
}

func (e *Engine) publishScore(ctx context.Context, userID, username string, score int) {
	if e.board == nil {
		return
	}
	if err := e.board.SetScore(ctx, userID, username, score); err != nil {
		slog.Warn("leaderboard update failed", "user_id", userID, "error", err)
	}
}
