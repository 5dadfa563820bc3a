package handlers

import (
	"github.com/uptrace/bun"

	"github.com/cgriffin/pitlane/sync"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db  *bun.DB
	orc *sync.Orchestrator
}

// New creates a Handler with the given database connection and orchestrator.
func New(db *bun.DB, orc *sync.Orchestrator) *Handler {
	return &Handler{db: db, orc: orc}
}
