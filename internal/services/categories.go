package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"finbot/internal/core"
	"finbot/internal/storage"
)

// Categories maps free-text tags to the global category dictionary,
// creating entries on first use. This is the only place categories are
// created implicitly, so the first-use race stays contained here.
type Categories struct {
	repo *storage.SQLiteRepository
}

func NewCategories(repo *storage.SQLiteRepository) *Categories {
	return &Categories{repo: repo}
}

// ResolveOrCreate returns the category for a tag and type, creating it
// with the type's default icon when missing. An empty tag resolves to
// nil without creating anything. A tag reused with the other type is a
// distinct entry; existing rows are never retyped.
func (s *Categories) ResolveOrCreate(ctx context.Context, tag string, typ core.TransactionType) (*core.Category, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return nil, nil
	}

	q := s.repo.Queries()

	c, err := q.GetCategory(ctx, tag, typ)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	if err := q.InsertCategoryIfAbsent(ctx, tag, typ, typ.Icon()); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Created category", "name", tag, "type", string(typ))

	c, err = q.GetCategory(ctx, tag, typ)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
