package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"bossbounty/internal/adapter/repo/gorm/model"
	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.GameEvent, 0, len(events))
	for _, e := range events {
		payload := "{}"
		if len(e.Payload) > 0 {
			b, err := json.Marshal(e.Payload)
			if err != nil {
				return fmt.Errorf("encode %s payload: %w", e.Type, err)
			}
			payload = string(b)
		}
		rows = append(rows, model.GameEvent{
			Type:       e.Type,
			OccurredAt: e.OccurredAt,
			Payload:    payload,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r EventRepo) List(ctx context.Context, filter ports.EventFilter) ([]game.Event, error) {
	rows := []model.GameEvent{}
	query := r.db.WithContext(ctx).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "occurred_at"}, Desc: true},
				{Column: clause.Column{Name: "event_id"}, Desc: true},
			},
		})
	if !filter.From.IsZero() {
		query = query.Where("occurred_at >= ?", filter.From)
	}
	if !filter.Until.IsZero() {
		query = query.Where("occurred_at < ?", filter.Until)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]game.Event, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if row.Payload != "" {
			_ = json.Unmarshal([]byte(row.Payload), &payload)
		}
		out = append(out, game.Event{
			Type:       row.Type,
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
