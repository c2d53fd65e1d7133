package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"salonbook/internal/models"
)

func (db *DB) GetService(ctx context.Context, id string) (*models.Service, error) {
	row := db.QueryRowContext(ctx,
		`SELECT id, provider_id, name, duration_minutes, price, active, created_at, updated_at
		 FROM services WHERE id = ?`, id)

	svc := &models.Service{}
	err := row.Scan(&svc.ID, &svc.ProviderID, &svc.Name, &svc.DurationMinutes,
		&svc.Price, &svc.Active, &svc.CreatedAt, &svc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

func (db *DB) ListServices(ctx context.Context, providerID string) ([]*models.Service, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, provider_id, name, duration_minutes, price, active, created_at, updated_at
		 FROM services WHERE provider_id = ? AND active = 1 ORDER BY name ASC`, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []*models.Service
	for rows.Next() {
		svc := &models.Service{}
		if err := rows.Scan(&svc.ID, &svc.ProviderID, &svc.Name, &svc.DurationMinutes,
			&svc.Price, &svc.Active, &svc.CreatedAt, &svc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, svc)
	}
	return services, rows.Err()
}

func (db *DB) UpsertService(ctx context.Context, svc *models.Service) error {
	now := time.Now()
	_, err := db.ExecContext(ctx,
		`INSERT INTO services (id, provider_id, name, duration_minutes, price, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     duration_minutes = excluded.duration_minutes,
		     price = excluded.price,
		     active = excluded.active,
		     updated_at = excluded.updated_at`,
		svc.ID, svc.ProviderID, svc.Name, svc.DurationMinutes, svc.Price, svc.Active, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert service: %w", err)
	}
	svc.UpdatedAt = now
	return nil
}

func (db *DB) DeactivateService(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE services SET active = 0, updated_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to deactivate service: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
