package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/platform/logger"
	"github.com/pmackinlay/taskboard/internal/store"
)

// GroupStore implements the store.GroupStore interface using a PostgreSQL
// database as the storage backend. Membership lives in the group_members
// join table.
type GroupStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewGroupStore creates a new PostgreSQL implementation of the GroupStore
// interface.
func NewGroupStore(db store.DBTX, logger *slog.Logger) *GroupStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GroupStore{
		db:     db,
		logger: logger.With(slog.String("component", "group_store")),
	}
}

var _ store.GroupStore = (*GroupStore)(nil)

// WithTx implements store.GroupStore.WithTx
func (s *GroupStore) WithTx(tx *sql.Tx) store.GroupStore {
	return &GroupStore{db: tx, logger: s.logger}
}

// Create implements store.GroupStore.Create
func (s *GroupStore) Create(ctx context.Context, group *domain.Group) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := group.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO groups (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		group.ID, group.Name, group.CreatedAt, group.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrGroupNameExists
		}
		log.Error("failed to create group",
			slog.String("error", err.Error()),
			slog.String("group_id", group.ID.String()))
		return err
	}

	log.Info("group created",
		slog.String("group_id", group.ID.String()),
		slog.String("name", group.Name))
	return nil
}

// GetByID implements store.GroupStore.GetByID
func (s *GroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return s.getBy(ctx, `WHERE id = $1`, id)
}

// GetByName implements store.GroupStore.GetByName
func (s *GroupStore) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	return s.getBy(ctx, `WHERE name = $1`, name)
}

func (s *GroupStore) getBy(ctx context.Context, where string, arg any) (*domain.Group, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, created_at, updated_at
		FROM groups
	` + where

	var group domain.Group
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrGroupNotFound
		}
		log.Error("failed to get group", slog.String("error", err.Error()))
		return nil, err
	}

	return &group, nil
}

// List implements store.GroupStore.List
func (s *GroupStore) List(ctx context.Context) ([]*domain.Group, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, name, created_at, updated_at
		FROM groups
		ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list groups", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var groups []*domain.Group
	for rows.Next() {
		var group domain.Group
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, &group)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return groups, nil
}

// Delete implements store.GroupStore.Delete
func (s *GroupStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete group",
			slog.String("error", err.Error()),
			slog.String("group_id", id.String()))
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrGroupNotFound
	}

	return nil
}

// AddMember implements store.GroupStore.AddMember
func (s *GroupStore) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO group_members (group_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, groupID, userID, time.Now().UTC())
	if err != nil {
		if isForeignKeyViolation(err, "group_id") {
			return store.ErrGroupNotFound
		}
		if isForeignKeyViolation(err, "user_id") {
			return store.ErrUserNotFound
		}
		log.Error("failed to add group member",
			slog.String("error", err.Error()),
			slog.String("group_id", groupID.String()),
			slog.String("user_id", userID.String()))
		return err
	}

	log.Info("group member added",
		slog.String("group_id", groupID.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// IsMember implements store.GroupStore.IsMember
func (s *GroupStore) IsMember(ctx context.Context, userID uuid.UUID, groupName string) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM group_members gm
			JOIN groups g ON g.id = gm.group_id
			WHERE gm.user_id = $1 AND g.name = $2
		)
	`
	var member bool
	if err := s.db.QueryRowContext(ctx, query, userID, groupName).Scan(&member); err != nil {
		log.Error("failed to check group membership",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("group", groupName))
		return false, err
	}

	return member, nil
}

// ListMemberGroups implements store.GroupStore.ListMemberGroups
func (s *GroupStore) ListMemberGroups(ctx context.Context, userID uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT g.name
		FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.name ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list member groups",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return names, nil
}
