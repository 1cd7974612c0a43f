package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"formulab/internal/domain"
	"formulab/internal/port"
)

type ruleRepo struct {
	db *sqlx.DB
}

// NewRuleRepo creates a PostgreSQL-backed RuleRepository.
func NewRuleRepo(db *sqlx.DB) port.RuleRepository {
	return &ruleRepo{db: db}
}

func (r *ruleRepo) Create(ctx context.Context, rule *domain.ValidationRule) error {
	config := rule.Config
	if len(config) == 0 {
		config = []byte("{}")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO validation_rules (
			id, brand, type, rule_name, kind, config, severity,
			is_builtin, builtin_key, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rule.ID, rule.Brand, rule.Type, rule.RuleName, rule.Kind, config,
		rule.Severity, rule.IsBuiltin, rule.BuiltinKey, rule.IsActive, rule.CreatedAt)
	if err != nil {
		return fmt.Errorf("ruleRepo.Create: %w", err)
	}
	return nil
}

func (r *ruleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRule, error) {
	var rule domain.ValidationRule
	err := r.db.GetContext(ctx, &rule, "SELECT * FROM validation_rules WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("ruleRepo.GetByID: %w", err)
	}
	return &rule, nil
}

func (r *ruleRepo) ListActive(ctx context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error) {
	var rules []domain.ValidationRule
	err := r.db.SelectContext(ctx, &rules, `
		SELECT * FROM validation_rules
		WHERE is_active = TRUE AND brand = $1 AND (type = '' OR type = $2)
		ORDER BY rule_name`,
		brand, paintType)
	if err != nil {
		return nil, fmt.Errorf("ruleRepo.ListActive: %w", err)
	}
	return rules, nil
}

func (r *ruleRepo) ListBuiltinKeys(ctx context.Context, brand domain.Brand, paintType string) ([]string, error) {
	var keys []string
	err := r.db.SelectContext(ctx, &keys, `
		SELECT builtin_key FROM validation_rules
		WHERE is_builtin = TRUE AND brand = $1 AND type = $2 AND builtin_key <> ''`,
		brand, paintType)
	if err != nil {
		return nil, fmt.Errorf("ruleRepo.ListBuiltinKeys: %w", err)
	}
	return keys, nil
}

func (r *ruleRepo) Update(ctx context.Context, rule *domain.ValidationRule) error {
	config := rule.Config
	if len(config) == 0 {
		config = []byte("{}")
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE validation_rules SET
			rule_name = $1, kind = $2, config = $3, severity = $4, is_active = $5
		WHERE id = $6`,
		rule.RuleName, rule.Kind, config, rule.Severity, rule.IsActive, rule.ID)
	if err != nil {
		return fmt.Errorf("ruleRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ruleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM validation_rules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("ruleRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
