package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"gmclaw/internal/models"
)

type CreateSkillParams struct {
	Name        string
	Description string
	URL         string
	Version     *string
	Category    *string
}

func CreateSkill(ctx context.Context, database *sql.DB, p CreateSkillParams, now time.Time) (*models.Skill, error) {
	skill := &models.Skill{
		ID:          uuid.NewString(),
		Name:        p.Name,
		Description: p.Description,
		URL:         p.URL,
		Version:     trimmed(p.Version),
		Category:    trimmed(p.Category),
		CreatedAt:   FormatTimestamp(now),
	}
	if _, err := database.ExecContext(ctx, `
INSERT INTO skills (id, name, description, url, version, category, created_at, installs)
VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		skill.ID, skill.Name, skill.Description, skill.URL,
		nullableString(skill.Version), nullableString(skill.Category), skill.CreatedAt); err != nil {
		return nil, err
	}
	return skill, nil
}

func ListSkills(ctx context.Context, database *sql.DB) ([]models.Skill, error) {
	rows, err := database.QueryContext(ctx, `
SELECT id, name, description, url, version, category, created_at, installs
FROM skills
ORDER BY installs DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Skill, 0)
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// IncrementSkillInstalls bumps the install counter of one skill and returns
// the updated row, or sql.ErrNoRows for an unknown id.
func IncrementSkillInstalls(ctx context.Context, database *sql.DB, id string) (*models.Skill, error) {
	row := database.QueryRowContext(ctx, `
UPDATE skills
SET installs = installs + 1
WHERE id = ?
RETURNING id, name, description, url, version, category, created_at, installs`, id)
	return scanSkill(row)
}

func scanSkill(row rowScanner) (*models.Skill, error) {
	var s models.Skill
	var version, category sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.URL, &version, &category, &s.CreatedAt, &s.Installs); err != nil {
		return nil, err
	}
	s.Version = stringPtr(version)
	s.Category = stringPtr(category)
	return &s, nil
}
