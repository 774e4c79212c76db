package gateway

import (
	"context"
	"database/sql"
	"errors"

	"gmclaw/internal/db"
	"gmclaw/internal/models"
)

type NewSkill = db.CreateSkillParams

func (g *Gateway) RegisterSkill(ctx context.Context, skill NewSkill) (*models.Skill, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	created, err := db.CreateSkill(ctx, database, skill, g.now())
	if err != nil {
		return nil, g.fail("registerSkill", err)
	}
	return created, nil
}

func (g *Gateway) ListSkills(ctx context.Context) ([]models.Skill, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return []models.Skill{}, err
	}
	out, err := db.ListSkills(ctx, database)
	if err != nil {
		return []models.Skill{}, g.fail("getAllSkills", err)
	}
	return out, nil
}

// InstallSkill counts one install of the skill. Unknown ids return nil, nil.
func (g *Gateway) InstallSkill(ctx context.Context, id string) (*models.Skill, error) {
	database, err := g.Connect(ctx)
	if err != nil {
		return nil, err
	}
	skill, err := db.IncrementSkillInstalls(ctx, database, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, g.fail("installSkill", err)
	}
	return skill, nil
}
