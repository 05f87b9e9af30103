package database

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/jask/lifeops/internal/database/repository"
)

// DefaultDomains are the life areas every database starts with.
var DefaultDomains = []repository.Domain{
	{Name: "health", Label: "Health", Color: "#4CAF50"},
	{Name: "finance", Label: "Finance", Color: "#FF9800"},
	{Name: "study", Label: "Study", Color: "#2196F3"},
	{Name: "personal", Label: "Personal", Color: "#9C27B0"},
}

// SeedDefaults ensures baseline domains exist for new databases.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewDomainRepo(db)
	existing, err := repo.List(ctx)
	if err == nil && len(existing) > 0 {
		return nil
	}
	for idx, d := range DefaultDomains {
		d.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("domain:"+d.Name)).String()
		d.SortOrder = idx
		if err := repo.Upsert(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
