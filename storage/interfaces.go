package storage

import (
	"context"

	"phone-sales-dashboard/models"
)

// ExportSource is the read side used by the export paths.
type ExportSource interface {
	FetchExportRows(ctx context.Context, f models.Filter) ([]models.ExportRow, error)
}

// UserStore is the persistence needed by signup and login.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, role string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}
