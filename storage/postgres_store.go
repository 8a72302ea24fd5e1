package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"

	"phone-sales-dashboard/models"
	"phone-sales-dashboard/utils"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const uniqueViolation = "23505"

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
)

// PostgresStore persists the sales schema and answers the dashboard's
// fact and catalog queries.
type PostgresStore struct {
	db     *sql.DB
	logger *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// connections, applies pending migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	retry := &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond, Logger: logger}
	if err := retry.Do(ctx, "postgres-ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	ps := &PostgresStore{db: db, logger: logger}
	if err := ps.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(ps.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		ps.logger.Info("[postgres] Schema up to date")
		return nil
	}
	if err != nil {
		return err
	}
	version, _, _ := m.Version()
	ps.logger.Info("[postgres] Applied migrations up to version %d", version)
	return nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

type modelRef struct {
	brandID int64
	name    string
}

// Ingest stores records in one transaction. Brands and models are created
// only when their natural key is absent; every record appends one sale.
func (ps *PostgresStore) Ingest(ctx context.Context, batchID string, records []*models.SaleRecord) (models.IngestResult, error) {
	res := models.IngestResult{BatchID: batchID}
	if len(records) == 0 {
		return res, nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	brandIDs, err := loadBrandIDs(ctx, tx)
	if err != nil {
		return res, err
	}
	modelIDs := make(map[modelRef]int64)

	sales := make([]models.Sale, 0, len(records))
	for _, r := range records {
		brandID, ok := brandIDs[r.Brand]
		if !ok {
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO brands (name) VALUES ($1)
				 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
				 RETURNING id`, r.Brand).Scan(&brandID); err != nil {
				return res, fmt.Errorf("postgres: insert brand %q: %w", r.Brand, err)
			}
			brandIDs[r.Brand] = brandID
			res.NewBrands++
		}

		ref := modelRef{brandID: brandID, name: r.Model.Name}
		modelID, ok := modelIDs[ref]
		if !ok {
			var created bool
			modelID, created, err = findOrCreateModel(ctx, tx, brandID, r.Model)
			if err != nil {
				return res, err
			}
			modelIDs[ref] = modelID
			if created {
				res.NewModels++
			}
		}

		sales = append(sales, models.Sale{
			ModelID:      modelID,
			BatchID:      batchID,
			UnitsSold:    r.UnitsSold,
			TotalRevenue: r.TotalRevenue,
			AveragePrice: r.AveragePrice,
			Region:       r.Region,
			Channel:      r.Channel,
			Year:         r.Year,
		})
	}

	const batchSize = 50
	for i := 0; i < len(sales); i += batchSize {
		end := i + batchSize
		if end > len(sales) {
			end = len(sales)
		}
		if err := insertSalesBatch(ctx, tx, sales[i:end]); err != nil {
			return res, err
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("postgres: commit: %w", err)
	}
	res.Rows = len(sales)
	return res, nil
}

func loadBrandIDs(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM brands`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load brands: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("postgres: scan brand: %w", err)
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

func findOrCreateModel(ctx context.Context, tx *sql.Tx, brandID int64, m models.PhoneModel) (int64, bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM phone_models WHERE brand_id = $1 AND model_name = $2`,
		brandID, m.Name).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("postgres: find model %q: %w", m.Name, err)
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO phone_models
			(brand_id, model_name, ram, storage, camera, battery, processor, os, display_size, launch_year)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		brandID, m.Name, m.RAM, m.Storage, m.Camera, m.Battery, m.Processor, m.OS, m.DisplaySize, m.LaunchYear,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("postgres: insert model %q: %w", m.Name, err)
	}
	return id, true, nil
}

func insertSalesBatch(ctx context.Context, tx *sql.Tx, batch []models.Sale) error {
	const cols = 8
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, s := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			s.ModelID, s.BatchID, s.UnitsSold, s.TotalRevenue, s.AveragePrice, s.Region, s.Channel, s.Year)
	}

	query := fmt.Sprintf(`
		INSERT INTO sales (model_id, batch_id, units_sold, total_revenue, average_price, region, channel, year)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert sales: %w", err)
	}
	return nil
}

// whereClause renders the applied filters as SQL conditions with
// positional arguments.
func whereClause(f models.Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, v interface{}) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Brand != "" {
		add("b.name = $%d", f.Brand)
	}
	if f.Model != "" {
		add("m.model_name = $%d", f.Model)
	}
	if f.Channel != "" {
		add("s.channel = $%d", f.Channel)
	}
	if f.Region != "" {
		add("s.region = $%d", f.Region)
	}
	if f.Year != nil {
		add("s.year = $%d", *f.Year)
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		add("s.average_price >= $%d", *f.MinPrice)
		add("s.average_price <= $%d", *f.MaxPrice)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const factJoin = `
	FROM sales s
	JOIN phone_models m ON m.id = s.model_id
	JOIN brands b ON b.id = m.brand_id`

// FetchFacts returns the sales matching f, joined with model and brand
// attributes, in insertion order.
func (ps *PostgresStore) FetchFacts(ctx context.Context, f models.Filter) ([]models.FactRow, error) {
	where, args := whereClause(f)
	query := `SELECT b.name, m.model_name, m.ram, m.storage, m.battery,
		s.units_sold, s.total_revenue, s.average_price, s.region, s.channel, s.year` +
		factJoin + where + ` ORDER BY s.id`

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch facts: %w", err)
	}
	defer rows.Close()

	facts := make([]models.FactRow, 0)
	for rows.Next() {
		var r models.FactRow
		if err := rows.Scan(&r.Brand, &r.Model, &r.RAM, &r.Storage, &r.Battery,
			&r.UnitsSold, &r.TotalRevenue, &r.AveragePrice, &r.Region, &r.Channel, &r.Year); err != nil {
			return nil, fmt.Errorf("postgres: scan fact: %w", err)
		}
		facts = append(facts, r)
	}
	return facts, rows.Err()
}

// FetchCatalog lists all brand names and distinct model names, sorted.
func (ps *PostgresStore) FetchCatalog(ctx context.Context) (models.Catalog, error) {
	brands, err := ps.queryStrings(ctx, `SELECT name FROM brands ORDER BY name`)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("postgres: fetch brands: %w", err)
	}
	modelNames, err := ps.queryStrings(ctx, `SELECT DISTINCT model_name FROM phone_models ORDER BY model_name`)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("postgres: fetch models: %w", err)
	}
	return models.Catalog{Brands: brands, Models: modelNames}, nil
}

func (ps *PostgresStore) queryStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := ps.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FetchExportRows retrieves the flat export view, optionally filtered.
func (ps *PostgresStore) FetchExportRows(ctx context.Context, f models.Filter) ([]models.ExportRow, error) {
	where, args := whereClause(f)
	query := `SELECT b.name, m.model_name, m.ram, m.storage, m.camera, m.battery, m.processor,
		s.average_price, s.units_sold, s.region, s.channel, s.year` +
		factJoin + where + ` ORDER BY s.id`

	rows, err := ps.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch export rows: %w", err)
	}
	defer rows.Close()

	var out []models.ExportRow
	for rows.Next() {
		var r models.ExportRow
		if err := rows.Scan(&r.Brand, &r.Model, &r.RAM, &r.Storage, &r.Camera, &r.Battery, &r.Processor,
			&r.Price, &r.UnitsSold, &r.Region, &r.Channel, &r.Year); err != nil {
			return nil, fmt.Errorf("postgres: scan export row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateUser inserts a user. Email uniqueness is enforced by the database
// and reported as ErrUserExists.
func (ps *PostgresStore) CreateUser(ctx context.Context, email, passwordHash, role string) (*models.User, error) {
	u := &models.User{Email: email, PasswordHash: passwordHash, Role: role}
	err := ps.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		email, passwordHash, role).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("postgres: create user: %w", err)
	}
	return u, nil
}

func (ps *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return ps.getUser(ctx, `SELECT id, email, password_hash, role FROM users WHERE email = $1`, email)
}

func (ps *PostgresStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return ps.getUser(ctx, `SELECT id, email, password_hash, role FROM users WHERE id = $1`, id)
}

func (ps *PostgresStore) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	u := &models.User{}
	err := ps.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get user: %w", err)
	}
	return u, nil
}
