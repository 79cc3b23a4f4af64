package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jaegodata/unsold-server/internal/models"
)

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// User operations
	GetUser(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, username, password string) error
	SetAdminRoles(ctx context.Context, usernames []string) error

	// Product operations
	CreateProduct(ctx context.Context, product *models.Product) (bool, error)
	GetProduct(ctx context.Context, key string) (*models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	UpdateNote(ctx context.Context, key, note string) (bool, error)
	DeleteProduct(ctx context.Context, key string) (bool, error)
	SumPrices(ctx context.Context) (int64, error)

	// Activity log operations
	AppendLog(ctx context.Context, entry *models.LogEntry) error
	RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error)
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// User repository methods
func (r *PostgresRepository) GetUser(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT * FROM users WHERE username = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, username, password string) error {
	query := `UPDATE users SET password = $1 WHERE username = $2`

	_, err := r.db.ExecContext(ctx, query, password, username)
	return err
}

// SetAdminRoles promotes the given usernames to the admin role. Rows for
// usernames that don't exist yet are left to out-of-band provisioning.
func (r *PostgresRepository) SetAdminRoles(ctx context.Context, usernames []string) error {
	if len(usernames) == 0 {
		return nil
	}

	query := `UPDATE users SET role = $1 WHERE username = ANY($2)`

	_, err := r.db.ExecContext(ctx, query, models.RoleAdmin, pq.Array(usernames))
	return err
}

// Product repository methods

// CreateProduct inserts the product if no row with the same key exists.
// It returns false when the key is already taken, which makes the
// duplicate check and the write a single conditional statement instead of
// a racy read-then-write.
func (r *PostgresRepository) CreateProduct(ctx context.Context, product *models.Product) (bool, error) {
	query := `
		INSERT INTO products ("key", product_number, rfid, price, registered_at, note)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ("key") DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		product.Key, product.ProductNumber, product.RFID,
		product.Price, product.RegisteredAt, product.Note)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, key string) (*models.Product, error) {
	query := `SELECT * FROM products WHERE "key" = $1`

	var product models.Product
	err := r.db.GetContext(ctx, &product, query, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Product not found
		}
		return nil, err
	}

	return &product, nil
}

// SearchProducts returns every product whose product number contains the
// query as a substring. The query must already be upper-cased. Results come
// back in insertion order (registration time, then key) so the service can
// apply the user-selected sort on top.
func (r *PostgresRepository) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	stmt := `
		SELECT * FROM products
		WHERE POSITION($1 IN UPPER(product_number)) > 0
		ORDER BY registered_at, "key"
	`

	products := []models.Product{}
	err := r.db.SelectContext(ctx, &products, stmt, query)
	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *PostgresRepository) UpdateNote(ctx context.Context, key, note string) (bool, error) {
	query := `UPDATE products SET note = $1 WHERE "key" = $2`

	res, err := r.db.ExecContext(ctx, query, note, key)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, key string) (bool, error) {
	query := `DELETE FROM products WHERE "key" = $1`

	res, err := r.db.ExecContext(ctx, query, key)
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// SumPrices totals the price of every registered product. Full scan,
// acceptable at the expected collection size.
func (r *PostgresRepository) SumPrices(ctx context.Context) (int64, error) {
	query := `SELECT COALESCE(SUM(price), 0) FROM products`

	var total int64
	err := r.db.GetContext(ctx, &total, query)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// Activity log repository methods

// AppendLog writes the entry at its timestamp key. An entry written in the
// same second replaces the previous one, matching the key's precision.
func (r *PostgresRepository) AppendLog(ctx context.Context, entry *models.LogEntry) error {
	query := `
		INSERT INTO logs (ts_key, actor, action, product_number, rfid, price)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (ts_key) DO UPDATE SET
			actor = EXCLUDED.actor,
			action = EXCLUDED.action,
			product_number = EXCLUDED.product_number,
			rfid = EXCLUDED.rfid,
			price = EXCLUDED.price
	`

	_, err := r.db.ExecContext(ctx, query,
		entry.TsKey, entry.Actor, entry.Action,
		entry.ProductNumber, entry.RFID, entry.Price)
	return err
}

func (r *PostgresRepository) RecentLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	query := `SELECT * FROM logs ORDER BY ts_key DESC LIMIT $1`

	entries := []models.LogEntry{}
	err := r.db.SelectContext(ctx, &entries, query, limit)
	if err != nil {
		return nil, err
	}

	return entries, nil
}
