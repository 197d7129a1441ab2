// Package repository implements the persistence ports over PostgreSQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"profiled/internal/core/domain"
)

const pgUniqueViolation = "23505"

// PostgresRepository implements the profile, template and auth repository
// ports using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates and returns a new PostgresRepository instance.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const profileColumns = `id, owner_id, name, device_type, window_width, window_height,
	user_agent, country, custom_headers, extras, version, created_at, updated_at, deleted_at`

func (r *PostgresRepository) Create(ctx context.Context, p *domain.Profile) error {
	headers, extras, err := encodeProfileJSON(p)
	if err != nil {
		return err
	}

	query := `INSERT INTO profiles (` + profileColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULL)`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OwnerID, p.Name, string(p.DeviceType), p.WindowWidth, p.WindowHeight,
		p.UserAgent, countryValue(p.Country), headers, extras, p.Version, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		// The partial unique index over active rows is the authority on name
		// uniqueness; a racing insert surfaces here.
		return &domain.ConflictError{Name: p.Name}
	}
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, ownerID, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
	          WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`
	row := r.db.QueryRowContext(ctx, query, id, ownerID)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]domain.Profile, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM profiles WHERE owner_id = $1 AND deleted_at IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + profileColumns + ` FROM profiles
	          WHERE owner_id = $1 AND deleted_at IS NULL
	          ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, errQuery := r.db.QueryContext(ctx, query, ownerID, limit, offset)
	if errQuery != nil {
		return nil, 0, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var profiles []domain.Profile
	for rows.Next() {
		p, errScan := scanProfile(rows)
		if errScan != nil {
			return nil, 0, errScan
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}

// Update is the compare-and-swap over a profile row: the WHERE clause pins
// the expected version and active state, and the version increment happens in
// the same statement. Exactly one matched row means the swap won.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Profile, expectedVersion int) (bool, error) {
	headers, extras, err := encodeProfileJSON(p)
	if err != nil {
		return false, err
	}

	query := `UPDATE profiles
	          SET name = $1, device_type = $2, window_width = $3, window_height = $4,
	              user_agent = $5, country = $6, custom_headers = $7, extras = $8,
	              version = version + 1, updated_at = $9
	          WHERE id = $10 AND owner_id = $11 AND version = $12 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query,
		p.Name, string(p.DeviceType), p.WindowWidth, p.WindowHeight,
		p.UserAgent, countryValue(p.Country), headers, extras, p.UpdatedAt,
		p.ID, p.OwnerID, expectedVersion)
	if isUniqueViolation(err) {
		return false, &domain.ConflictError{Name: p.Name}
	}
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, ownerID, id string) (bool, error) {
	now := time.Now().UTC()
	query := `UPDATE profiles SET deleted_at = $1, updated_at = $1
	          WHERE id = $2 AND owner_id = $3 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, now, id, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PostgresRepository) NameExists(ctx context.Context, ownerID, name, excludeID string) (bool, error) {
	var exists bool
	if excludeID != "" {
		query := `SELECT EXISTS(SELECT 1 FROM profiles
		          WHERE owner_id = $1 AND LOWER(name) = LOWER($2) AND deleted_at IS NULL AND id <> $3)`
		err := r.db.QueryRowContext(ctx, query, ownerID, name, excludeID).Scan(&exists)
		return exists, err
	}
	query := `SELECT EXISTS(SELECT 1 FROM profiles
	          WHERE owner_id = $1 AND LOWER(name) = LOWER($2) AND deleted_at IS NULL)`
	err := r.db.QueryRowContext(ctx, query, ownerID, name).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- templates ---

func (r *PostgresRepository) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	query := `SELECT id, name, description, data, version, created_at, updated_at
	          FROM templates ORDER BY name ASC`
	rows, errQuery := r.db.QueryContext(ctx, query)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var templates []domain.Template
	for rows.Next() {
		t, errScan := scanTemplate(rows)
		if errScan != nil {
			return nil, errScan
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (r *PostgresRepository) GetTemplateByID(ctx context.Context, id string) (*domain.Template, error) {
	query := `SELECT id, name, description, data, version, created_at, updated_at
	          FROM templates WHERE id = $1`
	t, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) CreateTemplate(ctx context.Context, t *domain.Template) error {
	data, err := json.Marshal(t.Data)
	if err != nil {
		return fmt.Errorf("encoding template data: %w", err)
	}
	query := `INSERT INTO templates (id, name, description, data, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.db.ExecContext(ctx, query, t.ID, t.Name, t.Description, data, t.Version, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *PostgresRepository) CountTemplates(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count)
	return count, err
}

// --- owners and API keys ---

func (r *PostgresRepository) GetAPIKeyByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	query := `SELECT id, owner_id, key_hash, created_at, last_used_at FROM api_keys WHERE key_hash = $1`
	var k domain.APIKey
	var lastUsed sql.NullTime
	errRow := r.db.QueryRowContext(ctx, query, keyHash).Scan(&k.ID, &k.OwnerID, &k.KeyHash, &k.CreatedAt, &lastUsed)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	if lastUsed.Valid {
		k.LastUsedAt = &lastUsed.Time
	}
	return &k, nil
}

func (r *PostgresRepository) TouchAPIKey(ctx context.Context, id string) error {
	query := `UPDATE api_keys SET last_used_at = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	return err
}

func (r *PostgresRepository) CreateAPIKey(ctx context.Context, key *domain.APIKey) error {
	query := `INSERT INTO api_keys (id, owner_id, key_hash, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.db.ExecContext(ctx, query, key.ID, key.OwnerID, key.KeyHash, key.CreatedAt)
	return err
}

func (r *PostgresRepository) ListAPIKeys(ctx context.Context, ownerID string) ([]domain.APIKey, error) {
	query := `SELECT id, owner_id, key_hash, created_at, last_used_at FROM api_keys WHERE owner_id = $1 ORDER BY created_at ASC`
	rows, errQuery := r.db.QueryContext(ctx, query, ownerID)
	if errQuery != nil {
		return nil, errQuery
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			log.Printf("failed to close rows: %v", errClose)
		}
	}()

	var keys []domain.APIKey
	for rows.Next() {
		var k domain.APIKey
		var lastUsed sql.NullTime
		if errScan := rows.Scan(&k.ID, &k.OwnerID, &k.KeyHash, &k.CreatedAt, &lastUsed); errScan != nil {
			return nil, errScan
		}
		if lastUsed.Valid {
			k.LastUsedAt = &lastUsed.Time
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *PostgresRepository) DeleteAPIKey(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) GetOwnerByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	query := `SELECT id, email, is_active, created_at, updated_at FROM owners WHERE email = $1`
	var o domain.Owner
	errRow := r.db.QueryRowContext(ctx, query, email).Scan(&o.ID, &o.Email, &o.Active, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(errRow, sql.ErrNoRows) {
		return nil, nil
	}
	if errRow != nil {
		return nil, errRow
	}
	return &o, nil
}

func (r *PostgresRepository) CreateOwner(ctx context.Context, owner *domain.Owner) error {
	query := `INSERT INTO owners (id, email, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, owner.ID, owner.Email, owner.Active, owner.CreatedAt, owner.UpdatedAt)
	return err
}

// --- row helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var p domain.Profile
	var deviceType string
	var country sql.NullString
	var deletedAt sql.NullTime
	var headers, extras []byte

	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &deviceType, &p.WindowWidth, &p.WindowHeight,
		&p.UserAgent, &country, &headers, &extras, &p.Version, &p.CreatedAt, &p.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}

	p.DeviceType = domain.DeviceType(deviceType)
	if country.Valid {
		p.Country = &country.String
	}
	if deletedAt.Valid {
		p.DeletedAt = &deletedAt.Time
	}
	if err := json.Unmarshal(headers, &p.CustomHeaders); err != nil {
		return nil, fmt.Errorf("decoding custom headers: %w", err)
	}
	if err := json.Unmarshal(extras, &p.Extras); err != nil {
		return nil, fmt.Errorf("decoding extras: %w", err)
	}
	return &p, nil
}

func scanTemplate(row rowScanner) (*domain.Template, error) {
	var t domain.Template
	var description, version sql.NullString
	var data []byte

	if err := row.Scan(&t.ID, &t.Name, &description, &data, &version, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Description = description.String
	t.Version = version.String
	if err := json.Unmarshal(data, &t.Data); err != nil {
		return nil, fmt.Errorf("decoding template data: %w", err)
	}
	return &t, nil
}

func encodeProfileJSON(p *domain.Profile) (headers, extras []byte, err error) {
	if headers, err = json.Marshal(p.CustomHeaders); err != nil {
		return nil, nil, fmt.Errorf("encoding custom headers: %w", err)
	}
	if extras, err = json.Marshal(p.Extras); err != nil {
		return nil, nil, fmt.Errorf("encoding extras: %w", err)
	}
	return headers, extras, nil
}

func countryValue(country *string) any {
	if country == nil {
		return nil
	}
	return *country
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
