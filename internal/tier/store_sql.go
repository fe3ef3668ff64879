package tier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shelfmark/shelfmark-web/internal/logger"
)

// SQLStore implements Store on SQLite or PostgreSQL through database/sql.
type SQLStore struct {
	db     *sql.DB
	dbType DBType
	logger *logger.Logger
}

// Compile-time check that SQLStore implements Store interface.
var _ Store = (*SQLStore)(nil)

// NewSQLStore opens the database behind connStr and bootstraps the schema.
// See parseConnectionString for the accepted formats.
func NewSQLStore(ctx context.Context, log *logger.Logger, connStr string) (*SQLStore, error) {
	if log == nil {
		log = logger.Production()
	}

	dbType, driver, dsn, err := parseConnectionString(connStr)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	configureConnectionPool(db, dbType)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStore{db: db, dbType: dbType, logger: log}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info("Connected to tier database", "type", string(dbType))
	return s, nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	timestampType := "TIMESTAMP"
	if s.dbType == DBTypePostgres {
		timestampType = "TIMESTAMPTZ"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			id TEXT PRIMARY KEY,
			membership_tier TEXT NOT NULL DEFAULT 'collector',
			is_lifetime_free BOOLEAN NOT NULL DEFAULT FALSE,
			benefit_expires_at ` + timestampType + `,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS tier_features (
			tier TEXT NOT NULL,
			feature TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			PRIMARY KEY (tier, feature)
		)`,
		`CREATE TABLE IF NOT EXISTS tier_limits (
			tier TEXT NOT NULL,
			limit_key TEXT NOT NULL,
			limit_value BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (tier, limit_key)
		)`,
		`CREATE TABLE IF NOT EXISTS user_usage (
			user_id TEXT NOT NULL,
			limit_key TEXT NOT NULL,
			current_value BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, limit_key)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tier_features_enabled ON tier_features(tier, enabled)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, rebind(s.dbType, query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, rebind(s.dbType, query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, rebind(s.dbType, query), args...)
}

func (s *SQLStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := s.queryRow(ctx, `
	SELECT id, membership_tier, is_lifetime_free, benefit_expires_at, is_admin
	FROM user_profiles
	WHERE id = ?
	`, userID)

	var p Profile
	var benefitExpiresAt sql.NullTime
	if err := row.Scan(&p.ID, &p.MembershipTier, &p.IsLifetimeFree, &benefitExpiresAt, &p.IsAdmin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", userID, err)
	}
	if benefitExpiresAt.Valid {
		t := benefitExpiresAt.Time
		p.BenefitExpiresAt = &t
	}
	return &p, nil
}

func (s *SQLStore) UpsertProfile(ctx context.Context, p *Profile) error {
	var benefitExpiresAt sql.NullTime
	if p.BenefitExpiresAt != nil {
		benefitExpiresAt = sql.NullTime{Time: p.BenefitExpiresAt.UTC(), Valid: true}
	}

	_, err := s.exec(ctx, `
	INSERT INTO user_profiles (id, membership_tier, is_lifetime_free, benefit_expires_at, is_admin)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		membership_tier = excluded.membership_tier,
		is_lifetime_free = excluded.is_lifetime_free,
		benefit_expires_at = excluded.benefit_expires_at,
		is_admin = excluded.is_admin
	`, p.ID, p.MembershipTier, p.IsLifetimeFree, benefitExpiresAt, p.IsAdmin)
	if err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", p.ID, err)
	}
	return nil
}

func (s *SQLStore) ListEnabledFeatures(ctx context.Context, tier string) ([]string, error) {
	rows, err := s.query(ctx, `
	SELECT feature FROM tier_features
	WHERE tier = ? AND enabled = ?
	ORDER BY feature
	`, tier, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list features for tier %s: %w", tier, err)
	}
	defer rows.Close()

	features := []string{}
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}

func (s *SQLStore) ListLimits(ctx context.Context, tier string) (map[string]int64, error) {
	rows, err := s.query(ctx, `SELECT limit_key, limit_value FROM tier_limits WHERE tier = ?`, tier)
	if err != nil {
		return nil, fmt.Errorf("failed to list limits for tier %s: %w", tier, err)
	}
	defer rows.Close()

	limits := make(map[string]int64)
	for rows.Next() {
		var key string
		var value int64
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		limits[key] = value
	}
	return limits, rows.Err()
}

func (s *SQLStore) GetFeature(ctx context.Context, tier, feature string) (*FeatureRow, error) {
	row := s.queryRow(ctx, `
	SELECT tier, feature, enabled FROM tier_features
	WHERE tier = ? AND feature = ?
	`, tier, feature)

	var f FeatureRow
	if err := row.Scan(&f.Tier, &f.Feature, &f.Enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (s *SQLStore) GetLimit(ctx context.Context, tier, limitKey string) (int64, error) {
	var value int64
	err := s.queryRow(ctx, `
	SELECT limit_value FROM tier_limits
	WHERE tier = ? AND limit_key = ?
	`, tier, limitKey).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return value, nil
}

func (s *SQLStore) ListFeatures(ctx context.Context) ([]FeatureRow, error) {
	rows, err := s.query(ctx, `SELECT tier, feature, enabled FROM tier_features ORDER BY tier, feature`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier features: %w", err)
	}
	defer rows.Close()

	result := []FeatureRow{}
	for rows.Next() {
		var f FeatureRow
		if err := rows.Scan(&f.Tier, &f.Feature, &f.Enabled); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (s *SQLStore) ListAllLimits(ctx context.Context) ([]LimitRow, error) {
	rows, err := s.query(ctx, `SELECT tier, limit_key, limit_value FROM tier_limits ORDER BY tier, limit_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tier limits: %w", err)
	}
	defer rows.Close()

	result := []LimitRow{}
	for rows.Next() {
		var l LimitRow
		if err := rows.Scan(&l.Tier, &l.LimitKey, &l.LimitValue); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (s *SQLStore) SetFeatureEnabled(ctx context.Context, tier, feature string, enabled bool) error {
	result, err := s.exec(ctx, `UPDATE tier_features SET enabled = ? WHERE tier = ? AND feature = ?`, enabled, tier, feature)
	if err != nil {
		return fmt.Errorf("failed to update feature %s for tier %s: %w", feature, tier, err)
	}
	return requireRow(result)
}

func (s *SQLStore) AddFeature(ctx context.Context, tier, feature string) error {
	result, err := s.exec(ctx, `
	INSERT INTO tier_features (tier, feature, enabled) VALUES (?, ?, ?)
	ON CONFLICT (tier, feature) DO NOTHING
	`, tier, feature, true)
	if err != nil {
		return fmt.Errorf("failed to add feature %s to tier %s: %w", feature, tier, err)
	}
	return requireRowOr(result, ErrAlreadyExists)
}

func (s *SQLStore) RemoveFeature(ctx context.Context, tier, feature string) error {
	result, err := s.exec(ctx, `DELETE FROM tier_features WHERE tier = ? AND feature = ?`, tier, feature)
	if err != nil {
		return fmt.Errorf("failed to remove feature %s from tier %s: %w", feature, tier, err)
	}
	return requireRow(result)
}

func (s *SQLStore) SetLimit(ctx context.Context, tier, limitKey string, value int64) error {
	result, err := s.exec(ctx, `UPDATE tier_limits SET limit_value = ? WHERE tier = ? AND limit_key = ?`, value, tier, limitKey)
	if err != nil {
		return fmt.Errorf("failed to update limit %s for tier %s: %w", limitKey, tier, err)
	}
	return requireRow(result)
}

func (s *SQLStore) GetUsage(ctx context.Context, userID string) (map[string]int64, error) {
	rows, err := s.query(ctx, `SELECT limit_key, current_value FROM user_usage WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage for %s: %w", userID, err)
	}
	defer rows.Close()

	usage := make(map[string]int64)
	for rows.Next() {
		var (
			key   string
			value int64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}
		usage[key] = value
	}
	return usage, rows.Err()
}

func (s *SQLStore) SetUsage(ctx context.Context, userID, limitKey string, value int64) error {
	_, err := s.exec(ctx, `
	INSERT INTO user_usage (user_id, limit_key, current_value) VALUES (?, ?, ?)
	ON CONFLICT (user_id, limit_key) DO UPDATE SET current_value = excluded.current_value
	`, userID, limitKey, value)
	if err != nil {
		return fmt.Errorf("failed to record usage %s for %s: %w", limitKey, userID, err)
	}
	return nil
}

func (s *SQLStore) Seed(ctx context.Context, features []FeatureRow, limits []LimitRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tier_features`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count tier features: %w", err)
	}
	if count == 0 {
		insert := rebind(s.dbType, `INSERT INTO tier_features (tier, feature, enabled) VALUES (?, ?, ?)`)
		for _, f := range features {
			if _, err := tx.ExecContext(ctx, insert, f.Tier, f.Feature, f.Enabled); err != nil {
				return fmt.Errorf("failed to seed feature %s/%s: %w", f.Tier, f.Feature, err)
			}
		}
		s.logger.Info("Seeded tier features", "rows", len(features))
	}

	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tier_limits`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count tier limits: %w", err)
	}
	if count == 0 {
		insert := rebind(s.dbType, `INSERT INTO tier_limits (tier, limit_key, limit_value) VALUES (?, ?, ?)`)
		for _, l := range limits {
			if _, err := tx.ExecContext(ctx, insert, l.Tier, l.LimitKey, l.LimitValue); err != nil {
				return fmt.Errorf("failed to seed limit %s/%s: %w", l.Tier, l.LimitKey, err)
			}
		}
		s.logger.Info("Seeded tier limits", "rows", len(limits))
	}

	return tx.Commit()
}

func requireRow(result sql.Result) error {
	return requireRowOr(result, ErrNotFound)
}

// requireRowOr returns errNone when the statement touched no rows.
func requireRowOr(result sql.Result, errNone error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return errNone
	}
	return nil
}
