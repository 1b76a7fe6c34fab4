package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Users ---

func (s *PostgresStore) GetDefaultUser(ctx context.Context) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, citizenship, created_at, updated_at FROM users WHERE email = 'default@backpacker.local' LIMIT 1`,
	).Scan(&u.ID, &u.Email, &u.Citizenship, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default user: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, citizenship, created_at, updated_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Citizenship, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Trips ---

func (s *PostgresStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trips (id, user_id, name, description, destinations, start_point, end_point,
		                    start_date, end_date, flexible_dates, adults_count, children_count,
		                    preferences, transportation, budget, currency, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		trip.ID, trip.UserID, trip.Name, trip.Description, trip.Destinations, trip.StartPoint, trip.EndPoint,
		trip.StartDate, trip.EndDate, trip.FlexibleDates, trip.AdultsCount, trip.ChildrenCount,
		trip.Preferences, trip.Transportation, trip.Budget, trip.Currency, trip.CreatedAt, trip.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create trip: %w", err)
	}
	return nil
}

const tripColumns = `id, user_id, name, description, destinations, start_point, end_point,
	start_date, end_date, flexible_dates, adults_count, children_count,
	preferences, transportation, budget, currency, created_at, updated_at`

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var t models.Trip
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.Destinations, &t.StartPoint, &t.EndPoint,
		&t.StartDate, &t.EndDate, &t.FlexibleDates, &t.AdultsCount, &t.ChildrenCount,
		&t.Preferences, &t.Transportation, &t.Budget, &t.Currency, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) GetTrip(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Trip, error) {
	trip, err := scanTrip(s.pool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1 AND user_id = $2`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return trip, nil
}

func (s *PostgresStore) ListTrips(ctx context.Context, userID uuid.UUID) ([]*models.Trip, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	var trips []*models.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// --- Tasks ---

func (s *PostgresStore) ReplaceTasks(ctx context.Context, tripID uuid.UUID, tasks []models.Task) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace tasks: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("delete old tasks: %w", err)
	}

	for _, t := range tasks {
		_, err := tx.Exec(ctx,
			`INSERT INTO tasks (id, trip_id, title, description, category, priority, destinations, source, completed, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t.ID, tripID, t.Title, t.Description, t.Category, t.Priority, t.Destinations, t.Source, t.Completed, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListTasks(ctx context.Context, tripID uuid.UUID) ([]*models.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, trip_id, title, description, category, priority, destinations, source, completed, created_at, updated_at
		 FROM tasks WHERE trip_id = $1 ORDER BY created_at ASC, id ASC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.TripID, &t.Title, &t.Description, &t.Category, &t.Priority,
			&t.Destinations, &t.Source, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// --- Itinerary ---

func (s *PostgresStore) DeleteItinerary(ctx context.Context, tripID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM itinerary_items WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("delete itinerary: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateItineraryItems(ctx context.Context, items []models.ItineraryItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create itinerary items: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO itinerary_items (id, trip_id, day_number, date, start_time, end_time, title, description, location, type, cost, order_index, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			item.ID, item.TripID, item.DayNumber, item.Date, item.StartTime, item.EndTime,
			item.Title, item.Description, item.Location, item.Type, item.Cost, item.OrderIndex, item.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert itinerary item: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListItineraryItems(ctx context.Context, tripID uuid.UUID) ([]*models.ItineraryItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, trip_id, day_number, date, start_time, end_time, title, description, location, type, cost, order_index, created_at
		 FROM itinerary_items WHERE trip_id = $1 ORDER BY day_number ASC, order_index ASC`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list itinerary items: %w", err)
	}
	defer rows.Close()

	var items []*models.ItineraryItem
	for rows.Next() {
		var i models.ItineraryItem
		if err := rows.Scan(&i.ID, &i.TripID, &i.DayNumber, &i.Date, &i.StartTime, &i.EndTime,
			&i.Title, &i.Description, &i.Location, &i.Type, &i.Cost, &i.OrderIndex, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan itinerary item: %w", err)
		}
		items = append(items, &i)
	}
	return items, rows.Err()
}

// --- Jobs ---

const jobColumns = `id, trip_id, kind, status, progress, message, result, error, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.TripID, &j.Kind, &j.Status, &j.Progress, &j.Message, &j.Result, &j.Error,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, trip_id, kind, status, progress, message, result, error, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.TripID, job.Kind, job.Status, job.Progress, job.Message, job.Result, job.Error,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		// The partial unique index on (trip_id, kind) for in-flight jobs
		// turns a concurrent duplicate start into ErrDuplicateKey.
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) GetActiveJob(ctx context.Context, tripID uuid.UUID, kind string) (*models.Job, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE trip_id = $1 AND kind = $2 AND status IN ('pending', 'processing')
		 ORDER BY created_at DESC LIMIT 1`, tripID, kind))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) UpdateJob(ctx context.Context, id uuid.UUID, opts ...JobUpdateOption) (*models.Job, error) {
	params := &JobUpdate{}
	for _, opt := range opts {
		opt(params)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET updated_at = $2`
	args := []any{id, now}
	argIdx := 3

	if params.Status != nil {
		query += fmt.Sprintf(", status = $%d", argIdx)
		args = append(args, *params.Status)
		argIdx++
	}
	if params.Progress != nil {
		// Progress never moves backwards.
		query += fmt.Sprintf(", progress = GREATEST(progress, $%d)", argIdx)
		args = append(args, *params.Progress)
		argIdx++
	}
	if params.Message != nil {
		query += fmt.Sprintf(", message = $%d", argIdx)
		args = append(args, *params.Message)
		argIdx++
	}
	if params.Result != nil {
		query += fmt.Sprintf(", result = $%d", argIdx)
		args = append(args, params.Result)
		argIdx++
	}
	if params.Error != nil {
		query += fmt.Sprintf(", error = $%d", argIdx)
		args = append(args, *params.Error)
		argIdx++
	}

	// Terminal jobs are never modified; idempotent completion and failure
	// fall out of this predicate.
	query += ` WHERE id = $1 AND status NOT IN ('completed', 'failed') RETURNING ` + jobColumns

	job, err := scanJob(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		// Either missing or already terminal; return the stored row.
		return s.GetJob(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("update job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) FailStaleJobs(ctx context.Context, cutoff time.Time, reason string) ([]*models.Job, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE jobs SET status = 'failed', error = $2, updated_at = NOW()
		 WHERE status IN ('pending', 'processing') AND updated_at < $1
		 RETURNING `+jobColumns, cutoff, reason)
	if err != nil {
		return nil, fmt.Errorf("fail stale jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stale job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
