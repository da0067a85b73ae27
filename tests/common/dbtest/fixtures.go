//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// bcrypt hash of "password123"
const testPasswordHash = "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A."

func CreateTestUser(t *testing.T, db DBLike, email, role string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx, "INSERT INTO users (id, email, password_hash, role, display_name, is_active) VALUES ($1, $2, $3, $4, $5, true) ON CONFLICT (email) DO NOTHING",
		userID, email, testPasswordHash, role, "Test "+role)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	}

	return userID
}

func CreateTestService(t *testing.T, db DBLike, serviceType, title string, hourlyRateCents int64) uuid.UUID {
	t.Helper()

	serviceID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO services (id, type, title, hourly_rate_cents, is_active) VALUES ($1, $2, $3, $4, true)",
		serviceID, serviceType, title, hourlyRateCents)
	require.NoError(t, err)

	return serviceID
}

func CreateTestBooking(t *testing.T, db DBLike, userID, serviceID uuid.UUID, status string, priceCents int64) uuid.UUID {
	t.Helper()

	bookingID := uuid.New()
	ctx := context.Background()

	var paymentRef *string
	if status == "confirmed" || status == "completed" {
		ref := "pi_" + bookingID.String()[:8]
		paymentRef = &ref
	}

	scheduledAt := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	_, err := db.Exec(ctx, `INSERT INTO bookings
		(id, user_id, service_id, scheduled_at, duration_minutes, price_cents, status, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		bookingID, userID, serviceID, scheduledAt, 60, priceCents, status, paymentRef)
	require.NoError(t, err)

	return bookingID
}

// ExpireIdempotencyKey backdates a claimed key so reclaim-after-TTL paths
// can be exercised without waiting.
func ExpireIdempotencyKey(t *testing.T, db DBLike, key, userID uuid.UUID) {
	t.Helper()

	tag, err := db.Exec(context.Background(),
		"UPDATE idempotency_keys SET expires_at = now() - interval '1 hour' WHERE key = $1 AND user_id = $2",
		key, userID)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

func GetBookingStatus(t *testing.T, db DBLike, bookingID uuid.UUID) (status string, paymentRef *string) {
	t.Helper()

	ctx := context.Background()
	err := db.QueryRow(ctx, "SELECT status, payment_reference FROM bookings WHERE id = $1", bookingID).
		Scan(&status, &paymentRef)
	require.NoError(t, err)
	return status, paymentRef
}

func CountNotificationJobs(t *testing.T, db DBLike, kind string, bookingID uuid.UUID) int {
	t.Helper()

	ctx := context.Background()
	var n int
	err := db.QueryRow(ctx, "SELECT count(*) FROM notification_jobs WHERE kind = $1 AND payload ->> 'booking_id' = $2",
		kind, bookingID.String()).Scan(&n)
	require.NoError(t, err)
	return n
}

// inserts basic reference data needed by tests
func SeedReferenceData(pool *pgxpool.Pool) error {
	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO services (id, type, title, hourly_rate_cents, is_active) VALUES
		    (gen_random_uuid(), 'math', 'Math Tutoring', 6000, true),
		    (gen_random_uuid(), 'music', 'Piano Lessons', 8000, true),
		    (gen_random_uuid(), 'sports', 'Tennis Coaching', 7000, true)
		ON CONFLICT DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return nil
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables and reseeds reference data
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return SeedReferenceData(pool)
}
