package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/crimewatch/internal/models"
)

const userColumns = `uid, email, display_name, role, region, preferred_state,
	access_enabled, premium_override, trials_remaining, trial_start_date, trial_expiry_date,
	subscription_status, subscription_plan, subscription_start_date, subscription_expiry_date,
	last_dashboard_access, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u                            models.User
		region, preferredState, plan sql.NullString
		trialStart, trialExpiry      sql.NullTime
		subStart, subExpiry          sql.NullTime
		lastAccess                   sql.NullTime
	)
	if err := row.Scan(&u.UID, &u.Email, &u.DisplayName, &u.Role, &region, &preferredState,
		&u.AccessEnabled, &u.PremiumOverride, &u.TrialsRemaining, &trialStart, &trialExpiry,
		&u.SubscriptionStatus, &plan, &subStart, &subExpiry,
		&lastAccess, &u.CreatedAt); err != nil {
		return nil, err
	}

	if region.Valid {
		u.Region = &region.String
	}
	if preferredState.Valid {
		u.Preferences.PreferredState = preferredState.String
	}
	if plan.Valid {
		u.SubscriptionPlan = &plan.String
	}
	u.TrialStartDate = nullTime(trialStart)
	u.TrialExpiryDate = nullTime(trialExpiry)
	u.SubscriptionStartDate = nullTime(subStart)
	u.SubscriptionExpiryDate = nullTime(subExpiry)
	u.LastDashboardAccess = nullTime(lastAccess)
	return &u, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

// GetUser возвращает запись пользователя по uid.
func (s *Storage) GetUser(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// CreateUser сохраняет новую запись. Если запись с таким uid уже есть,
// возвращается ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, u models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var preferredState *string
	if u.Preferences.PreferredState != "" {
		preferredState = &u.Preferences.PreferredState
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := s.DB.ExecContext(ctx, query,
		u.UID, u.Email, u.DisplayName, string(u.Role), u.Region, preferredState,
		u.AccessEnabled, u.PremiumOverride, u.TrialsRemaining, u.TrialStartDate, u.TrialExpiryDate,
		string(u.SubscriptionStatus), u.SubscriptionPlan, u.SubscriptionStartDate, u.SubscriptionExpiryDate,
		u.LastDashboardAccess, u.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%s: %w", op, ErrUserExists)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MergeUser записывает заполненные поля обновления в запись с указанным uid.
// Пустое обновление ничего не делает.
func (s *Storage) MergeUser(ctx context.Context, uid string, upd models.UserUpdate) error {
	const op = "storage.MergeUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if upd.IsEmpty() {
		return nil
	}

	set, args := mergeClauses(upd)
	args = append(args, uid)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE uid = $%d`, strings.Join(set, ", "), len(args))

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	return nil
}

func mergeClauses(upd models.UserUpdate) ([]string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.AccessEnabled != nil {
		add("access_enabled", *upd.AccessEnabled)
	}
	if upd.PremiumOverride != nil {
		add("premium_override", *upd.PremiumOverride)
	}
	if upd.TrialsRemaining != nil {
		add("trials_remaining", *upd.TrialsRemaining)
	}
	if upd.TrialStartDate != nil {
		add("trial_start_date", *upd.TrialStartDate)
	}
	if upd.TrialExpiryDate != nil {
		add("trial_expiry_date", *upd.TrialExpiryDate)
	}
	if upd.SubscriptionStatus != nil {
		add("subscription_status", string(*upd.SubscriptionStatus))
	}
	if upd.SubscriptionPlan != nil {
		add("subscription_plan", *upd.SubscriptionPlan)
	}
	if upd.SubscriptionStartDate != nil {
		add("subscription_start_date", *upd.SubscriptionStartDate)
	}
	if upd.SubscriptionExpiryDate != nil {
		add("subscription_expiry_date", *upd.SubscriptionExpiryDate)
	}
	if upd.LastDashboardAccess != nil {
		add("last_dashboard_access", *upd.LastDashboardAccess)
	}
	if upd.Preferences != nil {
		add("preferred_state", upd.Preferences.PreferredState)
	}
	return set, args
}

// ListUsers возвращает записи пользователей, опционально отфильтрованные по роли.
func (s *Storage) ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE ($1 = '' OR role = $1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, string(role), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectUsers(op, rows)
}

// Stats собирает сводку для панели суперадминистратора.
func (s *Storage) Stats(ctx context.Context, now time.Time) (models.Stats, error) {
	const op = "storage.Stats"
	select {
	case <-ctx.Done():
		return models.Stats{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var st models.Stats
	query := `SELECT
			      COUNT(*) FILTER (WHERE role = 'USER'),
			      COUNT(*) FILTER (WHERE role = 'ADMIN'),
			      COUNT(*) FILTER (WHERE subscription_status = 'active'
			          AND (subscription_expiry_date IS NULL OR subscription_expiry_date > $1)),
			      COUNT(*) FILTER (WHERE subscription_status = 'trial'),
			      (SELECT COUNT(*) FROM contact_messages WHERE status = 'new')
			  FROM users`
	if err := s.DB.QueryRowContext(ctx, query, now).Scan(
		&st.TotalUsers, &st.TotalAdmins, &st.ActiveSubscriptions, &st.TrialUsers, &st.UnreadMessages,
	); err != nil {
		return models.Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	return st, nil
}

// FindTrialsExpiringToday возвращает пользователей, у которых пробное окно
// заканчивается в ближайшие сутки и ещё остались попытки.
func (s *Storage) FindTrialsExpiringToday(ctx context.Context, now time.Time) ([]*models.User, error) {
	const op = "storage.FindTrialsExpiringToday"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE role = 'USER'
			    AND premium_override = false
			    AND subscription_status = 'trial'
			    AND trials_remaining > 0
			    AND trial_expiry_date >= $1 AND trial_expiry_date < $2`
	rows, err := s.DB.QueryContext(ctx, query, now, now.Add(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectUsers(op, rows)
}

// FindSubscriptionsExpiringTomorrow возвращает активные подписки,
// срок которых истекает в течение завтрашнего дня (UTC).
func (s *Storage) FindSubscriptionsExpiringTomorrow(ctx context.Context, now time.Time) ([]*models.User, error) {
	const op = "storage.FindSubscriptionsExpiringTomorrow"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	today := now.UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, 1)
	to := today.AddDate(0, 0, 2)

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE subscription_status = 'active'
			    AND subscription_expiry_date >= $1 AND subscription_expiry_date < $2`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	return collectUsers(op, rows)
}

func collectUsers(op string, rows *sql.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}
