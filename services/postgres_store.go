package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LovationAdmin/tripchalo-api/models"
	"github.com/LovationAdmin/tripchalo-api/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements TripStore and UserStore on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var (
	_ TripStore = (*PostgresStore)(nil)
	_ UserStore = (*PostgresStore)(nil)
)

const pqUniqueViolation = "23505"

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ============================================================================
// USERS
// ============================================================================

const userColumns = `id, first_name, last_name, gender, age, email, password_hash,
	security_question, security_answer_hash, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Gender,
		&u.Age,
		&u.Email,
		&u.PasswordHash,
		&u.SecurityQuestion,
		&u.SecurityAnswerHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, gender, age, email, password_hash,
		                   security_question, security_answer_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Gender,
		user.Age,
		user.Email,
		user.PasswordHash,
		user.SecurityQuestion,
		user.SecurityAnswerHash,
	).Scan(&user.ID, &user.CreatedAt)
	return translate(err)
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

// ============================================================================
// TRIPS
// ============================================================================

const tripColumns = `t.id, t.trip_name, t.trip_code, t.leader_id, t.created_at, t.voting_deadline,
	t.is_voting_closed, t.is_trip_confirmed, t.itinerary_data, t.final_chosen_option`

func scanTrip(row rowScanner) (*models.Trip, error) {
	var (
		t        models.Trip
		deadline sql.NullTime
		data     []byte
		final    sql.NullInt64
	)
	err := row.Scan(
		&t.ID,
		&t.TripName,
		&t.TripCode,
		&t.LeaderID,
		&t.CreatedAt,
		&deadline,
		&t.IsVotingClosed,
		&t.IsTripConfirmed,
		&data,
		&final,
	)
	if err != nil {
		return nil, translate(err)
	}
	if deadline.Valid {
		d := deadline.Time
		t.VotingDeadline = &d
	}
	if final.Valid {
		f := int(final.Int64)
		t.FinalChosenOption = &f
	}
	if len(data) > 0 {
		var it models.Itinerary
		if err := json.Unmarshal(data, &it); err != nil {
			return nil, fmt.Errorf("failed to decode itinerary for trip %s: %w", t.ID, err)
		}
		t.Itinerary = &it
	}
	return &t, nil
}

func (s *PostgresStore) CreateTrip(ctx context.Context, trip *models.Trip, leader *models.Participation) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if leader.ID == "" {
		leader.ID = uuid.New().String()
	}
	leader.TripID = trip.ID

	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		// 1. Trip
		query := `
			INSERT INTO trips (id, trip_name, trip_code, leader_id, created_at, voting_deadline,
			                   is_voting_closed, is_trip_confirmed)
			VALUES ($1, $2, $3, $4, $5, $6, false, false)
		`
		if _, err := tx.ExecContext(ctx, query, trip.ID, trip.TripName, trip.TripCode, trip.LeaderID,
			trip.CreatedAt, trip.VotingDeadline); err != nil {
			return err
		}

		// 2. Leader joins as the first participant
		return insertParticipation(ctx, tx, leader)
	})
	return translate(err)
}

func (s *PostgresStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = $1`
	return scanTrip(s.db.QueryRowContext(ctx, query, tripID))
}

func (s *PostgresStore) GetTripByCode(ctx context.Context, code string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.trip_code = $1`
	return scanTrip(s.db.QueryRowContext(ctx, query, code))
}

func (s *PostgresStore) ListTripsByLeader(ctx context.Context, userID string) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips t WHERE t.leader_id = $1 ORDER BY t.created_at DESC`
	return s.queryTrips(ctx, query, userID)
}

func (s *PostgresStore) ListTripsJoined(ctx context.Context, userID string) ([]models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		INNER JOIN trip_participants tp ON tp.trip_id = t.id
		WHERE tp.user_id = $1 AND t.leader_id <> $1
		ORDER BY tp.joined_at DESC
	`
	return s.queryTrips(ctx, query, userID)
}

func (s *PostgresStore) queryTrips(ctx context.Context, query string, args ...any) ([]models.Trip, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (s *PostgresStore) DeleteTrip(ctx context.Context, tripID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trip_votes WHERE trip_id = $1`, tripID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trip_participants WHERE trip_id = $1`, tripID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, tripID)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

func (s *PostgresStore) LockTrip(ctx context.Context, tripID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trips SET is_voting_closed = true, is_trip_confirmed = true
		WHERE id = $1
	`, tripID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *PostgresStore) SaveItinerary(ctx context.Context, tripID string, itinerary *models.Itinerary) error {
	data, err := json.Marshal(itinerary)
	if err != nil {
		return fmt.Errorf("failed to encode itinerary: %w", err)
	}

	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE trips SET itinerary_data = $2, final_chosen_option = NULL
			WHERE id = $1
		`, tripID, data)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		// Votes refer to option ids of the previous generation.
		_, err = tx.ExecContext(ctx, `DELETE FROM trip_votes WHERE trip_id = $1`, tripID)
		return err
	})
}

func (s *PostgresStore) SetFinalOption(ctx context.Context, tripID string, option int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE trips
		SET final_chosen_option = $2, is_voting_closed = true, is_trip_confirmed = true
		WHERE id = $1
	`, tripID, option)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ============================================================================
// PARTICIPANTS
// ============================================================================

func insertParticipation(ctx context.Context, tx *sql.Tx, p *models.Participation) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO trip_participants (id, trip_id, user_id, home_town, budget_range,
		                               start_date, end_date, preference_tags, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.ExecContext(ctx, query, p.ID, p.TripID, p.UserID, p.HomeTown, p.BudgetRange,
		p.StartDate, p.EndDate, pq.Array(p.PreferenceTags), p.JoinedAt)
	return err
}

func (s *PostgresStore) AddParticipant(ctx context.Context, p *models.Participation) error {
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		return insertParticipation(ctx, tx, p)
	})
	return translate(err)
}

const participationColumns = `tp.id, tp.trip_id, tp.user_id, tp.home_town, tp.budget_range,
	tp.start_date, tp.end_date, tp.preference_tags, tp.joined_at,
	u.first_name, u.last_name, u.age, u.gender`

func scanParticipation(row rowScanner) (*models.Participation, error) {
	var (
		p    models.Participation
		tags pq.StringArray
	)
	err := row.Scan(
		&p.ID,
		&p.TripID,
		&p.UserID,
		&p.HomeTown,
		&p.BudgetRange,
		&p.StartDate,
		&p.EndDate,
		&tags,
		&p.JoinedAt,
		&p.FirstName,
		&p.LastName,
		&p.Age,
		&p.Gender,
	)
	if err != nil {
		return nil, translate(err)
	}
	p.PreferenceTags = []string(tags)
	if p.PreferenceTags == nil {
		p.PreferenceTags = []string{}
	}
	return &p, nil
}

func (s *PostgresStore) GetParticipation(ctx context.Context, tripID, userID string) (*models.Participation, error) {
	query := `
		SELECT ` + participationColumns + `
		FROM trip_participants tp
		INNER JOIN users u ON u.id = tp.user_id
		WHERE tp.trip_id = $1 AND tp.user_id = $2
	`
	return scanParticipation(s.db.QueryRowContext(ctx, query, tripID, userID))
}

func (s *PostgresStore) ListParticipants(ctx context.Context, tripID string) ([]models.Participation, error) {
	query := `
		SELECT ` + participationColumns + `
		FROM trip_participants tp
		INNER JOIN users u ON u.id = tp.user_id
		WHERE tp.trip_id = $1
		ORDER BY tp.joined_at ASC, tp.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	participants := []models.Participation{}
	for rows.Next() {
		p, err := scanParticipation(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (s *PostgresStore) RemoveParticipant(ctx context.Context, tripID, userID string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM trip_participants WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM trip_votes WHERE trip_id = $1 AND user_id = $2`, tripID, userID)
		return err
	})
}

// ============================================================================
// VOTES
// ============================================================================

func (s *PostgresStore) UpsertVote(ctx context.Context, vote *models.Vote) error {
	if vote.UpdatedAt.IsZero() {
		vote.UpdatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO trip_votes (id, trip_id, user_id, option_selected, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trip_id, user_id)
		DO UPDATE SET option_selected = EXCLUDED.option_selected, updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, uuid.New().String(), vote.TripID, vote.UserID, vote.OptionSelected, vote.UpdatedAt)
	return translate(err)
}

func (s *PostgresStore) ListVotes(ctx context.Context, tripID string) ([]models.Vote, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT trip_id, user_id, option_selected, updated_at
		FROM trip_votes
		WHERE trip_id = $1
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.TripID, &v.UserID, &v.OptionSelected, &v.UpdatedAt); err != nil {
			return nil, err
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
