package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const queryTimeout = 3 * time.Second

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Close() { p.pool.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	surname       TEXT NOT NULL,
	given_name    TEXT NOT NULL,
	email         TEXT NOT NULL,
	phone         TEXT NOT NULL,
	role          TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email));

CREATE TABLE IF NOT EXISTS services (
	id               BIGINT PRIMARY KEY,
	name             TEXT NOT NULL,
	price            DOUBLE PRECISION NOT NULL,
	description      TEXT NOT NULL,
	duration_minutes INT NOT NULL
);

CREATE TABLE IF NOT EXISTS specialists (
	id         BIGINT PRIMARY KEY,
	surname    TEXT NOT NULL,
	given_name TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL,
	photo      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS chats (
	id           BIGINT PRIMARY KEY,
	name         TEXT NOT NULL,
	avatar       TEXT NOT NULL DEFAULT '',
	last_message TEXT NOT NULL,
	time_label   TEXT NOT NULL,
	unread       INT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS appointments (
	id            BIGSERIAL PRIMARY KEY,
	day           TEXT NOT NULL,
	slot          TEXT NOT NULL,
	status        TEXT NOT NULL,
	service_id    BIGINT NOT NULL REFERENCES services(id),
	specialist_id BIGINT NOT NULL REFERENCES specialists(id),
	client_id     BIGINT NOT NULL REFERENCES users(id),
	notes         TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS appointments_open_slot_key
	ON appointments (specialist_id, day, slot) WHERE status IN ('pending', 'confirmed');

CREATE TABLE IF NOT EXISTS payment_methods (
	id         BIGSERIAL PRIMARY KEY,
	user_id    BIGINT NOT NULL REFERENCES users(id),
	type       TEXT NOT NULL,
	last4      TEXT NOT NULL,
	expiry     TEXT NOT NULL,
	is_default BOOLEAN NOT NULL DEFAULT false
);

CREATE TABLE IF NOT EXISTS payments (
	id             BIGSERIAL PRIMARY KEY,
	user_id        BIGINT NOT NULL REFERENCES users(id),
	appointment_id BIGINT NOT NULL,
	amount         DOUBLE PRECISION NOT NULL,
	mode           TEXT NOT NULL,
	status         TEXT NOT NULL,
	day            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reviews (
	id                BIGSERIAL PRIMARY KEY,
	rating            INT NOT NULL,
	comment           TEXT NOT NULL,
	day               TEXT NOT NULL,
	client_id         BIGINT NOT NULL,
	client_surname    TEXT NOT NULL,
	client_given_name TEXT NOT NULL,
	specialist_id     BIGINT NOT NULL REFERENCES specialists(id),
	appointment_id    BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
	id      BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	title   TEXT NOT NULL,
	message TEXT NOT NULL,
	sent_at TEXT NOT NULL,
	read    BOOLEAN NOT NULL DEFAULT false,
	type    TEXT NOT NULL,
	data    JSONB
);

CREATE TABLE IF NOT EXISTS device_tokens (
	token      TEXT PRIMARY KEY,
	user_id    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables and seeds the catalog, chats and reviews
// on an empty database.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	batch := &pgx.Batch{}
	for _, s := range mock.Services() {
		batch.Queue(`INSERT INTO services (id, name, price, description, duration_minutes)
			VALUES ($1,$2,$3,$4,$5) ON CONFLICT (id) DO NOTHING`,
			s.ID, s.Name, s.Price, s.Description, s.DurationMinutes)
	}
	for _, s := range mock.Specialists() {
		batch.Queue(`INSERT INTO specialists (id, surname, given_name, email, phone, photo)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
			s.ID, s.Surname, s.GivenName, s.Email, s.Phone, s.Photo)
	}
	for _, c := range mock.Chats() {
		batch.Queue(`INSERT INTO chats (id, name, avatar, last_message, time_label, unread)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.Avatar, c.LastMessage, c.Time, c.Unread)
	}
	for _, r := range mock.Reviews() {
		batch.Queue(`INSERT INTO reviews (id, rating, comment, day, client_id, client_surname, client_given_name, specialist_id, appointment_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (id) DO NOTHING`,
			r.ID, r.Rating, r.Comment, r.Date, r.Client.ID, r.Client.Surname, r.Client.GivenName, r.Specialist.ID, r.AppointmentID)
	}
	batch.Queue(`SELECT setval(pg_get_serial_sequence('reviews', 'id'), GREATEST((SELECT max(id) FROM reviews), 1))`)
	// Seeded reviews point at appointments and clients that never existed
	// here; keep new IDs clear of them.
	batch.Queue(`SELECT setval(pg_get_serial_sequence('appointments', 'id'),
		GREATEST((SELECT max(appointment_id) FROM reviews), (SELECT max(id) FROM appointments), 1))`)
	batch.Queue(`SELECT setval(pg_get_serial_sequence('users', 'id'),
		GREATEST((SELECT max(client_id) FROM reviews), (SELECT max(id) FROM users), 1))`)

	if err := p.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraint
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (p *Postgres) CreateUser(ctx context.Context, u domain.User, passwordHash string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := p.pool.QueryRow(ctx, `INSERT INTO users (surname, given_name, email, phone, role, password_hash)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		u.Surname, u.GivenName, u.Email, u.Phone, u.Role, passwordHash,
	).Scan(&u.ID)
	if isUniqueViolation(err, "users_email_key") {
		return domain.User{}, ErrEmailExists
	}
	return u, err
}

const userCols = `id, surname, given_name, email, phone, role`

func scanUser(row pgx.Row, extra ...any) (domain.User, error) {
	var u domain.User
	dest := append([]any{&u.ID, &u.Surname, &u.GivenName, &u.Email, &u.Phone, &u.Role}, extra...)
	err := row.Scan(dest...)
	return u, notFound(err)
}

func (p *Postgres) FindUserByEmail(ctx context.Context, email string) (domain.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var hash string
	u, err := scanUser(p.pool.QueryRow(ctx, `SELECT `+userCols+`, password_hash FROM users WHERE lower(email)=lower($1)`, email), &hash)
	return u, hash, err
}

func (p *Postgres) FindUserByID(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return scanUser(p.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

const serviceCols = `id, name, price, description, duration_minutes`

func (p *Postgres) ListServices(ctx context.Context) ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT `+serviceCols+` FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Service, error) {
		var s domain.Service
		err := row.Scan(&s.ID, &s.Name, &s.Price, &s.Description, &s.DurationMinutes)
		return s, err
	})
}

func (p *Postgres) GetService(ctx context.Context, id int64) (domain.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var s domain.Service
	err := p.pool.QueryRow(ctx, `SELECT `+serviceCols+` FROM services WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Price, &s.Description, &s.DurationMinutes)
	return s, notFound(err)
}

const specialistCols = `id, surname, given_name, email, phone, photo`

func scanSpecialist(row pgx.Row) (domain.Specialist, error) {
	var s domain.Specialist
	err := row.Scan(&s.ID, &s.Surname, &s.GivenName, &s.Email, &s.Phone, &s.Photo)
	return s, err
}

func (p *Postgres) ListSpecialists(ctx context.Context) ([]domain.Specialist, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT `+specialistCols+` FROM specialists ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Specialist, error) {
		return scanSpecialist(row)
	})
}

func (p *Postgres) GetSpecialist(ctx context.Context, id int64) (domain.Specialist, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	s, err := scanSpecialist(p.pool.QueryRow(ctx, `SELECT `+specialistCols+` FROM specialists WHERE id=$1`, id))
	return s, notFound(err)
}

func (p *Postgres) ListChats(ctx context.Context, _ int64) ([]domain.Chat, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT id, name, avatar, last_message, time_label, unread FROM chats ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Chat, error) {
		var c domain.Chat
		err := row.Scan(&c.ID, &c.Name, &c.Avatar, &c.LastMessage, &c.Time, &c.Unread)
		return c, err
	})
}

const appointmentSelect = `SELECT a.id, a.day, a.slot, a.status, a.notes,
	s.id, s.name, s.price, s.description, s.duration_minutes,
	sp.id, sp.surname, sp.given_name, sp.email, sp.phone, sp.photo,
	u.id, u.surname, u.given_name, u.email, u.phone
FROM appointments a
JOIN services s ON s.id = a.service_id
JOIN specialists sp ON sp.id = a.specialist_id
JOIN users u ON u.id = a.client_id`

func scanAppointment(row pgx.Row) (domain.Appointment, error) {
	var a domain.Appointment
	err := row.Scan(
		&a.ID, &a.Date, &a.Time, &a.Status, &a.Notes,
		&a.Service.ID, &a.Service.Name, &a.Service.Price, &a.Service.Description, &a.Service.DurationMinutes,
		&a.Specialist.ID, &a.Specialist.Surname, &a.Specialist.GivenName, &a.Specialist.Email, &a.Specialist.Phone, &a.Specialist.Photo,
		&a.Client.ID, &a.Client.Surname, &a.Client.GivenName, &a.Client.Email, &a.Client.Phone,
	)
	return a, err
}

func (p *Postgres) CreateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := p.pool.QueryRow(ctx, `INSERT INTO appointments (day, slot, status, service_id, specialist_id, client_id, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		a.Date, a.Time, a.Status, a.Service.ID, a.Specialist.ID, a.Client.ID, a.Notes,
	).Scan(&a.ID)
	if isUniqueViolation(err, "appointments_open_slot_key") {
		return domain.Appointment{}, ErrSlotTaken
	}
	return a, err
}

func (p *Postgres) ListAppointments(ctx context.Context, clientID int64) ([]domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, appointmentSelect+` WHERE a.client_id=$1 ORDER BY a.id`, clientID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Appointment, error) {
		return scanAppointment(row)
	})
}

func (p *Postgres) GetAppointment(ctx context.Context, clientID, id int64) (domain.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	a, err := scanAppointment(p.pool.QueryRow(ctx, appointmentSelect+` WHERE a.client_id=$1 AND a.id=$2`, clientID, id))
	return a, notFound(err)
}

func (p *Postgres) SetAppointmentStatus(ctx context.Context, clientID, id int64, status domain.AppointmentStatus) (domain.Appointment, error) {
	tag, err := func() (pgconn.CommandTag, error) {
		ctx, cancel := context.WithTimeout(ctx, queryTimeout)
		defer cancel()
		return p.pool.Exec(ctx, `UPDATE appointments SET status=$3 WHERE client_id=$1 AND id=$2`, clientID, id, status)
	}()
	if err != nil {
		return domain.Appointment{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Appointment{}, ErrNotFound
	}
	return p.GetAppointment(ctx, clientID, id)
}

func (p *Postgres) BookedTimes(ctx context.Context, specialistID int64, date string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT slot FROM appointments
		WHERE specialist_id=$1 AND day=$2 AND status IN ('pending', 'confirmed')`, specialistID, date)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *Postgres) ListPaymentMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT id, type, last4, expiry, is_default FROM payment_methods
		WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentMethod, error) {
		var m domain.PaymentMethod
		err := row.Scan(&m.ID, &m.Type, &m.Last4, &m.Expiry, &m.IsDefault)
		return m, err
	})
}

func (p *Postgres) AddPaymentMethod(ctx context.Context, userID int64, m domain.PaymentMethod) (domain.PaymentMethod, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if m.IsDefault {
			if _, err := tx.Exec(ctx, `UPDATE payment_methods SET is_default=false WHERE user_id=$1`, userID); err != nil {
				return err
			}
		}
		return tx.QueryRow(ctx, `INSERT INTO payment_methods (user_id, type, last4, expiry, is_default)
			VALUES ($1,$2,$3,$4,$5) RETURNING id`,
			userID, m.Type, m.Last4, m.Expiry, m.IsDefault,
		).Scan(&m.ID)
	})
	return m, err
}

func (p *Postgres) DeletePaymentMethod(ctx context.Context, userID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := p.pool.Exec(ctx, `DELETE FROM payment_methods WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetDefaultPaymentMethod flips every flag in one statement so exactly one
// row stays default.
func (p *Postgres) SetDefaultPaymentMethod(ctx context.Context, userID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payment_methods WHERE user_id=$1 AND id=$2)`, userID, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err := p.pool.Exec(ctx, `UPDATE payment_methods SET is_default = (id = $2) WHERE user_id=$1`, userID, id)
	return err
}

func (p *Postgres) CreatePayment(ctx context.Context, userID int64, pay domain.Payment) (domain.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := p.pool.QueryRow(ctx, `INSERT INTO payments (user_id, appointment_id, amount, mode, status, day)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		userID, pay.AppointmentID, pay.Amount, pay.Mode, pay.Status, pay.Date,
	).Scan(&pay.ID)
	return pay, err
}

const reviewSelect = `SELECT r.id, r.rating, r.comment, r.day,
	r.client_id, r.client_surname, r.client_given_name,
	sp.id, sp.surname, sp.given_name, r.appointment_id
FROM reviews r JOIN specialists sp ON sp.id = r.specialist_id`

func scanReview(row pgx.Row) (domain.Review, error) {
	var r domain.Review
	err := row.Scan(&r.ID, &r.Rating, &r.Comment, &r.Date,
		&r.Client.ID, &r.Client.Surname, &r.Client.GivenName,
		&r.Specialist.ID, &r.Specialist.Surname, &r.Specialist.GivenName, &r.AppointmentID)
	return r, err
}

func (p *Postgres) listReviews(ctx context.Context, where string, args ...any) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, reviewSelect+where+` ORDER BY r.id`, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Review, error) {
		return scanReview(row)
	})
}

func (p *Postgres) ListReviews(ctx context.Context) ([]domain.Review, error) {
	return p.listReviews(ctx, "")
}

func (p *Postgres) ListReviewsForSpecialist(ctx context.Context, specialistID int64) ([]domain.Review, error) {
	return p.listReviews(ctx, ` WHERE r.specialist_id=$1`, specialistID)
}

func (p *Postgres) ReviewForAppointment(ctx context.Context, appointmentID int64) (domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	r, err := scanReview(p.pool.QueryRow(ctx, reviewSelect+` WHERE r.appointment_id=$1 LIMIT 1`, appointmentID))
	return r, notFound(err)
}

func (p *Postgres) CreateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := p.pool.QueryRow(ctx, `INSERT INTO reviews (rating, comment, day, client_id, client_surname, client_given_name, specialist_id, appointment_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		r.Rating, r.Comment, r.Date, r.Client.ID, r.Client.Surname, r.Client.GivenName, r.Specialist.ID, r.AppointmentID,
	).Scan(&r.ID)
	return r, err
}

func (p *Postgres) ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT id, title, message, sent_at, read, type, data
		FROM notifications WHERE user_id=$1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Notification, error) {
		var n domain.Notification
		err := row.Scan(&n.ID, &n.Title, &n.Message, &n.Date, &n.Read, &n.Type, &n.Data)
		return n, err
	})
}

func (p *Postgres) CreateNotification(ctx context.Context, userID int64, n domain.Notification) (domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	err := p.pool.QueryRow(ctx, `INSERT INTO notifications (user_id, title, message, sent_at, read, type, data)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		userID, n.Title, n.Message, n.Date, n.Read, n.Type, n.Data,
	).Scan(&n.ID)
	return n, err
}

func (p *Postgres) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	tag, err := p.pool.Exec(ctx, `UPDATE notifications SET read=true WHERE user_id=$1 AND id=$2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := p.pool.Exec(ctx, `UPDATE notifications SET read=true WHERE user_id=$1 AND NOT read`, userID)
	return err
}

func (p *Postgres) SaveDeviceToken(ctx context.Context, userID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := p.pool.Exec(ctx, `INSERT INTO device_tokens (token, user_id) VALUES ($1,$2)
		ON CONFLICT (token) DO UPDATE SET user_id=EXCLUDED.user_id, created_at=now()`, token, userID)
	return err
}

func (p *Postgres) DeviceTokens(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	rows, err := p.pool.Query(ctx, `SELECT token FROM device_tokens WHERE user_id=$1 ORDER BY token`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *Postgres) DeleteDeviceTokens(ctx context.Context, tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	_, err := p.pool.Exec(ctx, `DELETE FROM device_tokens WHERE token = ANY($1)`, tokens)
	return err
}
