// Package storage persists the property graph and computed statements in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bollette/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Empty reports whether no rooms have been stored yet, so callers can decide
// to seed the database from a household file on first run.
func (r *SQLiteRepository) Empty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return false, fmt.Errorf("count rooms: %w", err)
	}
	return count == 0, nil
}

// Seed writes a full property graph into an empty database.
func (r *SQLiteRepository) Seed(ctx context.Context, prop *core.Property) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO property (id, common_area) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET common_area = excluded.common_area`,
		prop.CommonArea); err != nil {
		return fmt.Errorf("seed property: %w", err)
	}

	for _, room := range prop.Rooms {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (name, area) VALUES (?, ?)`, room.Name, room.Area)
		if err != nil {
			return fmt.Errorf("seed room %q: %w", room.Name, err)
		}
		roomID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("room id: %w", err)
		}
		for pos, occ := range room.Occupants {
			occRes, err := tx.ExecContext(ctx,
				`INSERT INTO occupants (room_id, name, surname, position) VALUES (?, ?, ?, ?)`,
				roomID, occ.Name, occ.Surname, pos)
			if err != nil {
				return fmt.Errorf("seed occupant %s: %w", occ.FullName(), err)
			}
			occID, err := occRes.LastInsertId()
			if err != nil {
				return fmt.Errorf("occupant id: %w", err)
			}
			for _, pay := range occ.Payments {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO payments (occupant_id, amount, paid_on) VALUES (?, ?, ?)`,
					occID, pay.Amount, pay.Date.String()); err != nil {
					return fmt.Errorf("seed payment for %s: %w", occ.FullName(), err)
				}
			}
		}
	}

	for _, utility := range prop.Utilities {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO utilities (name, sharing) VALUES (?, ?)`,
			utility.Name, string(utility.Sharing))
		if err != nil {
			return fmt.Errorf("seed utility %q: %w", utility.Name, err)
		}
		utilityID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("utility id: %w", err)
		}
		for _, period := range utility.Periods() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO cost_periods (utility_id, start_date, end_date, cost) VALUES (?, ?, ?, ?)`,
				utilityID, period.Start.String(), period.End.String(), period.Cost); err != nil {
				return fmt.Errorf("seed period for %q: %w", utility.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.InfoContext(ctx, "Seeded property graph",
		"rooms", len(prop.Rooms),
		"utilities", len(prop.Utilities))
	return nil
}

// LoadProperty rebuilds the property graph through the domain constructors,
// so a corrupted timeline in the database surfaces as a domain error.
func (r *SQLiteRepository) LoadProperty(ctx context.Context) (*core.Property, error) {
	prop := core.NewProperty()

	var commonArea float64
	err := r.db.QueryRowContext(ctx, `SELECT common_area FROM property WHERE id = 1`).Scan(&commonArea)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load common area: %w", err)
	}
	prop.SetCommonArea(commonArea)

	if err := r.loadRooms(ctx, prop); err != nil {
		return nil, err
	}
	if err := r.loadUtilities(ctx, prop); err != nil {
		return nil, err
	}
	return prop, nil
}

func (r *SQLiteRepository) loadRooms(ctx context.Context, prop *core.Property) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, area FROM rooms ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load rooms: %w", err)
	}
	defer rows.Close()

	type roomRow struct {
		id   int64
		room *core.Room
	}
	var roomRows []roomRow
	for rows.Next() {
		var id int64
		var name string
		var area float64
		if err := rows.Scan(&id, &name, &area); err != nil {
			return fmt.Errorf("scan room: %w", err)
		}
		room, err := core.NewRoom(name, area)
		if err != nil {
			return fmt.Errorf("rebuild room: %w", err)
		}
		roomRows = append(roomRows, roomRow{id: id, room: room})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate rooms: %w", err)
	}

	for _, rr := range roomRows {
		if err := r.loadOccupants(ctx, rr.id, rr.room); err != nil {
			return err
		}
		prop.AddRoom(rr.room)
	}
	return nil
}

func (r *SQLiteRepository) loadOccupants(ctx context.Context, roomID int64, room *core.Room) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, surname FROM occupants WHERE room_id = ? ORDER BY position, id`, roomID)
	if err != nil {
		return fmt.Errorf("load occupants: %w", err)
	}
	defer rows.Close()

	type occRow struct {
		id  int64
		occ *core.Person
	}
	var occRows []occRow
	for rows.Next() {
		var id int64
		var name, surname string
		if err := rows.Scan(&id, &name, &surname); err != nil {
			return fmt.Errorf("scan occupant: %w", err)
		}
		occRows = append(occRows, occRow{id: id, occ: core.NewPerson(name, surname)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate occupants: %w", err)
	}

	for _, or := range occRows {
		if err := r.loadPayments(ctx, or.id, or.occ); err != nil {
			return err
		}
		room.AddOccupant(or.occ)
	}
	return nil
}

func (r *SQLiteRepository) loadPayments(ctx context.Context, occupantID int64, occ *core.Person) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount, paid_on FROM payments WHERE occupant_id = ? ORDER BY id`, occupantID)
	if err != nil {
		return fmt.Errorf("load payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var amount float64
		var paidOn string
		if err := rows.Scan(&amount, &paidOn); err != nil {
			return fmt.Errorf("scan payment: %w", err)
		}
		date, err := core.ParseDate(paidOn)
		if err != nil {
			return fmt.Errorf("rebuild payment date: %w", err)
		}
		occ.AddPayment(amount, date)
	}
	return rows.Err()
}

func (r *SQLiteRepository) loadUtilities(ctx context.Context, prop *core.Property) error {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, sharing FROM utilities ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load utilities: %w", err)
	}
	defer rows.Close()

	type utilRow struct {
		id      int64
		utility *core.Utility
	}
	var utilRows []utilRow
	for rows.Next() {
		var id int64
		var name, sharing string
		if err := rows.Scan(&id, &name, &sharing); err != nil {
			return fmt.Errorf("scan utility: %w", err)
		}
		utility, err := core.NewUtility(name, core.SharingType(sharing))
		if err != nil {
			return fmt.Errorf("rebuild utility: %w", err)
		}
		utilRows = append(utilRows, utilRow{id: id, utility: utility})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate utilities: %w", err)
	}

	for _, ur := range utilRows {
		if err := r.loadPeriods(ctx, ur.id, ur.utility); err != nil {
			return err
		}
		prop.AddUtility(ur.utility)
	}
	return nil
}

func (r *SQLiteRepository) loadPeriods(ctx context.Context, utilityID int64, utility *core.Utility) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT start_date, end_date, cost FROM cost_periods WHERE utility_id = ? ORDER BY start_date`, utilityID)
	if err != nil {
		return fmt.Errorf("load cost periods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var startStr, endStr string
		var cost float64
		if err := rows.Scan(&startStr, &endStr, &cost); err != nil {
			return fmt.Errorf("scan cost period: %w", err)
		}
		start, err := core.ParseDate(startStr)
		if err != nil {
			return fmt.Errorf("rebuild period start: %w", err)
		}
		end, err := core.ParseDate(endStr)
		if err != nil {
			return fmt.Errorf("rebuild period end: %w", err)
		}
		period, err := core.NewCostPeriod(start, end, cost)
		if err != nil {
			return fmt.Errorf("utility %q: %w", utility.Name, err)
		}
		if err := utility.AddCostPeriod(period); err != nil {
			return fmt.Errorf("utility %q: %w", utility.Name, err)
		}
	}
	return rows.Err()
}

// AddCostPeriod validates the new period against the utility's stored
// timeline and appends it.
func (r *SQLiteRepository) AddCostPeriod(ctx context.Context, utilityName string, period core.CostPeriod) error {
	var utilityID int64
	var sharing string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, sharing FROM utilities WHERE name = ?`, utilityName).Scan(&utilityID, &sharing)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Kind: "utility", Name: utilityName}
	}
	if err != nil {
		return fmt.Errorf("lookup utility: %w", err)
	}

	// Replaying the stored timeline through the domain type runs the overlap
	// and adjacency checks for the new period.
	utility, err := core.NewUtility(utilityName, core.SharingType(sharing))
	if err != nil {
		return fmt.Errorf("rebuild utility: %w", err)
	}
	if err := r.loadPeriods(ctx, utilityID, utility); err != nil {
		return err
	}
	if err := utility.AddCostPeriod(period); err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO cost_periods (utility_id, start_date, end_date, cost) VALUES (?, ?, ?, ?)`,
		utilityID, period.Start.String(), period.End.String(), period.Cost); err != nil {
		return fmt.Errorf("insert cost period: %w", err)
	}

	slog.InfoContext(ctx, "Cost period saved",
		"utility", utilityName,
		"start", period.Start.String(),
		"end", period.End.String(),
		"cost", period.Cost)
	return nil
}

// AddPayment records a payment for the named occupant.
func (r *SQLiteRepository) AddPayment(ctx context.Context, name, surname string, payment core.Payment) error {
	var occupantID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM occupants WHERE name = ? AND surname = ?`, name, surname).Scan(&occupantID)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.NotFoundError{Kind: "occupant", Name: name + " " + surname}
	}
	if err != nil {
		return fmt.Errorf("lookup occupant: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (occupant_id, amount, paid_on) VALUES (?, ?, ?)`,
		occupantID, payment.Amount, payment.Date.String()); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved",
		"occupant", name+" "+surname,
		"amount", payment.Amount,
		"paid_on", payment.Date.String())
	return nil
}

// SaveStatement persists a computed statement with its lines.
func (r *SQLiteRepository) SaveStatement(ctx context.Context, st core.Statement) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin statement transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO statements (from_date, to_date, total, generated_at) VALUES (?, ?, ?, ?)`,
		st.From.String(), st.To.String(), st.Total, st.GeneratedAt.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert statement: %w", err)
	}
	stID, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("statement id: %w", err)
	}

	for _, line := range st.Lines {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO statement_lines (statement_id, name, surname, owed, paid, balance)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			stID, line.Name, line.Surname, line.Owed, line.Paid, line.Balance); err != nil {
			return "", fmt.Errorf("insert statement line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement saved",
		"id", stID,
		"from", st.From.String(),
		"to", st.To.String(),
		"total", st.Total,
		"lines", len(st.Lines))
	return strconv.FormatInt(stID, 10), nil
}

// LatestStatement returns the most recently persisted statement.
func (r *SQLiteRepository) LatestStatement(ctx context.Context) (core.Statement, error) {
	var st core.Statement
	var stID int64
	var fromStr, toStr, genStr string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, from_date, to_date, total, generated_at
		 FROM statements ORDER BY id DESC LIMIT 1`).Scan(&stID, &fromStr, &toStr, &st.Total, &genStr)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Statement{}, fmt.Errorf("no statements stored")
	}
	if err != nil {
		return core.Statement{}, fmt.Errorf("load statement: %w", err)
	}

	if st.From, err = core.ParseDate(fromStr); err != nil {
		return core.Statement{}, fmt.Errorf("rebuild statement from date: %w", err)
	}
	if st.To, err = core.ParseDate(toStr); err != nil {
		return core.Statement{}, fmt.Errorf("rebuild statement to date: %w", err)
	}
	if st.GeneratedAt, err = time.Parse(time.RFC3339, genStr); err != nil {
		return core.Statement{}, fmt.Errorf("rebuild statement timestamp: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, surname, owed, paid, balance
		 FROM statement_lines WHERE statement_id = ? ORDER BY surname, name`, stID)
	if err != nil {
		return core.Statement{}, fmt.Errorf("load statement lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line core.StatementLine
		if err := rows.Scan(&line.Name, &line.Surname, &line.Owed, &line.Paid, &line.Balance); err != nil {
			return core.Statement{}, fmt.Errorf("scan statement line: %w", err)
		}
		st.Lines = append(st.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return core.Statement{}, fmt.Errorf("iterate statement lines: %w", err)
	}
	return st, nil
}
