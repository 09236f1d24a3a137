package mysql

import (
	"context"
	"database/sql"

	"stays_mcp/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Record(ctx context.Context, e domain.SearchLogEntry) error {
	_, err := r.db.ExecContext(ctx, insertSearchSQL,
		e.Destination,
		valStr(e.CheckIn),
		valStr(e.CheckOut),
		e.Adults,
		e.Rooms,
		string(e.Source),
		e.TotalFound,
		e.TotalReturned,
		e.DurationMS,
	)
	return err
}

func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.SearchLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, recentSearchesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.SearchLogEntry
	for rows.Next() {
		var (
			e                 domain.SearchLogEntry
			checkIn, checkOut sql.NullString
			source            string
		)
		if err := rows.Scan(
			&e.ID,
			&e.Destination,
			&checkIn, &checkOut,
			&e.Adults,
			&e.Rooms,
			&source,
			&e.TotalFound,
			&e.TotalReturned,
			&e.DurationMS,
			&e.CreatedAt, // needs parseTime=true in the DSN
		); err != nil {
			return nil, err
		}
		if checkIn.Valid {
			s := checkIn.String
			e.CheckIn = &s
		}
		if checkOut.Valid {
			s := checkOut.String
			e.CheckOut = &s
		}
		e.Source = domain.Source(source)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
