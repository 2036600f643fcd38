package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/taskmaster/dayboard/internal/ports"
)

// StoreGateway implements ports.StoreGateway directly against the database
type StoreGateway struct {
	db *sqlx.DB
}

// NewStoreGateway creates a new SQL store gateway
func NewStoreGateway(db *sqlx.DB) *StoreGateway {
	return &StoreGateway{db: db}
}

func (g *StoreGateway) Select(ctx context.Context, q ports.SelectQuery) ([]ports.Row, error) {
	if err := checkIdentifiers(q.Table, q.EqColumn); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = ?`, q.Table, q.EqColumn)
	if q.OrderBy != "" {
		if err := checkIdentifiers(q.OrderBy); err != nil {
			return nil, err
		}
		direction := "ASC"
		if q.Descending {
			direction = "DESC"
		}
		query += fmt.Sprintf(` ORDER BY %s %s`, q.OrderBy, direction)
	}

	rows, err := g.db.QueryxContext(ctx, g.db.Rebind(query), q.EqValue)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", q.Table, err)
	}
	defer rows.Close()

	out := []ports.Row{}
	for rows.Next() {
		row := make(map[string]interface{})
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", q.Table, err)
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", q.Table, err)
	}

	return out, nil
}

func (g *StoreGateway) Update(ctx context.Context, m ports.UpdateMutation) error {
	if err := checkIdentifiers(m.Table, m.MatchColumn); err != nil {
		return err
	}
	if m.OwnerColumn != "" {
		if err := checkIdentifiers(m.OwnerColumn); err != nil {
			return err
		}
	}
	if len(m.Values) == 0 {
		return fmt.Errorf("update %s: no values to set", m.Table)
	}

	columns := make([]string, 0, len(m.Values))
	for col := range m.Values {
		if err := checkIdentifiers(col); err != nil {
			return err
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	assignments := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns)+2)
	for _, col := range columns {
		assignments = append(assignments, col+" = ?")
		args = append(args, m.Values[col])
	}
	args = append(args, m.MatchValue)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = ?`, m.Table, strings.Join(assignments, ", "), m.MatchColumn)
	if m.OwnerColumn != "" {
		query += fmt.Sprintf(` AND %s = ?`, m.OwnerColumn)
		args = append(args, m.OwnerValue)
	}

	result, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", m.Table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update %s where %s = %v: %w", m.Table, m.MatchColumn, m.MatchValue, ports.ErrNoMatch)
	}

	return nil
}

// normalizeRow turns driver byte slices into strings so rows look the same
// whichever driver produced them.
func normalizeRow(row map[string]interface{}) ports.Row {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return ports.Row(row)
}

// checkIdentifiers rejects anything but plain lower-case SQL identifiers,
// since table and column names are interpolated into the statement.
func checkIdentifiers(names ...string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("empty identifier")
		}
		for i, r := range name {
			switch {
			case r >= 'a' && r <= 'z', r == '_':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return fmt.Errorf("invalid identifier %q", name)
			}
		}
	}
	return nil
}
