package services

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/taskmaster/dayboard/internal/domain/entities"
	"github.com/taskmaster/dayboard/internal/infrastructure/logger"
	"github.com/taskmaster/dayboard/internal/infrastructure/metrics"
	"github.com/taskmaster/dayboard/internal/ports"
)

// timestampLayouts are the formats the store is known to emit for date and
// timestamp columns.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// taskRow is a tasks row as stored, before it is mapped to entities.Task.
type taskRow struct {
	ID          string  `mapstructure:"id"`
	UserID      string  `mapstructure:"user_id"`
	Title       string  `mapstructure:"title"`
	Description *string `mapstructure:"description"`
	Status      string  `mapstructure:"status"`
	Importance  string  `mapstructure:"importance"`
	DueDate     *string `mapstructure:"due_date"`
	Category    *string `mapstructure:"category"`
	CreatedAt   string  `mapstructure:"created_at"`
	UpdatedAt   string  `mapstructure:"updated_at"`
}

// decodeRow copies a raw row into out, converting the representations the
// different gateways produce (time values, JSON-encoded arrays, integer
// booleans) into the target field types.
func decodeRow(row ports.Row, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			timeToStringHook,
			jsonArrayHook,
			intToBoolHook,
		),
		Result: out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	return dec.Decode(map[string]interface{}(row))
}

func timeToStringHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if t, ok := data.(time.Time); ok {
		return t.UTC().Format(time.RFC3339Nano), nil
	}
	return data, nil
}

func jsonArrayHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Slice {
		return data, nil
	}

	var raw string
	switch v := data.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return data, nil
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return []interface{}{}, nil
	}

	var out []interface{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode array column: %w", err)
	}
	return out, nil
}

func intToBoolHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to.Kind() != reflect.Bool {
		return data, nil
	}
	switch v := data.(type) {
	case int64:
		return v != 0, nil
	case int:
		return v != 0, nil
	}
	return data, nil
}

// parseTimestamp accepts any of timestampLayouts.
func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// toNote decodes a notes row. Notes use the store's column names as-is.
func toNote(row ports.Row) (entities.Note, error) {
	var note entities.Note
	if err := decodeRow(row, &note); err != nil {
		return entities.Note{}, fmt.Errorf("decode note: %w", err)
	}
	if note.Tags == nil {
		note.Tags = []string{}
	}
	if err := entities.ValidateNote(&note); err != nil {
		return entities.Note{}, err
	}
	return note, nil
}

// toTask decodes a tasks row and maps the snake-cased timestamp and due date
// columns onto entities.Task.
func toTask(row ports.Row) (entities.Task, error) {
	var raw taskRow
	if err := decodeRow(row, &raw); err != nil {
		return entities.Task{}, fmt.Errorf("decode task: %w", err)
	}

	task := entities.Task{
		ID:          raw.ID,
		UserID:      raw.UserID,
		Title:       raw.Title,
		Description: raw.Description,
		Status:      entities.TaskStatus(raw.Status),
		Importance:  entities.Importance(raw.Importance),
		Category:    raw.Category,
	}

	if raw.DueDate != nil && *raw.DueDate != "" {
		due, err := parseTimestamp(*raw.DueDate)
		if err != nil {
			return entities.Task{}, fmt.Errorf("task due_date: %w", err)
		}
		task.DueDate = &due
	}

	// Unparseable or missing timestamps stay zero and fail validation.
	if raw.CreatedAt != "" {
		if t, err := parseTimestamp(raw.CreatedAt); err == nil {
			task.CreatedAt = t
		}
	}
	if raw.UpdatedAt != "" {
		if t, err := parseTimestamp(raw.UpdatedAt); err == nil {
			task.UpdatedAt = t
		}
	}

	if err := entities.ValidateTask(&task); err != nil {
		return entities.Task{}, err
	}
	return task, nil
}

// collect maps every row with convert and keeps only the records that
// converted cleanly, in row order. Rejected rows are logged and counted.
func collect[T any](rows []ports.Row, kind string, convert func(ports.Row) (T, error), log *logger.Logger, m *metrics.Metrics) []T {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		record, err := convert(row)
		if err != nil {
			log.Warnw("Dropping invalid record",
				"kind", kind,
				"index", i,
				"id", row["id"],
				"error", err,
			)
			m.RecordDropped(kind)
			continue
		}
		out = append(out, record)
	}
	return out
}
