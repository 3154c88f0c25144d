package takes

import (
	"database/sql"
	"time"
)

func scanTake(scanner interface{ Scan(dest ...any) error }) (*Take, error) {
	var (
		take         Take
		createdRaw   string
		updatedRaw   string
		mediaPath    sql.NullString
		text         sql.NullString
		duration     sql.NullFloat64
		trackIndex   sql.NullInt64
		clipPath     sql.NullString
		micPath      sql.NullString
		latency      sql.NullFloat64
		rms          sql.NullFloat64
		peak         sql.NullFloat64
		refMedian    sql.NullFloat64
		takeMedian   sql.NullFloat64
		offsetCents  sql.NullFloat64
		contourCents sql.NullFloat64
	)
	if err := scanner.Scan(
		&take.CycleID,
		&createdRaw,
		&updatedRaw,
		&mediaPath,
		&text,
		&take.WindowStart,
		&take.WindowEnd,
		&duration,
		&trackIndex,
		&clipPath,
		&micPath,
		&latency,
		&rms,
		&peak,
		&refMedian,
		&takeMedian,
		&offsetCents,
		&contourCents,
	); err != nil {
		return nil, err
	}

	take.MediaPath = mediaPath.String
	take.Text = text.String
	take.ClipPath = clipPath.String
	take.MicPath = micPath.String
	take.Duration = floatPtr(duration)
	take.LatencyMs = floatPtr(latency)
	take.RMS = floatPtr(rms)
	take.Peak = floatPtr(peak)
	take.RefMedianHz = floatPtr(refMedian)
	take.TakeMedianHz = floatPtr(takeMedian)
	take.OffsetCents = floatPtr(offsetCents)
	take.ContourCents = floatPtr(contourCents)
	if trackIndex.Valid {
		idx := int(trackIndex.Int64)
		take.TrackIndex = &idx
	}
	if t, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		take.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		take.UpdatedAt = t
	}
	return &take, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
