package postgres

// SQL for the booking data layer. Dates are SQL DATE values; commitment intervals are [start_date, end_date).

const (
	// queryFetchCommitments returns commitments of one unit overlapping [$2, $3).
	// $4 is an id to exclude ('' for none), $5 statuses to exclude, $6 kinds to keep (empty = all).
	queryFetchCommitments = `
		SELECT id, unit_id, start_date, end_date, kind, status, label
		FROM commitments
		WHERE unit_id = $1
		  AND start_date < $3
		  AND end_date > $2
		  AND ($4::text = '' OR id <> $4::text)
		  AND NOT (status = ANY($5::text[]))
		  AND (cardinality($6::text[]) = 0 OR kind = ANY($6::text[]))
		ORDER BY start_date ASC, id ASC
	`

	// queryInsertCommitment relies on the commitments_no_overlap exclusion constraint for the
	// authoritative overlap check (SQLSTATE 23P01). ON CONFLICT (id) returns no row for duplicates.
	queryInsertCommitment = `
		INSERT INTO commitments (id, unit_id, start_date, end_date, kind, status, label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
		RETURNING id
	`

	// queryFetchReservationsOverlapping matches reservations whose billable span
	// [check_in, check_out] overlaps the period [$1, $2).
	queryFetchReservationsOverlapping = `
		SELECT id, unit_id, check_in, check_out, total_value, fees, platform, status, guests
		FROM reservations
		WHERE check_in < $2
		  AND check_out >= $1
		  AND NOT (status = ANY($3::text[]))
		  AND ($4::text = '' OR unit_id = $4::text)
		ORDER BY check_in ASC, id ASC
	`

	queryFetchUnit = `
		SELECT id, owner_id, name, active
		FROM units
		WHERE id = $1
	`

	queryCountUnits = `
		SELECT COUNT(*)
		FROM units
		WHERE ($1::text = '' OR owner_id = $1::text)
		  AND (NOT $2::boolean OR active)
	`

	querySchemaTables = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_name IN ('units', 'commitments', 'reservations')
	`
)

// sqlStateExclusionViolation is raised when an insert violates an EXCLUDE constraint.
const sqlStateExclusionViolation = "23P01"
