package repositories

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
)

// Upsert the certification of one driver's log date.
func (p *PostgresDutyRepository) CertifyLog(ctx context.Context, c domain.LogCertification) error {
	if p.DB == nil {
		return errors.New("postgres duty repository: DB is nil")
	}

	query := `
	INSERT INTO log_certifications (
		driver_id,
		log_date,
		certified_at,
		method
	)
	VALUES ($1, $2::date, $3, $4)
	ON CONFLICT (driver_id, log_date) DO UPDATE SET
		certified_at = EXCLUDED.certified_at,
		method = EXCLUDED.method;
	`
	if _, err := p.DB.ExecContext(ctx, query, c.DriverID, c.LogDate, c.CertifiedAt, string(c.Method)); err != nil {
		return fmt.Errorf("certify log driver_id=%d date=%s: %w", c.DriverID, c.LogDate, err)
	}
	return nil
}

func (p *PostgresDutyRepository) UncertifyLog(ctx context.Context, driverID int, logDate string) error {
	if p.DB == nil {
		return errors.New("postgres duty repository: DB is nil")
	}

	res, err := p.DB.ExecContext(ctx,
		`DELETE FROM log_certifications WHERE driver_id = $1 AND log_date = $2::date;`,
		driverID, logDate)
	if err != nil {
		return fmt.Errorf("uncertify log driver_id=%d date=%s: %w", driverID, logDate, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("uncertify log driver_id=%d date=%s: rows affected: %w", driverID, logDate, err)
	}
	if n == 0 {
		return fmt.Errorf("uncertify log driver_id=%d date=%s: %w", driverID, logDate, ports.ErrLogNotCertified)
	}
	return nil
}

func (p *PostgresDutyRepository) ListCertifications(ctx context.Context, driverID int) ([]domain.LogCertification, error) {
	if p.DB == nil {
		return nil, errors.New("postgres duty repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		to_char(log_date, 'YYYY-MM-DD'),
		certified_at,
		method
	FROM log_certifications
	WHERE driver_id = $1
	ORDER BY log_date;
	`
	rows, err := p.DB.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("list certifications: query log_certifications table: %w", err)
	}
	defer rows.Close()

	var out []domain.LogCertification
	for rows.Next() {
		var c domain.LogCertification
		var method string
		if err := rows.Scan(&c.DriverID, &c.LogDate, &c.CertifiedAt, &method); err != nil {
			return nil, fmt.Errorf("list certifications: scan row: %w", err)
		}
		c.Method = domain.CertificationMethod(method)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list certifications: row iteration: %w", err)
	}

	return out, nil
}
