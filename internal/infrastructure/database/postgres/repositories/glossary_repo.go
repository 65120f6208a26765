// Package repositories implements the domain persistence ports on
// PostgreSQL.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/domain/glossary"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PhytoTrait-Intelligence/pkg/errors"
)

// postgresGlossaryRepo stores vocabulary terms in the botanical_terms
// table.  Synonyms live in a jsonb column; position preserves curation
// order so LoadTerms returns terms the way curators ranked them.
type postgresGlossaryRepo struct {
	conn   *postgres.Connection
	logger logging.Logger
}

// NewPostgresGlossaryRepo builds the PostgreSQL-backed term repository.
func NewPostgresGlossaryRepo(conn *postgres.Connection, log logging.Logger) glossary.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresGlossaryRepo{conn: conn, logger: log}
}

const loadTermsQuery = `
SELECT name, category, ai_derivable, measurement_unit, synonyms
FROM botanical_terms
ORDER BY position, name`

func (r *postgresGlossaryRepo) LoadTerms(ctx context.Context) ([]glossary.Term, error) {
	rows, err := r.conn.DB().QueryContext(ctx, loadTermsQuery)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to query botanical terms")
	}
	defer rows.Close()

	var terms []glossary.Term
	for rows.Next() {
		var term glossary.Term
		var synonyms []byte
		if err := rows.Scan(&term.Name, &term.Category, &term.AIDerivable, &term.MeasurementUnit, &synonyms); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan botanical term")
		}
		if len(synonyms) > 0 {
			if err := json.Unmarshal(synonyms, &term.Synonyms); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeSerialization, "malformed synonyms column").WithDetail(term.Name)
			}
		}
		terms = append(terms, term)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate botanical terms")
	}

	r.logger.Debug("loaded botanical terms", logging.Int("count", len(terms)))
	return terms, nil
}

const upsertTermQuery = `
INSERT INTO botanical_terms (name, category, ai_derivable, measurement_unit, synonyms)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (name) DO UPDATE SET
	category = EXCLUDED.category,
	ai_derivable = EXCLUDED.ai_derivable,
	measurement_unit = EXCLUDED.measurement_unit,
	synonyms = EXCLUDED.synonyms,
	updated_at = now()`

func (r *postgresGlossaryRepo) UpsertTerm(ctx context.Context, term glossary.Term) error {
	if err := term.Validate(); err != nil {
		return err
	}
	synonyms, err := json.Marshal(term.Synonyms)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode synonyms")
	}
	_, err = r.conn.DB().ExecContext(ctx, upsertTermQuery,
		term.Name, term.Category, term.AIDerivable, term.MeasurementUnit, synonyms)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to upsert botanical term").WithDetail(term.Name)
	}
	return nil
}

func (r *postgresGlossaryRepo) DeleteTerm(ctx context.Context, name string) error {
	result, err := r.conn.DB().ExecContext(ctx, `DELETE FROM botanical_terms WHERE name = $1`, name)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete botanical term").WithDetail(name)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errors.New(errors.ErrCodeNotFound, "botanical term not found").WithDetail(name)
	}
	return nil
}

func (r *postgresGlossaryRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.conn.DB().QueryRowContext(ctx, `SELECT count(*) FROM botanical_terms`).Scan(&count)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count botanical terms")
	}
	return count, nil
}
