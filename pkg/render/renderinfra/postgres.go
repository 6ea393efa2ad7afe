package renderinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/ptrx"
	"github.com/Abraxas-365/fittsee/pkg/render"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository stores render jobs in the render_jobs table
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type jobRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	ProductID    string         `db:"product_id"`
	Size         string         `db:"size"`
	Status       string         `db:"status"`
	Progress     int            `db:"progress"`
	VideoURL     sql.NullString `db:"video_url"`
	ErrorMessage sql.NullString `db:"error_message"`
	EnqueuedAt   sql.NullTime   `db:"enqueued_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r jobRow) toDomain() *render.RenderJob {
	return &render.RenderJob{
		ID:           kernel.JobID(r.ID),
		UserID:       kernel.UserID(r.UserID),
		ProductID:    kernel.ProductID(r.ProductID),
		Size:         kernel.Size(r.Size),
		Status:       render.Status(r.Status),
		Progress:     r.Progress,
		VideoURL:     ptrx.FromNullString(r.VideoURL),
		ErrorMessage: ptrx.FromNullString(r.ErrorMessage),
		EnqueuedAt:   ptrx.FromNullTime(r.EnqueuedAt),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toRow(j *render.RenderJob) jobRow {
	return jobRow{
		ID:           j.ID.String(),
		UserID:       j.UserID.String(),
		ProductID:    j.ProductID.String(),
		Size:         j.Size.String(),
		Status:       string(j.Status),
		Progress:     j.Progress,
		VideoURL:     ptrx.ToNullString(j.VideoURL),
		ErrorMessage: ptrx.ToNullString(j.ErrorMessage),
		EnqueuedAt:   ptrx.ToNullTime(j.EnqueuedAt),
		CreatedAt:    j.CreatedAt,
		UpdatedAt:    j.UpdatedAt,
	}
}

func (r *PostgresRepository) Create(ctx context.Context, j *render.RenderJob) error {
	query := `
		INSERT INTO render_jobs
			(id, user_id, product_id, size, status, progress, video_url, error_message, enqueued_at, created_at, updated_at)
		VALUES
			(:id, :user_id, :product_id, :size, :status, :progress, :video_url, :error_message, :enqueued_at, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, toRow(j)); err != nil {
		return errx.Wrap(err, "failed to create render job", errx.TypeInternal).WithDetail("job_id", j.ID)
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id kernel.JobID) (*render.RenderJob, error) {
	if !kernel.IsValidUUID(id.String()) {
		return nil, render.ErrJobNotFound().WithDetail("job_id", id)
	}

	var row jobRow
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM render_jobs WHERE id = $1`, id.String()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, render.ErrJobNotFound().WithDetail("job_id", id)
		}
		return nil, errx.Wrap(err, "failed to find render job", errx.TypeInternal).WithDetail("job_id", id)
	}
	return row.toDomain(), nil
}

func (r *PostgresRepository) Transition(ctx context.Context, j *render.RenderJob, from render.Status) (bool, error) {
	query := `
		UPDATE render_jobs SET
			status = $1, progress = $2, video_url = $3, error_message = $4, updated_at = $5
		WHERE id = $6 AND status = $7`

	row := toRow(j)
	res, err := r.db.ExecContext(ctx, query,
		row.Status, row.Progress, row.VideoURL, row.ErrorMessage, row.UpdatedAt, row.ID, string(from))
	if err != nil {
		return false, errx.Wrap(err, "failed to update render job", errx.TypeInternal).
			WithDetail("job_id", j.ID).
			WithDetail("status", j.Status)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to read affected rows", errx.TypeInternal)
	}
	return n == 1, nil
}

func (r *PostgresRepository) MarkEnqueued(ctx context.Context, id kernel.JobID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE render_jobs SET enqueued_at = $1 WHERE id = $2 AND enqueued_at IS NULL`, at, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to mark render job enqueued", errx.TypeInternal).WithDetail("job_id", id)
	}
	return nil
}

func (r *PostgresRepository) ListUnqueued(ctx context.Context, olderThan time.Time, limit int) ([]*render.RenderJob, error) {
	var rows []jobRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT * FROM render_jobs
		WHERE status = 'QUEUED' AND enqueued_at IS NULL AND created_at < $1
		ORDER BY created_at
		LIMIT $2`, olderThan, limit)
	if err != nil {
		return nil, errx.Wrap(err, "failed to list unqueued render jobs", errx.TypeInternal)
	}

	jobs := make([]*render.RenderJob, len(rows))
	for i, row := range rows {
		jobs[i] = row.toDomain()
	}
	return jobs, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id kernel.JobID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM render_jobs WHERE id = $1 AND status = 'QUEUED'`, id.String())
	if err != nil {
		return errx.Wrap(err, "failed to delete render job", errx.TypeInternal).WithDetail("job_id", id)
	}
	return nil
}
