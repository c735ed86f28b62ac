package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"stockrecon/internal/domain"
	"stockrecon/internal/port"
)

// receiptRow is the receipts table layout. The order, result and applied lines are JSONB
// documents; the order must survive so a pending receipt can still be accepted later.
type receiptRow struct {
	ID        uuid.UUID  `db:"id"`
	OrderID   string     `db:"order_id"`
	State     string     `db:"state"`
	OrderDoc  string     `db:"order_doc"`
	ResultDoc string     `db:"result_doc"`
	Applied   string     `db:"applied"`
	CreatedAt time.Time  `db:"created_at"`
	DecidedAt *time.Time `db:"decided_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

func toRow(r *domain.Receipt) (*receiptRow, error) {
	order, err := json.Marshal(r.Order)
	if err != nil {
		return nil, fmt.Errorf("encoding order: %w", err)
	}
	result, err := json.Marshal(r.Result)
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	applied := r.Applied
	if applied == nil {
		applied = []domain.ReceiptLine{}
	}
	lines, err := json.Marshal(applied)
	if err != nil {
		return nil, fmt.Errorf("encoding applied lines: %w", err)
	}
	return &receiptRow{
		ID:        r.ID,
		OrderID:   r.OrderID,
		State:     string(r.State),
		OrderDoc:  string(order),
		ResultDoc: string(result),
		Applied:   string(lines),
		CreatedAt: r.CreatedAt,
		DecidedAt: r.DecidedAt,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

func (row *receiptRow) toDomain() (*domain.Receipt, error) {
	r := &domain.Receipt{
		ID:        row.ID,
		OrderID:   row.OrderID,
		State:     domain.ReceiptState(row.State),
		CreatedAt: row.CreatedAt,
		DecidedAt: row.DecidedAt,
	}
	if err := json.Unmarshal([]byte(row.OrderDoc), &r.Order); err != nil {
		return nil, fmt.Errorf("decoding order of receipt %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.ResultDoc), &r.Result); err != nil {
		return nil, fmt.Errorf("decoding result of receipt %s: %w", row.ID, err)
	}
	if err := json.Unmarshal([]byte(row.Applied), &r.Applied); err != nil {
		return nil, fmt.Errorf("decoding applied lines of receipt %s: %w", row.ID, err)
	}
	if len(r.Applied) == 0 {
		r.Applied = nil
	}
	return r, nil
}

type receiptRepo struct {
	db *sqlx.DB
}

// NewReceiptRepo creates a new PostgreSQL-backed ReceiptRepository.
func NewReceiptRepo(db *sqlx.DB) port.ReceiptRepository {
	return &receiptRepo{db: db}
}

const selectReceipt = `SELECT id, order_id, state, order_doc::text AS order_doc,
	result_doc::text AS result_doc, applied::text AS applied, created_at, decided_at, updated_at
	FROM receipts`

// Save inserts the receipt or overwrites its mutable columns.
func (r *receiptRepo) Save(ctx context.Context, receipt *domain.Receipt) error {
	row, err := toRow(receipt)
	if err != nil {
		return fmt.Errorf("receiptRepo.Save: %w", err)
	}

	query := `INSERT INTO receipts
		(id, order_id, state, order_doc, result_doc, applied, created_at, decided_at, updated_at)
		VALUES (:id, :order_id, :state, CAST(:order_doc AS jsonb), CAST(:result_doc AS jsonb),
		        CAST(:applied AS jsonb), :created_at, :decided_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			result_doc = EXCLUDED.result_doc,
			applied = EXCLUDED.applied,
			decided_at = EXCLUDED.decided_at,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("receiptRepo.Save: %w", err)
	}
	return nil
}

func (r *receiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	var row receiptRow
	err := r.db.GetContext(ctx, &row, selectReceipt+" WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReceiptNotFound
		}
		return nil, fmt.Errorf("receiptRepo.GetByID: %w", err)
	}
	return row.toDomain()
}

// List returns receipts newest first.
func (r *receiptRepo) List(ctx context.Context, offset, limit int) ([]domain.Receipt, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM receipts"); err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List count: %w", err)
	}

	var rows []receiptRow
	err := r.db.SelectContext(ctx, &rows,
		selectReceipt+" ORDER BY created_at DESC, id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("receiptRepo.List: %w", err)
	}

	receipts := make([]domain.Receipt, 0, len(rows))
	for i := range rows {
		rc, err := rows[i].toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("receiptRepo.List: %w", err)
		}
		receipts = append(receipts, *rc)
	}
	return receipts, total, nil
}
