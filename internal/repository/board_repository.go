package repository

import (
	"context"
	"database/sql"
	"fmt"

	"regatta-server/internal/models"
	"regatta-server/pkg/database"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

// BoardRepository provides data access for the notice board and entry list.
type BoardRepository interface {
	// Notice operations
	CreateNotice(ctx context.Context, notice *models.Notice) error
	ListNotices(ctx context.Context, filter NoticeFilter) ([]*models.Notice, int, error)
	GetNotice(ctx context.Context, id int64) (*models.Notice, error)
	MarkNoticeRead(ctx context.Context, id int64) error
	ToggleBookmark(ctx context.Context, id int64) (bool, error)

	// Document operations
	CreateDocument(ctx context.Context, doc *models.Document) error
	ListDocuments(ctx context.Context, kind *models.DocumentKind) ([]*models.Document, error)

	// Competitor operations
	UpsertCompetitor(ctx context.Context, competitor *models.Competitor) error
	ListCompetitors(ctx context.Context, filter CompetitorFilter) ([]*models.Competitor, int, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// NoticeFilter defines filters for querying notices
type NoticeFilter struct {
	Category   *models.NoticeCategory
	UnreadOnly bool
	Bookmarked bool
	Limit      int
	Offset     int
}

// CompetitorFilter defines filters for querying competitors
type CompetitorFilter struct {
	BoatClass    *string
	Registration *models.RegistrationStatus
	Payment      *models.PaymentStatus
	Limit        int
	Offset       int
}

// boardRepository implements BoardRepository
type boardRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewBoardRepository creates a new board repository
func NewBoardRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) BoardRepository {
	return &boardRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateNotice inserts a new notice board entry
func (r *boardRepository) CreateNotice(ctx context.Context, notice *models.Notice) error {
	if err := notice.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO notices (title, body, category, important, read, bookmarked, posted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		notice.Title,
		notice.Body,
		notice.Category,
		notice.Important,
		notice.Read,
		notice.Bookmarked,
		notice.PostedAt,
		notice.CreatedAt,
	).Scan(&notice.ID)

	if err != nil {
		return fmt.Errorf("failed to create notice: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_NOTICE] Notice created", logging.Fields{
		"notice_id": notice.ID,
		"category":  notice.Category,
	})

	return nil
}

// ListNotices retrieves notices with filtering and pagination
func (r *boardRepository) ListNotices(ctx context.Context, filter NoticeFilter) ([]*models.Notice, int, error) {
	query := `
		SELECT id, title, body, category, important, read, bookmarked, posted_at, created_at
		FROM notices
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, *filter.Category)
		argNum++
	}

	if filter.UnreadOnly {
		query += " AND read = FALSE"
	}

	if filter.Bookmarked {
		query += " AND bookmarked = TRUE"
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_notices", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notices: %w", err)
	}

	query += " ORDER BY important DESC, posted_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var notices []*models.Notice
	err = r.db.SelectContext(ctx, "list_notices", &notices, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notices: %w", err)
	}

	return notices, totalCount, nil
}

// GetNotice retrieves one notice by id
func (r *boardRepository) GetNotice(ctx context.Context, id int64) (*models.Notice, error) {
	query := `
		SELECT id, title, body, category, important, read, bookmarked, posted_at, created_at
		FROM notices
		WHERE id = $1
	`

	var notice models.Notice
	err := r.db.GetContext(ctx, "get_notice", &notice, query, id)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Resource: "notice", ID: fmt.Sprintf("%d", id)}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get notice: %w", err)
	}

	return &notice, nil
}

// MarkNoticeRead flags a notice as read. Idempotent.
func (r *boardRepository) MarkNoticeRead(ctx context.Context, id int64) error {
	query := `UPDATE notices SET read = TRUE WHERE id = $1`

	result, err := r.db.ExecContext(ctx, "mark_notice_read", query, id)
	if err != nil {
		return fmt.Errorf("failed to mark notice read: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Resource: "notice", ID: fmt.Sprintf("%d", id)}
	}

	return nil
}

// ToggleBookmark flips the bookmark flag and returns the new state.
func (r *boardRepository) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE notices SET bookmarked = NOT bookmarked WHERE id = $1 RETURNING bookmarked`

	var bookmarked bool
	err := r.db.DB().QueryRowContext(ctx, query, id).Scan(&bookmarked)

	if err == sql.ErrNoRows {
		return false, &NotFoundError{Resource: "notice", ID: fmt.Sprintf("%d", id)}
	}

	if err != nil {
		return false, fmt.Errorf("failed to toggle bookmark: %w", err)
	}

	return bookmarked, nil
}

// CreateDocument inserts a new document reference
func (r *boardRepository) CreateDocument(ctx context.Context, doc *models.Document) error {
	query := `
		INSERT INTO documents (title, url, kind, uploaded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		doc.Title,
		doc.URL,
		doc.Kind,
		doc.UploadedAt,
	).Scan(&doc.ID)

	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// ListDocuments retrieves documents, optionally filtered by kind
func (r *boardRepository) ListDocuments(ctx context.Context, kind *models.DocumentKind) ([]*models.Document, error) {
	query := `
		SELECT id, title, url, kind, uploaded_at
		FROM documents
	`
	args := []interface{}{}

	if kind != nil {
		query += " WHERE kind = $1"
		args = append(args, *kind)
	}

	query += " ORDER BY uploaded_at DESC"

	var docs []*models.Document
	err := r.db.SelectContext(ctx, "list_documents", &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	return docs, nil
}

// UpsertCompetitor creates or updates an entrant keyed by sail number
func (r *boardRepository) UpsertCompetitor(ctx context.Context, competitor *models.Competitor) error {
	if err := competitor.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO competitors (
			sail_number, boat_name, skipper_name, boat_class, country,
			registration_status, payment_status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (sail_number) DO UPDATE SET
			boat_name = EXCLUDED.boat_name,
			skipper_name = EXCLUDED.skipper_name,
			boat_class = EXCLUDED.boat_class,
			country = EXCLUDED.country,
			registration_status = EXCLUDED.registration_status,
			payment_status = EXCLUDED.payment_status
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		competitor.SailNumber,
		competitor.BoatName,
		competitor.SkipperName,
		competitor.BoatClass,
		competitor.Country,
		competitor.Registration,
		competitor.Payment,
		competitor.CreatedAt,
	).Scan(&competitor.ID)

	if err != nil {
		return fmt.Errorf("failed to upsert competitor: %w", err)
	}

	return nil
}

// ListCompetitors retrieves entrants with filtering and pagination
func (r *boardRepository) ListCompetitors(ctx context.Context, filter CompetitorFilter) ([]*models.Competitor, int, error) {
	query := `
		SELECT id, sail_number, boat_name, skipper_name, boat_class, country,
		       registration_status, payment_status, created_at
		FROM competitors
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.BoatClass != nil {
		query += fmt.Sprintf(" AND boat_class = $%d", argNum)
		args = append(args, *filter.BoatClass)
		argNum++
	}

	if filter.Registration != nil {
		query += fmt.Sprintf(" AND registration_status = $%d", argNum)
		args = append(args, *filter.Registration)
		argNum++
	}

	if filter.Payment != nil {
		query += fmt.Sprintf(" AND payment_status = $%d", argNum)
		args = append(args, *filter.Payment)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_competitors", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count competitors: %w", err)
	}

	query += " ORDER BY boat_class, sail_number"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var competitors []*models.Competitor
	err = r.db.SelectContext(ctx, "list_competitors", &competitors, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list competitors: %w", err)
	}

	return competitors, totalCount, nil
}

// HealthCheck performs a repository health check
func (r *boardRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
