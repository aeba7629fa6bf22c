package services

import (
	"context"
	"time"

	"regatta-server/internal/events"
	"regatta-server/internal/models"
	"regatta-server/internal/repository"
	"regatta-server/internal/stream"
	"regatta-server/pkg/cache"
	"regatta-server/pkg/logging"
	"regatta-server/pkg/metrics"
)

const (
	cacheKeyNotices   = "board:notices"
	cacheKeyDocuments = "board:documents"
	cacheKeyEntrants  = "board:entrants"

	boardCacheTTL = 30 * time.Minute

	defaultPageSize = 50
	maxPageSize     = 200
)

// NoticeList is a page of notices plus provenance. Source is "live",
// "cached", or "demo"; Degraded is set whenever the backend could not be
// reached and a fallback tier answered instead.
type NoticeList struct {
	Notices  []*models.Notice `json:"notices"`
	Total    int              `json:"total_count"`
	Source   string           `json:"source"`
	Degraded bool             `json:"degraded"`
}

// DocumentList is the regatta document set plus provenance.
type DocumentList struct {
	Documents []*models.Document `json:"documents"`
	Source    string             `json:"source"`
	Degraded  bool               `json:"degraded"`
}

// CompetitorList is a page of entrants plus provenance.
type CompetitorList struct {
	Competitors []*models.Competitor `json:"competitors"`
	Total       int                  `json:"total_count"`
	Source      string               `json:"source"`
	Degraded    bool                 `json:"degraded"`
}

// BoardService serves the notice board, regatta documents, and the entry
// list. Every read resolves through the fallback chain backend -> cache ->
// demo data, so the client always gets a populated response.
type BoardService struct {
	repo    repository.BoardRepository
	cache   *cache.RedisCache
	broker  *stream.Broker
	events  *events.Publisher
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewBoardService creates a board service. repo and cache may be nil when
// the backing stores are unavailable; reads then degrade straight to the
// next tier.
func NewBoardService(
	repo repository.BoardRepository,
	redisCache *cache.RedisCache,
	broker *stream.Broker,
	publisher *events.Publisher,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *BoardService {
	return &BoardService{
		repo:    repo,
		cache:   redisCache,
		broker:  broker,
		events:  publisher,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListNotices returns notices matching the filter. When the backend is
// down the filter is applied in memory over the cached or demo tier.
func (s *BoardService) ListNotices(ctx context.Context, filter repository.NoticeFilter) (*NoticeList, error) {
	normalizePage(&filter.Limit, &filter.Offset)

	if s.repo != nil {
		notices, total, err := s.repo.ListNotices(ctx, filter)
		if err == nil {
			s.cacheDefaultNotices(ctx, filter, notices)
			return &NoticeList{Notices: notices, Total: total, Source: "live"}, nil
		}

		s.logger.Warn(ctx, "[BOARD_FALLBACK] Notice backend unavailable", logging.Fields{
			"tier": "cache",
		}, err)
	}

	if s.cache != nil {
		var cached []*models.Notice
		if err := s.cache.GetJSON(ctx, cacheKeyNotices, &cached); err == nil {
			s.metrics.RecordFallback("notices", "cache")
			notices, total := pageNotices(filterNotices(cached, filter), filter)
			return &NoticeList{Notices: notices, Total: total, Source: "cached", Degraded: true}, nil
		}
	}

	s.metrics.RecordFallback("notices", "demo")
	notices, total := pageNotices(filterNotices(DemoNotices(time.Now().UTC()), filter), filter)
	return &NoticeList{Notices: notices, Total: total, Source: "demo", Degraded: true}, nil
}

// GetNotice returns one notice from the backend.
func (s *BoardService) GetNotice(ctx context.Context, id int64) (*models.Notice, error) {
	if s.repo == nil {
		return nil, &repository.NotFoundError{Resource: "notice", ID: "backend unavailable"}
	}
	return s.repo.GetNotice(ctx, id)
}

// MarkNoticeRead flags a notice as read and pushes the change to
// subscribers. Read state is per-backend; in degraded mode the operation
// fails rather than silently dropping the write.
func (s *BoardService) MarkNoticeRead(ctx context.Context, id int64) error {
	if s.repo == nil {
		return &repository.NotFoundError{Resource: "notice", ID: "backend unavailable"}
	}

	if err := s.repo.MarkNoticeRead(ctx, id); err != nil {
		return err
	}

	s.publishNoticeChange(ctx, "read", id)
	return nil
}

// ToggleBookmark flips the bookmark flag and returns the new state.
func (s *BoardService) ToggleBookmark(ctx context.Context, id int64) (bool, error) {
	if s.repo == nil {
		return false, &repository.NotFoundError{Resource: "notice", ID: "backend unavailable"}
	}

	bookmarked, err := s.repo.ToggleBookmark(ctx, id)
	if err != nil {
		return false, err
	}

	s.publishNoticeChange(ctx, "bookmark", id)
	return bookmarked, nil
}

// PostNotice publishes a new notice and notifies subscribers.
func (s *BoardService) PostNotice(ctx context.Context, notice *models.Notice) error {
	if s.repo == nil {
		return &repository.NotFoundError{Resource: "notice board", ID: "backend unavailable"}
	}

	if notice.PostedAt.IsZero() {
		notice.PostedAt = time.Now().UTC()
	}
	notice.CreatedAt = time.Now().UTC()

	if err := s.repo.CreateNotice(ctx, notice); err != nil {
		return err
	}

	s.logger.Info(ctx, "[BOARD_POST] Notice posted", logging.Fields{
		"notice_id": notice.ID,
		"category":  notice.Category,
		"important": notice.Important,
	})

	s.publishNoticeChange(ctx, "posted", notice.ID)
	return nil
}

// RefreshNotices re-reads the board from the backend, updates the cache,
// and pushes the fresh list to subscribers. Used by the pull-to-refresh
// endpoint.
func (s *BoardService) RefreshNotices(ctx context.Context) (*NoticeList, error) {
	list, err := s.ListNotices(ctx, repository.NoticeFilter{Limit: defaultPageSize})
	if err != nil {
		return nil, err
	}

	s.broker.Publish(stream.KeyNotices, list)
	if err := s.events.Publish(events.SubjectNotices, list); err != nil {
		s.logger.Warn(ctx, "[BOARD_EVENT] Failed to publish notice refresh", logging.Fields{}, err)
	}

	return list, nil
}

// ListDocuments returns the regatta document set, optionally filtered by
// kind.
func (s *BoardService) ListDocuments(ctx context.Context, kind *models.DocumentKind) (*DocumentList, error) {
	if s.repo != nil {
		docs, err := s.repo.ListDocuments(ctx, kind)
		if err == nil {
			if kind == nil && s.cache != nil {
				if cacheErr := s.cache.SetJSON(ctx, cacheKeyDocuments, docs, boardCacheTTL); cacheErr != nil {
					s.logger.Warn(ctx, "[BOARD_CACHE] Failed to cache documents", logging.Fields{}, cacheErr)
				}
			}
			return &DocumentList{Documents: docs, Source: "live"}, nil
		}

		s.logger.Warn(ctx, "[BOARD_FALLBACK] Document backend unavailable", logging.Fields{
			"tier": "cache",
		}, err)
	}

	if s.cache != nil {
		var cached []*models.Document
		if err := s.cache.GetJSON(ctx, cacheKeyDocuments, &cached); err == nil {
			s.metrics.RecordFallback("documents", "cache")
			return &DocumentList{Documents: filterDocuments(cached, kind), Source: "cached", Degraded: true}, nil
		}
	}

	s.metrics.RecordFallback("documents", "demo")
	docs := filterDocuments(DemoDocuments(time.Now().UTC()), kind)
	return &DocumentList{Documents: docs, Source: "demo", Degraded: true}, nil
}

// ListCompetitors returns entrants matching the filter, degrading to the
// cached or demo tier when the backend is down.
func (s *BoardService) ListCompetitors(ctx context.Context, filter repository.CompetitorFilter) (*CompetitorList, error) {
	normalizePage(&filter.Limit, &filter.Offset)

	if s.repo != nil {
		competitors, total, err := s.repo.ListCompetitors(ctx, filter)
		if err == nil {
			s.cacheDefaultCompetitors(ctx, filter, competitors)
			return &CompetitorList{Competitors: competitors, Total: total, Source: "live"}, nil
		}

		s.logger.Warn(ctx, "[BOARD_FALLBACK] Entry list backend unavailable", logging.Fields{
			"tier": "cache",
		}, err)
	}

	if s.cache != nil {
		var cached []*models.Competitor
		if err := s.cache.GetJSON(ctx, cacheKeyEntrants, &cached); err == nil {
			s.metrics.RecordFallback("entrants", "cache")
			competitors, total := pageCompetitors(filterCompetitors(cached, filter), filter)
			return &CompetitorList{Competitors: competitors, Total: total, Source: "cached", Degraded: true}, nil
		}
	}

	s.metrics.RecordFallback("entrants", "demo")
	competitors, total := pageCompetitors(filterCompetitors(DemoCompetitors(time.Now().UTC()), filter), filter)
	return &CompetitorList{Competitors: competitors, Total: total, Source: "demo", Degraded: true}, nil
}

// RegisterCompetitor creates or updates an entrant keyed by sail number
// and pushes the change to subscribers.
func (s *BoardService) RegisterCompetitor(ctx context.Context, competitor *models.Competitor) error {
	if s.repo == nil {
		return &repository.NotFoundError{Resource: "entry list", ID: "backend unavailable"}
	}

	if competitor.CreatedAt.IsZero() {
		competitor.CreatedAt = time.Now().UTC()
	}

	if err := s.repo.UpsertCompetitor(ctx, competitor); err != nil {
		return err
	}

	s.logger.Info(ctx, "[BOARD_ENTRY] Entrant registered", logging.Fields{
		"sail_number": competitor.SailNumber,
		"boat_class":  competitor.BoatClass,
	})

	s.broker.Publish(stream.KeyEntrants, competitor)
	if err := s.events.Publish(events.SubjectEntrants, competitor); err != nil {
		s.logger.Warn(ctx, "[BOARD_EVENT] Failed to publish entrant change", logging.Fields{}, err)
	}

	return nil
}

// HealthCheck reports backend availability. A nil repository reads as an
// error so /health can surface degraded mode.
func (s *BoardService) HealthCheck(ctx context.Context) error {
	if s.repo == nil {
		return &repository.NotFoundError{Resource: "notice board", ID: "backend unavailable"}
	}
	return s.repo.HealthCheck(ctx)
}

func (s *BoardService) publishNoticeChange(ctx context.Context, action string, id int64) {
	change := map[string]interface{}{"action": action, "notice_id": id}

	s.broker.Publish(stream.KeyNotices, change)
	if err := s.events.Publish(events.SubjectNotices, change); err != nil {
		s.logger.Warn(ctx, "[BOARD_EVENT] Failed to publish notice change", logging.Fields{
			"action": action,
		}, err)
	}
}

// cacheDefaultNotices stores the unfiltered first page as the
// last-known-good board. Filtered reads are not cached; the default view
// is what degraded mode serves.
func (s *BoardService) cacheDefaultNotices(ctx context.Context, filter repository.NoticeFilter, notices []*models.Notice) {
	if s.cache == nil || filter.Category != nil || filter.UnreadOnly || filter.Bookmarked || filter.Offset != 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, cacheKeyNotices, notices, boardCacheTTL); err != nil {
		s.logger.Warn(ctx, "[BOARD_CACHE] Failed to cache notices", logging.Fields{}, err)
	}
}

func (s *BoardService) cacheDefaultCompetitors(ctx context.Context, filter repository.CompetitorFilter, competitors []*models.Competitor) {
	if s.cache == nil || filter.BoatClass != nil || filter.Registration != nil || filter.Payment != nil || filter.Offset != 0 {
		return
	}
	if err := s.cache.SetJSON(ctx, cacheKeyEntrants, competitors, boardCacheTTL); err != nil {
		s.logger.Warn(ctx, "[BOARD_CACHE] Failed to cache entrants", logging.Fields{}, err)
	}
}

func normalizePage(limit, offset *int) {
	if *limit <= 0 {
		*limit = defaultPageSize
	}
	if *limit > maxPageSize {
		*limit = maxPageSize
	}
	if *offset < 0 {
		*offset = 0
	}
}

func filterNotices(notices []*models.Notice, filter repository.NoticeFilter) []*models.Notice {
	out := make([]*models.Notice, 0, len(notices))
	for _, n := range notices {
		if filter.Category != nil && n.Category != *filter.Category {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		if filter.Bookmarked && !n.Bookmarked {
			continue
		}
		out = append(out, n)
	}
	return out
}

func pageNotices(notices []*models.Notice, filter repository.NoticeFilter) ([]*models.Notice, int) {
	total := len(notices)
	if filter.Offset >= total {
		return []*models.Notice{}, total
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return notices[filter.Offset:end], total
}

func filterDocuments(docs []*models.Document, kind *models.DocumentKind) []*models.Document {
	if kind == nil {
		return docs
	}
	out := make([]*models.Document, 0, len(docs))
	for _, d := range docs {
		if d.Kind == *kind {
			out = append(out, d)
		}
	}
	return out
}

func filterCompetitors(competitors []*models.Competitor, filter repository.CompetitorFilter) []*models.Competitor {
	out := make([]*models.Competitor, 0, len(competitors))
	for _, c := range competitors {
		if filter.BoatClass != nil && c.BoatClass != *filter.BoatClass {
			continue
		}
		if filter.Registration != nil && c.Registration != *filter.Registration {
			continue
		}
		if filter.Payment != nil && c.Payment != *filter.Payment {
			continue
		}
		out = append(out, c)
	}
	return out
}

func pageCompetitors(competitors []*models.Competitor, filter repository.CompetitorFilter) ([]*models.Competitor, int) {
	total := len(competitors)
	if filter.Offset >= total {
		return []*models.Competitor{}, total
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return competitors[filter.Offset:end], total
}
