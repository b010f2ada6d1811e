package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to the
// Postgres searcher.
type Service struct {
	meili *Meili
	pg    *PgSearch
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured.
func NewService(meili *Meili, pg *PgSearch) *Service {
	return &Service{meili: meili, pg: pg}
}

// Search tries Meilisearch if healthy, otherwise falls back to Postgres.
func (s *Service) Search(q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to postgres: %v", err)
	}

	results, total, err := s.pg.Search(q)
	if err != nil {
		log.Printf("search: postgres search error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexSpace indexes a Space (fire-and-forget to Meilisearch).
func (s *Service) IndexSpace(record SpaceRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexSpace(record); err != nil {
			log.Printf("search: index space %s: %v", record.ID, err)
		}
	}()
}

// IndexMoment indexes a Moment (fire-and-forget to Meilisearch).
func (s *Service) IndexMoment(record MomentRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexMoment(record); err != nil {
			log.Printf("search: index moment %s: %v", record.ID, err)
		}
	}()
}

// DeleteSpace removes a Space from the search index (fire-and-forget).
func (s *Service) DeleteSpace(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteSpace(id); err != nil {
			log.Printf("search: delete space %s: %v", id, err)
		}
	}()
}

// DeleteMoment removes a Moment from the search index (fire-and-forget).
func (s *Service) DeleteMoment(id string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeleteMoment(id); err != nil {
			log.Printf("search: delete moment %s: %v", id, err)
		}
	}()
}

// ReindexAllFromPG reads every Space and Moment from Postgres and pushes them
// into Meilisearch. Called during startup when Meilisearch is healthy.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.pg == nil {
		return
	}
	spaces, moments, err := s.pg.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if err := s.meili.IndexSpaces(spaces); err != nil {
		log.Printf("search: reindex spaces: %v", err)
	}
	if err := s.meili.IndexMoments(moments); err != nil {
		log.Printf("search: reindex moments: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
