package service

import (
	"context"
	"time"
)

const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Health reports whether the backing store answers queries.
type Health struct {
	Service   string         `json:"service"`
	Database  DatabaseHealth `json:"database"`
	Timestamp time.Time      `json:"timestamp"`
}

type DatabaseHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Up reports whether every dependency is healthy.
func (h Health) Up() bool {
	return h.Database.Status == StatusUp
}

func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		Service:   "recorder",
		Timestamp: time.Now().UTC(),
		Database: DatabaseHealth{
			Status:  StatusUp,
			Message: "database is running and responsive",
		},
	}
	if err := s.store.Ping(ctx); err != nil {
		s.log.Error().Err(err).Msg("database health check failed")
		h.Database = DatabaseHealth{
			Status:  StatusDown,
			Message: "database is not reachable",
		}
	}
	return h
}
