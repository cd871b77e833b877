package service

import (
	"github.com/okian/riftbalance/internal/adapters/repository"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the player store. The in-memory store is used otherwise.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithBalancer sets the balancer used by Balance.
func WithBalancer(b *balance.Balancer) Option {
	return func(s *Service) {
		if b != nil {
			s.balancer = b
		}
	}
}

// WithRiotClient enables Riot account synchronisation.
func WithRiotClient(rc RiotClient) Option {
	return func(s *Service) {
		if rc != nil {
			s.riot = rc
		}
	}
}

// WithWorkerCount sets the number of ingestion workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the ingestion queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many game ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
