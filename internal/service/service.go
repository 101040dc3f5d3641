// Package service implements the session and payload operations on top of a Store.
package service

import (
	"github.com/xiaot623/gogo/recorder/internal/logging"
	"github.com/xiaot623/gogo/recorder/internal/repository"
)

type Service struct {
	store repository.Store
	log   *logging.Logger
}

func New(store repository.Store, log *logging.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{
		store: store,
		log:   log.Sub("service"),
	}
}
