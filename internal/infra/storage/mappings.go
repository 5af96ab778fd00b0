package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/domain/entity"
	"github.com/goccy/go-json"
)

// MappingStore keeps domain mappings as JSON under the bare custom domain.
type MappingStore struct {
	ns interfaces.Namespace
}

var _ interfaces.MappingStore = (*MappingStore)(nil)

func NewMappingStore(ns interfaces.Namespace) *MappingStore {
	return &MappingStore{ns: ns}
}

func (s *MappingStore) Get(ctx context.Context, domain string) (*entity.DomainMapping, error) {
	data, err := s.ns.Get(ctx, domain)
	if errors.Is(err, errs.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("err reading mapping for %s, %w", domain, err)
	}

	var mapping entity.DomainMapping
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("err decoding mapping for %s, %w", domain, err)
	}
	mapping.Domain = domain
	return &mapping, nil
}

func (s *MappingStore) Put(ctx context.Context, mapping *entity.DomainMapping) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("err encoding mapping for %s, %w", mapping.Domain, err)
	}
	return s.ns.Put(ctx, mapping.Domain, data)
}

func (s *MappingStore) Create(ctx context.Context, mapping *entity.DomainMapping) error {
	data, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("err encoding mapping for %s, %w", mapping.Domain, err)
	}
	created, err := s.ns.PutIfAbsent(ctx, mapping.Domain, data)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%s, %w", mapping.Domain, errs.ErrMappingExists)
	}
	return nil
}

func (s *MappingStore) Delete(ctx context.Context, domain string) error {
	return s.ns.Delete(ctx, domain)
}
