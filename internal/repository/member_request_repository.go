package repository

import (
	"context"
	"sort"
	"sync"
)

type memMemberRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*MemberRequest
}

func NewMemberRequestRepository() MemberRequestRepository {
	return &memMemberRequestRepository{requests: make(map[string]*MemberRequest)}
}

func (r *memMemberRequestRepository) Create(ctx context.Context, req *MemberRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.requests[req.ID]; exists {
		return ErrDuplicateID
	}
	r.requests[req.ID] = req.Clone()
	return nil
}

func (r *memMemberRequestRepository) FindByID(ctx context.Context, id string) (*MemberRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	return req.Clone(), nil
}

// FindAll returns requests oldest submission first.
func (r *memMemberRequestRepository) FindAll(ctx context.Context) ([]*MemberRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*MemberRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.Before(out[j].SubmittedAt)
	})
	return out, nil
}

func (r *memMemberRequestRepository) Update(ctx context.Context, req *MemberRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; !ok {
		return nil
	}
	r.requests[req.ID] = req.Clone()
	return nil
}
