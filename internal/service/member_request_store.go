package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/repository"
	"github.com/Marga-Ghale/acm-chapter-dashboard/internal/types"
)

// MemberRequestStore holds membership applications. A request only ever moves
// out of pending, once.
type MemberRequestStore struct {
	repo repository.MemberRequestRepository
	now  func() time.Time
}

func NewMemberRequestStore(repo repository.MemberRequestRepository) *MemberRequestStore {
	return &MemberRequestStore{repo: repo, now: time.Now}
}

// List returns every request, oldest first, optionally filtered by status.
func (s *MemberRequestStore) List(ctx context.Context, status *types.RequestStatus) ([]*repository.MemberRequest, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return all, nil
	}
	out := make([]*repository.MemberRequest, 0, len(all))
	for _, r := range all {
		if r.Status == *status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemberRequestStore) Approve(ctx context.Context, id string) (*repository.MemberRequest, error) {
	return s.decide(ctx, id, types.RequestApproved)
}

func (s *MemberRequestStore) Reject(ctx context.Context, id string) (*repository.MemberRequest, error) {
	return s.decide(ctx, id, types.RequestRejected)
}

func (s *MemberRequestStore) decide(ctx context.Context, id string, to types.RequestStatus) (*repository.MemberRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	if req.Status != types.RequestPending {
		return nil, fmt.Errorf("%w: request %s is %s", ErrInvalidTransition, id, req.Status)
	}

	now := s.now()
	req.Status = to
	req.DecidedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to update member request: %w", err)
	}
	return req, nil
}
