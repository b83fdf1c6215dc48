package services

import (
	"context"
	"errors"
	"strings"

	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/models"
	repo "github.com/smartsplit/expense-splitter/internal/repository"
)

type GroupService struct {
	groups repo.Groups
}

func NewGroupService(g repo.Groups) *GroupService { return &GroupService{groups: g} }

func (s *GroupService) Create(ctx context.Context, ownerID, name string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, errors.New("group name required")
	}
	return s.groups.Create(ctx, models.Group{Name: name, OwnerID: ownerID})
}

func (s *GroupService) Get(ctx context.Context, groupID string) (models.Group, error) {
	return s.groups.GetByID(ctx, groupID)
}

func (s *GroupService) Rename(ctx context.Context, groupID, name string) (models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Group{}, errors.New("group name required")
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	g.Name = name
	if err := s.groups.Update(ctx, g); err != nil {
		return models.Group{}, err
	}
	return g, nil
}

func (s *GroupService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	return s.groups.ListByUser(ctx, userID, limit, offset)
}

// Join adds the acting user to an existing group. The owner is implicitly a
// member and cannot join again.
func (s *GroupService) Join(ctx context.Context, userID, groupID string) (models.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	if g.IsMemberOrOwner(userID) {
		return models.Group{}, errors.New("already a member of this group")
	}
	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return models.Group{}, err
	}
	return s.groups.GetByID(ctx, groupID)
}

// RequireMemberOrOwner is the authorization capability the HTTP boundary
// checks before invoking ledger or simplifier operations; the core services
// assume any caller is already authorized.
func (s *GroupService) RequireMemberOrOwner(ctx context.Context, groupID, userID string) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.IsMemberOrOwner(userID) {
		return ledger.ErrNotGroupMember
	}
	return nil
}
