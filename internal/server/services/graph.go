package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sweatstreak/internal/common"
	"sweatstreak/internal/server/repositories/repomanager"
)

// GraphService manages follow and block relations. Blocking never touches
// follow edges; the two relations are kept independent.
type GraphService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewGraphService(db *sql.DB, m repomanager.RepositoryManager) *GraphService {
	return &GraphService{db: db, repomanager: m}
}

func (s *GraphService) Follow(ctx context.Context, follower, followee string) error {
	if follower == followee {
		return common.ErrorSelfFollow
	}

	if _, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, followee); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}

	err := s.repomanager.SocialGraph(s.db).Follow(ctx, follower, followee)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicate) {
			return common.ErrorAlreadyFollowing
		}
		return fmt.Errorf("error creating follow edge: %v", err)
	}
	return nil
}

// Unfollow is idempotent; removing an absent edge succeeds.
func (s *GraphService) Unfollow(ctx context.Context, follower, followee string) error {
	return s.repomanager.SocialGraph(s.db).Unfollow(ctx, follower, followee)
}

func (s *GraphService) Block(ctx context.Context, username, target string) error {
	if _, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, target); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return common.ErrorInternal
	}
	return s.repomanager.SocialGraph(s.db).Block(ctx, username, target)
}

func (s *GraphService) Unblock(ctx context.Context, username, target string) error {
	return s.repomanager.SocialGraph(s.db).Unblock(ctx, username, target)
}

func (s *GraphService) Following(ctx context.Context, username string) ([]string, error) {
	return s.repomanager.SocialGraph(s.db).Following(ctx, username)
}

func (s *GraphService) Followers(ctx context.Context, username string) ([]string, error) {
	return s.repomanager.SocialGraph(s.db).Followers(ctx, username)
}

func (s *GraphService) Blocked(ctx context.Context, username string) ([]string, error) {
	return s.repomanager.SocialGraph(s.db).Blocked(ctx, username)
}

func (s *GraphService) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	return s.repomanager.SocialGraph(s.db).IsFollowing(ctx, follower, followee)
}
