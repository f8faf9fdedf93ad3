package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pollafutbolera/polla-engine/models"
	"github.com/pollafutbolera/polla-engine/repositories"
	"github.com/pollafutbolera/polla-engine/storage"
)

// TeamService resolves teams and stores their flag images in object
// storage.
type TeamService interface {
	GetTeam(ctx context.Context, id int) (*models.Team, error)
	UploadFlag(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	flags    storage.FlagStore
}

func NewTeamService(teamRepo repositories.TeamRepository, flags storage.FlagStore) TeamService {
	return &teamService{teamRepo: teamRepo, flags: flags}
}

func (s *teamService) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", id, err)
	}
	s.attachFlagURL(team)
	return team, nil
}

func (s *teamService) UploadFlag(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.flags == nil {
		return nil, errors.New("flag storage is not configured")
	}

	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("flags/team_%d", teamID)
	stored, err := s.flags.PutFlag(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload flag for team %d: %w", teamID, err)
	}
	if err := s.teamRepo.UpdateFlagKey(ctx, nil, teamID, &stored.Key); err != nil {
		return nil, fmt.Errorf("failed to store flag key: %w", err)
	}
	team.FlagKey = &stored.Key
	s.attachFlagURL(team)
	return team, nil
}

func (s *teamService) attachFlagURL(team *models.Team) {
	if team.FlagKey != nil && s.flags != nil {
		url := s.flags.PublicURL(*team.FlagKey)
		team.FlagURL = &url
	}
}
