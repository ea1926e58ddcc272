package service

import (
	"context"
	"errors"
	"fmt"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

var ErrCampaignNotFound = errors.New("campaign not found")

// CampaignService handles campaign lifecycle.
type CampaignService struct {
	campaigns repository.CampaignRepository
}

// NewCampaignService creates a new campaign service.
func NewCampaignService(campaigns repository.CampaignRepository) *CampaignService {
	return &CampaignService{campaigns: campaigns}
}

// Create stores a new campaign with its stock cap.
func (s *CampaignService) Create(ctx context.Context, req *model.CreateCampaignRequest) (*model.Campaign, error) {
	campaign := &model.Campaign{
		Content:  req.Content,
		Quantity: *req.Quantity,
		Status:   req.Status,
	}
	if campaign.Status == "" {
		campaign.Status = model.CampaignStatusActive
	}
	if err := s.campaigns.Create(ctx, campaign); err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	return campaign, nil
}

// Get retrieves a single campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*model.Campaign, error) {
	campaign, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return campaign, nil
}

// List returns all campaigns, newest first.
func (s *CampaignService) List(ctx context.Context) ([]*model.Campaign, error) {
	return s.campaigns.List(ctx)
}

// UpdateStatus sets the campaign status. The status never gates issuance;
// it exists for operators and dashboards.
func (s *CampaignService) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	err := s.campaigns.UpdateStatus(ctx, id, status)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("update campaign status: %w", err)
	}
	return true, nil
}

// Delete removes a campaign. Vouchers already issued against it stay.
func (s *CampaignService) Delete(ctx context.Context, id string) (bool, error) {
	err := s.campaigns.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete campaign: %w", err)
	}
	return true, nil
}
