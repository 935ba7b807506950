package storage

import (
	"fmt"
	"math"
	"time"

	"prizewheel/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateLead inserts a lead.
func (s *Store) CreateLead(l *models.Lead) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if err := s.db.Create(l).Error; err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

// LeadByID looks a lead up by its ID.
func (s *Store) LeadByID(id string) (*models.Lead, error) {
	var l models.Lead
	if err := s.db.Where("id = ?", id).First(&l).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// RecordSpin stores a revealed spin and marks the lead as having won.
func (s *Store) RecordSpin(r *models.SpinResult) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("insert spin result: %w", err)
		}
		if r.LeadID == "" {
			return nil
		}
		return tx.Model(&models.Lead{}).Where("id = ?", r.LeadID).Update("prize_id", r.PrizeID).Error
	})
}

// LeadsByCampaign returns every lead of a campaign, oldest first.
func (s *Store) LeadsByCampaign(campaignID string) ([]*models.Lead, error) {
	var out []*models.Lead
	err := s.db.Where("campaign_id = ?", campaignID).Order("created_at asc").Find(&out).Error
	return out, err
}

// RecentLeads returns the newest leads across a company's campaigns.
func (s *Store) RecentLeads(companyID string, limit int) ([]*models.Lead, error) {
	var out []*models.Lead
	err := s.db.
		Where("campaign_id IN (?)", s.companyCampaignIDs(companyID)).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SpinsByCampaign returns the revealed spins of a campaign, oldest first.
func (s *Store) SpinsByCampaign(campaignID string) ([]*models.SpinResult, error) {
	var out []*models.SpinResult
	err := s.db.Where("campaign_id = ?", campaignID).Order("created_at asc").Find(&out).Error
	return out, err
}

// CompanyMetrics counts leads, delivered prizes and active campaigns for the
// merchant dashboard.
func (s *Store) CompanyMetrics(companyID string) (*models.CompanyMetrics, error) {
	m := &models.CompanyMetrics{Conversion: -1}
	if err := s.db.Model(&models.Lead{}).Where("campaign_id IN (?)", s.companyCampaignIDs(companyID)).Count(&m.Leads).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Lead{}).
		Where("campaign_id IN (?) AND prize_id IS NOT NULL", s.companyCampaignIDs(companyID)).
		Count(&m.PrizesDelivered).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Campaign{}).
		Where("company_id = ? AND is_active = ?", companyID, true).
		Count(&m.ActiveCampaigns).Error; err != nil {
		return nil, err
	}
	if m.Leads > 0 {
		m.Conversion = int(math.Round(float64(m.PrizesDelivered) / float64(m.Leads) * 100))
	}
	return m, nil
}

// companyCampaignIDs is a subquery selecting the IDs of a company's campaigns.
func (s *Store) companyCampaignIDs(companyID string) *gorm.DB {
	return s.db.Model(&models.Campaign{}).Select("id").Where("company_id = ?", companyID)
}
