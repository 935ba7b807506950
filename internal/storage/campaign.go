package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"prizewheel/internal/message"
	"prizewheel/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateCampaign inserts a campaign and its prizes in one transaction. IDs
// and prize positions are assigned here.
func (s *Store) CreateCampaign(c *models.Campaign, prizes []models.Prize) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Slug = strings.ToLower(c.Slug)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Campaign{}).Where("slug = ?", c.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSlugTaken
		}
		if err := tx.Create(c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlugTaken
			}
			return fmt.Errorf("insert campaign: %w", err)
		}
		return insertPrizes(tx, c.ID, prizes)
	})
}

// ReplacePrizes swaps the whole prize list of a campaign.
func (s *Store) ReplacePrizes(campaignID string, prizes []models.Prize) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("campaign_id = ?", campaignID).Delete(&models.Prize{}).Error; err != nil {
			return fmt.Errorf("delete prizes: %w", err)
		}
		return insertPrizes(tx, campaignID, prizes)
	})
}

func insertPrizes(tx *gorm.DB, campaignID string, prizes []models.Prize) error {
	if len(prizes) == 0 {
		return nil
	}
	for i := range prizes {
		if prizes[i].ID == "" {
			prizes[i].ID = uuid.NewString()
		}
		prizes[i].CampaignID = campaignID
		prizes[i].Position = i
	}
	if err := tx.Create(&prizes).Error; err != nil {
		return fmt.Errorf("insert prizes: %w", err)
	}
	return nil
}

// CampaignBySlug looks a campaign up by its slug, case-insensitively.
func (s *Store) CampaignBySlug(slug string) (*models.Campaign, error) {
	var c models.Campaign
	err := s.db.Where("slug = ?", strings.ToLower(slug)).First(&c).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// CampaignByID looks a campaign up by its ID.
func (s *Store) CampaignByID(id string) (*models.Campaign, error) {
	var c models.Campaign
	if err := s.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// CampaignsByCompany returns a company's campaigns, newest first.
func (s *Store) CampaignsByCompany(companyID string) ([]*models.Campaign, error) {
	var out []*models.Campaign
	err := s.db.Where("company_id = ?", companyID).Order("created_at desc").Find(&out).Error
	return out, err
}

// PrizesByCampaign returns the prizes of a campaign in wheel order.
func (s *Store) PrizesByCampaign(campaignID string) ([]models.Prize, error) {
	var out []models.Prize
	err := s.db.Where("campaign_id = ?", campaignID).Order("position asc").Find(&out).Error
	return out, err
}

// DemoSlug is the slug of the seeded demo campaign.
const DemoSlug = "sabor-de-minas"

// DemoPrizes are the ten prizes of the home page demo wheel.
func DemoPrizes() []models.Prize {
	return []models.Prize{
		{Name: "Casquinha Grátis", Probability: 20},
		{Name: "10% OFF", Probability: 18},
		{Name: "Bola Extra", Probability: 15},
		{Name: "Milk-shake Pequeno", Probability: 7},
		{Name: "Topping Grátis", Probability: 14},
		{Name: "20% OFF", Probability: 6},
		{Name: "Taça Especial", Probability: 3},
		{Name: "Trufa de Chocolate", Probability: 8},
		{Name: "Não foi dessa vez", Probability: 6},
		{Name: "1 Chance Extra", Probability: 3},
	}
}

// SeedDemo creates the demo campaign unless it already exists.
func (s *Store) SeedDemo(companyID string) (bool, error) {
	if _, err := s.CampaignBySlug(DemoSlug); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	prizes := DemoPrizes()
	for i := range prizes {
		prizes[i].MessageTemplate = message.DefaultTemplate
	}
	c := &models.Campaign{
		CompanyID: companyID,
		Name:      "Sabor de Minas",
		Slug:      DemoSlug,
		Callout:   message.Callout(30),
		IsActive:  true,
	}
	if err := s.CreateCampaign(c, prizes); err != nil {
		return false, err
	}
	return true, nil
}
