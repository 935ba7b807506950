package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"prizewheel/internal/metrics"
	"prizewheel/internal/models"
	"prizewheel/internal/storage"
)

// ErrNoLead is returned when a campaign spin has no registered lead behind it.
var ErrNoLead = errors.New("lead registration required")

// LeadStore is the persistence LeadService needs.
type LeadStore interface {
	CampaignBySlug(slug string) (*models.Campaign, error)
	CampaignByID(id string) (*models.Campaign, error)
	CreateLead(l *models.Lead) error
	LeadByID(id string) (*models.Lead, error)
	LeadsByCampaign(campaignID string) ([]*models.Lead, error)
	RecentLeads(companyID string, limit int) ([]*models.Lead, error)
	CompanyMetrics(companyID string) (*models.CompanyMetrics, error)
}

// LeadInput is the payload of the public lead form.
type LeadInput struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	CampaignID    string `json:"campaign_id"`
	CampaignSlug  string `json:"campaign_slug"`
	TermsAccepted *bool  `json:"terms_accepted"`
}

// LeadService registers customers before they can spin.
type LeadService struct {
	store LeadStore
}

// NewLeadService creates a new LeadService.
func NewLeadService(store LeadStore) *LeadService {
	return &LeadService{store: store}
}

// Register validates a lead form and stores it against its campaign.
func (s *LeadService) Register(in LeadInput) (*models.Lead, error) {
	if in.Name == "" || in.Phone == "" || in.TermsAccepted == nil {
		return nil, invalid("Dados incompletos.")
	}
	if !*in.TermsAccepted {
		return nil, invalid("É necessário aceitar os termos.")
	}
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 2 {
		return nil, invalid("Nome inválido.")
	}
	phone := Digits(in.Phone)
	if len(phone) != 13 || !strings.HasPrefix(phone, "55") {
		return nil, invalid("WhatsApp inválido. Use 5531999999999.")
	}

	c, err := s.resolveCampaign(in)
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		CampaignID:    c.ID,
		Name:          name,
		Phone:         phone,
		TermsAccepted: true,
	}
	if err := s.store.CreateLead(lead); err != nil {
		return nil, fmt.Errorf("register lead: %w", err)
	}
	metrics.LeadsRegistered.Inc()
	return lead, nil
}

func (s *LeadService) resolveCampaign(in LeadInput) (*models.Campaign, error) {
	if in.CampaignID != "" {
		return s.store.CampaignByID(in.CampaignID)
	}
	if in.CampaignSlug != "" {
		return s.store.CampaignBySlug(in.CampaignSlug)
	}
	return nil, storage.ErrNotFound
}

// Lead returns a lead if it belongs to the campaign.
func (s *LeadService) Lead(id, campaignID string) (*models.Lead, error) {
	l, err := s.store.LeadByID(id)
	if err != nil {
		return nil, err
	}
	if l.CampaignID != campaignID {
		return nil, storage.ErrNotFound
	}
	return l, nil
}

// ForSpin resolves the lead a participant registered for a campaign before
// spinning its wheel.
func (s *LeadService) ForSpin(id, campaignID string) (*models.Lead, error) {
	if id == "" {
		return nil, ErrNoLead
	}
	l, err := s.Lead(id, campaignID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoLead
	}
	return l, err
}

// Recent returns the newest leads of a company.
func (s *LeadService) Recent(companyID string, limit int) ([]*models.Lead, error) {
	return s.store.RecentLeads(companyID, limit)
}

// ByCampaign returns every lead of a campaign.
func (s *LeadService) ByCampaign(campaignID string) ([]*models.Lead, error) {
	return s.store.LeadsByCampaign(campaignID)
}

// Metrics summarizes a company's leads and campaigns.
func (s *LeadService) Metrics(companyID string) (*models.CompanyMetrics, error) {
	return s.store.CompanyMetrics(companyID)
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}
