package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"prizewheel/internal/message"
	"prizewheel/internal/models"
	"prizewheel/internal/storage"

	"github.com/google/logger"
	"github.com/patrickmn/go-cache"
)

// Campaign creation limits.
const (
	MinPrizes        = 3
	MaxPrizes        = 10
	TotalProbability = 100.0
)

// ValidationError carries a message meant for the person filling a form.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// CampaignStore is the persistence CampaignService needs.
type CampaignStore interface {
	CreateCampaign(c *models.Campaign, prizes []models.Prize) error
	CampaignBySlug(slug string) (*models.Campaign, error)
	CampaignsByCompany(companyID string) ([]*models.Campaign, error)
	PrizesByCampaign(campaignID string) ([]models.Prize, error)
	ReplacePrizes(campaignID string, prizes []models.Prize) error
}

// PrizeInput is one prize row of a new campaign.
type PrizeInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity" binding:"min=0"`
	Probability float64 `json:"probability" binding:"min=0"`
}

// CampaignInput is the payload of a campaign creation request.
type CampaignInput struct {
	Name            string       `json:"name" binding:"required"`
	IsActive        *bool        `json:"isActive"`
	ValidityDays    int          `json:"validityDays" binding:"omitempty,min=1"`
	MessageTemplate string       `json:"messageTemplate"`
	Prizes          []PrizeInput `json:"prizes" binding:"required,dive"`
}

// PublicCampaign is what a customer-facing page needs to render a wheel.
type PublicCampaign struct {
	Campaign *models.Campaign `json:"campaign"`
	Prizes   []models.Prize   `json:"prizes"`
}

// ValidityDays is the number of days a won prize stays valid.
func (p *PublicCampaign) ValidityDays() int {
	return message.ValidityDays(p.Campaign.Callout)
}

// CampaignService creates campaigns and serves them to the public pages.
type CampaignService struct {
	store CampaignStore
	cache *cache.Cache
}

// NewCampaignService caches public lookups for ttl.
func NewCampaignService(store CampaignStore, ttl time.Duration) *CampaignService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CampaignService{
		store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Create validates input and stores a new campaign for companyID.
func (s *CampaignService) Create(companyID string, in CampaignInput) (*PublicCampaign, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("Nome da campanha é obrigatório")
	}
	slug := storage.Slugify(name)
	if slug == "" {
		return nil, invalid("Nome da campanha não gera um slug válido")
	}

	tmpl := message.TemplateOrDefault(in.MessageTemplate)
	prizes := make([]models.Prize, 0, len(in.Prizes))
	for _, p := range in.Prizes {
		prizes = append(prizes, models.Prize{
			Name:            strings.TrimSpace(p.Name),
			Description:     p.Description,
			Quantity:        p.Quantity,
			Probability:     p.Probability,
			MessageTemplate: tmpl,
		})
	}
	if err := validatePrizes(prizes); err != nil {
		return nil, err
	}

	validity := in.ValidityDays
	if validity <= 0 {
		validity = 30
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	c := &models.Campaign{
		CompanyID: companyID,
		Name:      name,
		Slug:      slug,
		Callout:   message.Callout(validity),
		IsActive:  active,
	}
	if err := s.store.CreateCampaign(c, prizes); err != nil {
		if errors.Is(err, storage.ErrSlugTaken) {
			return nil, invalid("Já existe uma campanha com o slug %q", slug)
		}
		return nil, err
	}
	logger.Infof("Created campaign %s (%s) for company %s", c.Slug, c.ID, companyID)
	return &PublicCampaign{Campaign: c, Prizes: prizes}, nil
}

// validatePrizes enforces the creation-time rules. The wheel itself draws
// from any positive total.
func validatePrizes(prizes []models.Prize) error {
	if len(prizes) < MinPrizes || len(prizes) > MaxPrizes {
		return invalid("Número de prêmios deve estar entre %d e %d", MinPrizes, MaxPrizes)
	}
	total := 0.0
	for _, p := range prizes {
		if p.Name == "" {
			return invalid("Todo prêmio precisa de um nome")
		}
		if math.IsNaN(p.Probability) || math.IsInf(p.Probability, 0) {
			return invalid("Probabilidade inválida para %q", p.Name)
		}
		if p.Probability < 0 {
			return invalid("Probabilidade não pode ser negativa")
		}
		total += p.Probability
	}
	if math.Abs(total-TotalProbability) > 1e-9 {
		return invalid("A soma das probabilidades deve ser 100%%")
	}
	return nil
}

// Public returns an active campaign and its prizes. Results are cached.
func (s *CampaignService) Public(slug string) (*PublicCampaign, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if v, ok := s.cache.Get(slug); ok {
		return v.(*PublicCampaign), nil
	}

	c, err := s.store.CampaignBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, storage.ErrNotFound
	}
	prizes, err := s.store.PrizesByCampaign(c.ID)
	if err != nil {
		return nil, fmt.Errorf("load prizes: %w", err)
	}
	pc := &PublicCampaign{Campaign: c, Prizes: prizes}
	s.cache.Set(slug, pc, cache.DefaultExpiration)
	return pc, nil
}

// List returns a company's campaigns, newest first.
func (s *CampaignService) List(companyID string) ([]*models.Campaign, error) {
	return s.store.CampaignsByCompany(companyID)
}

// Owned returns the campaign behind slug if it belongs to companyID.
func (s *CampaignService) Owned(companyID, slug string) (*models.Campaign, error) {
	c, err := s.store.CampaignBySlug(slug)
	if err != nil {
		return nil, err
	}
	if c.CompanyID != companyID {
		return nil, storage.ErrNotFound
	}
	return c, nil
}

// Prizes returns a campaign's prizes in wheel order.
func (s *CampaignService) Prizes(campaignID string) ([]models.Prize, error) {
	return s.store.PrizesByCampaign(campaignID)
}

// ReplacePrizesCSV replaces a campaign's prizes with rows of
// name,description,quantity,probability. Malformed rows are skipped.
func (s *CampaignService) ReplacePrizesCSV(companyID, slug string, r io.Reader) ([]models.Prize, error) {
	c, err := s.Owned(companyID, slug)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.PrizesByCampaign(c.ID)
	if err != nil {
		return nil, err
	}
	tmpl := message.DefaultTemplate
	if len(existing) > 0 {
		tmpl = message.TemplateOrDefault(existing[0].MessageTemplate)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	var prizes []models.Prize
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, invalid("Erro ao ler CSV: %v", err)
		}

		if len(record) != 4 {
			logger.Infof("Skipping malformed prize CSV record: %v", record)
			continue
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			logger.Infof("Skipping CSV record with invalid quantity: %v", record)
			continue
		}
		probability, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			logger.Infof("Skipping CSV record with invalid probability: %v", record)
			continue
		}

		prizes = append(prizes, models.Prize{
			Name:            strings.TrimSpace(record[0]),
			Description:     strings.TrimSpace(record[1]),
			Quantity:        quantity,
			Probability:     probability,
			MessageTemplate: tmpl,
		})
	}

	if err := validatePrizes(prizes); err != nil {
		return nil, err
	}
	if err := s.store.ReplacePrizes(c.ID, prizes); err != nil {
		return nil, err
	}
	s.cache.Delete(c.Slug)
	return prizes, nil
}
