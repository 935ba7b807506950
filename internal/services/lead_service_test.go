package services

import (
	"errors"
	"testing"
	"time"

	"prizewheel/internal/storage"
)

func TestLeadService_Register(t *testing.T) {
	store := openStore(t)
	campaigns := NewCampaignService(store, time.Minute)
	pc, err := campaigns.Create("co-1", CampaignInput{Name: "Sorvete", Prizes: threePrizes()})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	service := NewLeadService(store)
	yes, no := true, false

	t.Run("Test successful registration", func(t *testing.T) {
		lead, err := service.Register(LeadInput{Name: " Maria ", Phone: "+55 (31) 99999-9999", CampaignSlug: "sorvete", TermsAccepted: &yes})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if lead.Name != "Maria" || lead.Phone != "5531999999999" || lead.CampaignID != pc.Campaign.ID {
			t.Errorf("Unexpected lead: %+v", lead)
		}
		if _, err := service.Lead(lead.ID, pc.Campaign.ID); err != nil {
			t.Errorf("Expected lead to be found, got %v", err)
		}
		if _, err := service.Lead(lead.ID, "other"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected lead to be scoped to its campaign, got %v", err)
		}
	})

	t.Run("Test registration by campaign id", func(t *testing.T) {
		if _, err := service.Register(LeadInput{Name: "João", Phone: "5511988887777", CampaignID: pc.Campaign.ID, TermsAccepted: &yes}); err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
	})

	tests := []struct {
		name string
		in   LeadInput
		want string
	}{
		{"missing terms", LeadInput{Name: "Ana", Phone: "5531999999999", CampaignSlug: "sorvete"}, "Dados incompletos."},
		{"refused terms", LeadInput{Name: "Ana", Phone: "5531999999999", CampaignSlug: "sorvete", TermsAccepted: &no}, "É necessário aceitar os termos."},
		{"blank name", LeadInput{Name: "   ", Phone: "5531999999999", CampaignSlug: "sorvete", TermsAccepted: &yes}, "Nome inválido."},
		{"blank phone", LeadInput{Name: "Ana", Phone: "  ", CampaignSlug: "sorvete", TermsAccepted: &yes}, "WhatsApp inválido. Use 5531999999999."},
		{"missing name", LeadInput{Phone: "5531999999999", CampaignSlug: "sorvete", TermsAccepted: &yes}, "Dados incompletos."},
		{"short name", LeadInput{Name: "A", Phone: "5531999999999", CampaignSlug: "sorvete", TermsAccepted: &yes}, "Nome inválido."},
		{"short phone", LeadInput{Name: "Ana", Phone: "31999999999", CampaignSlug: "sorvete", TermsAccepted: &yes}, "WhatsApp inválido. Use 5531999999999."},
		{"foreign phone", LeadInput{Name: "Ana", Phone: "4431999999999", CampaignSlug: "sorvete", TermsAccepted: &yes}, "WhatsApp inválido. Use 5531999999999."},
	}
	for _, tt := range tests {
		t.Run("Test rejects "+tt.name, func(t *testing.T) {
			_, err := service.Register(tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Msg != tt.want {
				t.Fatalf("Expected %q, but got %v", tt.want, err)
			}
		})
	}

	t.Run("Test unknown campaign", func(t *testing.T) {
		_, err := service.Register(LeadInput{Name: "Ana", Phone: "5531999999999", CampaignSlug: "nada", TermsAccepted: &yes})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, but got %v", err)
		}
	})

	t.Run("Test metrics", func(t *testing.T) {
		m, err := service.Metrics("co-1")
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if m.Leads != 2 || m.PrizesDelivered != 0 || m.ActiveCampaigns != 1 || m.Conversion != 0 {
			t.Errorf("Unexpected metrics: %+v", m)
		}
		recent, _ := service.Recent("co-1", 1)
		if len(recent) != 1 || recent[0].Name != "João" {
			t.Errorf("Expected the newest lead first, got %+v", recent)
		}
	})
}

func TestDigits(t *testing.T) {
	if got := Digits("+55 (31) 9 9999-9999"); got != "5531999999999" {
		t.Errorf("Expected 5531999999999, got %s", got)
	}
	if got := Digits("٣٤"); got != "" {
		t.Errorf("Expected non-ASCII digits to be dropped, got %q", got)
	}
}

func TestLeadService_ForSpin(t *testing.T) {
	store := openStore(t)
	pc, err := NewCampaignService(store, time.Minute).Create("co-1", CampaignInput{Name: "Pizza", Prizes: threePrizes()})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	service := NewLeadService(store)
	yes := true
	lead, err := service.Register(LeadInput{Name: "Ana", Phone: "5531999999999", CampaignSlug: "pizza", TermsAccepted: &yes})
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	if _, err := service.ForSpin("", pc.Campaign.ID); !errors.Is(err, ErrNoLead) {
		t.Errorf("Expected ErrNoLead without a lead id, got %v", err)
	}
	if _, err := service.ForSpin("missing", pc.Campaign.ID); !errors.Is(err, ErrNoLead) {
		t.Errorf("Expected ErrNoLead for an unknown lead, got %v", err)
	}
	got, err := service.ForSpin(lead.ID, pc.Campaign.ID)
	if err != nil || got.ID != lead.ID {
		t.Errorf("Expected lead %s, got %+v (%v)", lead.ID, got, err)
	}
}
