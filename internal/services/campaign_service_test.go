package services

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prizewheel/internal/message"
	"prizewheel/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "services.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func threePrizes() []PrizeInput {
	return []PrizeInput{
		{Name: "Casquinha", Quantity: 10, Probability: 50},
		{Name: "Topping", Quantity: 10, Probability: 30},
		{Name: "Trufa", Quantity: 5, Probability: 20},
	}
}

func TestCampaignService_Create(t *testing.T) {
	service := NewCampaignService(openStore(t), time.Minute)

	t.Run("Test successful creation", func(t *testing.T) {
		pc, err := service.Create("co-1", CampaignInput{Name: "Promoção de Verão", ValidityDays: 15, Prizes: threePrizes()})
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if pc.Campaign.Slug != "promocao-de-verao" {
			t.Errorf("Expected slug promocao-de-verao, got %s", pc.Campaign.Slug)
		}
		if !pc.Campaign.IsActive {
			t.Error("Expected campaign to be active by default")
		}
		if pc.ValidityDays() != 15 {
			t.Errorf("Expected 15 validity days, got %d", pc.ValidityDays())
		}
		if len(pc.Prizes) != 3 || pc.Prizes[0].MessageTemplate != message.DefaultTemplate {
			t.Errorf("Expected 3 prizes with the default template, got %+v", pc.Prizes)
		}
	})

	t.Run("Test duplicate slug", func(t *testing.T) {
		_, err := service.Create("co-2", CampaignInput{Name: "Promocao de  Verao", Prizes: threePrizes()})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Expected a ValidationError, but got %v", err)
		}
	})

	tests := []struct {
		name   string
		prizes []PrizeInput
	}{
		{"too few prizes", threePrizes()[:2]},
		{"probabilities not summing to 100", []PrizeInput{
			{Name: "A", Probability: 40}, {Name: "B", Probability: 40}, {Name: "C", Probability: 10},
		}},
		{"negative probability", []PrizeInput{
			{Name: "A", Probability: 120}, {Name: "B", Probability: -10}, {Name: "C", Probability: -10},
		}},
		{"blank prize name", []PrizeInput{
			{Name: " ", Probability: 40}, {Name: "B", Probability: 40}, {Name: "C", Probability: 20},
		}},
	}
	for _, tt := range tests {
		t.Run("Test rejects "+tt.name, func(t *testing.T) {
			_, err := service.Create("co-1", CampaignInput{Name: "Campanha " + tt.name, Prizes: tt.prizes})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected a ValidationError, but got %v", err)
			}
		})
	}

	t.Run("Test rejects eleven prizes", func(t *testing.T) {
		var prizes []PrizeInput
		for i := 0; i < 11; i++ {
			prizes = append(prizes, PrizeInput{Name: "P", Probability: 100.0 / 11})
		}
		_, err := service.Create("co-1", CampaignInput{Name: "Onze", Prizes: prizes})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Expected a ValidationError, but got %v", err)
		}
	})
}

func TestCampaignService_Public(t *testing.T) {
	service := NewCampaignService(openStore(t), time.Minute)

	inactive := false
	if _, err := service.Create("co-1", CampaignInput{Name: "Fechada", IsActive: &inactive, Prizes: threePrizes()}); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if _, err := service.Create("co-1", CampaignInput{Name: "Aberta", Prizes: threePrizes()}); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}

	if _, err := service.Public("fechada"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected inactive campaign to be hidden, got %v", err)
	}
	if _, err := service.Public("nada"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for an unknown slug, got %v", err)
	}

	pc, err := service.Public("ABERTA")
	if err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	if names := []string{pc.Prizes[0].Name, pc.Prizes[1].Name, pc.Prizes[2].Name}; strings.Join(names, ",") != "Casquinha,Topping,Trufa" {
		t.Errorf("Expected prizes in wheel order, got %v", names)
	}
	again, _ := service.Public("aberta")
	if again != pc {
		t.Error("Expected the second lookup to be served from cache")
	}
}

func TestCampaignService_ReplacePrizesCSV(t *testing.T) {
	service := NewCampaignService(openStore(t), time.Minute)
	if _, err := service.Create("co-1", CampaignInput{Name: "Inverno", Prizes: threePrizes()}); err != nil {
		t.Fatalf("Expected no error, but got %v", err)
	}
	before, _ := service.Public("inverno")

	t.Run("Test import skips malformed rows", func(t *testing.T) {
		csvData := "Chocolate quente,Copo 300ml,10,40\n" +
			"Linha ruim,2\n" +
			"Biscoito,,x,10\n" +
			"Bolo,Fatia,5,35\n" +
			"Café,Expresso,20,25\n"
		prizes, err := service.ReplacePrizesCSV("co-1", "inverno", strings.NewReader(csvData))
		if err != nil {
			t.Fatalf("Expected no error, but got %v", err)
		}
		if len(prizes) != 3 || prizes[0].Name != "Chocolate quente" || prizes[2].Quantity != 20 {
			t.Errorf("Unexpected prizes: %+v", prizes)
		}
		after, _ := service.Public("inverno")
		if after == before || after.Prizes[1].Name != "Bolo" {
			t.Errorf("Expected cache to be refreshed after import, got %+v", after.Prizes)
		}
	})

	t.Run("Test import must still sum to 100", func(t *testing.T) {
		_, err := service.ReplacePrizesCSV("co-1", "inverno", strings.NewReader("A,,1,10\nB,,1,10\nC,,1,10\n"))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Expected a ValidationError, but got %v", err)
		}
	})

	t.Run("Test import rejects non-finite probabilities", func(t *testing.T) {
		for _, bad := range []string{"NaN", "Inf", "-Inf"} {
			_, err := service.ReplacePrizesCSV("co-1", "inverno", strings.NewReader("a,,1,"+bad+"\nb,,1,50\nc,,1,50\n"))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected a ValidationError for %s, but got %v", bad, err)
			}
		}
		pc, _ := service.Public("inverno")
		if pc.Prizes[0].Name != "Chocolate quente" {
			t.Errorf("Expected the previous prizes to be kept, got %+v", pc.Prizes)
		}
	})

	t.Run("Test other company cannot import", func(t *testing.T) {
		_, err := service.ReplacePrizesCSV("co-2", "inverno", strings.NewReader("A,,1,100\n"))
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, but got %v", err)
		}
	})
}
