package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"prizewheel/internal/metrics"
	"prizewheel/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
)

// recentLeadsLimit is how many leads the dashboard lists.
const recentLeadsLimit = 8

// GetPublicCampaign returns an active campaign and its wheel.
func (h *HTTPHandler) GetPublicCampaign(c *gin.Context) {
	pc, err := h.campaigns.Public(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"campaign":     pc.Campaign,
		"prizes":       pc.Prizes,
		"validityDays": pc.ValidityDays(),
	})
}

// RegisterLead stores the lead form and binds the lead to the visitor.
func (h *HTTPHandler) RegisterLead(c *gin.Context) {
	var in services.LeadInput
	if !bindJSON(c, &in) {
		return
	}
	lead, err := h.leads.Register(in)
	if err != nil {
		respondError(c, err)
		return
	}
	rememberLead(c, lead.CampaignID, lead.ID)
	c.JSON(http.StatusCreated, gin.H{"success": true, "lead": lead})
}

// StartDemoSpin spins the home page wheel. Demo spins need no lead.
func (h *HTTPHandler) StartDemoSpin(c *gin.Context) {
	plan, err := h.spins.StartSpin(services.SpinRequest{
		Participant: c.GetString(participantKey),
		Wheel:       h.profiles.Demo,
		Prizes:      h.demo,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "spin": plan})
}

// GetDemoSpin returns the visitor's demo wheel state.
func (h *HTTPHandler) GetDemoSpin(c *gin.Context) {
	h.writeSession(c, DemoWheelKey)
}

// StartCampaignSpin spins a campaign wheel for the visitor's registered lead.
func (h *HTTPHandler) StartCampaignSpin(c *gin.Context) {
	pc, err := h.campaigns.Public(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	lead, err := h.leads.ForSpin(sessionLead(c, pc.Campaign.ID), pc.Campaign.ID)
	if err != nil {
		if errors.Is(err, services.ErrNoLead) {
			metrics.SpinsRejected.WithLabelValues(pc.Campaign.Slug, "no_lead").Inc()
		}
		respondError(c, err)
		return
	}

	w := h.profiles.Campaign
	w.Key = pc.Campaign.Slug
	plan, err := h.spins.StartSpin(services.SpinRequest{
		Participant: c.GetString(participantKey),
		Wheel:       w,
		Campaign:    pc.Campaign,
		Lead:        lead,
		Prizes:      pc.Prizes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "spin": plan})
}

// GetCampaignSpin returns the visitor's campaign wheel state.
func (h *HTTPHandler) GetCampaignSpin(c *gin.Context) {
	h.writeSession(c, c.Param("slug"))
}

func (h *HTTPHandler) writeSession(c *gin.Context, wheelKey string) {
	view, _ := h.spins.Session(c.GetString(participantKey), wheelKey)
	c.JSON(http.StatusOK, gin.H{"success": true, "session": view})
}

// CreateCampaign handles the merchant's campaign creation form.
func (h *HTTPHandler) CreateCampaign(c *gin.Context) {
	var in services.CampaignInput
	if !bindJSON(c, &in) {
		return
	}
	pc, err := h.campaigns.Create(c.GetString(companyKey), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "campaign": pc.Campaign, "prizes": pc.Prizes})
}

// ListCampaigns returns the merchant's campaigns.
func (h *HTTPHandler) ListCampaigns(c *gin.Context) {
	campaigns, err := h.campaigns.List(c.GetString(companyKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "campaigns": campaigns})
}

// UploadPrizesCSV handles the CSV upload that replaces a campaign's prizes.
func (h *HTTPHandler) UploadPrizesCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("prizeCSV")
	if err != nil {
		fail(c, http.StatusBadRequest, "Erro ao receber o arquivo: "+err.Error())
		return
	}
	defer file.Close()

	prizes, err := h.campaigns.ReplacePrizesCSV(c.GetString(companyKey), c.Param("slug"), file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prizes": prizes})
}

// RecentLeads lists the newest leads of the merchant.
func (h *HTTPHandler) RecentLeads(c *gin.Context) {
	leads, err := h.leads.Recent(c.GetString(companyKey), recentLeadsLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leads": leads})
}

// CompanyMetrics returns the dashboard counters.
func (h *HTTPHandler) CompanyMetrics(c *gin.Context) {
	m, err := h.leads.Metrics(c.GetString(companyKey))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "metrics": m})
}

// ExportLeadsCSV handles the request to download a campaign's leads as a CSV file.
func (h *HTTPHandler) ExportLeadsCSV(c *gin.Context) {
	campaign, err := h.campaigns.Owned(c.GetString(companyKey), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	leads, err := h.leads.ByCampaign(campaign.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	prizes, err := h.campaigns.Prizes(campaign.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	prizeNames := make(map[string]string, len(prizes))
	for _, p := range prizes {
		prizeNames[p.ID] = p.Name
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=leads_"+campaign.Slug+".csv")

	// Add BOM to ensure UTF-8 compatibility in Excel
	c.Writer.Write([]byte("\xef\xbb\xbf"))

	w := csv.NewWriter(c.Writer)

	if err := w.Write([]string{"Nome", "WhatsApp", "Aceitou termos", "Prêmio", "Cadastrado em"}); err != nil {
		logger.Infof("Error writing CSV header: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
		return
	}

	for _, lead := range leads {
		prize := ""
		if lead.PrizeID != nil {
			prize = prizeNames[*lead.PrizeID]
		}
		row := []string{lead.Name, lead.Phone, strconv.FormatBool(lead.TermsAccepted), prize, lead.CreatedAt.Format(time.RFC3339)}
		if err := w.Write(row); err != nil {
			logger.Infof("Error writing CSV row: %v", err)
			c.String(http.StatusInternalServerError, "Error writing CSV")
			return
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		logger.Infof("Error flushing CSV writer: %v", err)
		c.String(http.StatusInternalServerError, "Error writing CSV")
	}
}
