package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"

	"prizewheel/internal/models"
	"prizewheel/internal/services"
	"prizewheel/internal/storage"
	"prizewheel/internal/wheel"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DemoWheelKey identifies the home page wheel.
const DemoWheelKey = "demo"

// WheelProfiles holds the spin settings of both kinds of wheel. The campaign
// profile's Key is replaced by the campaign slug.
type WheelProfiles struct {
	Campaign services.Wheel
	Demo     services.Wheel
}

// HTTPHandler holds the dependencies for the HTTP handlers.
type HTTPHandler struct {
	campaigns *services.CampaignService
	leads     *services.LeadService
	spins     *services.SpinService
	profiles  WheelProfiles
	demo      []models.Prize
	templates *template.Template
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(campaigns *services.CampaignService, leads *services.LeadService, spins *services.SpinService, profiles WheelProfiles, templates *template.Template) *HTTPHandler {
	profiles.Demo.Key = DemoWheelKey
	demo := storage.DemoPrizes()
	for i := range demo {
		demo[i].ID = fmt.Sprintf("demo-%d", i+1)
	}
	return &HTTPHandler{
		campaigns: campaigns,
		leads:     leads,
		spins:     spins,
		profiles:  profiles,
		demo:      demo,
		templates: templates,
	}
}

// renderPage is a helper to perform a two-step template rendering.
// It first executes the content template into a buffer, then executes the main
// layout template, passing the rendered content as a variable.
func (h *HTTPHandler) renderPage(c *gin.Context, pageData gin.H, contentTmpl string) {
	buf := new(bytes.Buffer)
	err := h.templates.ExecuteTemplate(buf, contentTmpl, pageData)
	if err != nil {
		logger.Infof("Error executing content template %s: %v", contentTmpl, err)
		c.String(http.StatusInternalServerError, "Template rendering error")
		return
	}

	pageData["PageContent"] = template.HTML(buf.String())

	c.Header("Content-Type", "text/html; charset=utf-8")
	err = h.templates.ExecuteTemplate(c.Writer, "layout.html", pageData)
	if err != nil {
		logger.Infof("Error executing layout template: %v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// RegisterRoutes registers all the application routes. The session
// middleware must already be installed on router.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/")
	public.Use(ParticipantMiddleware())
	public.GET("/", h.ShowDemo)
	public.GET("/c/:slug", h.ShowCampaign)

	api := public.Group("/api")
	api.GET("/public/campaign/:slug", h.GetPublicCampaign)
	api.POST("/public/leads", h.RegisterLead)
	api.POST("/spin/demo", h.StartDemoSpin)
	api.GET("/spin/demo", h.GetDemoSpin)
	api.POST("/spin/:slug", h.StartCampaignSpin)
	api.GET("/spin/:slug", h.GetCampaignSpin)

	admin := router.Group("/api/admin")
	admin.Use(CompanyMiddleware())
	admin.POST("/campaigns", h.CreateCampaign)
	admin.GET("/campaigns", h.ListCampaigns)
	admin.POST("/campaigns/:slug/prizes.csv", h.UploadPrizesCSV)
	admin.GET("/campaigns/:slug/leads.csv", h.ExportLeadsCSV)
	admin.GET("/leads", h.RecentLeads)
	admin.GET("/metrics", h.CompanyMetrics)
}

// ShowDemo handles the request for the home page and its demo wheel.
func (h *HTTPHandler) ShowDemo(c *gin.Context) {
	data := gin.H{
		"title":      "Roleta de Prêmios",
		"Demo":       true,
		"Prizes":     h.demo,
		"Slices":     buildSlices(h.demo),
		"SpinURL":    "/api/spin/" + DemoWheelKey,
		"DurationMs": h.profiles.Demo.Duration.Milliseconds(),
		"Registered": true,
	}
	h.renderPage(c, data, "wheel.html")
}

// ShowCampaign handles the request for a campaign's public page.
func (h *HTTPHandler) ShowCampaign(c *gin.Context) {
	pc, err := h.campaigns.Public(c.Param("slug"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.String(http.StatusNotFound, "Campanha não encontrada")
			return
		}
		logger.Errorf("Failed to load campaign %s: %v", c.Param("slug"), err)
		c.String(http.StatusInternalServerError, "Erro interno")
		return
	}
	data := gin.H{
		"title":        pc.Campaign.Name,
		"Campaign":     pc.Campaign,
		"Prizes":       pc.Prizes,
		"Slices":       buildSlices(pc.Prizes),
		"ValidityDays": pc.ValidityDays(),
		"SpinURL":      "/api/spin/" + pc.Campaign.Slug,
		"DurationMs":   h.profiles.Campaign.Duration.Milliseconds(),
		"Registered":   sessionLead(c, pc.Campaign.ID) != "",
	}
	h.renderPage(c, data, "wheel.html")
}

// wheelSlice is one drawable sector of the SVG wheel, in a 320x320 view box.
type wheelSlice struct {
	Name        string
	Path        string
	LabelX      float64
	LabelY      float64
	LabelRotate float64
	Color       string
}

var palette = []string{"#f94144", "#f3722c", "#f8961e", "#f9c74f", "#90be6d", "#43aa8b", "#4d908e", "#577590", "#277da1", "#9b5de5"}

const (
	wheelCenter = 160.0
	wheelRadius = 150.0
	labelRadius = 100.0
)

func buildSlices(prizes []models.Prize) []wheelSlice {
	if len(prizes) == 0 {
		return nil
	}
	point := func(deg, r float64) (float64, float64) {
		rad := deg * math.Pi / 180
		return wheelCenter + r*math.Cos(rad), wheelCenter + r*math.Sin(rad)
	}
	out := make([]wheelSlice, 0, len(prizes))
	for _, s := range wheel.Slices(len(prizes)) {
		x1, y1 := point(s.Start, wheelRadius)
		x2, y2 := point(s.End, wheelRadius)
		large := 0
		if s.End-s.Start > 180 {
			large = 1
		}
		var path string
		if len(prizes) == 1 {
			path = fmt.Sprintf("M %.3f %.3f m -%.3f 0 a %.3f %.3f 0 1 0 %.3f 0 a %.3f %.3f 0 1 0 -%.3f 0",
				wheelCenter, wheelCenter, wheelRadius, wheelRadius, wheelRadius, 2*wheelRadius, wheelRadius, wheelRadius, 2*wheelRadius)
		} else {
			path = fmt.Sprintf("M %.3f %.3f L %.3f %.3f A %.3f %.3f 0 %d 1 %.3f %.3f Z",
				wheelCenter, wheelCenter, x1, y1, wheelRadius, wheelRadius, large, x2, y2)
		}
		lx, ly := point(s.Mid, labelRadius)
		out = append(out, wheelSlice{
			Name:        prizes[s.Index].Name,
			Path:        path,
			LabelX:      lx,
			LabelY:      ly,
			LabelRotate: s.Mid,
			Color:       palette[s.Index%len(palette)],
		})
	}
	return out
}
