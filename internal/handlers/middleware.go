package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/google/uuid"
)

const (
	sessionName    = "prizewheel"
	participantKey = "participant"
	companyKey     = "company"
	companyHeader  = "X-Company-ID"
	leadKeyPrefix  = "lead:"
	sessionMaxAge  = 30 * 24 * 60 * 60
)

// SessionMiddleware stores the participant session in a signed cookie.
func SessionMiddleware(secret []byte, secure bool) gin.HandlerFunc {
	store := cookie.NewStore(secret)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(sessionName, store)
}

// ParticipantMiddleware gives every visitor a stable participant ID so their
// spin sessions survive page reloads.
func ParticipantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, _ := session.Get(participantKey).(string)
		if id == "" {
			id = uuid.NewString()
			session.Set(participantKey, id)
			if err := session.Save(); err != nil {
				logger.Errorf("Failed to save participant session: %v", err)
			}
		}
		c.Set(participantKey, id)
		c.Next()
	}
}

// CompanyMiddleware reads the merchant identity set by the auth proxy in
// front of the admin API.
func CompanyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := strings.TrimSpace(c.GetHeader(companyHeader))
		if companyID == "" {
			fail(c, http.StatusUnauthorized, "Empresa não identificada")
			c.Abort()
			return
		}
		c.Set(companyKey, companyID)
		c.Next()
	}
}

func leadKey(campaignID string) string {
	return leadKeyPrefix + campaignID
}

// rememberLead binds a registered lead to the participant's session.
func rememberLead(c *gin.Context, campaignID, leadID string) {
	session := sessions.Default(c)
	session.Set(leadKey(campaignID), leadID)
	if err := session.Save(); err != nil {
		logger.Errorf("Failed to save lead %s in session: %v", leadID, err)
	}
}

func sessionLead(c *gin.Context, campaignID string) string {
	id, _ := sessions.Default(c).Get(leadKey(campaignID)).(string)
	return id
}
