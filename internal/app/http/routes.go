package routes

import (
	"net/http"
	"time"

	accountapi "salonbook/internal/api/account"
	adminapi "salonbook/internal/api/admin"
	appointmentsapi "salonbook/internal/api/appointments"
	"salonbook/internal/api/billing"
	"salonbook/internal/api/plans"
	stripewebhooks "salonbook/internal/api/stripewebhook"
	twofactorapi "salonbook/internal/api/twofactor"
	"salonbook/internal/app/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps is everything the router needs. Handlers are built by the caller.
type Deps struct {
	JWTSecret   string
	CronSecret  string
	CORSOrigins []string
	// TrustedProxies may set X-Forwarded-For. Empty trusts no one.
	TrustedProxies []string
	Logger         *zap.Logger

	Blocklist  middleware.BlockChecker
	PlanStatus middleware.PlanStatusReader

	Account      *accountapi.Handler
	Billing      *billing.Handler
	Plans        *plans.Handler
	TwoFactor    *twofactorapi.Handler
	Appointments *appointmentsapi.Handler
	Webhooks     *stripewebhooks.Handler
	Admin        *adminapi.Handler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	jwtSecret := []byte(d.JWTSecret)
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		d.Logger.Warn("invalid trusted proxies, trusting none", zap.Strings("proxies", d.TrustedProxies), zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery(), middleware.RequestLogger(d.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.CronSecretHeader},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.BlockIPs(d.Blocklist, d.Logger, "/health", "/metrics"))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// raw body is needed for signature verification
	r.POST("/webhook", d.Webhooks.StripeWebhook)

	r.GET("/plans", d.Plans.ListPlans)

	r.POST("/appointments/auto-complete",
		middleware.CronOrServiceAuth(d.CronSecret, jwtSecret),
		d.Appointments.AutoComplete,
	)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(jwtSecret), middleware.SanitizeJSON())

	auth.GET("/account", d.Account.GetAccount)

	auth.POST("/cancel-subscription", d.Billing.CancelSubscription)
	auth.POST("/create-checkout-session", d.Billing.CreateCheckoutSession)
	auth.POST("/billing-portal", d.Billing.CreateBillingPortal)
	auth.POST("/cancel-downgrade", d.Billing.CancelDowngrade)

	auth.POST("/validate-plan", d.Plans.ValidatePlan)
	auth.GET("/plan-status/:tenantId", d.Plans.PlanStatus)
	auth.GET("/entitlements", d.Plans.Entitlements)

	auth.POST("/send-2fa-code", d.TwoFactor.SendCode)
	auth.POST("/verify-2fa-code", d.TwoFactor.VerifyCode)
	auth.POST("/disable-2fa", d.TwoFactor.Disable)
	auth.GET("/2fa-methods", d.TwoFactor.ListMethods)

	// Active plan required
	subscribed := auth.Group("/")
	subscribed.Use(middleware.RequireActivePlan(d.PlanStatus))
	subscribed.POST("/change-plan", d.Billing.ChangePlan)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret), middleware.RequireRole(middleware.RoleAdmin))
	admin.GET("/ip-blocks", d.Admin.ListIPBlocks)
	admin.POST("/ip-blocks", d.Admin.BlockIP)
	admin.DELETE("/ip-blocks/:ip", d.Admin.UnblockIP)
}
