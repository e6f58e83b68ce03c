package app

import (
	"salonbook/config"
	accountapi "salonbook/internal/api/account"
	adminapi "salonbook/internal/api/admin"
	appointmentsapi "salonbook/internal/api/appointments"
	billingapi "salonbook/internal/api/billing"
	plansapi "salonbook/internal/api/plans"
	stripewebhooks "salonbook/internal/api/stripewebhook"
	twofactorapi "salonbook/internal/api/twofactor"
	routes "salonbook/internal/app/http"
	"salonbook/internal/domain/plans"
	"salonbook/internal/domain/twofactor"
	"salonbook/internal/repository"
	"salonbook/internal/service/autocomplete"
	"salonbook/internal/service/blocklist"
	"salonbook/internal/service/plancheck"
	"salonbook/internal/service/subscription"
	"salonbook/internal/service/verification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the wired service: the HTTP engine plus the background sweeper.
type App struct {
	Engine  *gin.Engine
	Sweeper *autocomplete.Sweeper
}

func Catalog(cfg config.Config) plans.Catalog {
	return plans.NewCatalog(map[plans.Tier]string{
		plans.TierEssential:    cfg.StripePriceIDs.Essential,
		plans.TierProfessional: cfg.StripePriceIDs.Professional,
		plans.TierPremium:      cfg.StripePriceIDs.Premium,
	})
}

// Senders returns the delivery channels configured in cfg.
func Senders(cfg config.Config) map[twofactor.MethodType]verification.Sender {
	senders := map[twofactor.MethodType]verification.Sender{}
	if cfg.SMTPHost != "" {
		senders[twofactor.MethodEmail] = verification.NewEmailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword)
	}
	if cfg.SMSGatewayURL != "" {
		senders[twofactor.MethodSMS] = verification.NewSMSSender(cfg.SMSGatewayURL, cfg.SMSGatewayToken)
	}
	return senders
}

func NewSweeper(cfg config.Config, db *gorm.DB, log *zap.Logger) *autocomplete.Sweeper {
	return autocomplete.NewSweeper(repository.NewAppointmentRepository(db), cfg.AutoCompleteAfter, log.Named("autocomplete"))
}

func New(cfg config.Config, db *gorm.DB, processor subscription.Processor, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog := Catalog(cfg)
	tenantRepo := repository.NewTenantRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	coordinator := subscription.NewCoordinator(subscription.Options{
		Processor:     processor,
		Tenants:       tenantRepo,
		Subscriptions: subscriptionRepo,
		Subscribers:   repository.NewSubscriberRepository(db),
		Catalog:       catalog,
		AppURL:        cfg.AppURL,
		Logger:        log.Named("subscription"),
	})
	validator := plancheck.NewValidator(tenantRepo, log.Named("plancheck"))
	verifier := verification.NewService(repository.NewTwoFactorRepository(db), verification.Options{
		CodeTTL:     cfg.TwoFactorCodeTTL,
		MaxAttempts: cfg.TwoFactorMaxAttempts,
		ExposeCode:  cfg.TwoFactorExposeCode,
		Issuer:      cfg.TOTPIssuer,
		Senders:     Senders(cfg),
		Logger:      log.Named("2fa"),
	})
	blocks := blocklist.NewService(repository.NewBlockedIPRepository(db), log.Named("blocklist"))
	sweeper := NewSweeper(cfg, db, log)

	engine := gin.New()
	routes.RegisterRoutes(engine, routes.Deps{
		JWTSecret:      cfg.JWTSecret,
		CronSecret:     cfg.CronSecret,
		CORSOrigins:    cfg.CORSOrigins,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         log.Named("http"),
		Blocklist:      blocks,
		PlanStatus:     validator,
		Account:        accountapi.NewHandler(tenantRepo, subscriptionRepo, catalog, log),
		Billing:        billingapi.NewHandler(coordinator, log),
		Plans:          plansapi.NewHandler(validator, catalog, log),
		TwoFactor:      twofactorapi.NewHandler(verifier, log),
		Appointments:   appointmentsapi.NewHandler(sweeper, log),
		Webhooks:       stripewebhooks.NewHandler(cfg.StripeWebhookSecret, coordinator, log),
		Admin:          adminapi.NewHandler(blocks, log),
	})

	return &App{Engine: engine, Sweeper: sweeper}
}
