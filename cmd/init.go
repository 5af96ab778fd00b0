package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/billing"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/domain"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/commands/site"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/processors"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/query"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/auth"
	infrabilling "github.com/Builder-Lawyers/orbiter-backend/internal/infra/billing"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/certs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/client/gateway"
	ai "github.com/Builder-Lawyers/orbiter-backend/internal/infra/client/openai"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/cloudflare"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/dns"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/logging"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/queue"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/security"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/storage"
	"github.com/Builder-Lawyers/orbiter-backend/internal/presentation/rest"
	"github.com/Builder-Lawyers/orbiter-backend/internal/presentation/scheduler"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
	"github.com/MicahParks/keyfunc/v3"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Init() {
	if err := env.Load(); err != nil {
		log.Panicf("failed to load config: %v", err)
	}
	logging.Init(logging.NewLoggingConfig())

	// DB
	dbConfig := db.NewConfig()
	pool, err := pgxpool.New(context.Background(), dbConfig.GetDSN())
	if err != nil {
		log.Panicf("failed to create pool: %v", err)
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Panicf("failed to connect to db: %v", err)
	}
	uowFactory := db.NewUoWFactory(pool)

	// Configs
	domainConfig := domain.NewDomainConfig()
	siteConfig := site.NewSiteConfig()
	dnsConfig := dns.NewDNSConfig()
	certsConfig := certs.NewCertsConfig()
	billingConfig := infrabilling.NewBillingConfig()
	authConfig := auth.NewAuthConfig()
	outboxConfig := scheduler.NewOutboxConfig()

	// AWS
	cfg, err := awsConfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Panic("can't load aws config", err)
	}

	kv, err := storage.Open(storage.NewStorageConfig(), cfg)
	if err != nil {
		log.Panicf("failed to open kv: %v", err)
	}
	keys := site.Keys{
		Sites:     kv.Namespace(storage.NamespaceSites),
		SiteToOrg: kv.Namespace(storage.NamespaceSiteToOrg),
		Redirects: kv.Namespace(storage.NamespaceRedirects),
	}
	mappings := storage.NewMappingStore(kv.Namespace(storage.NamespaceMappings))
	plans := storage.NewPlanStore(kv.Namespace(storage.NamespacePlans))

	// Providers
	var cf *cloudflare.Client
	if dnsConfig.Provider == "cloudflare" || certsConfig.Provider == "cloudflare" {
		cf = cloudflare.NewClient(cloudflare.NewCloudflareConfig())
	}
	var records interfaces.RecordGateway
	switch dnsConfig.Provider {
	case "route53":
		records = dns.NewRoute53Records(cfg, dnsConfig)
	default:
		records = dns.NewCloudflareRecords(cf, dnsConfig)
	}
	var hostnames interfaces.HostnameGateway
	switch certsConfig.Provider {
	case "acm":
		hostnames = certs.NewACMHostnames(cfg, certsConfig)
	default:
		hostnames = certs.NewCloudflareHostnames(cf, certsConfig)
	}
	var registrar interfaces.Registrar
	if domainConfig.RegistrationCheck {
		registrar = dns.NewRoute53Registrar(cfg)
	}
	slog.Info("providers selected", "dns", dnsConfig.Provider, "hostnames", certsConfig.Provider)

	mailServer := mail.NewMailServer(mail.NewMailConfig())
	var reviewer interfaces.ContentReviewer
	if openAIConfig := ai.NewOpenAIConfig(); openAIConfig.Enabled() {
		reviewer = ai.NewOpenAIClient(openAIConfig)
	}
	scanner := security.NewScanner(siteConfig.PlatformDomain, reviewer, mailServer)
	content := gateway.NewGatewayClient(gateway.NewGatewayConfig())
	contracts := queue.NewContractQueue(sqs.NewFromConfig(cfg), queue.NewContractQueueConfig())
	resolver := infrabilling.NewPlanResolver(billingConfig, uowFactory, infrabilling.NewStripeSubscriptions(billingConfig))

	// Auth
	roles, err := auth.NewRoles()
	if err != nil {
		log.Panicf("failed to load role policy: %v", err)
	}
	var keyFunc jwt.Keyfunc
	if authConfig.JWKSURL != "" {
		jwks, err := keyfunc.NewDefaultCtx(context.Background(), []string{authConfig.JWKSURL})
		if err != nil {
			log.Panicf("failed to load jwks: %v", err)
		}
		keyFunc = jwks.Keyfunc
	}
	identities := auth.NewIdentityProvider(authConfig, uowFactory, keyFunc)

	teardown := domain.NewTeardown(hostnames, mappings)
	handlers := &application.Handlers{
		CreateSite:      site.NewCreateSite(siteConfig, uowFactory, roles, resolver, plans, records, content, scanner, contracts, mailServer, keys),
		UpdateSite:      site.NewUpdateSite(siteConfig, uowFactory, roles, plans, records, content, contracts, mailServer, keys),
		DeleteSite:      site.NewDeleteSite(siteConfig, uowFactory, roles, records, mappings, teardown, keys),
		AddDomain:       domain.NewAddDomain(domainConfig, uowFactory, roles, plans, registrar, mappings, hostnames),
		VerifyDomain:    domain.NewVerifyDomain(domainConfig, uowFactory, roles, mappings, hostnames, dns.NewDoHResolver(dnsConfig)),
		RemoveDomain:    domain.NewRemoveDomain(domainConfig, uowFactory, roles, mappings, records, teardown),
		StripeWebhook:   billing.NewWebhook(billingConfig, uowFactory, resolver, plans, mailServer),
		CheckSubdomain:  query.NewCheckSubdomain(records),
		GetCustomDomain: query.NewGetCustomDomain(uowFactory, mappings),
	}
	procs := &application.Processors{
		RetryCleanup:    processors.NewRetryCleanup(records, keys, teardown),
		NotifyOperators: processors.NewNotifyOperators(mailServer),
	}

	handler := rest.NewServer(handlers)
	app := fiber.New(fiber.Config{
		IdleTimeout: 5 * time.Second,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(rest.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     env.GetEnv("CORS_ORIGINS", "http://localhost:3000"),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Source, " + rest.HeaderAPIKey + ", " + rest.HeaderToken,
		AllowCredentials: true,
	}))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Static("/docs", "./api")
	app.Use(rest.Authenticate(rest.AuthConfig{
		Provider: identities,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/webhooks/")
		},
	}))
	rest.RegisterHandlers(app, handler)

	outboxPoller := scheduler.NewOutboxPoller(procs, uowFactory, outboxConfig)
	go outboxPoller.Start()

	go func() {
		if err := app.Listen(env.GetEnv("HTTP_ADDR", ":8080")); err != nil {
			log.Panic(err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	slog.Info("Gracefully shutting down...")
	_ = app.ShutdownWithTimeout(10 * time.Second)
	outboxPoller.Stop()

	slog.Info("Running cleanup tasks...")
	if err := kv.Close(); err != nil {
		slog.Error("err closing kv", "err", err)
	}
	uowFactory.Pool.Close()
	slog.Info("Fiber was successfully shutdown.")
}
