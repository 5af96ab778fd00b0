package testinfra

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	poolOnce sync.Once
	pool     *pgxpool.Pool

	awsOnce sync.Once
	awsCfg  aws.Config
)

// Postgres starts one container per test binary and applies the schema.
func Postgres() *pgxpool.Pool {
	poolOnce.Do(func() {
		pool = SetupDB()
	})
	return pool
}

// AWS starts localstack with the given services and points the SDK at it.
func AWS(services ...string) aws.Config {
	awsOnce.Do(func() {
		awsCfg = SetupAWS(services)
	})
	return awsCfg
}

func SetupDB() *pgxpool.Pool {
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:17.2-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	if err != nil {
		log.Panicf("start postgres: %v", err)
	}

	pgHostPort, err := pgC.Endpoint(ctx, "")
	if err != nil {
		log.Panicf("postgres endpoint: %v", err)
	}
	pgDSN := fmt.Sprintf("postgres://postgres:password@%s/testdb?sslmode=disable", pgHostPort)

	p, err := pgxpool.New(ctx, pgDSN)
	if err != nil {
		log.Panicf("pgxpool connect: %v", err)
	}

	ok := false
	for i := 0; i < 20; i++ {
		slog.Info("ping db", "try", i)
		ctxPing, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		err = p.Ping(ctxPing)
		cancel()
		if err == nil {
			ok = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !ok {
		log.Panic("db did not respond after 20 attempts")
	}

	if _, err = p.Exec(ctx, Schema); err != nil {
		log.Panicf("create tables: %v", err)
	}

	return p
}

func SetupAWS(services []string) aws.Config {
	ctx := context.Background()
	slog.Info("SETUP AWS CONFIG", "services", services)

	ls, err := localstack.Run(ctx,
		"localstack/localstack:4.4",
		testcontainers.WithEnv(map[string]string{"SERVICES": strings.Join(services, ",")}),
	)
	if err != nil {
		log.Panicf("failed to start localstack: %v", err)
	}
	endpoint, err := ls.PortEndpoint(ctx, "4566/tcp", "http")
	if err != nil {
		log.Panicf("failed to get localstack endpoint: %v", err)
	}

	_ = os.Setenv("AWS_ACCESS_KEY_ID", "test")
	_ = os.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	_ = os.Setenv("AWS_REGION", "us-east-1")
	_ = os.Setenv("AWS_ENDPOINT_URL", endpoint)

	cfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Panic("can't load aws config", err)
	}
	return cfg
}

// Schema is the orbiter schema the repositories query.
const Schema = `
	CREATE SCHEMA IF NOT EXISTS orbiter;
	CREATE TABLE IF NOT EXISTS orbiter.organizations (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		stripe_customer_id TEXT UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS orbiter.members (
		user_id UUID NOT NULL,
		organization_id UUID NOT NULL REFERENCES orbiter.organizations(id),
		role VARCHAR(20) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (user_id, organization_id)
	);
	CREATE TABLE IF NOT EXISTS orbiter.keys (
		key_hash CHAR(64) PRIMARY KEY,
		organization_id UUID NOT NULL REFERENCES orbiter.organizations(id),
		created_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS orbiter.sites (
		id UUID PRIMARY KEY,
		organization_id UUID NOT NULL,
		domain TEXT NOT NULL UNIQUE,
		custom_domain TEXT UNIQUE,
		domain_ownership_verified BOOLEAN NOT NULL DEFAULT false,
		ssl_issued BOOLEAN NOT NULL DEFAULT false,
		cid TEXT NOT NULL,
		site_contract TEXT,
		deployed_by UUID,
		source VARCHAR(20) NOT NULL DEFAULT 'ipfs',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE TABLE IF NOT EXISTS orbiter.outbox (
		id BIGSERIAL PRIMARY KEY,
		event VARCHAR(60) NOT NULL,
		status SMALLINT NOT NULL,
		attempts INT NOT NULL DEFAULT 0,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
`
