package storage

import (
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

// Namespace names shared with the edge worker.
const (
	NamespaceSites     = "sites"
	NamespaceSiteToOrg = "site_to_org"
	NamespaceMappings  = "custom_domains"
	NamespacePlans     = "plans"
	NamespaceRedirects = "redirects"
)

type Config struct {
	Backend   string
	BadgerDir string
	InMemory  bool
	Bucket    string
	Prefix    string
}

func NewStorageConfig() Config {
	return Config{
		Backend:   env.GetEnv("KV_BACKEND", "badger"),
		BadgerDir: env.GetEnv("KV_BADGER_DIR", "data/kv"),
		InMemory:  env.GetBool("KV_IN_MEMORY", false),
		Bucket:    env.GetEnv("S3_BUCKET", "orbiter-kv"),
		Prefix:    env.GetEnv("S3_PREFIX", "kv/"),
	}
}
