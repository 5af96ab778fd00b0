package storage

import (
	"fmt"
	"log/slog"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application/interfaces"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dgraph-io/badger/v4"
)

// KV hands out namespaces on the configured backend.
type KV struct {
	namespace func(name string) interfaces.Namespace
	db        *badger.DB
}

func Open(cfg Config, awsConfig aws.Config) (*KV, error) {
	switch cfg.Backend {
	case "badger":
		db, err := OpenBadger(cfg)
		if err != nil {
			return nil, err
		}
		slog.Info("kv backed by badger", "dir", cfg.BadgerDir, "inMemory", cfg.InMemory)
		return NewBadgerKV(db), nil
	case "s3":
		client := NewS3Client(awsConfig)
		slog.Info("kv backed by s3", "bucket", cfg.Bucket, "prefix", cfg.Prefix)
		return &KV{namespace: func(name string) interfaces.Namespace {
			return NewS3Namespace(client, cfg, name)
		}}, nil
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.Backend)
	}
}

func NewBadgerKV(db *badger.DB) *KV {
	return &KV{
		db: db,
		namespace: func(name string) interfaces.Namespace {
			return NewBadgerNamespace(db, name)
		},
	}
}

func (k *KV) Namespace(name string) interfaces.Namespace {
	return k.namespace(name)
}

func (k *KV) Close() error {
	if k.db == nil {
		return nil
	}
	return k.db.Close()
}
