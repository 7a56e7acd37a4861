package main

import (
	"os"

	"github.com/vango-dev/duel/internal/config"
	duelerrors "github.com/vango-dev/duel/internal/errors"
	"github.com/vango-dev/duel/pkg/replay"
)

// openStore returns the S3 store when a bucket is configured, otherwise
// the directory store.
func openStore(cfg *config.Config) (replay.Store, string, error) {
	if cfg.Replay.Bucket != "" {
		client := replay.NewS3Client(replay.S3Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		where := "s3://" + cfg.Replay.Bucket + "/" + cfg.Replay.Prefix
		return replay.NewS3Store(client, cfg.Replay.Bucket, cfg.Replay.Prefix), where, nil
	}

	store, err := replay.NewFileStore(cfg.Replay.Dir)
	if err != nil {
		return nil, "", duelerrors.New("E130").WithDetail(cfg.Replay.Dir).Wrap(err)
	}
	return store, cfg.Replay.Dir, nil
}
