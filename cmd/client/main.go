// Command client is a small CLI around the sync API. It performs a pull
// sync for every entity family, reports the resulting watermarks, and can
// optionally keep polling on an interval.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndedov/go-stash-sync/internal/client"
	"github.com/ndedov/go-stash-sync/internal/logger"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8080", "sync server base URL")
		timeout   = flag.Duration("timeout", 30*time.Second, "request timeout")
		interval  = flag.Duration("interval", 0, "keep polling on this interval (one-shot when zero)")
	)
	flag.Parse()

	log := logger.NewLogger("stash-sync-client")

	token := os.Getenv("STASH_SYNC_TOKEN")
	if token == "" {
		log.Fatal().Msg("STASH_SYNC_TOKEN is not set")
	}

	c := client.NewSyncClient(*serverURL, *timeout, log)
	c.SetToken(token)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	version, err := c.ServerVersion(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("server is unreachable")
	}
	fmt.Printf("Server version: %s\n", version)

	families := []string{client.FamilyNotes, client.FamilyBookmarks, client.FamilyFiles}
	for _, family := range families {
		outcome, err := c.Sync(ctx, family, nil)
		if err != nil {
			log.Fatal().Err(err).Str("family", family).Msg("pull failed")
		}
		fmt.Printf("%s: %d changed, watermark %s\n",
			family, len(outcome.UpdatedEntities), outcome.ServerUpdatedSince.Format(time.RFC3339))
	}

	if *interval <= 0 {
		return
	}

	job := client.NewSyncJob(c, families...)
	job.Start(ctx, *interval)
	defer job.Stop()

	<-ctx.Done()
}
