package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"shenanigigs/jobstore/internal/config"
	"shenanigigs/jobstore/internal/events"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const usage = `usage:
  jobctl [-timeout 5s] create <job.json>
  jobctl [-timeout 5s] update <id> <patch.json>
  jobctl [-timeout 5s] delete <id>`

func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "how long to wait for a reply")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	_ = godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	publisher, err := events.NewPublisher(logger, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer publisher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	reply, err := run(ctx, publisher, flag.Args())
	if err != nil {
		logger.Fatal("Request failed", zap.Error(err))
	}

	out, err := json.MarshalIndent(reply, "", "  ")
	if err != nil {
		logger.Fatal("Failed to encode reply", zap.Error(err))
	}
	fmt.Println(string(out))

	if err := reply.Err(); err != nil {
		os.Exit(1)
	}
	if flag.Arg(0) == "update" && !reply.Found() {
		logger.Warn("No job with that id", zap.String("job_id", flag.Arg(1)))
		os.Exit(1)
	}
}

func run(ctx context.Context, publisher events.Publisher, args []string) (*events.Reply, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("missing command\n%s", usage)
	}

	switch cmd, rest := args[0], args[1:]; {
	case cmd == "create" && len(rest) == 1:
		data, err := os.ReadFile(rest[0])
		if err != nil {
			return nil, err
		}
		return publisher.CreateJob(ctx, data)
	case cmd == "update" && len(rest) == 2:
		data, err := os.ReadFile(rest[1])
		if err != nil {
			return nil, err
		}
		return publisher.UpdateJob(ctx, rest[0], data)
	case cmd == "delete" && len(rest) == 1:
		return publisher.DeleteJob(ctx, rest[0])
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}
