// Command lambda runs doclai as an AWS Lambda function.
//
// The function accepts three kinds of events: warmup pings, whole documents
// ({document_type, content, target_language}) and single generator prompts
// ({directive, content}) as sent by the lambda provider.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/ZaguanLabs/doclai/config"
	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := loadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("doclai: %v", err)
	}
	h := NewHandler(cfg)
	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		return handleRequest(ctx, h, event)
	})
}

// loadConfig reads DOCLAI_CONFIG when set, then the environment.
func loadConfig(getenv func(string) string) (*config.Config, error) {
	cfg := config.Default()
	if path := getenv("DOCLAI_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(getenv)
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "memory"
	}
	return cfg, nil
}

func handleRequest(ctx context.Context, h *Handler, event json.RawMessage) (interface{}, error) {
	// Warmup detection comes before anything else.
	if warmup, ok := IsWarmupEvent(event); ok {
		return HandleWarmup(ctx, warmup)
	}

	var req Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}
	return h.Handle(ctx, req)
}
