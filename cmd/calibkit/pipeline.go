package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/time/rate"

	"github.com/samcharles93/calibkit/internal/calib"
	"github.com/samcharles93/calibkit/internal/hub"
	"github.com/samcharles93/calibkit/internal/logger"
	"github.com/samcharles93/calibkit/internal/source"
	"github.com/samcharles93/calibkit/internal/tokenizer"
)

func newHubClient(log logger.Logger) *hub.Client {
	return hub.New(
		hub.WithEndpoint(datasetsServer),
		hub.WithToken(hfToken),
		hub.WithRateLimit(rate.Limit(rateLimit), max(1, int(rateLimit))),
		hub.WithLogger(log),
	)
}

func loadTokenizer(log logger.Logger) (*tokenizer.Loaded, *tokenizer.ChatTemplate, error) {
	tok, err := tokenizer.Load(tokenizerRef, tokenizerConfig)
	if err != nil {
		return nil, nil, err
	}
	override := ""
	if chatTemplate != "" {
		raw, err := os.ReadFile(chatTemplate)
		if err != nil {
			return nil, nil, fmt.Errorf("read chat template: %w", err)
		}
		override = string(raw)
	}
	log.Info("loaded tokenizer", "source", tok.Source, "bos", tok.Tokenizer.BOSID(), "eos", tok.Tokenizer.EOSID())
	return tok, tok.Chat(arch, override), nil
}

// newDataloader builds the corpus described by the flags.
func newDataloader(ctx context.Context, log logger.Logger) (*calib.Dataloader, error) {
	tok, chat, err := loadTokenizer(log)
	if err != nil {
		return nil, err
	}
	return calib.Build(ctx, calib.Config{
		Tokenizer: tok.Tokenizer,
		Chat:      chat,
		Dataset:   dataset,
		SeqLen:    int(seqLen),
		Seed:      seed,
		BatchSize: int(batchSize),
		NSamples:  int(nsamples),
		Registry:  source.Default(newHubClient(log), log),
		Logger:    log,
		Workers:   int(workers),
	})
}
