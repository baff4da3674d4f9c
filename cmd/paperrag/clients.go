package main

import (
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"paperrag/internal/config"
	"paperrag/internal/llm"
	"paperrag/internal/vectorstore"
	qdrantstore "paperrag/internal/vectorstore/qdrant"
)

func newChatModel(cfg *config.Config) (llm.ChatModel, error) {
	return llm.NewChat(llm.OpenAIConfig{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		ChatModel:      cfg.LLM.ChatModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
		Timeout:        cfg.LLM.Timeout,
	})
}

func newEmbeddingModel(cfg *config.Config) (llm.EmbeddingModel, error) {
	return llm.NewEmbedding(llm.OpenAIConfig{
		APIKey:             cfg.LLM.APIKey,
		BaseURL:            cfg.LLM.BaseURL,
		ChatModel:          cfg.LLM.ChatModel,
		EmbeddingModel:     cfg.LLM.EmbeddingModel,
		Timeout:            cfg.LLM.Timeout,
		EmbeddingBatchSize: cfg.LLM.EmbeddingBatch,
		Dim:                cfg.VectorDB.Dimension,
	})
}

func newVectorStore(cfg *config.Config, embeddingModel llm.EmbeddingModel) (vectorstore.Store, error) {
	clientCfg := &qdrant.Config{
		Host:   cfg.VectorDB.Host,
		Port:   cfg.VectorDB.Port,
		APIKey: cfg.VectorDB.APIKey,
		UseTLS: cfg.VectorDB.UseTLS,
	}
	client, err := qdrant.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("paperrag: failed to connect to qdrant at %s:%d: %w", cfg.VectorDB.Host, cfg.VectorDB.Port, err)
	}

	return qdrantstore.New(&qdrantstore.Config{Client: client, EmbeddingModel: embeddingModel})
}
