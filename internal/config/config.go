// Package config loads the single YAML configuration file that resolves
// every filesystem path, vector-DB connection parameter and LLM setting
// used by the pipeline, mirroring the viper-based configuration layer the
// wider example corpus uses for this kind of CLI tool.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Paths holds the on-disk layout every stage reads and writes. Each
// component resolves its inputs/outputs from this single map rather than
// hard-coding paths.
type Paths struct {
	ComponentExtract string `mapstructure:"component_extract"`
	AbstractExtract  string `mapstructure:"abstract_extract"`
	LabelDir         string `mapstructure:"label_dir"`
	SectionMatch     string `mapstructure:"section_match"`
	ConcludeResult   string `mapstructure:"conclude_result"`
	TopicStoreDir    string `mapstructure:"topic_store_dir"`
	MergeArtifacts   string `mapstructure:"merge_artifacts"`
	RagDataBase      string `mapstructure:"rag_data_base"`
	PaperGenDir      string `mapstructure:"paper_gen_dir"`
	PromptDir        string `mapstructure:"prompt_dir"`
}

// VectorDB holds the Qdrant connection parameters and the embedding
// dimension shared by every collection.
type VectorDB struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	APIKey          string `mapstructure:"api_key"`
	UseTLS          bool   `mapstructure:"use_tls"`
	Database        string `mapstructure:"database"`
	Dimension       int    `mapstructure:"dimension"`
	Nlist           int    `mapstructure:"nlist"`
	CollectionAlias string `mapstructure:"collection_alias"`
}

// LLM holds the single-prompt completion and batch-embedding settings.
type LLM struct {
	BaseURL          string        `mapstructure:"base_url"`
	APIKey           string        `mapstructure:"api_key"`
	ChatModel        string        `mapstructure:"chat_model"`
	EmbeddingModel   string        `mapstructure:"embedding_model"`
	Temperature      float64       `mapstructure:"temperature"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
	EmbeddingBatch   int           `mapstructure:"embedding_batch"`
}

// Chunking holds the sentence-aware chunker's tunables.
type Chunking struct {
	ChunkSize   int `mapstructure:"chunk_size"`
	OverlapSize int `mapstructure:"overlap_size"`
}

// Retrieval holds the generator pipeline's tunables.
type Retrieval struct {
	TopKPerAspect int `mapstructure:"top_k_per_aspect"`
	FanoutWorkers int `mapstructure:"fanout_workers"`
}

// Config is the top-level configuration object loaded from a single YAML
// file.
type Config struct {
	Paths     Paths     `mapstructure:"paths"`
	VectorDB  VectorDB  `mapstructure:"vector_db"`
	LLM       LLM       `mapstructure:"llm"`
	Chunking  Chunking  `mapstructure:"chunking"`
	Retrieval Retrieval `mapstructure:"retrieval"`
	LogLevel  string    `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.component_extract", "data/sections")
	v.SetDefault("paths.abstract_extract", "data/abstracts")
	v.SetDefault("paths.label_dir", "data/labels")
	v.SetDefault("paths.section_match", "data/section_match")
	v.SetDefault("paths.conclude_result", "data/conclude")
	v.SetDefault("paths.topic_store_dir", "data/topics")
	v.SetDefault("paths.merge_artifacts", "data/topics/merge")
	v.SetDefault("paths.rag_data_base", "data/rag")
	v.SetDefault("paths.paper_gen_dir", "paperGen")
	v.SetDefault("paths.prompt_dir", "prompts")

	v.SetDefault("vector_db.port", 6334)
	v.SetDefault("vector_db.database", "paperrag")
	v.SetDefault("vector_db.dimension", 1024)
	v.SetDefault("vector_db.nlist", 128)

	v.SetDefault("llm.chat_model", "gpt-4o-mini")
	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.embedding_batch", 32)

	v.SetDefault("chunking.chunk_size", 500)
	v.SetDefault("chunking.overlap_size", 100)

	v.SetDefault("retrieval.top_k_per_aspect", 5)
	v.SetDefault("retrieval.fanout_workers", 10)

	v.SetDefault("log_level", "info")
}

// Load reads configuration from the given file path (if non-empty) and
// from PAPERRAG_-prefixed environment variables, layering over built-in
// defaults. A missing file is not an error when path is empty: defaults
// plus environment variables are used as-is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PAPERRAG")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	return &cfg, nil
}
