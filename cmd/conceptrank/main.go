// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/conceptrank/reembed"
	"github.com/poiesic/conceptrank/search"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "conceptrank",
		Usage: "Resolve free text to ranked concepts from a controlled vocabulary",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"CONCEPTRANK_LOG_LEVEL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Copy concept facts from a source into the concept store",
				Action: importCommand,
				Flags:  sourceFlags(),
			},
			{
				Name:   "index",
				Usage:  "Embed every label and write the vectors to a label index",
				Action: indexCommand,
				Flags: concat(sourceFlags(), embeddingFlags(), indexFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of labels to embed in each batch",
						Value: reembed.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N labels",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}),
			},
			{
				Name:      "match",
				Usage:     "Print the concepts that best match a query",
				ArgsUsage: "<query text>",
				Action:    matchCommand,
				Flags:     concat(sourceFlags(), embeddingFlags(), indexFlags(), matchFlags()),
			},
			{
				Name:      "lookup",
				Usage:     "Print the entry of a concept",
				ArgsUsage: "<uri>",
				Action:    lookupCommand,
				Flags:     sourceFlags(),
			},
			{
				Name:   "labels",
				Usage:  "List concepts with their canonical label",
				Action: labelsCommand,
				Flags: concat(sourceFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "locale",
						Usage: "Only list concepts with a label in this locale",
					},
				}),
			},
			{
				Name:   "watch",
				Usage:  "Reload a concept file on change and answer queries read from stdin",
				Action: watchCommand,
				Flags: concat(sourceFlags(), embeddingFlags(), indexFlags(), matchFlags(), []cli.Flag{
					&cli.DurationFlag{
						Name:  "debounce",
						Usage: "Quiet period after a change before reloading",
						Value: 250 * time.Millisecond,
					},
				}),
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source-type",
			Usage:   "Concept source kind (file, sparql, neo4j, store)",
			Value:   sourceFile,
			EnvVars: []string{"CONCEPTRANK_SOURCE_TYPE"},
		},
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "YAML file path, SPARQL endpoint URL or Neo4j target URI",
			EnvVars: []string{"CONCEPTRANK_SOURCE"},
		},
		&cli.StringFlag{
			Name:    "source-user",
			Usage:   "Username for the SPARQL endpoint or Neo4j",
			EnvVars: []string{"CONCEPTRANK_SOURCE_USER"},
		},
		&cli.StringFlag{
			Name:    "source-password",
			Usage:   "Password for the SPARQL endpoint or Neo4j",
			EnvVars: []string{"CONCEPTRANK_SOURCE_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "source-database",
			Usage:   "Neo4j database name",
			EnvVars: []string{"CONCEPTRANK_SOURCE_DATABASE"},
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			EnvVars: []string{"CONCEPTRANK_DB"},
		},
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "embedder",
			Usage:   "Embedding provider (none, openai, hashing)",
			Value:   embedderNone,
			EnvVars: []string{"CONCEPTRANK_EMBEDDER"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"CONCEPTRANK_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "embeddinggemma",
			EnvVars: []string{"CONCEPTRANK_EMBEDDING_MODEL"},
		},
		&cli.StringFlag{
			Name:    "embedding-token",
			Usage:   "API token sent to the embedding service",
			EnvVars: []string{"CONCEPTRANK_EMBEDDING_TOKEN"},
		},
		&cli.IntFlag{
			Name:  "dimensions",
			Usage: "Vector size of the hashing embedder",
			Value: 128,
		},
	}
}

func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "index",
			Usage:   "Label vector index (none, badger, chroma)",
			Value:   indexNone,
			EnvVars: []string{"CONCEPTRANK_INDEX"},
		},
		&cli.StringFlag{
			Name:    "chroma-url",
			Usage:   "Chroma service base URL",
			Value:   "http://localhost:8000",
			EnvVars: []string{"CONCEPTRANK_CHROMA_URL"},
		},
		&cli.StringFlag{
			Name:    "chroma-collection",
			Usage:   "Chroma collection holding label vectors",
			Value:   "concepts",
			EnvVars: []string{"CONCEPTRANK_CHROMA_COLLECTION"},
		},
	}
}

func matchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "max-hits",
			Usage: "Maximum number of concepts per query",
			Value: search.DefaultMaxHits,
		},
		&cli.IntFlag{
			Name:  "embedding-results",
			Usage: "Neighbours requested from the index per token",
			Value: search.DefaultEmbeddingResults,
		},
		&cli.IntFlag{
			Name:  "pool-size",
			Usage: "Concurrent embedding calls per query",
			Value: search.DefaultPoolSize,
		},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Logs go to stderr so results on stdout stay scriptable
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
