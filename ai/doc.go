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


// Package ai provides abstractions for the embedding services used by the
// concept matcher.
//
// The package defines two interfaces:
//
//   - Embedder: turns a text into a vector
//   - VectorIndex: stores label vectors and returns the nearest URIs for a vector
//
// # Implementation Packages
//
//   - ai/openai: embeddings from OpenAI-compatible APIs via langchaingo
//   - ai/hashing: a local, deterministic SHA-256 token hashing embedder
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Vector indexes live in storage/badger (embedded) and vectorstore/chroma
// (remote).
//
// Public constructors return interface types. Mock constructors return
// concrete types so tests can inject behavior and assert call counts.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithEmbeddingModel("embeddinggemma"))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "SimpleObject")
//	matches, err := index.Search(ctx, vector, cfg.SearchLimit)
package ai
