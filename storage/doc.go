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


// Package storage provides the storage abstraction layer for conceptrank.
//
// The store is a persistent source of concept facts and label vectors. It is
// not engine state: the engine reads facts through a loader and serves
// matches from an immutable in-memory snapshot.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - ConceptRepository: raw facts grouped into one record per concept URI
//   - VectorRepository: label embeddings with brute-force similarity search
//   - CheckpointRepository: progress of background processors
//   - Repository: transaction support and lifecycle shared by all of them
//
// Values are encoded with the mus-go serializers from the core package and
// keyed by BLAKE2b-derived IDs.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	concepts, vectors, checkpoints, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
