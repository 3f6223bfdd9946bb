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


// Package conceptrank resolves free text to ranked concepts from a
// controlled vocabulary.
//
// An Engine owns the current dictionary snapshot. Reload fetches facts
// from a loader and swaps in a new snapshot; queries never see a partially
// built one. Each query tokenizes the text, scores tokens against labels
// through the exact, partial and embedding channels and returns the best
// concepts:
//
//	engine, err := conceptrank.NewEngine(loader.NewFileLoader("concepts.yaml"))
//	if err != nil {
//	    return err
//	}
//	defer engine.Close()
//
//	if _, err := engine.Reload(ctx); err != nil {
//	    return err
//	}
//	hits, err := engine.MatchConcepts(ctx, "SimpleObject")
package conceptrank
