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


// Package search resolves free-form query text to ranked concepts.
//
// A Matcher is bound to one dictionary snapshot. For each query it:
//   - tokenizes the text and detects its locale
//   - scores tokens through three independent channels
//   - sums candidate scores per URI, sorts and truncates
//   - resolves the canonical label of every surviving URI for the query locale
//
// The channels are:
//   - exact: a token equals a label text (case-sensitive)
//   - partial: a label text contains a token of three or more runes (case-folded)
//   - embedding: a token's vector is close to a stored label vector
//
// A token may score through several channels for the same URI and every
// contribution is counted. Embedding failures for a single token degrade
// that token's embedding contribution only; cancelling the context fails
// the whole call.
package search
