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


package search

import "errors"

var (
	// ErrDictionaryRequired is returned when a matcher is created without a dictionary.
	ErrDictionaryRequired = errors.New("dictionary required")

	// ErrInvalidOption is returned when an option value is out of range.
	ErrInvalidOption = errors.New("invalid search option")

	// ErrEmbeddingFailed marks a failed embed or vector search for one token.
	// It is reported to the monitor and logged; the match call carries on
	// with the dictionary channels.
	ErrEmbeddingFailed = errors.New("embedding channel failed")

	// ErrInconsistentSnapshot marks a ranked URI that has no dictionary entry.
	// The URI is dropped from the results and logged.
	ErrInconsistentSnapshot = errors.New("ranked uri missing from dictionary snapshot")
)
