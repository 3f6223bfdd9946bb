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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidFact indicates a ConceptFact failed validation.
	ErrInvalidFact = errors.New("invalid concept fact")

	// ErrMalformedLocale indicates a language tag could not be parsed.
	ErrMalformedLocale = errors.New("malformed language tag")

	// ErrEmptyURI indicates the URI field is empty.
	ErrEmptyURI = errors.New("concept uri cannot be empty")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("fact text cannot be empty")

	// ErrUnknownFactKind indicates an out of range FactKind value.
	ErrUnknownFactKind = errors.New("unknown fact kind")
)
