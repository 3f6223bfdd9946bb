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

import (
	"fmt"
	"strings"
)

// ValidateFact validates a ConceptFact according to domain rules.
//
// Validation rules:
//   - URI must not be empty
//   - Text must not be empty
//   - Kind must be a known FactKind
//
// NOT validated here:
//   - Lang (parsed by the dictionary builder, which may infer a missing tag)
func ValidateFact(fact *ConceptFact) error {
	if fact == nil {
		return fmt.Errorf("%w: fact is nil", ErrInvalidFact)
	}

	if strings.TrimSpace(fact.URI) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyURI)
	}

	if strings.TrimSpace(fact.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidFact, ErrEmptyText)
	}

	if err := ValidateFactKind(fact.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFact, err)
	}

	return nil
}

// ValidateFactKind validates that a FactKind has a known value.
func ValidateFactKind(kind FactKind) error {
	if int(kind) >= len(factKindNames) {
		return fmt.Errorf("%w: value %d", ErrUnknownFactKind, kind)
	}
	return nil
}
