package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConceptRecordMUS_SkipMatchesSize(t *testing.T) {
	rec := ConceptRecord{
		URI: "https://example.org/concepts/1",
		Facts: []ConceptFact{
			{URI: "https://example.org/concepts/1", Kind: FactLabel, Text: "SimpleObject", Lang: "en", Preferred: true},
			{URI: "https://example.org/concepts/1", Kind: FactSynonym, Text: "単純なオブジェクト", Lang: "ja"},
		},
		UpdatedAt: time.Date(2025, 3, 1, 12, 0, 0, 123000, time.UTC),
	}
	next := Checkpoint{ProcessorType: "engine-reload", Count: 7, UpdatedAt: rec.UpdatedAt}

	size := ConceptRecordMUS.Size(rec)
	buf := make([]byte, size+CheckpointMUS.Size(next))
	n := ConceptRecordMUS.Marshal(rec, buf)
	require.Equal(t, size, n)
	CheckpointMUS.Marshal(next, buf[n:])

	skipped, err := ConceptRecordMUS.Skip(buf)
	require.NoError(t, err)
	assert.Equal(t, size, skipped)

	got, _, err := CheckpointMUS.Unmarshal(buf[skipped:])
	require.NoError(t, err)
	assert.Equal(t, next.ProcessorType, got.ProcessorType)
	assert.Equal(t, next.Count, got.Count)
	assert.True(t, next.UpdatedAt.Equal(got.UpdatedAt))
}

func TestLabelVectorMUS_DefinedTypes(t *testing.T) {
	v := LabelVector{URI: "u", Text: "t", Locale: Locale("ja"), Vector: []float32{0.5, -1, 0}}
	buf := make([]byte, LabelVectorMUS.Size(v))
	LabelVectorMUS.Marshal(v, buf)

	got, n, err := LabelVectorMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, v, got)

	_, err = LabelVectorMUS.Skip(buf[:len(buf)-1])
	assert.Error(t, err)
}

func TestFactKindMUS_RoundTrip(t *testing.T) {
	buf := make([]byte, FactKindMUS.Size(FactChild))
	FactKindMUS.Marshal(FactChild, buf)
	got, _, err := FactKindMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, FactChild, got)
}
