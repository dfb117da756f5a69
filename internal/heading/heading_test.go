package heading

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFilter_Eligibility(t *testing.T) {
	tests := []struct {
		name   string
		rec    Record
		opts   Options
		wanted bool
	}{
		{"empty name dropped", Record{Level: 1, Name: "", VisibleOnScreen: true}, Options{}, false},
		{"level 1 always kept", Record{Level: 1, Name: "Top"}, Options{}, true},
		{"visible on screen kept", Record{Level: 3, Name: "Seen", VisibleOnScreen: true}, Options{}, true},
		{"at-only dropped by default", Record{Level: 2, Name: "Hidden", VisibleToAT: true}, Options{}, false},
		{"at-only kept with option", Record{Level: 2, Name: "Hidden", VisibleToAT: true}, Options{IncludeHiddenAT: true}, true},
		{"fully hidden dropped with option", Record{Level: 2, Name: "Gone"}, Options{IncludeHiddenAT: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter([]Record{tt.rec}, tt.opts)
			require.Equal(t, tt.wanted, len(got) == 1)
			require.Equal(t, tt.wanted, Eligible(tt.rec, tt.opts))
		})
	}
}

func TestFilter_HiddenATScenario(t *testing.T) {
	rec := Record{Level: 2, Ordinal: 1, Name: "Skip links", VisibleOnScreen: false, VisibleToAT: true}

	require.Empty(t, Filter([]Record{rec}, Options{IncludeHiddenAT: false}))
	require.Equal(t, []Record{rec}, Filter([]Record{rec}, Options{IncludeHiddenAT: true}))
}

func TestFilter_PreservesOrderAndDuplicates(t *testing.T) {
	in := []Record{
		{Level: 2, Ordinal: 3, Name: "c", VisibleOnScreen: true},
		{Level: 2, Ordinal: 1, Name: "", VisibleOnScreen: true},
		{Level: 1, Ordinal: 1, Name: "a"},
		{Level: 1, Ordinal: 1, Name: "a"},
	}
	got := Filter(in, Options{})
	require.Equal(t, []Record{in[0], in[2], in[3]}, got)
}

func TestFilter_EmptyInput(t *testing.T) {
	require.Empty(t, Filter(nil, Options{}))
	require.Empty(t, Filter([]Record{}, Options{IncludeHiddenAT: true}))
}

func TestFilter_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := rapid.SliceOf(recordGen()).Draw(t, "records")
		opts := Options{IncludeHiddenAT: rapid.Bool().Draw(t, "hiddenAT")}

		once := Filter(records, opts)
		twice := Filter(once, opts)
		if len(once) != len(twice) {
			t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
		}
		for i := range once {
			if once[i] != twice[i] {
				t.Fatalf("second pass changed record %d: %+v -> %+v", i, once[i], twice[i])
			}
		}
	})
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(nil))
	require.NoError(t, Validate([]Record{{Level: 1, Ordinal: 1}, {Level: 6, Ordinal: 5}}))

	err := Validate([]Record{
		{Level: 0, Ordinal: 1},
		{Level: 2, Ordinal: 1},
		{Level: 7, Ordinal: 9},
	})
	require.Error(t, err)
	problems := Problems(err)
	require.Len(t, problems, 3)
	require.Contains(t, problems[0], "level 0 out of range")
	require.Contains(t, problems[1], "ordinal 1 does not follow 1")
	require.Contains(t, problems[2], "level 7 out of range")
}

func recordGen() *rapid.Generator[Record] {
	return rapid.Custom(func(t *rapid.T) Record {
		return Record{
			Level:           rapid.IntRange(MinLevel, MaxLevel).Draw(t, "level"),
			Ordinal:         rapid.IntRange(0, 1000).Draw(t, "ordinal"),
			Name:            rapid.SampledFrom([]string{"", "Intro", "Method"}).Draw(t, "name"),
			VisibleOnScreen: rapid.Bool().Draw(t, "onScreen"),
			VisibleToAT:     rapid.Bool().Draw(t, "toAT"),
		}
	})
}
