package flatten

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/marcflat/pkg/marc"
)

func TestRecordAppend(t *testing.T) {
	rec := NewRecord()
	rec.Append("650", "A")
	rec.Append("100", "Smith")
	rec.Append("650", "B")

	assert.Equal(t, []string{"650", "100"}, rec.Keys())
	assert.Equal(t, []string{"A", "B"}, rec.Values("650"))
	assert.Nil(t, rec.Values("245"))
	assert.True(t, rec.Has("100"))
	assert.False(t, rec.Has("245"))
	assert.Equal(t, 2, rec.Len())
	assert.Equal(t, 3, rec.ValueCount())
}

func TestFlattenSubfieldModes(t *testing.T) {
	src := marc.NewRecord().AddDataField("100", "a", "Smith", "b", "J.")

	tests := []struct {
		name     string
		opts     Options
		expected map[string][]string
	}{
		{
			name:     "merged",
			opts:     Options{SubfieldSeparator: ";"},
			expected: map[string][]string{"100": {"Smith;J."}},
		},
		{
			name:     "merged default separator",
			opts:     Options{},
			expected: map[string][]string{"100": {"Smith;J."}},
		},
		{
			name:     "separate",
			opts:     Options{SubfieldsAsSeparate: true},
			expected: map[string][]string{"100a": {"Smith"}, "100b": {"J."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.opts).Flatten(src)
			require.Equal(t, len(tt.expected), got.Len())
			for key, values := range tt.expected {
				assert.Equal(t, values, got.Values(key), key)
			}
		})
	}
}

func TestFlattenTrimsValues(t *testing.T) {
	src := marc.NewRecord().
		AddControlField("001", "  ocm1 \n").
		AddDataField("245", "a", "  Title  ", "b", "\tsub ")

	merged := New(Options{}).Flatten(src)
	assert.Equal(t, []string{"ocm1"}, merged.Values("001"))
	assert.Equal(t, []string{"Title;sub"}, merged.Values("245"))

	separate := New(Options{SubfieldsAsSeparate: true}).Flatten(src)
	assert.Equal(t, []string{"Title"}, separate.Values("245a"))
	assert.Equal(t, []string{"sub"}, separate.Values("245b"))
}

func TestFlattenControlFieldsKeepBareTag(t *testing.T) {
	src := marc.NewRecord().AddControlField("008", "830415s1983")

	got := New(Options{SubfieldsAsSeparate: true}).Flatten(src)
	assert.Equal(t, []string{"008"}, got.Keys())
	assert.Equal(t, []string{"830415s1983"}, got.Values("008"))
}

func TestFlattenPreservesDuplicatesInOrder(t *testing.T) {
	src := marc.NewRecord().
		AddDataField("650", "a", "A").
		AddDataField("100", "a", "Smith").
		AddDataField("650", "a", "B")

	got := New(Options{}).Flatten(src)
	assert.Equal(t, []string{"650", "100"}, got.Keys())
	assert.Equal(t, []string{"A", "B"}, got.Values("650"))
}

func TestFlattenIncludeLeader(t *testing.T) {
	src := marc.NewRecord().AddControlField("001", "x")

	assert.False(t, New(Options{}).Flatten(src).Has(marc.LeaderTag))

	got := New(Options{IncludeLeader: true}).Flatten(src)
	assert.Equal(t, []string{marc.LeaderTag, "001"}, got.Keys())
	assert.Equal(t, []string{src.Leader}, got.Values(marc.LeaderTag))
}

func TestFlattenIsPure(t *testing.T) {
	src := marc.NewRecord().AddDataField("245", "a", "Title")
	f := New(Options{})

	first := f.Flatten(src)
	second := f.Flatten(src)
	assert.Equal(t, first, second)
	assert.Equal(t, "Title", src.Fields[0].Subfields[0].Value)
}

func TestSchemaColumnsAreSortedUnion(t *testing.T) {
	f := New(Options{SubfieldsAsSeparate: true})
	records := []*marc.Record{
		marc.NewRecord().AddControlField("001", "1").AddDataField("650", "a", "Cats"),
		marc.NewRecord().AddDataField("245", "a", "T", "b", "S").AddDataField("100", "a", "X"),
		marc.NewRecord().AddControlField("001", "3").AddDataField("020", "a", "isbn"),
	}

	schema := NewSchema()
	union := map[string]struct{}{}
	for _, rec := range records {
		flat := f.Flatten(rec)
		schema.Merge(flat)
		for _, key := range flat.Keys() {
			union[key] = struct{}{}
		}
	}

	expected := make([]string, 0, len(union))
	for key := range union {
		expected = append(expected, key)
	}
	sort.Strings(expected)

	assert.Equal(t, expected, schema.Columns())
	assert.Equal(t, []string{"001", "020a", "100a", "245a", "245b", "650a"}, schema.Columns())
	assert.Equal(t, []string{"001", "650a", "245a", "245b", "100a", "020a"}, schema.Discovered())
}

func TestSchemaObserve(t *testing.T) {
	schema := NewSchema()
	assert.True(t, schema.Observe("245"))
	assert.False(t, schema.Observe("245"))
	assert.True(t, schema.Contains("245"))
	assert.False(t, schema.Contains("100"))
	assert.Equal(t, 1, schema.Len())

	rec := NewRecord()
	rec.Append("245", "x")
	rec.Append("100", "y")
	assert.Equal(t, 1, schema.Merge(rec))

	cols := schema.Columns()
	cols[0] = "mutated"
	assert.Equal(t, []string{"100", "245"}, schema.Columns())
}

func TestCollapse(t *testing.T) {
	rec := NewRecord()
	rec.Append("650", "A")
	rec.Append("650", "B")
	rec.Append("245", "Title")

	c := Collapse(rec, "|")
	v, ok := c.Get("650")
	assert.True(t, ok)
	assert.Equal(t, "A|B", v)

	v, ok = c.Get("245")
	assert.True(t, ok)
	assert.Equal(t, "Title", v)

	_, ok = c.Get("100")
	assert.False(t, ok)
	assert.Equal(t, []string{"650", "245"}, c.Keys())

	v, _ = Collapse(rec, "").Get("650")
	assert.Equal(t, "A|B", v)

	v, _ = Collapse(rec, " ## ").Get("650")
	assert.Equal(t, "A ## B", v)
}
