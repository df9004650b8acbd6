package extractors

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaOrder(t *testing.T) {
	names := Names()
	require.Len(t, names, NumFeatures)
	assert.Equal(t, 33, NumFeatures)

	assert.Equal(t, "mean", names[0])
	assert.Equal(t, "peak_count", names[PeakCount])
	assert.Equal(t, "freq_lf_power", names[FreqLFPower])
	assert.Equal(t, "morph_signal_energy", names[MorphSignalEnergy])
	assert.Equal(t, "morph_signal_complexity", names[NumFeatures-1])
}

func TestFamilies(t *testing.T) {
	counts := map[Family]int{
		FamilyStatistical:   8,
		FamilyCardiac:       12,
		FamilySpectral:      5,
		FamilyMorphological: 8,
	}
	for family, expected := range counts {
		assert.Len(t, FeaturesOf(family), expected, string(family))
	}

	assert.Equal(t, FamilyCardiac, HRStd.Family())
	assert.Equal(t, FamilySpectral, FreqLFPower.Family())
}

func TestLookup(t *testing.T) {
	for i, name := range Names() {
		f, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, Feature(i), f)
		assert.Equal(t, name, f.String())
	}

	_, ok := Lookup("heart_rate")
	assert.False(t, ok)
}

func TestVectorJSON(t *testing.T) {
	var v Vector
	v.Set(Mean, 0.5)
	v.Set(MorphSignalComplexity, 2)
	v.Set(HRVRMSSD, math.NaN())

	data, err := json.Marshal(v)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, `{"mean":0.5,"std":0`))
	assert.Contains(t, s, `"hrv_rmssd":null`)
	assert.True(t, strings.HasSuffix(s, `"morph_signal_complexity":2}`))

	var decoded Vector
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 0.5, decoded.Get(Mean))
	assert.True(t, math.IsNaN(decoded.Get(HRVRMSSD)))
	assert.False(t, decoded.IsFinite())

	assert.Error(t, json.Unmarshal([]byte(`{"bogus":1}`), &decoded))
}
