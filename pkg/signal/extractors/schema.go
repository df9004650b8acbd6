package extractors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Feature indexes a slot of the fixed feature schema
type Feature int

const (
	// Statistical
	Mean Feature = iota
	Std
	Skewness
	Kurtosis
	Variance
	RMS
	MAD
	CV

	// Cardiac cycle / HRV
	PeakCount
	PeakMeanHeight
	PeakStdHeight
	PeakMeanInterval
	PeakStdInterval
	PeakCVInterval
	HRVRMSSD
	HRVSDNN
	HRVMean
	HRVCV
	MeanHR
	HRStd

	// Spectral
	FreqLFPower
	FreqHFPower
	FreqLFHFRatio
	FreqPeakFrequency
	FreqSpectralEntropy

	// Morphological
	MorphSignalEnergy
	MorphFirstDerivMean
	MorphFirstDerivStd
	MorphSecondDerivMean
	MorphSecondDerivStd
	MorphZeroCrossings1st
	MorphZeroCrossings2nd
	MorphSignalComplexity

	NumFeatures int = iota
)

// Family groups features computed by the same sub-extractor
type Family string

const (
	FamilyStatistical   Family = "statistical"
	FamilyCardiac       Family = "cardiac"
	FamilySpectral      Family = "spectral"
	FamilyMorphological Family = "morphological"
)

// Families lists the families in schema order
var Families = []Family{FamilyStatistical, FamilyCardiac, FamilySpectral, FamilyMorphological}

var featureNames = [NumFeatures]string{
	"mean", "std", "skewness", "kurtosis", "variance", "rms", "mad", "cv",
	"peak_count", "peak_mean_height", "peak_std_height", "peak_mean_interval",
	"peak_std_interval", "peak_cv_interval", "hrv_rmssd", "hrv_sdnn", "hrv_mean",
	"hrv_cv", "mean_hr", "hr_std",
	"freq_lf_power", "freq_hf_power", "freq_lf_hf_ratio", "freq_peak_frequency",
	"freq_spectral_entropy",
	"morph_signal_energy", "morph_first_deriv_mean", "morph_first_deriv_std",
	"morph_second_deriv_mean", "morph_second_deriv_std", "morph_zero_crossings_1st",
	"morph_zero_crossings_2nd", "morph_signal_complexity",
}

// String returns the column name of the feature
func (f Feature) String() string {
	if f < 0 || int(f) >= NumFeatures {
		return fmt.Sprintf("Feature(%d)", int(f))
	}
	return featureNames[f]
}

// Family returns the sub-extractor that produces f
func (f Feature) Family() Family {
	switch {
	case f <= CV:
		return FamilyStatistical
	case f <= HRStd:
		return FamilyCardiac
	case f <= FreqSpectralEntropy:
		return FamilySpectral
	default:
		return FamilyMorphological
	}
}

// Names returns the feature column names in schema order
func Names() []string {
	names := make([]string, NumFeatures)
	copy(names, featureNames[:])
	return names
}

// FeaturesOf returns the features of one family in schema order
func FeaturesOf(family Family) []Feature {
	var out []Feature
	for f := range Feature(NumFeatures) {
		if f.Family() == family {
			out = append(out, f)
		}
	}
	return out
}

// Lookup resolves a column name to its feature
func Lookup(name string) (Feature, bool) {
	for i, n := range featureNames {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// Vector holds one value per feature, indexed by Feature
type Vector [NumFeatures]float64

func (v *Vector) Get(f Feature) float64 {
	return v[f]
}

func (v *Vector) Set(f Feature, value float64) {
	v[f] = value
}

// Slice returns a copy of the values in schema order
func (v *Vector) Slice() []float64 {
	out := make([]float64, NumFeatures)
	copy(out, v[:])
	return out
}

// IsFinite reports whether every value is finite
func (v *Vector) IsFinite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the vector as an object with keys in schema order.
// Non-finite values are written as null.
func (v Vector) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, x := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(featureNames[i])
		buf.Write(key)
		buf.WriteByte(':')
		if math.IsNaN(x) || math.IsInf(x, 0) {
			buf.WriteString("null")
			continue
		}
		val, err := json.Marshal(x)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object keyed by feature name. Unknown keys are
// rejected and missing keys stay zero.
func (v *Vector) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Vector{}
	for name, val := range raw {
		f, ok := Lookup(name)
		if !ok {
			return fmt.Errorf("unknown feature %q", name)
		}
		if val == nil {
			v[f] = math.NaN()
			continue
		}
		v[f] = *val
	}
	return nil
}
