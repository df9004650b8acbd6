package extractors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/ppg-features/pkg/signal/config"
)

const testSampleRate = 125.0

// ExtractorTestSuite exercises the full feature vector on synthetic segments
type ExtractorTestSuite struct {
	suite.Suite
	extractor *Extractor

	pulse []float64
	zeros []float64
}

func (suite *ExtractorTestSuite) SetupSuite() {
	cfg := config.DefaultConfig().Features
	extractor, err := NewExtractor(&cfg, nil)
	suite.Require().NoError(err)
	suite.extractor = extractor

	// 1.2 Hz pulse train (72 bpm) riding on a 0.5 offset
	suite.pulse = make([]float64, 1000)
	for i := range suite.pulse {
		t := float64(i) / testSampleRate
		suite.pulse[i] = 0.5 + 0.4*math.Sin(2*math.Pi*1.2*t)
	}

	suite.zeros = make([]float64, 1000)
}

func (suite *ExtractorTestSuite) TestZeroSegmentHasNoCardiacFeatures() {
	v := suite.extractor.Extract(suite.zeros, testSampleRate)

	for _, f := range FeaturesOf(FamilyCardiac) {
		suite.Equal(0.0, v.Get(f), f.String())
	}
	suite.Equal(0.0, v.Get(Mean))
	suite.Equal(0.0, v.Get(Std))
	suite.Equal(0.0, v.Get(Skewness))
	suite.Equal(0.0, v.Get(Kurtosis))
	suite.True(v.IsFinite())
}

func (suite *ExtractorTestSuite) TestPulseCardiacFeatures() {
	v := suite.extractor.Extract(suite.pulse, testSampleRate)

	suite.GreaterOrEqual(v.Get(PeakCount), 9.0)
	suite.LessOrEqual(v.Get(PeakCount), 10.0)
	suite.InDelta(0.9, v.Get(PeakMeanHeight), 0.01)
	suite.InDelta(1/1.2, v.Get(PeakMeanInterval), 0.01)
	suite.InDelta(72.0, v.Get(MeanHR), 1.0)
	suite.InDelta(1000/1.2, v.Get(HRVMean), 10)
	suite.Less(v.Get(PeakCVInterval), 0.01)
}

func (suite *ExtractorTestSuite) TestPulseSpectralFeatures() {
	v := suite.extractor.Extract(suite.pulse, testSampleRate)

	// 0.5 Hz resolution leaves no bins inside either band
	suite.Equal(0.0, v.Get(FreqLFPower))
	suite.Equal(0.0, v.Get(FreqHFPower))
	suite.Equal(0.0, v.Get(FreqLFHFRatio))
	suite.InDelta(1.2, v.Get(FreqPeakFrequency), 0.5)
	suite.Greater(v.Get(FreqSpectralEntropy), 0.0)
}

func (suite *ExtractorTestSuite) TestPulseMorphologicalFeatures() {
	v := suite.extractor.Extract(suite.pulse, testSampleRate)

	suite.Greater(v.Get(MorphSignalEnergy), 0.0)
	suite.Greater(v.Get(MorphFirstDerivStd), 0.0)
	suite.Greater(v.Get(MorphSignalComplexity), 0.0)
	// one turning point per half cycle
	suite.InDelta(19.0, v.Get(MorphZeroCrossings1st), 2)
}

func (suite *ExtractorTestSuite) TestDeterministic() {
	first := suite.extractor.Extract(suite.pulse, testSampleRate)
	second := suite.extractor.Extract(suite.pulse, testSampleRate)
	suite.Equal(first, second)
}

func (suite *ExtractorTestSuite) TestDoesNotModifySegment() {
	segment := make([]float64, len(suite.pulse))
	copy(segment, suite.pulse)

	suite.extractor.Extract(segment, testSampleRate)
	suite.Equal(suite.pulse, segment)
}

func (suite *ExtractorTestSuite) TestShortSegment() {
	v := suite.extractor.Extract([]float64{0.1, 0.4, 0.2}, testSampleRate)

	for _, f := range FeaturesOf(FamilySpectral) {
		suite.Equal(0.0, v.Get(f), f.String())
	}
	suite.True(v.IsFinite())
}

func (suite *ExtractorTestSuite) TestEmptySegment() {
	v := suite.extractor.Extract(nil, testSampleRate)
	suite.Equal(Vector{}, v)
}

func TestExtractorSuite(t *testing.T) {
	suite.Run(t, new(ExtractorTestSuite))
}

func (suite *ExtractorTestSuite) TestSpectrumFollowsSampleRate() {
	spectral, ok := suite.extractor.Families()[2].(*SpectralExtractor)
	suite.Require().True(ok)

	base := spectral.Spectrum(suite.pulse, testSampleRate)
	doubled := spectral.Spectrum(suite.pulse, 2*testSampleRate)

	suite.Require().Len(doubled.Frequencies, len(base.Frequencies))
	suite.InDelta(2*base.Frequencies[1], doubled.Frequencies[1], 1e-12)
	suite.InDelta(2*base.PeakFrequency(), doubled.PeakFrequency(), 1e-9)
}
