package color

import (
	"testing"

	"github.com/Speshl/gorrc_iracer/internal/events"
	"github.com/Speshl/gorrc_iracer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultTolerance = models.Tolerance{Ratio: 0.03, Sum: 300}

func newTestClassifier(t *testing.T, triggers []models.ColorTrigger, tolerance models.Tolerance) (*Classifier, *events.Buffer) {
	t.Helper()
	buffer := events.NewBuffer(0)
	calibration := NewCalibration(NewMemoryStore(triggers))
	return NewClassifier(calibration, tolerance, buffer), buffer
}

func TestNormalize(t *testing.T) {
	reading, ok := Normalize(models.RawSample{Red: 2, Green: 1, Blue: 1})
	require.True(t, ok)
	assert.Equal(t, models.Reading{RedRatio: 0.5, GreenRatio: 0.25, BlueRatio: 0.25, Sum: 4}, reading)

	for _, raw := range []models.RawSample{{}, {Red: 1}, {Blue: 1}} {
		_, ok := Normalize(raw)
		assert.False(t, ok, "%+v", raw)
	}
}

func TestClassifyLowSumIsRejected(t *testing.T) {
	c, buffer := newTestClassifier(t, []models.ColorTrigger{
		{RedRatio: 1, SumThreshold: 1, Label: "DARK\n"},
	}, models.Tolerance{Ratio: 1, Sum: 10})

	_, accepted := c.Classify(models.RawSample{Red: 600, Green: 300, Blue: 100})
	require.True(t, accepted)
	before := c.Reading()

	for _, raw := range []models.RawSample{{}, {Red: 1}, {Green: 1}} {
		fired, accepted := c.Classify(raw)
		assert.False(t, accepted)
		assert.Empty(t, fired)
	}
	assert.Equal(t, before, c.Reading(), "reading must not change on rejected samples")
	assert.Equal(t, 0, buffer.Len())
}

func TestClassifyExactMatch(t *testing.T) {
	c, buffer := newTestClassifier(t, DefaultTriggers(), defaultTolerance)

	// 615+169+216 = 1000, ratios equal the lap zone, sum within 300 of 1030
	fired, accepted := c.Classify(models.RawSample{Red: 615, Green: 169, Blue: 216})
	require.True(t, accepted)
	assert.Equal(t, []string{"LAP\n"}, fired)

	text, _ := buffer.Pending()
	assert.Equal(t, "LAP\n", text)
}

func TestClassifyToleranceIsStrict(t *testing.T) {
	// (2,1,1) normalizes to exactly 0.5/0.25/0.25 with sum 4
	raw := models.RawSample{Red: 2, Green: 1, Blue: 1}
	tolerance := models.Tolerance{Ratio: 0.25, Sum: 2}

	tests := []struct {
		name    string
		trigger models.ColorTrigger
		match   bool
	}{
		{
			name:    "identical",
			trigger: models.ColorTrigger{RedRatio: 0.5, GreenRatio: 0.25, BlueRatio: 0.25, SumThreshold: 4},
			match:   true,
		},
		{
			name:    "red exactly one tolerance away",
			trigger: models.ColorTrigger{RedRatio: 0.75, GreenRatio: 0.25, BlueRatio: 0.25, SumThreshold: 4},
			match:   false,
		},
		{
			name:    "blue exactly one tolerance away",
			trigger: models.ColorTrigger{RedRatio: 0.5, GreenRatio: 0.25, BlueRatio: 0, SumThreshold: 4},
			match:   false,
		},
		{
			name:    "sum exactly one tolerance away",
			trigger: models.ColorTrigger{RedRatio: 0.5, GreenRatio: 0.25, BlueRatio: 0.25, SumThreshold: 6},
			match:   false,
		},
		{
			name:    "just inside every tolerance",
			trigger: models.ColorTrigger{RedRatio: 0.7, GreenRatio: 0.05, BlueRatio: 0.45, SumThreshold: 5.5},
			match:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.trigger.Label = "ZONE\n"
			c, buffer := newTestClassifier(t, []models.ColorTrigger{tt.trigger}, tolerance)

			fired, accepted := c.Classify(raw)
			require.True(t, accepted)
			if tt.match {
				assert.Equal(t, []string{"ZONE\n"}, fired)
				assert.Equal(t, 1, buffer.Len())
			} else {
				assert.Empty(t, fired)
				assert.Equal(t, 0, buffer.Len())
			}
		})
	}
}

func TestClassifyFiresEveryMatchingTrigger(t *testing.T) {
	zone := models.ColorTrigger{RedRatio: 0.5, GreenRatio: 0.25, BlueRatio: 0.25, SumThreshold: 400}
	first, second, other := zone, zone, zone
	first.Label = "FIRST\n"
	second.Label = "SECOND\n"
	other.Label = "OTHER\n"
	other.RedRatio = 0.1

	c, buffer := newTestClassifier(t, []models.ColorTrigger{first, other, second}, defaultTolerance)

	fired, _ := c.Classify(models.RawSample{Red: 200, Green: 100, Blue: 100})
	assert.Equal(t, []string{"FIRST\n", "SECOND\n"}, fired)

	text, _ := buffer.Pending()
	assert.Equal(t, "FIRST\nSECOND\n", text)
}

func TestClassifyDoesNotRepeatPendingLabel(t *testing.T) {
	c, buffer := newTestClassifier(t, DefaultTriggers(), defaultTolerance)

	_, accepted := c.Classify(models.RawSample{Red: 615, Green: 169, Blue: 216})
	require.True(t, accepted)
	fired, accepted := c.Classify(models.RawSample{Red: 616, Green: 169, Blue: 216})
	require.True(t, accepted)
	assert.Empty(t, fired)

	text, _ := buffer.Pending()
	assert.Equal(t, "LAP\n", text)
}

func TestClassifyAppendsToEarlierLabels(t *testing.T) {
	c, buffer := newTestClassifier(t, DefaultTriggers(), defaultTolerance)
	buffer.Add("Link Quality=70/70\n")

	c.Classify(models.RawSample{Red: 615, Green: 169, Blue: 216})

	text, _ := buffer.Pending()
	assert.Equal(t, "Link Quality=70/70\nLAP\n", text)
}

func TestClassifyDiscardsRepeatedRawSample(t *testing.T) {
	c, buffer := newTestClassifier(t, DefaultTriggers(), defaultTolerance)
	raw := models.RawSample{Red: 615, Green: 169, Blue: 216}

	fired, accepted := c.Classify(raw)
	assert.True(t, accepted)
	assert.Len(t, fired, 1)

	_, through := buffer.Pending()
	buffer.Commit(through)

	fired, accepted = c.Classify(raw)
	assert.False(t, accepted, "unchanged sample must be discarded")
	assert.Empty(t, fired)
	assert.Equal(t, 0, buffer.Len())
}

func TestClassifyUpdatesReadingWithoutMatch(t *testing.T) {
	c, buffer := newTestClassifier(t, DefaultTriggers(), defaultTolerance)

	_, accepted := c.Classify(models.RawSample{Red: 10, Green: 10, Blue: 20})
	require.True(t, accepted)
	assert.Equal(t, models.Reading{RedRatio: 0.25, GreenRatio: 0.25, BlueRatio: 0.5, Sum: 40}, c.Reading())
	assert.Equal(t, 0, buffer.Len())
}
