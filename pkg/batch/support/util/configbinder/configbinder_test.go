package configbinder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rateProps struct {
	Train   int           `yaml:"train"`
	Valid   int           `yaml:"valid"`
	Regions []string      `yaml:"regions"`
	Strict  bool          `yaml:"strict"`
	Timeout time.Duration `yaml:"timeout"`
}

func TestBindProperties(t *testing.T) {
	var p rateProps
	err := BindProperties(map[string]interface{}{
		"train":   "70",
		"valid":   15,
		"regions": []interface{}{"ulsan", "dangjin"},
		"strict":  "true",
		"timeout": "5s",
	}, &p)
	require.NoError(t, err)

	assert.Equal(t, 70, p.Train)
	assert.Equal(t, 15, p.Valid)
	assert.Equal(t, []string{"ulsan", "dangjin"}, p.Regions)
	assert.True(t, p.Strict)
	assert.Equal(t, 5*time.Second, p.Timeout)
}

func TestBindStringProperties_CommaList(t *testing.T) {
	var p rateProps
	require.NoError(t, BindStringProperties(map[string]string{"regions": "a,b"}, &p))
	assert.Equal(t, []string{"a", "b"}, p.Regions)
}

func TestBindProperties_TypeError(t *testing.T) {
	var p rateProps
	err := BindProperties(map[string]interface{}{"train": "sixty"}, &p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configbinder.rateProps")
}

func TestBindProperties_Empty(t *testing.T) {
	p := rateProps{Train: 60}
	require.NoError(t, BindProperties(nil, &p))
	assert.Equal(t, 60, p.Train)
}
