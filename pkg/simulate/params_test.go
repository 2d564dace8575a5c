package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrelab/firespread/pkg/scenario"
)

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr string
	}{
		{name: "valid", mutate: func(*Params) {}},
		{
			name:    "missing model",
			mutate:  func(p *Params) { p.Model = "" },
			wantErr: "fuel model",
		},
		{
			name:    "missing start",
			mutate:  func(p *Params) { p.Start = "" },
			wantErr: "start raster",
		},
		{
			name:    "missing live moisture",
			mutate:  func(p *Params) { p.MoistureLive = nil },
			wantErr: "live moisture",
		},
		{
			name:    "short wind vector",
			mutate:  func(p *Params) { p.WindSpeed = p.WindSpeed[:1] },
			wantErr: "wind_speed has 1 rasters but there are 3 change times",
		},
		{
			name:    "long moisture vector",
			mutate:  func(p *Params) { p.Moisture1h = append(p.Moisture1h, "extra") },
			wantErr: "moisture_1h has 4 rasters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			err := p.Validate(3)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParams_ValidateOptionalVectorsAbsent(t *testing.T) {
	p := Params{
		Model:        "fuel",
		MoistureLive: []string{"mlive_0"},
		Start:        "ignition",
	}
	assert.NoError(t, p.Validate(1))
}

func TestParams_ROSInput(t *testing.T) {
	p := testParams()

	in := p.ROSInput(1, "tmp.ros")
	assert.Equal(t, "fuel", in.Model)
	assert.Equal(t, "mlive_1", in.MoistureLive)
	assert.Equal(t, "m1h_1", in.Moisture1h)
	assert.Equal(t, "wdir_1", in.WindDirection)
	assert.Equal(t, "wspd_1", in.WindVelocity)
	assert.Equal(t, "slope", in.Slope)
	assert.Equal(t, "aspect", in.Aspect)
	assert.Equal(t, "tmp.ros", in.OutputBasename)

	// Vectors the run does not supply never reach the call.
	assert.Empty(t, in.Moisture10h)
	assert.Empty(t, in.Moisture100h)
}

func TestFromScenario(t *testing.T) {
	sc := &scenario.Scenario{
		Simulation: scenario.SimulationConfig{
			Step:        2,
			MaxTime:     9,
			ChangeTimes: []int{0, 3},
		},
		Inputs: scenario.InputConfig{
			Model:        "fuel",
			MoistureLive: []string{"mlive_0", "mlive_1"},
			WindSpeed:    []string{"wspd_0", "wspd_1"},
			Slope:        "slope",
			Start:        "ignition",
		},
	}

	p, err := FromScenario(sc)
	require.NoError(t, err)
	assert.Equal(t, "fuel", p.Model)
	assert.Equal(t, []string{"wspd_0", "wspd_1"}, p.WindSpeed)
	assert.Nil(t, p.WindDirection)
	assert.Equal(t, "ignition", p.Start)
}

func TestFromScenario_VectorMismatch(t *testing.T) {
	sc := &scenario.Scenario{
		Simulation: scenario.SimulationConfig{Step: 2, MaxTime: 9, ChangeTimes: []int{0, 3}},
		Inputs: scenario.InputConfig{
			Model:        "fuel",
			MoistureLive: []string{"mlive_0"},
			Start:        "ignition",
		},
	}

	_, err := FromScenario(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moisture_live")
}
