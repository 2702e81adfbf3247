package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestValidateTargetOrdering(t *testing.T) {
	tests := []struct {
		name    string
		optimal *float64
		post    float64
		minimal *float64
		want    bool
	}{
		{"both bounds satisfied", f64(120), 100, f64(80), true},
		{"boundaries are inclusive", f64(100), 100, f64(100), true},
		{"post above optimal", f64(90), 100, f64(80), false},
		{"post below minimal", f64(120), 70, f64(80), false},
		{"missing optimal skips the check", nil, 100, f64(150), true},
		{"missing minimal skips the check", f64(50), 100, nil, true},
		{"no bounds", nil, 100, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := MeasureData{
				DataCategory: DataCategoryTarget,
				PostValue:    tc.post,
				OptimalValue: tc.optimal,
				MinimalValue: tc.minimal,
			}
			assert.Equal(t, tc.want, data.ValidateTargetOrdering())
		})
	}
}
