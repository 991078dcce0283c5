package bill

import "testing"

func TestRoundToPaise(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{300, 300},
		{512.404, 512.40},
		{512.406, 512.41},
		{1199.999, 1200},
	}

	for _, tt := range tests {
		if got := roundToPaise(tt.in); got != tt.want {
			t.Errorf("roundToPaise(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
