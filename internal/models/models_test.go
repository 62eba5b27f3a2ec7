package models

import "testing"

func TestDesignsForVolume(t *testing.T) {
	tests := []struct {
		volume int
		want   int
	}{
		{0, 5},
		{1999, 5},
		{2000, 10},
		{5000, 20},
		{9999, 20},
		{10000, 30},
		{20000, 50},
		{30000, 75},
		{49999, 75},
		{50000, 100},
		{1000000, 100},
	}
	for _, tt := range tests {
		if got := DesignsForVolume(tt.volume); got != tt.want {
			t.Errorf("DesignsForVolume(%d) = %d, want %d", tt.volume, got, tt.want)
		}
	}
}
