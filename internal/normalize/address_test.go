package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
)

func TestBuildFullAddress(t *testing.T) {
	tests := []struct {
		name     string
		city     string
		district string
		location string
		want     string
	}{
		{"all parts", "新竹市", "東區", "火車站前廣場", "新竹市東區火車站前廣場"},
		{"missing district", "台北市", "", "捐血中心", "台北市捐血中心"},
		{"location only", "", "", "市民廣場", "市民廣場"},
		{"trims parts", " 新竹市 ", "東區", " 廣場 ", "新竹市東區廣場"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.BuildFullAddress(tt.city, tt.district, tt.location))
		})
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips whitespace", "地點A 廣場", "地點a廣場"},
		{"strips ascii parens", "地點A(詳細地址)", "地點a詳細地址"},
		{"strips fullwidth parens", "地點A（詳細地址）", "地點a詳細地址"},
		{"lowercases", "NTU Hospital", "ntuhospital"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.NormalizeLocation(tt.in))
		})
	}
}

func TestNormalizedSubstringRelation(t *testing.T) {
	// The dedup rule compares normalized venue strings for containment; a
	// venue with an address suffix must contain the bare venue name.
	short := normalize.NormalizeLocation("地點A")
	long := normalize.NormalizeLocation("地點A(詳細地址)")
	assert.Contains(t, long, short)
}
