package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "", want: ""},
		{raw: "  ", want: ""},
		{raw: "HTTP://LocalHost:5173", want: "http://localhost:5173"},
		{raw: "https://app.example.com/some/path", want: "https://app.example.com"},
		{raw: "localhost:5173", wantErr: ErrIncomplete},
		{raw: "/relative", wantErr: ErrIncomplete},
	}

	for _, test := range tests {
		t.Run(test.raw, func(t *testing.T) {
			got, err := Normalize(test.raw)
			if test.wantErr != nil {
				assert.ErrorIs(t, err, test.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}

	_, err := Normalize("http://[::1")
	assert.Error(t, err)
}
