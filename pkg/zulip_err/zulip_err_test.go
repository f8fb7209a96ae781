// pkg/zulip_err/zulip_err_test.go

package zulip_err

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedErrorMarker(t *testing.T) {
	base := cerr.New("disk on fire")

	assert.False(t, IsExpectedUserError(base))
	assert.True(t, IsExpectedUserError(NewExpectedError(base)))

	// Marker survives further wrapping.
	wrapped := cerr.Wrap(NewExpectedError(base), "while provisioning")
	assert.True(t, IsExpectedUserError(wrapped))

	assert.Nil(t, NewExpectedError(nil))
}

func TestExpectedErrorKeepsMessageAndCause(t *testing.T) {
	base := cerr.New("certificate not found")
	err := NewExpectedError(base)

	require.EqualError(t, err, "certificate not found")
	assert.True(t, cerr.Is(err, base))
}

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		output string
		max    int
		want   string
	}{
		{
			name:   "empty output",
			output: "",
			max:    3,
			want:   "No output provided.",
		},
		{
			name:   "picks error lines",
			output: "Reading package lists...\nE: Unable to locate package foo\nDone.",
			max:    3,
			want:   "E: Unable to locate package foo",
		},
		{
			name:   "joins multiple candidates",
			output: "Error: one\nnoise\nfatal: two",
			max:    3,
			want:   "Error: one - fatal: two",
		},
		{
			name:   "caps candidate count",
			output: "error a\nerror b\nerror c",
			max:    2,
			want:   "error a - error b",
		},
		{
			name:   "falls back to first non-empty line",
			output: "\n\nSome benign output\nmore text",
			max:    3,
			want:   "Some benign output",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, tt.max))
		})
	}
}
