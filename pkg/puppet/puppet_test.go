// pkg/puppet/puppet_test.go

package puppet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyArgsResolvesModulesInCheckout(t *testing.T) {
	args := ApplyArgs("/root/zulip-server-8.0", "class { 'zulip::voyager': }\n")

	assert.Equal(t, []string{
		"apply",
		"--detailed-exitcodes",
		"--modulepath", "/root/zulip-server-8.0/puppet",
		"-e", "class { 'zulip::voyager': }\n",
	}, args)
}

func TestManifest(t *testing.T) {
	tests := []struct {
		name    string
		classes string
		want    string
	}{
		{
			name:    "single class",
			classes: "zulip::voyager",
			want:    "class { 'zulip::voyager': }\n",
		},
		{
			name:    "multiple classes",
			classes: "zulip::voyager,zulip::postfix_localmail",
			want:    "class { 'zulip::voyager': }\nclass { 'zulip::postfix_localmail': }\n",
		},
		{
			name:    "whitespace and empty entries dropped",
			classes: " zulip::voyager , ,",
			want:    "class { 'zulip::voyager': }\n",
		},
		{
			name:    "empty list",
			classes: "",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Manifest(tt.classes))
		})
	}
}
