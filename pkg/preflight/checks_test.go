// pkg/preflight/checks_test.go

package preflight

import (
	"strings"
	"testing"
)

func TestParseMemTotalKB(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int64
		wantErr bool
	}{
		{
			name:    "typical meminfo",
			content: "MemTotal:        2037420 kB\nMemFree:          512000 kB\n",
			want:    2037420,
		},
		{
			name:    "memtotal not first line",
			content: "MemFree:          512000 kB\nMemTotal:        4096000 kB\n",
			want:    4096000,
		},
		{
			name:    "missing memtotal",
			content: "MemFree:          512000 kB\n",
			wantErr: true,
		},
		{
			name:    "empty content",
			content: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMemTotalKB(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCheckUniversePolicy(t *testing.T) {
	const policyWithUniverse = `Package files:
 500 http://archive.ubuntu.com/ubuntu noble/universe amd64 Packages
 500 http://archive.ubuntu.com/ubuntu noble/main amd64 Packages
`
	const policyMainOnly = `Package files:
 500 http://archive.ubuntu.com/ubuntu noble/main amd64 Packages
`

	if err := CheckUniversePolicy(policyWithUniverse, true, "noble"); err != nil {
		t.Errorf("universe present should pass: %v", err)
	}

	err := CheckUniversePolicy(policyMainOnly, true, "noble")
	if err == nil {
		t.Fatal("missing universe component should fail")
	}
	if !strings.Contains(err.Error(), "universe") {
		t.Errorf("missing-component error should name universe, got %q", err)
	}

	// A failed query is a different problem and must not suggest
	// add-apt-repository.
	err = CheckUniversePolicy("", false, "noble")
	if err == nil {
		t.Fatal("failed apt query should fail")
	}
	if !strings.Contains(err.Error(), "could not query apt") {
		t.Errorf("probe failure should report the query failed, got %q", err)
	}
}

func TestCheckMemoryKBBoundary(t *testing.T) {
	if err := CheckMemoryKB(MinimumRAMKB); err != nil {
		t.Errorf("exactly the threshold should pass: %v", err)
	}
	if err := CheckMemoryKB(MinimumRAMKB - 1); err == nil {
		t.Error("one kB below the threshold should fail")
	}
	if err := CheckMemoryKB(0); err == nil {
		t.Error("zero memory should fail")
	}
}
