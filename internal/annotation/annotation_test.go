package annotation

import "testing"

func TestCleanList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trims and keeps order", []string{" aspirin ", "fever"}, []string{"aspirin", "fever"}},
		{"drops empties", []string{"", "  ", "a"}, []string{"a"}},
		{"all empty yields nil", []string{"", "  "}, nil},
		{"nil input yields nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanList(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("CleanList(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("CleanList(%v)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
