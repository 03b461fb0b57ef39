package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`invoices:
  - subscriberNo: "5551234567"
    month: "2024-05"
    amount: "19.99"
`), 0o600))

	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr bool
	}{
		{name: "defaults", args: []string{}, want: []string{"1234567890", "0987654321", "(2 invoices)"}},
		{name: "file", args: []string{path}, want: []string{"5551234567", "19.99", "(1 invoices)"}},
		{name: "missing file", args: []string{filepath.Join(t.TempDir(), "nope.yaml")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			seedCmd.SetOut(&out)
			seedCmd.SetErr(&out)
			seedCmd.SetArgs(tt.args)

			err := seedCmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}
