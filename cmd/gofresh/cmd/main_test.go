package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecute_Version(t *testing.T) {
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"--version"})

	// Execute only exits the process on error, and --version cannot fail.
	Execute()

	assert.Contains(t, buf.String(), Version)
}

func TestVersionDefaults(t *testing.T) {
	assert.Equal(t, "0.0.1-dev", Version)
	assert.Equal(t, "unknown", Commit)
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantSchema string
		wantTable  string
		wantErr    bool
	}{
		{
			name:       "simple qualified name",
			input:      "shop.orders",
			wantSchema: "shop",
			wantTable:  "orders",
		},
		{
			name:       "dot inside table name",
			input:      "shop.orders.v2",
			wantSchema: "shop",
			wantTable:  "orders.v2",
		},
		{
			name:    "missing schema",
			input:   "orders",
			wantErr: true,
		},
		{
			name:    "empty schema part",
			input:   ".orders",
			wantErr: true,
		},
		{
			name:    "empty table part",
			input:   "shop.",
			wantErr: true,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, table, err := splitQualified(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid table name")
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSchema, schema)
			assert.Equal(t, tt.wantTable, table)
		})
	}
}
