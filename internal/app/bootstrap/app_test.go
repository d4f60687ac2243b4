package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"带密码", "postgres://lamb:secret@db:5432/lamb?sslmode=disable", "postgres://lamb:****@db:5432/lamb?sslmode=disable"},
		{"无密码", "postgres://lamb@db:5432/lamb", "postgres://lamb@db:5432/lamb"},
		{"非URL", "host=db user=lamb", "host=db user=lamb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maskDSN(tt.in))
		})
	}
}
