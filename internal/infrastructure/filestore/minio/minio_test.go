package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/watlas/internal/infrastructure/config"
)

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "derived from endpoint",
			cfg:  config.StorageConfig{Endpoint: "localhost:9000", Bucket: "images"},
			want: "http://localhost:9000/images",
		},
		{
			name: "derived with ssl",
			cfg:  config.StorageConfig{Endpoint: "s3.example.com", Bucket: "wiki", UseSSL: true},
			want: "https://s3.example.com/wiki",
		},
		{
			name: "explicit public url",
			cfg:  config.StorageConfig{Endpoint: "minio:9000", Bucket: "images", PublicURL: "https://cdn.example.com/images/"},
			want: "https://cdn.example.com/images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, publicURL(tt.cfg))
		})
	}
}
