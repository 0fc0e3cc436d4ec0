package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	payload := []byte(`{"title":"About Us","body":"<p>hello</p>"}`)

	for _, name := range []string{"gzip", "brotli", "lz4", "nop"} {
		codec := FromName(name)

		encoded, err := codec.Encode(payload)
		assert.NoError(t, err, name)

		decoded, err := codec.Decode(encoded)
		assert.NoError(t, err, name)
		assert.Equal(t, payload, decoded, name)
	}
}

func TestFromNameUnknown(t *testing.T) {
	codec := FromName("zstd")
	assert.IsType(t, Nop{}, codec)
}
