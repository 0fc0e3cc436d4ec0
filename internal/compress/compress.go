package compress

// Compress encodes and decodes cached payloads.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// FromName returns the codec registered under the given name. Unknown names
// fall back to the nop codec.
func FromName(name string) Compress {
	switch name {
	case "gzip":
		return NewGZip()
	case "brotli":
		return NewBrotli()
	case "lz4":
		return NewLZ4()
	}
	return NewNop()
}
