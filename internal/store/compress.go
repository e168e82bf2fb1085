package store

import "github.com/klauspost/compress/zstd"

// compressOutput compresses captured test output using zstd.
func compressOutput(data string) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	// Non-nil so that empty output is stored as an empty blob, not NULL.
	return enc.EncodeAll([]byte(data), []byte{}), nil
}

// decompressOutput reverses compressOutput.
func decompressOutput(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return "", err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
