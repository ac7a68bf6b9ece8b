package keyfile

import "encoding/hex"

func decodeHex(data []byte) ([]byte, error) {
	decoded := make([]byte, hex.DecodedLen(len(data)))
	n, err := hex.Decode(decoded, data)
	if err != nil {
		return nil, err
	}
	return decoded[:n], nil
}

func encodeHex(data []byte) []byte {
	encoded := make([]byte, hex.EncodedLen(len(data)))
	hex.Encode(encoded, data)
	return encoded
}
