package redis

var (
	EncodeValues = encodeValues
	DecodeValues = decodeValues
)
