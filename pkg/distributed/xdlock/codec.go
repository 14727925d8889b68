package xdlock

import (
	"fmt"

	"github.com/goccy/go-json"
)

// encodeValue 将锁值序列化为存储使用的字符串。
func encodeValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: encode lock value: %w", ErrInvalidArgument, err)
	}
	return string(data), nil
}
