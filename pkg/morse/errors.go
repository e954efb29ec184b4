package morse

import "errors"

var (
	// ErrCodeCollision 两个字符映射到同一个编码
	ErrCodeCollision = errors.New("morse code collision")

	// ErrInvalidEntry 表项无效（空编码或重复字符）
	ErrInvalidEntry = errors.New("invalid morse table entry")
)
