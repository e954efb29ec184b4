package server

import "errors"

var (
	// ErrUnknownEvent 未知的客户端事件类型
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrAudioTooLong 代码对应的波形超过 MaxAudioSeconds
	ErrAudioTooLong = errors.New("audio too long")
)
