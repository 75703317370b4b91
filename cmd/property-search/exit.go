package main

import "errors"

// Коды выхода совпадают с прежней утилитой: скрипты проверяют именно их.
const (
	exitStoreUnavailable = 1
	exitInvalidQuery     = 2
	exitNotifyFailed     = 3
	exitNoMatch          = 4
)

// exitError несет код выхода. err == nil - выход без сообщения.
type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 1
}
