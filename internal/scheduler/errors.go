package scheduler

import (
	"errors"
	"fmt"
)

var (
	ErrNoStrategy = errors.New("没有设置排班策略")
	ErrEmptyStaff = errors.New("没有可以排班的人员")
	ErrNoShifts   = errors.New("没有未分配的班次")
)

type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("未知的排班策略: %q", e.Name)
}

// PersistenceError 读写存储时出现的错误，原始错误可以通过 errors.Unwrap 取出
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s失败: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
