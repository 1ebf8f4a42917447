// Package apperr 提供流水线阶段错误封装
// 每个阶段失败都带上阶段名、步骤名、出错位置与原始错误
package apperr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// 阶段名
const (
	StageIngestion      = "ingestion"
	StageTransformation = "transformation"
	StageProfile        = "profile"
	StagePublish        = "publish"
)

// Error 阶段错误
type Error struct {
	Stage string
	Step  string
	File  string
	Line  int
	Err   error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.File, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s failed at step %s [%s]: %v", e.Stage, e.Step, loc, e.Err)
	}
	return fmt.Sprintf("%s failed at step %s [%s]", e.Stage, e.Step, loc)
}

func (e *Error) Unwrap() error { return e.Err }

// Location 返回 file:line 形式的出错位置
func (e *Error) Location() string {
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// Wrap 封装错误，记录调用方位置
func Wrap(stage, step string, err error) *Error {
	return wrap(2, stage, step, err)
}

// Wrapf 以格式化消息作为原始错误
func Wrapf(stage, step string, format string, args ...any) *Error {
	return wrap(2, stage, step, fmt.Errorf(format, args...))
}

func wrap(skip int, stage, step string, err error) *Error {
	e := &Error{Stage: stage, Step: step, Err: err}
	if _, file, line, ok := runtime.Caller(skip); ok {
		e.File = filepath.Base(file)
		e.Line = line
	}
	return e
}

// IsStage 判断错误链中是否包含指定阶段的错误
func IsStage(err error, stage string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage == stage
	}
	return false
}

// StepOf 返回错误链中阶段错误的步骤名
func StepOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Step
	}
	return ""
}
