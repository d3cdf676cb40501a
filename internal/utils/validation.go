package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
)

const shiftTimeLayout = "2006-01-02 15:04:05"

// ParseShiftTime 解析班次时间，支持 RFC 3339 和 "2006-01-02 15:04:05" 两种格式
//
// 班次按墙上时间保存，带时区的输入只保留其本地的年月日时分秒
func ParseShiftTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t, err = time.Parse(shiftTimeLayout, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("无法解析时间 %q，请使用 RFC 3339 或 %s 格式", value, shiftTimeLayout)
		}
	}

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
}

func ParsePeriodStart(value string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("排班周期开始日期 %q 的格式错误，应为 YYYY-MM-DD", value)
	}
	return t, nil
}

func ValidateShiftTime(shift *domain.Shift) error {
	if shift.StartTime.IsZero() || shift.EndTime.IsZero() {
		return errors.New("班次的开始时间和结束时间不能为空")
	}

	if !shift.EndTime.After(shift.StartTime) {
		return errors.New("班次的结束时间必须晚于开始时间")
	}

	return nil
}
