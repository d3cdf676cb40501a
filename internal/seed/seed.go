package seed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-roster/backend/internal/utils"
)

var requiredHeaders = []string{"start_time", "end_time"}

// ReadShiftsCSV 读取带表头的班次 CSV，表头中必须包含 start_time 和 end_time，其余列会被忽略
func ReadShiftsCSV(in io.Reader) ([]*domain.Shift, error) {
	reader := csv.NewReader(in)
	reader.TrimLeadingSpace = true

	// 读取表头
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取表头失败: %w", err)
	}
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			return nil, fmt.Errorf("没有找到 %s 列", h)
		}
	}

	shifts := make([]*domain.Shift, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("第 %d 行读取失败: %w", line, err)
		}

		record := make(map[string]string, len(headers))
		for i, value := range row {
			record[headers[i]] = value
		}

		startTime, err := utils.ParseShiftTime(record["start_time"])
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}
		endTime, err := utils.ParseShiftTime(record["end_time"])
		if err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		shift := &domain.Shift{StartTime: startTime, EndTime: endTime}
		if err := utils.ValidateShiftTime(shift); err != nil {
			return nil, fmt.Errorf("第 %d 行: %w", line, err)
		}

		shifts = append(shifts, shift)
	}

	return shifts, nil
}

// SeedShiftsFromCSV 把 CSV 中的班次作为未分配班次插入数据库，整个文件校验通过后才会开始插入
func SeedShiftsFromCSV(r *repository.Repository, path string) {
	file, err := os.Open(path)
	if err != nil {
		slog.Error("打开文件失败", "error", err)
		return
	}
	defer file.Close()

	shifts, err := ReadShiftsCSV(file)
	if err != nil {
		slog.Error("解析班次文件失败", "path", path, "error", err)
		return
	}

	cnt := 0
	for _, shift := range shifts {
		if err := r.CreateShift(shift); err != nil {
			slog.Error("插入班次失败", "startTime", shift.StartTime, "error", err)
			continue
		}
		cnt++
	}

	slog.Info("导入班次完成", slog.Int("count", cnt), slog.Int("total", len(shifts)))
}
