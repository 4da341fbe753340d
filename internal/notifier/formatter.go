package notifier

import (
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"time"

	"BollingerChart/internal/model"
	"BollingerChart/internal/recorder"
)

// FormatRunReport formats a finished chart run into a Telegram message.
func FormatRunReport(res *model.RunResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n\n", html.EscapeString(res.Title)))
	b.WriteString(fmt.Sprintf("文件: %s\n", html.EscapeString(filepath.Base(res.OutputPath))))
	b.WriteString(fmt.Sprintf("数据源: %s\n", res.Provider))
	b.WriteString(fmt.Sprintf("价格行数: %d\n", res.PriceRows))
	if res.BandRows > 0 {
		b.WriteString(fmt.Sprintf("布林带行数: %d\n", res.BandRows))
	}
	for _, p := range res.CSVPaths {
		b.WriteString(fmt.Sprintf("CSV: %s\n", html.EscapeString(filepath.Base(p))))
	}
	b.WriteString(fmt.Sprintf("耗时: %s\n", res.Duration.Round(time.Millisecond)))
	b.WriteString(fmt.Sprintf("运行ID: <code>%s</code>", res.RunID))
	return b.String()
}

// FormatRunFailure formats a failed run, naming the stage that failed.
func FormatRunFailure(req model.ChartRequest, err error) string {
	stage := "unknown"
	var se *model.StageError
	if errors.As(err, &se) {
		stage = se.Stage
	}
	return fmt.Sprintf("❌ <b>%s</b>\n\n失败阶段: %s\n错误: %s",
		html.EscapeString(req.Title()), stage, html.EscapeString(err.Error()))
}

// FormatRecentRuns lists recorded runs, newest first.
func FormatRecentRuns(runs []recorder.RunRecord) string {
	if len(runs) == 0 {
		return "暂无运行记录"
	}
	var b strings.Builder
	b.WriteString("🗂 <b>最近运行</b>\n\n")
	for _, r := range runs {
		status := "✅"
		if r.Error != "" {
			status = "❌"
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s/%s",
			status, r.StartedAt.Format("2006-01-02 15:04"), html.EscapeString(r.Symbols), r.Selection, r.Style))
		if r.Error != "" {
			b.WriteString(fmt.Sprintf(" (%s)", html.EscapeString(r.Error)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
