package progress

import (
	"os"
	"strings"
	"time"

	"github.com/Kargones/apk-metrics/internal/constants"
	"github.com/Kargones/apk-metrics/internal/pkg/logging"
)

// DefaultThrottleInterval: интервал перерисовки полосы по умолчанию.
const DefaultThrottleInterval = time.Second

// Переменные окружения режима отображения.
const (
	EnvShowProgress   = "BR_SHOW_PROGRESS"
	EnvProgressStream = "BR_PROGRESS_STREAM"
)

// New выбирает реализацию:
//   - BR_SHOW_PROGRESS=false → NoopProgress;
//   - BR_OUTPUT_FORMAT=json → JSONProgress при BR_PROGRESS_STREAM=true, иначе NoopProgress;
//   - терминал → TTYProgress;
//   - иначе LogProgress.
func New(opts Options) Progress {
	if opts.ThrottleInterval == 0 {
		opts.ThrottleInterval = DefaultThrottleInterval
	}
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	if os.Getenv(EnvShowProgress) == "false" {
		return NoopProgress{}
	}
	if strings.EqualFold(os.Getenv(constants.EnvOutputFormat), "json") {
		// Текст в stderr мешает разбору JSON, поэтому только явный поток событий.
		if os.Getenv(EnvProgressStream) == "true" {
			return NewJSONProgress(opts)
		}
		return NoopProgress{}
	}
	if IsTTY(opts.Output) {
		return NewTTYProgress(opts)
	}
	return NewLogProgress(opts)
}
