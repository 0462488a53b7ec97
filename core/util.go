package core

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

var (
	NowFunc = time.Now // mockable

	lastTempStamp int64
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Round2 rounds x to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// TempID returns a provisional identifier "<prefix>-<unix nanos>".
// Successive calls never return the same stamp, even within one clock tick.
func TempID(prefix string) string {
	for {
		now := NowFunc().UnixNano()
		last := atomic.LoadInt64(&lastTempStamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTempStamp, last, now) {
			return prefix + "-" + strconv.FormatInt(now, 10)
		}
	}
}

// Getwd tries to find the project root, the first parent directory holding a go.mod.
// go-test changes the working directory to the test package being run during tests,
// so relative asset paths must be resolved from here.
func Getwd() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir, true
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd, false
		}
		currDir = newDir
	}
}
