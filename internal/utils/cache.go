package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"validator.onebusaway.org/internal/report"
)

// CachedFeedFileName names the cache file of a feed downloaded from url.
// The url hash keeps downloads from different sources of the same feed apart.
func CachedFeedFileName(feedName, url string) string {
	hash := sha1.Sum([]byte(url))
	return fmt.Sprintf("%s%s.zip", cachePrefix(feedName), hex.EncodeToString(hash[:]))
}

func cachePrefix(feedName string) string {
	return fmt.Sprintf("feed_%s_", feedName)
}

// isCachedFeedFile reports whether name is prefix followed by a url hash, so that feed
// "metro" does not pick up the files of feed "metro_east".
func isCachedFeedFile(name, prefix string) bool {
	hash, ok := strings.CutPrefix(name, prefix)
	if !ok {
		return false
	}
	hash, ok = strings.CutSuffix(hash, ".zip")
	if !ok || len(hash) != 2*sha1.Size {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

// GetLastCachedFile returns the most recently modified cache file of feedName in cacheDir.
func GetLastCachedFile(cacheDir string, feedName string) (string, error) {
	files, err := os.ReadDir(cacheDir)
	if err != nil {
		return "", err
	}

	var lastModTime time.Time
	var lastModFile string

	prefix := cachePrefix(feedName)

	for _, file := range files {
		if !file.IsDir() && isCachedFeedFile(file.Name(), prefix) {
			fileInfo, err := file.Info()
			if err != nil {
				return "", err
			}
			if fileInfo.ModTime().After(lastModTime) {
				lastModTime = fileInfo.ModTime()
				lastModFile = file.Name()
			}
		}
	}

	if lastModFile == "" {
		return "", fmt.Errorf("no cached files found for feed %s", feedName)
	}

	return filepath.Join(cacheDir, lastModFile), nil
}

// CreateCacheDirectory ensures the cache directory exists, creating it if necessary.
func CreateCacheDirectory(cacheDir string, logger *slog.Logger) error {
	stat, err := os.Stat(cacheDir)

	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(cacheDir, os.ModePerm); err != nil {
				report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
					Level: sentry.LevelError,
					ExtraContext: map[string]interface{}{
						"cache_dir": cacheDir,
					},
				})
				return err
			}
			logger.Info("Created cache directory", "path", cacheDir)
			return nil
		}
		return err
	}
	if !stat.IsDir() {
		err := fmt.Errorf("%s is not a directory", cacheDir)
		report.ReportErrorWithSentryOptions(err, report.SentryReportOptions{
			Level: sentry.LevelError,
			ExtraContext: map[string]interface{}{
				"cache_dir": cacheDir,
			},
		})
		return err
	}
	return nil
}
