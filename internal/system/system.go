package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

var (
	AudioExtensions     = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
	RecordingExtensions = []string{".yaml", ".yml"}
	ScenarioExtensions  = []string{".yaml", ".yml"}
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	} else {
		fmt.Printf("[*] Системный лимит открытых файлов увеличен до %d\n", rLimit.Cur)
	}
}

// FindLatest returns the most recently modified file in dir with one of the
// given extensions
func FindLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено файлов %s", dir, strings.Join(extensions, ", "))
	}

	return latestFile, nil
}

func FindLatestAudio(dir string) (string, error) {
	return FindLatest(dir, AudioExtensions)
}

func FindLatestRecording(dir string) (string, error) {
	return FindLatest(dir, RecordingExtensions)
}

func FindLatestScenario(dir string) (string, error) {
	return FindLatest(dir, ScenarioExtensions)
}

func hasExtension(name string, extensions []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// CheckFilterSupport reports whether the local FFmpeg build has a filter
func CheckFilterSupport(name string) bool {
	out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").CombinedOutput()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}

func GetBestH264Encoder() (string, string) {
	// Приоритеты:
	// 1. MacOS (VideoToolbox)
	// 2. NVIDIA (NVENC)
	// 3. Software (libx264)
	out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264", ""
	}

	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name, ""
		}
	}

	return "libx264", ""
}

// DefaultQuality picks a quality value suited to the encoder
func DefaultQuality(encoderName string) int {
	switch encoderName {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}
