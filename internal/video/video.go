package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ivlev/scrollcam/internal/config"
)

// FrameWriter streams raw RGBA frames into the encoder input
type FrameWriter func(w io.Writer) error

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, videoPath string, params config.SegmentParams, frames FrameWriter, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string, params config.Config) error
}

type FFmpegEncoder struct{}

func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	videoPath string,
	params config.SegmentParams,
	frames FrameWriter,
	encoderName string,
	quality int,
) error {
	args := buildSegmentArgs(videoPath, params, encoderName, quality)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	// Кадры идут потоком rawvideo, без промежуточных файлов
	if err := frames(stdin); err != nil {
		stdin.Close()
		cmd.Wait()
		return fmt.Errorf("write raw error: %w", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, out.String())
	}

	return nil
}

func buildSegmentArgs(videoPath string, params config.SegmentParams, encoderName string, quality int) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.RenderWidth, params.RenderHeight),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.Filter != "" {
		args = append(args, "-vf", params.Filter)
	}
	args = append(args,
		"-frames:v", fmt.Sprintf("%d", params.Frames),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	)
	args = append(args, qualityArgs(encoderName, quality)...)
	args = append(args, videoPath)
	return args
}

// qualityArgs maps the quality setting onto the encoder's own rate control
func qualityArgs(encoderName string, quality int) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		bitrate := quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// WriteRawRGBA writes img as tightly packed RGBA rows
func WriteRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}

// Concatenate joins the chunk segments in order. Video streams are copied;
// audio, if any, is muxed in and the result is cut to the shorter stream.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, tmpDir string, params config.Config) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("no segments to concatenate")
	}

	concatFilePath := filepath.Join(tmpDir, "inputs.txt")
	if err := writeConcatList(concatFilePath, segmentPaths); err != nil {
		return err
	}

	args := buildConcatArgs(concatFilePath, finalPath, params)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat error: %v, output: %s", err, string(out))
	}
	return nil
}

func writeConcatList(path string, segmentPaths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, p := range segmentPaths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", absPath); err != nil {
			return err
		}
	}
	return nil
}

func buildConcatArgs(concatFilePath, finalPath string, params config.Config) []string {
	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", concatFilePath}

	if params.AudioPath == "" && params.BackgroundAudio == "" {
		return append(args, "-c", "copy", finalPath)
	}

	audioOut := ""
	switch {
	case params.AudioPath != "" && params.BackgroundAudio != "":
		args = append(args, "-i", params.AudioPath, "-stream_loop", "-1", "-i", params.BackgroundAudio)
		args = append(args, "-filter_complex", fmt.Sprintf("[2:a]%s[bg_a];[1:a]volume=1.0[main_a];[main_a][bg_a]amix=inputs=2:duration=first:dropout_transition=3[aout]",
			backgroundVolumeExpr(params)))
		audioOut = "[aout]"
	case params.AudioPath != "":
		args = append(args, "-i", params.AudioPath)
		audioOut = "1:a"
	default:
		args = append(args, "-stream_loop", "-1", "-i", params.BackgroundAudio)
		args = append(args, "-filter_complex", fmt.Sprintf("[1:a]%s[aout]", backgroundVolumeExpr(params)))
		audioOut = "[aout]"
	}

	args = append(args,
		"-map", "0:v",
		"-map", audioOut,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		finalPath,
	)
	return args
}

// backgroundVolumeExpr fades the background track in and out over the video
func backgroundVolumeExpr(params config.Config) string {
	bgVol := params.BackgroundVolume
	if bgVol <= 0 {
		bgVol = 0.3
	}
	totalDur := params.ScrollDuration + params.HoldDuration
	fadeInDur := 5.0
	fadeOutDur := 5.0
	if totalDur < fadeInDur+fadeOutDur {
		fadeInDur = totalDur * 0.1
		fadeOutDur = totalDur * 0.1
	}
	if fadeInDur <= 0 {
		return fmt.Sprintf("volume=%f", bgVol)
	}

	return fmt.Sprintf("volume='%f*(if(lte(t,%f), 0.1 + 0.9*(t/%f), if(gte(t, %f), (%f-t)/%f, 1.0)))':eval=frame",
		bgVol, fadeInDur, fadeInDur, totalDur-fadeOutDur, totalDur, fadeOutDur)
}
