package engine

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/scrollcam/internal/config"
	"github.com/ivlev/scrollcam/internal/director"
	"github.com/ivlev/scrollcam/internal/effects"
	"github.com/ivlev/scrollcam/internal/renderer"
	"github.com/ivlev/scrollcam/internal/scroll"
	"github.com/ivlev/scrollcam/internal/source"
	"github.com/ivlev/scrollcam/internal/system"
	"github.com/ivlev/scrollcam/internal/video"
)

type VideoProject struct {
	Config  *config.Config
	Encoder video.VideoEncoder
	Effect  effects.Effect // Applied to every frame, may be nil
	Pool    *system.ImagePool
	tempDir string
}

func NewVideoProject(cfg *config.Config, ve video.VideoEncoder, eff effects.Effect) *VideoProject {
	return &VideoProject{
		Config:  cfg,
		Encoder: ve,
		Effect:  eff,
		Pool:    system.NewImagePool(),
	}
}

func (p *VideoProject) Run(ctx context.Context) error {
	startTime := time.Now()

	if p.Config.GenerateScenario {
		return p.handleGenerateScenario()
	}

	var err error
	p.tempDir, err = os.MkdirTemp("", "scrollcam_")
	if err != nil {
		return err
	}
	defer os.RemoveAll(p.tempDir)

	scenario, err := p.loadScenario()
	if err != nil {
		return err
	}
	track, err := scenario.Track()
	if err != nil {
		return fmt.Errorf("ошибка сценария: %w", err)
	}

	rec, err := p.loadRecording()
	if err != nil {
		return err
	}

	w, h := renderer.RenderSize(p.Config.Width, p.Config.Height, p.Config.PixelRatio)
	rast, anim := PrepareRasterizer(scenario, p.Config.SpriteDir, w, h)

	fmt.Println("--- [PROJECT: SCROLL ENGINE] ---")
	fmt.Printf("[*] Ключевых кадров: %d | Событий прокрутки: %d | Длительность: %.2fs\n", track.Len(), len(rec.Events), rec.Length())
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Рендер: %dx%d\n", p.Config.Width, p.Config.Height, p.Config.FPS, rast.Width, rast.Height)
	fmt.Println("-----------------------------")

	// 1. Проигрывание записи через цикл кадров
	replayStart := time.Now()
	frames, err := p.replay(ctx, track, rec, anim)
	if err != nil {
		return err
	}
	replayTime := time.Since(replayStart)
	fmt.Printf("[*] Кадров рассчитано: %d\n", len(frames))

	// 2. Растеризация и кодирование чанками
	encodeStart := time.Now()
	segments, err := p.encodeChunks(ctx, frames, rast)
	if err != nil {
		return err
	}
	encodeTime := time.Since(encodeStart)

	fmt.Println("[*] Сборка финального видео...")
	concatStart := time.Now()
	if err := p.Encoder.Concatenate(ctx, segments, p.Config.OutputVideo, p.tempDir, *p.Config); err != nil {
		return fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	concatTime := time.Since(concatStart)

	if p.Config.ShowStats {
		p.report(len(frames), time.Since(startTime), replayTime, encodeTime, concatTime)
	}

	return nil
}

func (p *VideoProject) loadScenario() (*director.Scenario, error) {
	if p.Config.ScenarioInput == "" {
		fmt.Println("[*] Сценарий не задан, используется встроенный")
		return director.DefaultScenario(), nil
	}

	scenario, err := director.ReadScenario(p.Config.ScenarioInput)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения сценария: %w", err)
	}
	fmt.Printf("[*] Используется сценарий: %s\n", p.Config.ScenarioInput)
	return scenario, nil
}

func (p *VideoProject) loadRecording() (*scroll.Recording, error) {
	if p.Config.RecordingInput != "" {
		rec, err := scroll.ReadRecording(p.Config.RecordingInput)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения записи прокрутки: %w", err)
		}
		fmt.Printf("[*] Используется запись прокрутки: %s\n", p.Config.RecordingInput)
		return rec, nil
	}

	duration := p.Config.ScrollDuration
	if duration <= 0 {
		duration = 10
	}
	fmt.Printf("[*] Синтетическая прокрутка: %.2fs + %.2fs\n", duration, p.Config.HoldDuration)
	return scroll.Synthesize(duration, p.Config.HoldDuration, p.Config.ViewportHeight, p.Config.ContentHeight, p.Config.FPS), nil
}

// PrepareRasterizer sets up the preview renderer for a scenario. Missing
// sprite frames or a bad model only disable the matching feature; the
// animator is nil without a sprite.
func PrepareRasterizer(scenario *director.Scenario, spriteDir string, width, height int) (*renderer.Rasterizer, *renderer.SpriteAnimator) {
	rast := renderer.NewRasterizer(width, height)

	if scenario.Model != nil {
		if fr, err := renderer.FitShadowFrustum(*scenario.Model); err != nil {
			log.Printf("[!] Модель не используется: %v", err)
		} else {
			rast.Model = scenario.Model
			fmt.Printf("[*] Теневая камера: ±%.1f, свет в (%.1f, %.1f, %.1f)\n", fr.Right, fr.LightPosition.X, fr.LightPosition.Y, fr.LightPosition.Z)
		}
	}

	sprite := scenario.Sprite
	if sprite == nil {
		return rast, nil
	}
	if sprite.Height > 0 {
		rast.SpriteHeight = sprite.Height
	}
	if sprite.Aspect > 0 {
		rast.SpriteAspect = sprite.Aspect
	}

	if spriteDir == "" {
		spriteDir = sprite.Frames
	}
	frames, aspect, err := loadSpriteFrames(spriteDir)
	if err != nil {
		log.Printf("[!] Спрайт отключен: %v", err)
		return rast, nil
	}
	rast.SpriteFrames = frames
	if sprite.Aspect <= 0 {
		rast.SpriteAspect = aspect
	}

	return rast, renderer.NewSpriteAnimator(len(frames), sprite.FrameDuration, rast.SpriteHeight)
}

func loadSpriteFrames(dir string) ([]image.Image, float64, error) {
	if dir == "" {
		return nil, 0, fmt.Errorf("папка кадров не задана")
	}
	src, err := source.NewImageSource(dir)
	if err != nil {
		return nil, 0, err
	}
	frames, err := src.LoadAll()
	if err != nil {
		return nil, 0, err
	}
	aspect, err := src.Aspect()
	if err != nil {
		return nil, 0, err
	}
	return frames, aspect, nil
}

// replay drives the frame loop with the recording and collects snapshots
func (p *VideoProject) replay(ctx context.Context, track *director.Track, rec *scroll.Recording, anim *renderer.SpriteAnimator) ([]Frame, error) {
	sampler := scroll.NewSampler(rec.Viewport, rec.Content)
	loop := NewLoop(track, sampler, p.Config.Smoothing)
	loop.Resize(p.Config.Width, p.Config.Height, p.Config.PixelRatio)
	loop.Animator = anim

	sidecar, err := CreateProgressFile(ProgressFilePath(p.Config.OutputVideo))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания файла прогресса: %w", err)
	}
	sheet := NewStyleSheet()
	loop.Observers = []ProgressObserver{&StyleExporter{Sheet: sheet}, sidecar}

	collector := &FrameCollector{}
	loop.Renderer = collector

	runErr := loop.Run(ctx, scroll.NewReplayScheduler(rec, sampler, p.Config.FPS))
	if err := sidecar.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("ошибка записи файла прогресса: %w", err)
	}
	if runErr != nil {
		return nil, runErr
	}

	fmt.Printf("[*] Итоговый %s: %s\n", ProgressProperty, sheet.Property(ProgressProperty))
	if anim != nil {
		fmt.Printf("[*] Смен кадра спрайта: %d\n", anim.Switches())
	}
	return collector.Frames, nil
}

// ChunkFrames splits frames into consecutive chunks of at most size frames
func ChunkFrames(frames []Frame, size int) [][]Frame {
	if size <= 0 {
		size = len(frames)
	}
	var chunks [][]Frame
	for start := 0; start < len(frames); start += size {
		end := min(start+size, len(frames))
		chunks = append(chunks, frames[start:end])
	}
	return chunks
}

// encodeChunks rasterizes and encodes chunks in parallel. The first failure
// cancels the remaining workers.
func (p *VideoProject) encodeChunks(ctx context.Context, frames []Frame, rast *renderer.Rasterizer) ([]string, error) {
	chunks := ChunkFrames(frames, p.Config.ChunkFrames)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("нет кадров для кодирования")
	}
	results := make([]string, len(chunks))

	debugText := p.Config.Debug && system.CheckFilterSupport("drawtext")
	filter := renderer.GenerateOutputFilter(rast.Width, rast.Height, p.Config.Width, p.Config.Height, debugText)

	workers := max(p.Config.Workers, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%d.mp4", i))
			params := config.SegmentParams{
				Width:        p.Config.Width,
				Height:       p.Config.Height,
				RenderWidth:  rast.Width,
				RenderHeight: rast.Height,
				FPS:          p.Config.FPS,
				Frames:       len(chunk),
				Filter:       filter,
				ChunkIndex:   i,
			}

			err := p.Encoder.EncodeSegment(gctx, segPath, params, p.frameWriter(gctx, chunk, rast), p.Config.VideoEncoder, p.Config.Quality)
			if err != nil {
				return fmt.Errorf("чанк %d: %w", i, err)
			}

			results[i] = segPath
			fmt.Printf("[>] Ready: %d/%d\n", i+1, len(chunks))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// frameWriter rasterizes the chunk frame by frame straight into w
func (p *VideoProject) frameWriter(ctx context.Context, chunk []Frame, rast *renderer.Rasterizer) video.FrameWriter {
	return func(w io.Writer) error {
		for _, f := range chunk {
			if err := ctx.Err(); err != nil {
				return err
			}
			img := p.Pool.Get(rast.Width, rast.Height)
			RenderFrame(img, rast, f, p.Effect)
			err := video.WriteRawRGBA(w, img)
			p.Pool.Put(img)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

// RenderFrame draws one snapshot and its overlays into dst
func RenderFrame(dst *image.RGBA, rast *renderer.Rasterizer, f Frame, eff effects.Effect) {
	rast.Render(dst, f.View())
	if eff != nil {
		eff.Apply(dst, OverlayInfo(f))
	}
}

// OverlayInfo describes a snapshot for overlays
func OverlayInfo(f Frame) effects.FrameInfo {
	return effects.FrameInfo{
		Index:        f.Index,
		Progress:     f.Progress,
		ProgressText: FormatProgress(f.Progress),
		Segment:      [2]int{f.Segment.Start, f.Segment.End},
		Blend:        f.Segment.Blend,
		HourOfDay:    f.Channels.HourOfDay,
		Elevation:    f.Lights.Elevation,
	}
}

func (p *VideoProject) report(frameCount int, totalTime, replayTime, encodeTime, concatTime time.Duration) {
	fps := float64(frameCount) / totalTime.Seconds()

	host := "n/a"
	if stats, err := system.CollectHostStats(); err == nil {
		host = stats.String()
	} else {
		log.Printf("[!] Не удалось получить статистику системы: %v", err)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Preset: %s\n"+
			"Total Time: %.2fs\n"+
			"Replay (loop): %.2fs\n"+
			"Render+Encode: %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Host: %s\n"+
			"----------------------------\n",
		p.Config.BuildVersion, presetName(p.Config.Preset), totalTime.Seconds(), replayTime.Seconds(), encodeTime.Seconds(), concatTime.Seconds(), fps, host,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := p.benchmarkEntry(time.Now(), frameCount, totalTime, encodeTime, fps, host)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

// benchmarkEntry formats one line of benchmark.log
func (p *VideoProject) benchmarkEntry(now time.Time, frameCount int, totalTime, encodeTime time.Duration, fps float64, host string) string {
	return fmt.Sprintf("[%s] Build: %s | Preset: %s | Scenario: %s | Frames: %d | Total: %.2fs | Encode: %.2fs | FPS: %.2f | %s\n",
		now.Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		presetName(p.Config.Preset),
		filepath.Base(p.Config.ScenarioInput),
		frameCount,
		totalTime.Seconds(),
		encodeTime.Seconds(),
		fps,
		host,
	)
}

func presetName(preset string) string {
	if preset == "" {
		return "custom"
	}
	return preset
}
