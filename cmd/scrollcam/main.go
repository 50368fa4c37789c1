package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ivlev/scrollcam/internal/config"
	"github.com/ivlev/scrollcam/internal/director"
	"github.com/ivlev/scrollcam/internal/effects"
	"github.com/ivlev/scrollcam/internal/engine"
	"github.com/ivlev/scrollcam/internal/scroll"
	"github.com/ivlev/scrollcam/internal/system"
	"github.com/ivlev/scrollcam/internal/video"
	"github.com/ivlev/scrollcam/internal/viewer"
)

var BuildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "input/recordings", director.ScenariosDir, "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scenarioPtr := flag.String("scenario", "", "Путь к YAML-сценарию (latest - самый свежий в scenarios/, пусто - встроенный)")
	generatePtr := flag.Bool("generate-scenario", false, "Сгенерировать сценарий из планов и выйти")
	shotsPtr := flag.String("shots", "", "YAML-список планов для -generate-scenario (по умолчанию: встроенные)")
	scenarioOutPtr := flag.String("scenario-output", "", "Куда сохранить сгенерированный сценарий")
	recordingPtr := flag.String("recording", "", "Запись прокрутки (latest - самая свежая в input/recordings/, пусто - синтетическая)")
	writeRecordingPtr := flag.String("write-recording", "", "Сохранить синтетическую запись прокрутки и выйти")
	spritesPtr := flag.String("sprites", "", "Папка с кадрами спрайта (по умолчанию: из сценария)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	scrollPtr := flag.Float64("scroll-duration", 10, "Длительность синтетической прокрутки (сек)")
	holdPtr := flag.Float64("hold", 2, "Пауза после синтетической прокрутки (сек)")
	viewportPtr := flag.Float64("viewport", 900, "Высота окна страницы (px)")
	contentPtr := flag.Float64("content", 5400, "Высота содержимого страницы (px)")
	widthPtr := flag.Int("width", 1280, "Ширина")
	heightPtr := flag.Int("height", 720, "Высота")
	ratioPtr := flag.Float64("pixel-ratio", 1, "Плотность пикселей (не больше 1.5)")
	fpsPtr := flag.Int("fps", 60, "FPS")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки")
	chunkPtr := flag.Int("chunk", 120, "Кадров в одном сегменте")
	smoothingPtr := flag.Float64("smoothing", scroll.DefaultSmoothing, "Коэффициент сглаживания прокрутки за кадр (0..1]")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/)")
	audioSyncPtr := flag.Bool("audio-sync", true, "Синхронизировать длительность прокрутки с аудио")
	bgAudioPtr := flag.String("bg-audio", "", "Фоновое аудио")
	bgVolumePtr := flag.Float64("bg-volume", 0.3, "Громкость фонового аудио")
	presetPtr := flag.String("preset", "", "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	debugPtr := flag.Bool("debug", false, "Отладочные оверлеи: HUD и QR-метка прогресса")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")
	viewerPtr := flag.Bool("viewer", false, "Интерактивный просмотр в окне")

	flag.Parse()

	width, height := *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		width, height = 1280, 720
	case "9:16":
		width, height = 720, 1280
	case "4:5":
		width, height = 1080, 1350
	}

	scenarioPath := *scenarioPtr
	if scenarioPath == "latest" {
		latest, err := system.FindLatestScenario(director.ScenariosDir)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		scenarioPath = latest
		fmt.Printf("[*] Выбран сценарий: %s\n", scenarioPath)
	}

	if *writeRecordingPtr != "" {
		rec := scroll.Synthesize(*scrollPtr, *holdPtr, *viewportPtr, *contentPtr, *fpsPtr)
		if err := scroll.WriteRecording(rec, *writeRecordingPtr); err != nil {
			log.Fatalf("[-] Ошибка записи: %v", err)
		}
		fmt.Printf("[+++] Успех! Запись сохранена: %s\n", *writeRecordingPtr)
		return
	}

	var overlay effects.Effect
	if *debugPtr {
		overlay = effects.Chain{effects.NewHUD(), effects.NewProgressStamp(96)}
	}

	if *viewerPtr {
		if err := runViewer(scenarioPath, *spritesPtr, width, height, *smoothingPtr, *contentPtr / *viewportPtr, overlay); err != nil {
			log.Fatalf("[-] Ошибка просмотра: %v", err)
		}
		return
	}

	recordingPath := *recordingPtr
	if recordingPath == "latest" {
		latest, err := system.FindLatestRecording("input/recordings")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите запись в input/recordings/", err)
		}
		recordingPath = latest
		fmt.Printf("[*] Выбрана запись: %s\n", recordingPath)
	}

	scrollDuration := *scrollPtr

	// Обработка аудио
	audioPath := *audioPtr
	if audioPath == "" && !*generatePtr {
		latest, err := system.FindLatestAudio("input/audio")
		if err == nil {
			audioPath = latest
			fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
		}
	}

	if audioPath != "" && *audioSyncPtr && recordingPath == "" {
		audioDur, err := system.GetAudioDuration(audioPath)
		if err == nil {
			scrollDuration = audioDur - *holdPtr
			if scrollDuration <= 0 {
				scrollDuration = audioDur
			}
			fmt.Printf("[*] Длительность прокрутки установлена по аудио: %.2fs\n", scrollDuration)
		} else {
			log.Printf("[!] Не удалось получить длительность аудио: %v", err)
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		nameSource := "scrollcam"
		switch {
		case recordingPath != "":
			nameSource = recordingPath
		case scenarioPath != "":
			nameSource = scenarioPath
		}
		baseName := filepath.Base(nameSource)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := "libx264"
	if !*generatePtr {
		encoderName, _ = system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
	}

	quality := *qualityPtr
	if quality == 0 {
		quality = system.DefaultQuality(encoderName)
	}

	cfg := &config.Config{
		ScenarioInput:    scenarioPath,
		ScenarioOutput:   *scenarioOutPtr,
		GenerateScenario: *generatePtr,
		ShotsInput:       *shotsPtr,
		RecordingInput:   recordingPath,
		SpriteDir:        *spritesPtr,
		OutputVideo:      finalOutput,
		ScrollDuration:   scrollDuration,
		HoldDuration:     *holdPtr,
		ViewportHeight:   *viewportPtr,
		ContentHeight:    *contentPtr,
		Width:            width,
		Height:           height,
		PixelRatio:       *ratioPtr,
		FPS:              *fpsPtr,
		Workers:          *workersPtr,
		ChunkFrames:      *chunkPtr,
		Smoothing:        *smoothingPtr,
		AudioPath:        audioPath,
		BackgroundAudio:  *bgAudioPtr,
		BackgroundVolume: *bgVolumePtr,
		Preset:           *presetPtr,
		VideoEncoder:     encoderName,
		Quality:          quality,
		Debug:            *debugPtr,
		ShowStats:        *statsPtr,
		BuildVersion:     BuildVersion,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{}

	project := engine.NewVideoProject(cfg, ve, overlay)
	if err := project.Run(ctx); err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if !cfg.GenerateScenario {
		fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
	}
}

func runViewer(scenarioPath, spriteDir string, width, height int, smoothing, pages float64, overlay effects.Effect) error {
	scenario := director.DefaultScenario()
	sessionKey := "default"
	if scenarioPath != "" {
		s, err := director.ReadScenario(scenarioPath)
		if err != nil {
			return err
		}
		scenario = s
		sessionKey = scenarioPath
	}
	track, err := scenario.Track()
	if err != nil {
		return err
	}

	sampler := scroll.NewSampler(float64(height), float64(height)*pages)
	loop := engine.NewLoop(track, sampler, smoothing)
	rast, anim := engine.PrepareRasterizer(scenario, spriteDir, width, height)
	loop.Animator = anim

	sheet := engine.NewStyleSheet()
	loop.Observers = []engine.ProgressObserver{&engine.StyleExporter{Sheet: sheet}}

	session := viewer.OpenSession("scrollcam")
	game := viewer.NewGame(loop, rast, overlay, session, viewer.Options{Scenario: sessionKey, Pages: pages})

	fmt.Println("[*] Колесо мыши или стрелки - прокрутка, закройте окно для выхода")
	if err := viewer.Run(game, "scrollcam", width, height); err != nil {
		return err
	}
	fmt.Printf("[*] Последний %s: %s\n", engine.ProgressProperty, sheet.Property(engine.ProgressProperty))
	return nil
}
