package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scrollcam/internal/director"
)

// handleGenerateScenario lays out shots along the scroll range and writes the
// resulting scenario
func (p *VideoProject) handleGenerateScenario() error {
	fmt.Println("[*] Режим генерации сценария...")

	base := director.DefaultScenario()
	shots := base.Keyframes
	if p.Config.ShotsInput != "" {
		loaded, err := readShots(p.Config.ShotsInput)
		if err != nil {
			return fmt.Errorf("ошибка чтения планов: %w", err)
		}
		shots = loaded
		fmt.Printf("[*] Планов загружено: %d\n", len(shots))
	}

	scenario, err := director.NewDirector().GenerateScenario(shots)
	if err != nil {
		return fmt.Errorf("ошибка генерации сценария: %w", err)
	}
	scenario.Sprite = base.Sprite

	outputPath := p.Config.ScenarioOutput
	if outputPath == "" {
		outputPath = director.GenerateScenarioPath()
	}

	// Убеждаемся, что директория существует
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	if err := director.WriteScenario(scenario, outputPath); err != nil {
		return err
	}

	for _, kf := range scenario.Keyframes {
		fmt.Printf("[>] %-12s progress %.4f\n", kf.Focus, kf.Progress)
	}
	fmt.Printf("[+++] Успех! Сценарий сохранен: %s\n", outputPath)
	return nil
}

// readShots loads a YAML list of keyframes whose progress will be assigned
func readShots(path string) ([]director.Keyframe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var shots []director.Keyframe
	if err := yaml.Unmarshal(data, &shots); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return shots, nil
}
