package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads prompt overrides from files for every prompt
// slot that names one
func (c *Config) loadPromptsFromFiles() error {
	count := 0
	for _, slot := range c.promptSlots() {
		op := slot.name
		var loaded LoadedPrompts

		if slot.prompts.SystemFile != "" {
			content, err := loadPromptFromFile(slot.prompts.SystemFile, "system", op)
			if err != nil {
				return err
			}
			loaded.System = content
			count++
		}
		if slot.prompts.UserFile != "" {
			content, err := loadPromptFromFile(slot.prompts.UserFile, "user", op)
			if err != nil {
				return err
			}
			loaded.User = content
			count++
		}

		storeLoadedPrompts(op, loaded)
	}

	if count == 0 {
		log.Println("[CONFIG] No custom prompt files - using inline or built-in prompts")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded from files: %d", count)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file
func loadPromptFromFile(filePath, promptType, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, operation, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, operation, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)",
		promptType, operation, absPath, len(trimmed))
	return trimmed, nil
}

// validatePromptFiles checks that every configured prompt file exists
// before any of them is loaded
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, operation string) {
		if filePath == "" {
			return
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, operation, filePath))
			return
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, operation, absPath))
		}
	}

	for _, slot := range c.promptSlots() {
		validateFile(slot.prompts.SystemFile, "system", slot.name)
		validateFile(slot.prompts.UserFile, "user", slot.name)
	}

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}
