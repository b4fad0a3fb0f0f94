package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	systemPromptContent := "Test system prompt for categorization"
	userPromptContent := "Categorize keywords for %s: %s"

	systemPromptFile := filepath.Join(tempDir, "system.categorize.md")
	userPromptFile := filepath.Join(tempDir, "user.categorize.md")

	if err := os.WriteFile(systemPromptFile, []byte(systemPromptContent), 0600); err != nil {
		t.Fatalf("Failed to create test system prompt file: %v", err)
	}
	if err := os.WriteFile(userPromptFile, []byte(userPromptContent+"\n\n"), 0600); err != nil {
		t.Fatalf("Failed to create test user prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Categorize: OperationAIConfig{
				Prompts: PromptConfig{
					SystemFile: systemPromptFile,
					UserFile:   userPromptFile,
				},
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	loaded := GetPromptsForOperation(OperationCategorize)
	if loaded.System != systemPromptContent {
		t.Errorf("Expected loaded system prompt '%s', got '%s'", systemPromptContent, loaded.System)
	}
	if loaded.User != userPromptContent {
		t.Errorf("Expected trimmed user prompt '%s', got '%s'", userPromptContent, loaded.User)
	}

	// operations without files get empty entries
	if other := GetPromptsForOperation(OperationStructure); other.System != "" || other.User != "" {
		t.Errorf("Expected no loaded prompts for structure, got %+v", other)
	}

	// file paths are left untouched
	if config.AI.Categorize.Prompts.SystemFile != systemPromptFile {
		t.Error("Expected system prompt file path to be preserved")
	}
}

func TestLoadSinglePassPromptsFromFile(t *testing.T) {
	tempDir := t.TempDir()
	userPromptFile := filepath.Join(tempDir, "user.single-pass.md")
	if err := os.WriteFile(userPromptFile, []byte("Structure this resume: %s\n"), 0600); err != nil {
		t.Fatalf("Failed to create test user prompt file: %v", err)
	}

	config := &Config{
		Extraction: ExtractionConfig{
			SinglePassPrompts: PromptConfig{UserFile: userPromptFile},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	loaded := GetPromptsForOperation(PromptSinglePass)
	if loaded.User != "Structure this resume: %s" {
		t.Errorf("Expected single-pass user prompt from file, got '%s'", loaded.User)
	}
	if loaded.System != "" {
		t.Errorf("Expected no single-pass system prompt, got '%s'", loaded.System)
	}

	config.Extraction.SinglePassPrompts.SystemFile = filepath.Join(tempDir, "missing.md")
	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for a missing single-pass prompt file")
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()

	validFile := filepath.Join(tempDir, "valid.md")
	if err := os.WriteFile(validFile, []byte("Valid content"), 0600); err != nil {
		t.Fatalf("Failed to create valid test file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Structure: OperationAIConfig{
				Prompts: PromptConfig{SystemFile: validFile},
			},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	config.AI.ExtractText.Prompts.UserFile = filepath.Join(tempDir, "nonexistent.md")
	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	loadedContent, err := loadPromptFromFile(testFile, "system", OperationCategorize)
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}
	if loadedContent != content {
		t.Errorf("Expected content '%s', got '%s'", content, loadedContent)
	}

	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte("  \n"), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}
	if _, err := loadPromptFromFile(emptyFile, "system", OperationCategorize); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err := loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system", OperationCategorize); err == nil {
		t.Error("Expected error for non-existent file")
	}
}
