package config

import (
	"sync"
)

// LoadedPrompts holds prompt content read from files for one operation
type LoadedPrompts struct {
	System string
	User   string
}

var (
	loadedPromptsMu sync.RWMutex
	loadedPrompts   = map[string]LoadedPrompts{}
)

// GetPromptsForOperation returns a copy of the prompts loaded from files for
// an operation. Missing entries are empty strings.
func GetPromptsForOperation(operation string) LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts[operation]
}

func storeLoadedPrompts(operation string, p LoadedPrompts) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	loadedPrompts[operation] = p
}
