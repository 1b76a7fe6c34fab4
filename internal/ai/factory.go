package ai

import (
	"fmt"

	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai/gemini"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai/mock"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai/ollama"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/ai/openai"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/internal/config"
	"github.com/KohkiHatori/Backpacking-Assistant-Agent/pkg/models"
)

// NewProvider constructs the appropriate generative provider based on
// config. Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.GenerativeProvider, error) {
	switch cfg.Provider {
	case "gemini":
		return Wrap(gemini.NewClient(cfg.Gemini, cfg.GenerationTimeout)), nil
	case "openai":
		return Wrap(openai.NewClient(cfg.OpenAI, cfg.GenerationTimeout)), nil
	case "ollama":
		return Wrap(ollama.NewClient(cfg.Ollama, cfg.GenerationTimeout)), nil
	case "mock":
		return mock.NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of gemini, openai, ollama, mock", cfg.Provider)
	}
}
