package config

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{
		botToken:   botToken,
		channelID:  channelID,
		topSources: 5,
	}
}

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, geminiProject, openaiAPIKey string) *LLM {
	return &LLM{
		provider:     provider,
		geminiProjID: geminiProject,
		geminiLoc:    "us-central1",
		openaiAPIKey: openaiAPIKey,
	}
}

// NewOpenAIForTest creates an OpenAI LLM config pointing at baseURL
func NewOpenAIForTest(apiKey, model, baseURL string) *LLM {
	return &LLM{
		provider:     ProviderOpenAI,
		model:        model,
		openaiAPIKey: apiKey,
		openaiURL:    baseURL,
	}
}

// NewRepositoryForTest creates a repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{
		backend:    backend,
		sqlitePath: sqlitePath,
	}
}

// NewEmbeddingForTest creates an embedding config for testing purposes
func NewEmbeddingForTest(backend, jinaAPIKey string) *Embedding {
	return &Embedding{
		backend:        backend,
		dimension:      256,
		jinaAPIKey:     jinaAPIKey,
		ollamaEndpoint: "http://localhost:11434",
		ollamaModel:    "nomic-embed-text",
	}
}

// NewExportForTest creates an export config for testing purposes
func NewExportForTest(format, dir string) *Export {
	return &Export{
		format: format,
		dir:    dir,
	}
}

// NewLoggerForTest creates a logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewAppConfigForTest creates an app config bound to path
func NewAppConfigForTest(path string) *AppConfig {
	return &AppConfig{path: path}
}
