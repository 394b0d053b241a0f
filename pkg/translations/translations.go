package translations

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// TranslationHelperFunc returns the text for key, or defaultValue when no
// override is configured.
type TranslationHelperFunc func(key string, defaultValue string) string

// ConfigFileName is the JSON file, looked up in the working directory, that
// holds description overrides.
const ConfigFileName = "eviebot-mcp-github-config"

// NullTranslationHelper always returns the default value.
func NullTranslationHelper(_ string, defaultValue string) string {
	return defaultValue
}

// TranslationHelper returns a helper that resolves overrides from
// GITHUB_MCP_<KEY> environment variables or the JSON config file, and a
// function that writes every key seen so far to that file.
func TranslationHelper() (TranslationHelperFunc, func()) {
	var mu sync.Mutex
	translationKeyMap := map[string]string{}

	v := viper.New()
	v.SetEnvPrefix("GITHUB_MCP")
	v.AutomaticEnv()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("json")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		log.WithError(err).Debug("no translation config file loaded")
	}

	helper := func(key string, defaultValue string) string {
		key = strings.ToUpper(key)

		mu.Lock()
		defer mu.Unlock()

		if value, exists := translationKeyMap[key]; exists {
			return value
		}
		if value := v.GetString(key); value != "" {
			translationKeyMap[key] = value
			return value
		}
		translationKeyMap[key] = defaultValue
		return defaultValue
	}

	dump := func() {
		mu.Lock()
		defer mu.Unlock()
		if err := DumpTranslationKeyMap(translationKeyMap); err != nil {
			log.WithError(err).Fatal("failed to dump translation key map")
		}
	}

	return helper, dump
}

// DumpTranslationKeyMap writes the key map to the JSON config file.
func DumpTranslationKeyMap(translationKeyMap map[string]string) error {
	file, err := os.Create(ConfigFileName + ".json")
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}
	defer func() { _ = file.Close() }()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(translationKeyMap); err != nil {
		return fmt.Errorf("error encoding translation key map: %w", err)
	}
	return nil
}
