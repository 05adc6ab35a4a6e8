package main

import (
	"flag"
	"fmt"
	"os"

	"med-lt/config"
)

// loadConfigOrDefault falls back to built-in defaults when the config file
// does not exist; an unreadable or malformed file is still an error.
func loadConfigOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(path)
}

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	apiPort := flag.Int("port", 0, "port to host api instead of tui")
	flag.Parse()
	cfg, err := loadConfigOrDefault(*configPath)
	if err != nil {
		fmt.Println("failed to load config", err)
		os.Exit(1)
	}
	assistant, err := NewAssistant(cfg)
	if err != nil {
		fmt.Println("failed to init assistant", err)
		os.Exit(1)
	}
	if apiPort != nil && *apiPort > 3000 {
		if err := assistant.ListenToRequests(fmt.Sprintf("%d", *apiPort)); err != nil {
			fmt.Println("api server stopped", err)
			os.Exit(1)
		}
		return
	}
	if err := runTUI(assistant); err != nil {
		assistant.logger.Error("failed to start tview app", "error", err)
		os.Exit(1)
	}
}
