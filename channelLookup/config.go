package main

import (
	"encoding/json"
	"fmt"
	"os"

	chaninfo "github.com/next-exp/chaninfo_go/pkg"
)

func LoadConfiguration(filename string) (chaninfo.Configuration, error) {
	var config chaninfo.Configuration

	// Set default values
	config.Verbosity = 0
	config.Run = 4400
	config.Event = 1
	config.Partition = "minicaptain"
	config.Host = "localhost"
	config.User = "captreader"
	config.Passwd = "readonly"
	config.DBName = "CAPTAIN"
	config.Driver = "mysql"
	config.CacheSize = chaninfo.DefaultCacheSize

	if filename == "" {
		return config, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config chaninfo.Configuration, logger chaninfo.Logger) {
	logger.Info(fmt.Sprintf("Run: %d", config.Run), "config")
	logger.Info(fmt.Sprintf("Event: %d", config.Event), "config")
	logger.Info(fmt.Sprintf("Partition: %s", config.Partition), "config")
	logger.Info(fmt.Sprintf("Driver: %s", config.Driver), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Cache size: %d", config.CacheSize), "config")
	logger.Info(fmt.Sprintf("Override file: %s", config.OverrideFile), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
