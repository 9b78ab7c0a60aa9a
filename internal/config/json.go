package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/blobkeeper/internal/flagx"
	"github.com/dmitrijs2005/blobkeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	S3RootUser         string         `json:"s3_root_user"`
	S3RootPassword     string         `json:"s3_root_password"`
	S3Bucket           string         `json:"s3_bucket"`
	S3Region           string         `json:"s3_region"`
	S3BaseEndpoint     string         `json:"s3_base_endpoint"`
	DisableLocators    bool           `json:"disable_locators"`
	LocatorExpiry      timex.Duration `json:"locator_expiry"`
	UseCollectionStore bool           `json:"use_collection_store"`
	DynamoTable        string         `json:"dynamo_table"`
	MongoURI           string         `json:"mongo_uri"`
	MongoDatabase      string         `json:"mongo_database"`
	RedisAddr          string         `json:"redis_addr"`
	LocalPathPrefix    string         `json:"local_path_prefix"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no file is loaded and the Config is left untouched.
// If the file cannot be read or contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.DisableLocators = c.DisableLocators
	config.LocatorExpiry = time.Duration(c.LocatorExpiry.Duration)
	config.UseCollectionStore = c.UseCollectionStore
	config.DynamoTable = c.DynamoTable
	config.MongoURI = c.MongoURI
	config.MongoDatabase = c.MongoDatabase
	config.RedisAddr = c.RedisAddr
	config.LocalPathPrefix = c.LocalPathPrefix
}
