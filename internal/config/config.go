// Package config handles configuration for blobkeeper, including defaults,
// JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for blobkeeper.
//
// Fields:
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings.
//   - DisableLocators: turns off presigned download locators when the backend
//     in use cannot issue them; uploads then complete without a locator.
//   - LocatorExpiry: validity window of presigned download locators.
//   - UseCollectionStore: selects the MongoDB collection record store instead
//     of the DynamoDB keyed-tree store. Exactly one variant is active.
//   - DynamoTable: table backing the keyed-tree record store.
//   - MongoURI / MongoDatabase: collection record store settings.
//   - RedisAddr: optional locator cache; empty disables caching.
//   - LocalPathPrefix: URI prefix marking device-local files that are
//     streamed from disk instead of being read into memory.
type Config struct {
	S3RootUser         string
	S3RootPassword     string
	S3Bucket           string
	S3Region           string
	S3BaseEndpoint     string
	DisableLocators    bool
	LocatorExpiry      time.Duration
	UseCollectionStore bool
	DynamoTable        string
	MongoURI           string
	MongoDatabase      string
	RedisAddr          string
	LocalPathPrefix    string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "vault"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.DisableLocators = false
	c.LocatorExpiry = 15 * time.Minute
	c.UseCollectionStore = false
	c.DynamoTable = "blobkeeper-records"
	c.MongoURI = "mongodb://127.0.0.1:27017"
	c.MongoDatabase = "blobkeeper"
	c.RedisAddr = ""
	c.LocalPathPrefix = "file://"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
