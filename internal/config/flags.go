package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/blobkeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x int      download locator validity, minutes
//	-z          disable download locators (use -z=true)
//	-o          use the collection record store instead of the keyed tree (use -o=true)
//	-t string   DynamoDB table for the keyed-tree record store
//	-m string   MongoDB URI for the collection record store
//	-n string   MongoDB database name
//	-r string   Redis address for the locator cache (empty disables it)
//	-l string   local path prefix for device-local file URIs
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The locator expiry flag is accepted as an integer in minutes and then
//     converted to a time.Duration value.
//   - Boolean flags must use the "-flag=value" form so that the filtering
//     step does not mistake a following argument for their value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-p", "-b", "-g", "-e", "-x", "-z", "-o", "-t", "-m", "-n", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	locatorExpiry := fs.Int("x", int(config.LocatorExpiry.Minutes()), "locator_expiry (in minutes)")
	fs.BoolVar(&config.DisableLocators, "z", config.DisableLocators, "disable download locators")

	fs.BoolVar(&config.UseCollectionStore, "o", config.UseCollectionStore, "use collection record store")
	fs.StringVar(&config.DynamoTable, "t", config.DynamoTable, "DynamoDB records table")
	fs.StringVar(&config.MongoURI, "m", config.MongoURI, "MongoDB URI")
	fs.StringVar(&config.MongoDatabase, "n", config.MongoDatabase, "MongoDB database")

	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address for the locator cache")
	fs.StringVar(&config.LocalPathPrefix, "l", config.LocalPathPrefix, "local path prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LocatorExpiry = time.Duration(*locatorExpiry) * time.Minute
}
