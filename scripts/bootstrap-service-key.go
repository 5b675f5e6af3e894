// Command bootstrap-service-key generates an ops service key and its
// argon2id hash. The plaintext key goes to the operator; the hash goes
// into OPS_KEY_HASH.
//
// Usage:
//
//	go run scripts/bootstrap-service-key.go [-format json]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/makex/makex-api/internal/auth"
)

type output struct {
	Key     string `json:"key"`
	KeyHash string `json:"key_hash"`
}

func main() {
	format := flag.String("format", "plain", "Output format: plain or json")
	flag.Parse()

	key, hash, err := auth.GenerateServiceKey()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to generate service key:", err)
		os.Exit(1)
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(output{Key: key, KeyHash: hash}); err != nil {
			fmt.Fprintln(os.Stderr, "failed to encode output:", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Service key (store securely, shown once):")
	fmt.Println("  " + key)
	fmt.Println()
	fmt.Println("Set in the environment:")
	fmt.Println("  OPS_KEY_HASH=" + hash)
}
